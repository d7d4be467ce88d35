package engine

import (
	"strconv"
	"strings"

	"trailingbot/internal/models"

	"github.com/sirupsen/logrus"
)

func (e *Engine) logEntry(snap *models.Snapshot) *logrus.Entry {
	entry := e.log.WithComponent("engine")
	if snap != nil {
		entry = entry.WithFields(logrus.Fields{
			"symbol":         snap.Symbol,
			"correlation_id": snap.CorrelationID,
		})
	}
	return entry
}

func formatFloatPlain(val float64) string {
	formatted := strconv.FormatFloat(val, 'f', 12, 64)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")
	if formatted == "" || formatted == "-0" {
		return "0"
	}
	return formatted
}
