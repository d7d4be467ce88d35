package errhandler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"syscall"

	"trailingbot/internal/exchange"
	"trailingbot/internal/logger"
	"trailingbot/internal/metrics"

	"github.com/sirupsen/logrus"
)

// LockMarker appears in errors raised when a distributed lock could not be acquired.
const LockMarker = "redlock"

var ErrLockNotAcquired = errors.New(LockMarker + ": unable to acquire lock")

type Class string

const (
	ClassNone         Class = "none"
	ClassSuppressed   Class = "suppressed"
	ClassTransient    Class = "transient"
	ClassUnclassified Class = "unclassified"
)

var transientCodes = map[int64]bool{
	exchange.CodeDisconnected:     true,
	exchange.CodeInvalidTimestamp: true,
}

// Classify maps an error to how the gate treats it.
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}
	if errors.Is(err, ErrLockNotAcquired) || strings.Contains(err.Error(), LockMarker) {
		return ClassSuppressed
	}
	if errors.Is(err, context.Canceled) {
		return ClassSuppressed
	}

	var apiErr *exchange.APIError
	if errors.As(err, &apiErr) && transientCodes[apiErr.Code] {
		return ClassTransient
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return ClassTransient
	}
	return ClassUnclassified
}

func errorCode(err error) string {
	var apiErr *exchange.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%d", apiErr.Code)
	}
	switch {
	case errors.Is(err, syscall.ECONNRESET):
		return "ECONNRESET"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "ECONNREFUSED"
	}
	return ""
}

// Scope identifies the work a gate is guarding.
type Scope struct {
	Job           string
	Symbol        string
	CorrelationID string
}

func (s Scope) fields() map[string]any {
	fields := map[string]any{"job": s.Job}
	if s.Symbol != "" {
		fields["symbol"] = s.Symbol
	}
	if s.CorrelationID != "" {
		fields["correlation_id"] = s.CorrelationID
	}
	return fields
}

// Gate runs job callbacks and decides whether failures are suppressed,
// logged, or logged and notified. It never lets an error or panic escape.
type Gate struct {
	log         *logger.Logger
	notifier    Notifier
	notifyDebug func() bool
}

func NewGate(log *logger.Logger, notifier Notifier, notifyDebug func() bool) *Gate {
	if notifier == nil {
		notifier = NewLogNotifier(log)
	}
	if notifyDebug == nil {
		notifyDebug = func() bool { return false }
	}
	return &Gate{log: log, notifier: notifier, notifyDebug: notifyDebug}
}

// Run executes fn and handles whatever it returns. The returned class is
// informational; callers are free to ignore it.
func (g *Gate) Run(ctx context.Context, scope Scope, fn func(ctx context.Context) error) (class Class) {
	var stack []byte
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				stack = debug.Stack()
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn(ctx)
	}()

	class = Classify(err)
	metrics.ObserveGateResult(scope.Job, string(class))
	if class == ClassNone {
		return class
	}
	g.handle(ctx, scope, err, class, stack)
	return class
}

func (g *Gate) handle(ctx context.Context, scope Scope, err error, class Class, stack []byte) {
	entry := g.log.WithComponent("errhandler").
		WithFields(logrus.Fields(scope.fields())).
		WithField("error_code", errorCode(err)).
		WithError(err)

	switch class {
	case ClassSuppressed:
		entry.Trace("Execution skipped.")
		return
	case ClassTransient:
		entry.Warn("Execution failed with a temporary error.")
		return
	}

	entry.Error("Execution failed.")

	msg := fmt.Sprintf("Execution failed:\nJob: %s\nCode: %s\nMessage:```%s```\n", scope.Job, errorCode(err), err.Error())
	if g.notifyDebug() {
		if len(stack) == 0 {
			stack = []byte(fmt.Sprintf("%+v", err))
		}
		msg += fmt.Sprintf("Stack:```%s```\n", stack)
	}

	if sendErr := g.notifier.Send(context.WithoutCancel(ctx), msg, scope.fields()); sendErr != nil {
		g.log.WithComponent("errhandler").WithError(sendErr).Warn("Failed to send notification.")
	}
}
