package binance

import (
	"strings"

	"trailingbot/internal/exchange"
	"trailingbot/internal/logger"

	binance "github.com/adshao/go-binance/v2"
)

var _ exchange.Client = (*Client)(nil)

const defaultStreamURL = "wss://stream.binance.com:9443"

type Config struct {
	BaseURL   string
	StreamURL string
	ApiKey    string
	Secret    string
}

// Client talks to the venue REST API through go-binance and opens market
// and user data streams with the ws package.
type Client struct {
	rest      *binance.Client
	streamURL string
	log       *logger.Logger
}

func New(cfg Config, log *logger.Logger) *Client {
	rest := binance.NewClient(cfg.ApiKey, cfg.Secret)
	if cfg.BaseURL != "" {
		rest.BaseURL = cfg.BaseURL
	}

	streamURL := strings.TrimRight(cfg.StreamURL, "/")
	if streamURL == "" {
		streamURL = defaultStreamURL
	}

	return &Client{
		rest:      rest,
		streamURL: streamURL,
		log:       log,
	}
}
