package ws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trailingbot/internal/logger"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// URLFunc resolves the address to dial. It is called again on every reconnect.
type URLFunc func(ctx context.Context) (string, error)

type Handler func(data []byte)

type Client struct {
	name         string
	urlFn        URLFunc
	handler      Handler
	log          *logger.Logger
	mu           sync.Mutex
	conn         *websocket.Conn
	started      bool
	stopCh       chan struct{}
	stopOnce     sync.Once
	done         chan struct{}
	reconnectMin time.Duration
	reconnectMax time.Duration
}

func New(name string, urlFn URLFunc, handler Handler, log *logger.Logger) *Client {
	return &Client{
		name:         name,
		urlFn:        urlFn,
		handler:      handler,
		log:          log,
		stopCh:       make(chan struct{}),
		done:         make(chan struct{}),
		reconnectMin: 1 * time.Second,
		reconnectMax: 30 * time.Second,
	}
}

func (w *Client) Connect(ctx context.Context) error {
	conn, err := w.dial(ctx)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.conn = conn
	w.started = true
	w.mu.Unlock()

	w.logEntry().Info("Stream connected.")

	go w.readLoop()

	return nil
}

func (w *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	url, err := w.urlFn(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve stream url: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial stream %s: %w", w.name, err)
	}
	conn.SetReadLimit(2 << 20)
	return conn, nil
}

// Close stops the read loop and waits for it to exit. Safe to call more than once.
func (w *Client) Close() error {
	var err error
	started := false
	w.stopOnce.Do(func() {
		close(w.stopCh)

		w.mu.Lock()
		conn := w.conn
		started = w.started
		w.mu.Unlock()

		if conn != nil {
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			err = conn.Close()
		}
	})

	if started {
		<-w.done
	}
	return err
}

func (w *Client) stopped() bool {
	select {
	case <-w.stopCh:
		return true
	default:
		return false
	}
}

func (w *Client) logEntry() *logrus.Entry {
	return w.log.WithComponent("binance_ws").WithField("stream", w.name)
}
