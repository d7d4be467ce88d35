package ws

import (
	"context"
	"time"
)

func (w *Client) readLoop() {
	defer close(w.done)

	w.logEntry().Debug("Read loop started.")

	for {
		if w.stopped() {
			return
		}

		w.mu.Lock()
		conn := w.conn
		w.mu.Unlock()

		_, data, err := conn.ReadMessage()
		if err != nil {
			if w.stopped() {
				return
			}
			w.logEntry().WithError(err).Warn("Stream read failed.")

			if !w.reconnect() {
				return
			}
			continue
		}

		w.handler(data)
	}
}

func (w *Client) reconnect() bool {
	backoff := w.reconnectMin

	for {
		timer := time.NewTimer(backoff)
		select {
		case <-w.stopCh:
			timer.Stop()
			return false
		case <-timer.C:
		}

		w.logEntry().Info("Reconnecting stream.")

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		conn, err := w.dial(ctx)
		cancel()
		if err != nil {
			w.logEntry().WithError(err).Warn("Stream reconnect failed.")
			backoff = w.nextBackoff(backoff)
			continue
		}

		w.mu.Lock()
		old := w.conn
		w.conn = conn
		w.mu.Unlock()

		if old != nil {
			_ = old.Close()
		}

		if w.stopped() {
			_ = conn.Close()
			return false
		}

		w.logEntry().Info("Stream reconnected.")
		return true
	}
}

func (w *Client) nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > w.reconnectMax {
		return w.reconnectMax
	}
	return next
}
