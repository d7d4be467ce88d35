package binance

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"trailingbot/internal/exchange"
	"trailingbot/internal/exchange/binance/ws"
	"trailingbot/internal/models"
)

const listenKeyKeepalive = 30 * time.Minute

func (c *Client) StreamCandles(ctx context.Context, symbols []string, interval string, onTick func(models.Candle)) (exchange.StopFunc, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("stream candles %s: no symbols", interval)
	}

	streams := make([]string, 0, len(symbols))
	for _, s := range symbols {
		streams = append(streams, strings.ToLower(s)+"@kline_"+interval)
	}
	url := c.streamURL + "/stream?streams=" + strings.Join(streams, "/")
	name := "kline_" + interval

	client := ws.New(name, staticURL(url), func(data []byte) {
		candle, err := ws.DecodeKline(data)
		if err != nil {
			c.log.WithComponent("binance").WithField("stream", name).WithError(err).Warn("Skipping kline payload.")
			return
		}
		onTick(candle)
	}, c.log)

	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	return client.Close, nil
}

func (c *Client) StreamDepth(ctx context.Context, symbol string, level int, onTick func(models.Depth)) (exchange.StopFunc, error) {
	name := fmt.Sprintf("%s@depth%d", strings.ToLower(symbol), level)
	url := c.streamURL + "/ws/" + name

	client := ws.New(name, staticURL(url), func(data []byte) {
		depth, err := ws.DecodeDepth(symbol, data)
		if err != nil {
			c.log.WithComponent("binance").WithField("stream", name).WithError(err).Warn("Skipping depth payload.")
			return
		}
		onTick(depth)
	}, c.log)

	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	return client.Close, nil
}

// StreamAccount opens the user data stream. A listen key is requested on every
// (re)connect and kept alive until the returned StopFunc is called.
func (c *Client) StreamAccount(ctx context.Context, onEvent func(models.AccountEvent)) (exchange.StopFunc, error) {
	var (
		mu        sync.Mutex
		listenKey string
	)

	urlFn := func(ctx context.Context) (string, error) {
		key, err := c.rest.NewStartUserStreamService().Do(ctx)
		if err != nil {
			return "", wrapError("start user stream", err)
		}
		mu.Lock()
		listenKey = key
		mu.Unlock()
		return c.streamURL + "/ws/" + key, nil
	}

	client := ws.New("user", urlFn, func(data []byte) {
		evt, err := ws.DecodeUserEvent(data)
		if err != nil {
			c.log.WithComponent("binance").WithField("stream", "user").WithError(err).Warn("Skipping user payload.")
			return
		}
		if evt != nil {
			onEvent(evt)
		}
	}, c.log)

	if err := client.Connect(ctx); err != nil {
		return nil, err
	}

	currentKey := func() string {
		mu.Lock()
		defer mu.Unlock()
		return listenKey
	}

	stopKeepalive := make(chan struct{})
	keepaliveDone := make(chan struct{})
	go func() {
		defer close(keepaliveDone)
		ticker := time.NewTicker(listenKeyKeepalive)
		defer ticker.Stop()
		for {
			select {
			case <-stopKeepalive:
				return
			case <-ticker.C:
				kctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				err := c.rest.NewKeepaliveUserStreamService().ListenKey(currentKey()).Do(kctx)
				cancel()
				if err != nil {
					c.log.WithComponent("binance").WithError(wrapError("keepalive user stream", err)).Warn("Listen key keepalive failed.")
				}
			}
		}
	}()

	var once sync.Once
	stop := func() error {
		var err error
		once.Do(func() {
			close(stopKeepalive)
			<-keepaliveDone

			err = client.Close()

			cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if closeErr := c.rest.NewCloseUserStreamService().ListenKey(currentKey()).Do(cctx); closeErr != nil && err == nil {
				err = wrapError("close user stream", closeErr)
			}
		})
		return err
	}
	return stop, nil
}

func staticURL(url string) ws.URLFunc {
	return func(context.Context) (string, error) {
		return url, nil
	}
}
