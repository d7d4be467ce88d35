package config

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"trailingbot/internal/models"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Provider serves global and per-symbol trading configuration. Values are
// parsed once per (re)load so readers never touch viper concurrently.
type Provider struct {
	v *viper.Viper

	mu          sync.RWMutex
	global      models.GlobalConfiguration
	symbols     map[string]models.SymbolConfiguration
	notifyDebug bool
	listeners   []func()
}

func NewProvider(v *viper.Viper) (*Provider, error) {
	p := &Provider{v: v}
	if err := p.reload(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) GetGlobalConfiguration(_ context.Context) (models.GlobalConfiguration, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	global := p.global
	global.Symbols = append([]string(nil), p.global.Symbols...)
	return global, nil
}

func (p *Provider) GetSymbolConfiguration(_ context.Context, symbol string) (models.SymbolConfiguration, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if cfg, ok := p.symbols[symbol]; ok {
		return cfg, nil
	}
	return defaultsFor(p.global, symbol), nil
}

// NotifyDebug is the runtime toggle attaching verbose error detail to notifications.
func (p *Provider) NotifyDebug() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.notifyDebug
}

// OnChange registers fn to run after every successful reload.
func (p *Provider) OnChange(fn func()) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

// Watch re-reads the file on change and notifies listeners.
func (p *Provider) Watch(onError func(error)) {
	p.v.OnConfigChange(func(fsnotify.Event) {
		if err := p.reload(); err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		p.mu.RLock()
		listeners := append([]func(){}, p.listeners...)
		p.mu.RUnlock()
		for _, fn := range listeners {
			fn()
		}
	})
	p.v.WatchConfig()
}

func (p *Provider) reload() error {
	var global models.GlobalConfiguration
	if err := p.v.Unmarshal(&global); err != nil {
		return fmt.Errorf("parse trading configuration: %w", err)
	}
	for i, s := range global.Symbols {
		global.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}

	symbols := make(map[string]models.SymbolConfiguration, len(global.Symbols))
	for _, symbol := range global.Symbols {
		cfg := defaultsFor(global, symbol)
		key := "symbol_overrides." + strings.ToLower(symbol)
		if p.v.IsSet(key) {
			if err := p.v.UnmarshalKey(key, &cfg); err != nil {
				return fmt.Errorf("parse overrides for %s: %w", symbol, err)
			}
			cfg.Symbol = symbol
		}
		symbols[symbol] = cfg
	}

	p.mu.Lock()
	p.global = global
	p.symbols = symbols
	p.notifyDebug = p.v.GetBool("feature_toggle.notify_debug")
	p.mu.Unlock()
	return nil
}

func defaultsFor(global models.GlobalConfiguration, symbol string) models.SymbolConfiguration {
	return models.SymbolConfiguration{
		Symbol:     symbol,
		Candles:    global.Candles,
		Buy:        global.Buy,
		Sell:       global.Sell,
		BotOptions: global.BotOptions,
	}
}
