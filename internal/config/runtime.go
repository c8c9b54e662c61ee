package config

import (
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Runtime holds the settings that may change while the process is running.
type Runtime struct {
	LogLevel string `mapstructure:"level"`
}

func DefaultRuntime() Runtime {
	return Runtime{LogLevel: "info"}
}

var defaultRuntimePaths = []string{"/etc/catalog", "."}

// RuntimeHolder keeps the current Runtime and reloads it when catalog.yaml changes.
type RuntimeHolder struct {
	current atomic.Value // holds Runtime

	mu        sync.Mutex
	listeners []func(Runtime)
}

func NewRuntimeHolder() (*RuntimeHolder, error) {
	return NewRuntimeHolderFromPaths(defaultRuntimePaths...)
}

func NewRuntimeHolderFromPaths(paths ...string) (*RuntimeHolder, error) {
	v := viper.New()
	v.SetConfigName("catalog")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	defaults := DefaultRuntime()
	v.SetDefault("log.level", defaults.LogLevel)

	holder := &RuntimeHolder{}

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		found = false
	}

	var cfg Runtime
	if err := v.UnmarshalKey("log", &cfg); err != nil {
		return nil, err
	}
	if err := validateRuntime(cfg); err != nil {
		return nil, err
	}
	holder.current.Store(cfg)

	if !found {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Runtime
		if err := v.UnmarshalKey("log", &updated); err != nil {
			log.Printf("[runtime-config] reload failed: %v", err)
			return
		}
		if err := validateRuntime(updated); err != nil {
			log.Printf("[runtime-config] invalid config ignored: %v", err)
			return
		}
		holder.Set(updated)
		log.Printf("[runtime-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *RuntimeHolder) Get() Runtime {
	return h.current.Load().(Runtime)
}

// Set stores cfg and notifies every registered listener.
func (h *RuntimeHolder) Set(cfg Runtime) {
	h.current.Store(cfg)

	h.mu.Lock()
	listeners := make([]func(Runtime), len(h.listeners))
	copy(listeners, h.listeners)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
}

// OnChange registers fn to be called after every successful reload.
func (h *RuntimeHolder) OnChange(fn func(Runtime)) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

func validateRuntime(cfg Runtime) error {
	switch strings.ToLower(strings.TrimSpace(cfg.LogLevel)) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return errors.New("log.level must be one of debug, info, warn, error")
	}
}
