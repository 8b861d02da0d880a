package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// APISettings are runtime tunables that can change without a restart.
type APISettings struct {
	PageSize      int           `mapstructure:"pageSize"`
	MaxPageSize   int           `mapstructure:"maxPageSize"`
	OneTimeKeyTTL time.Duration `mapstructure:"oneTimeKeyTTL"`
	RedeemRate    float64       `mapstructure:"redeemRate"`
	RedeemBurst   int           `mapstructure:"redeemBurst"`
}

func DefaultAPISettings() APISettings {
	return APISettings{
		PageSize:      20,
		MaxPageSize:   250,
		OneTimeKeyTTL: 10 * time.Minute,
		RedeemRate:    0.2,
		RedeemBurst:   5,
	}
}

type SettingsHolder struct {
	current atomic.Value // holds APISettings
}

// NewStaticSettings returns a holder that never reloads.
func NewStaticSettings(s APISettings) *SettingsHolder {
	holder := &SettingsHolder{}
	holder.current.Store(s)
	return holder
}

func NewSettingsHolder(log *zap.Logger) (*SettingsHolder, error) {
	log = log.Named("config.settings")
	v := viper.New()

	v.SetConfigName("kpi")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/kpi")
	v.AddConfigPath(".")

	v.SetEnvPrefix("KPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultAPISettings()
	v.SetDefault("api.pageSize", defaults.PageSize)
	v.SetDefault("api.maxPageSize", defaults.MaxPageSize)
	v.SetDefault("api.oneTimeKeyTTL", defaults.OneTimeKeyTTL)
	v.SetDefault("api.redeemRate", defaults.RedeemRate)
	v.SetDefault("api.redeemBurst", defaults.RedeemBurst)

	found := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		found = false
	}

	var cfg APISettings
	if err := v.UnmarshalKey("api", &cfg); err != nil {
		return nil, err
	}
	if err := validateAPISettings(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticSettings(cfg)
	if !found {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated APISettings
		if err := v.UnmarshalKey("api", &updated); err != nil {
			log.Warn("settings reload failed", zap.Error(err))
			return
		}
		if err := validateAPISettings(updated); err != nil {
			log.Warn("invalid settings ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("settings reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *SettingsHolder) Get() APISettings {
	if h == nil {
		return DefaultAPISettings()
	}
	return h.current.Load().(APISettings)
}

func validateAPISettings(cfg APISettings) error {
	if cfg.PageSize <= 0 {
		return errors.New("api.pageSize must be positive")
	}
	if cfg.MaxPageSize < cfg.PageSize {
		return errors.New("api.maxPageSize must not be smaller than api.pageSize")
	}
	if cfg.OneTimeKeyTTL <= 0 {
		return errors.New("api.oneTimeKeyTTL must be positive")
	}
	if cfg.RedeemRate <= 0 || cfg.RedeemBurst <= 0 {
		return errors.New("api.redeemRate and api.redeemBurst must be positive")
	}
	return nil
}
