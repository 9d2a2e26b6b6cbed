package internal

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/LeviCameron1/BufferManager/pkg/logger"
)

const envPrefix = "BUFMGR"

type BufMgrConfig struct {
	AppName string `mapstructure:"app_name"`

	Storage struct {
		Workdir string `mapstructure:"workdir"`
	} `mapstructure:"storage"`

	BufferPool struct {
		Frames int `mapstructure:"frames"`
	} `mapstructure:"buffer_pool"`

	Log logger.Config `mapstructure:"log"`

	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Addr    string `mapstructure:"addr"`
	} `mapstructure:"metrics"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "bufmgr")
	v.SetDefault("storage.workdir", "./data")
	v.SetDefault("buffer_pool.frames", 128)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_file", "stderr")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9108")
}

// LoadConfig reads a YAML config file. An empty path yields the defaults.
// Any key can be overridden from the environment, e.g. BUFMGR_BUFFER_POOL_FRAMES.
func LoadConfig(path string) (*BufMgrConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg BufMgrConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.BufferPool.Frames <= 0 {
		return nil, fmt.Errorf("config: buffer_pool.frames must be positive, got %d", cfg.BufferPool.Frames)
	}

	return &cfg, nil
}
