package config

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"mjaibridge/common/log"
)

// Config holds the bridge process's full runtime configuration.
type Config struct {
	Host  string  `mapstructure:"host"`
	Port  int     `mapstructure:"port"`
	Sex   string  `mapstructure:"sex"`
	Debug bool    `mapstructure:"debug"`
	Log   LogConf `mapstructure:"log"`
}

type LogConf struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// Default returns the settings the original tool shipped with, used when
// no config file is supplied.
func Default() Config {
	return Config{
		Host: "127.0.0.1",
		Port: 11600,
		Sex:  "M",
		Log: LogConf{
			Level: "info",
			Path:  "logs",
		},
	}
}

// Load reads configFile (if non-empty) over the defaults, then lets
// environment variables of the form MJAIBRIDGE_HOST etc. override it.
// A missing configFile is not an error; an unreadable one is.
func Load(configFile string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("mjaibridge")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range []string{"host", "port", "sex", "debug", "log.level", "log.path"} {
		_ = v.BindEnv(key)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Watch re-reads configFile on change and invokes onChange with the
// reloaded config. A reload that fails to unmarshal is logged at Warn and
// onChange is not called, so the previous settings stay in effect. If
// configFile cannot be read up front, no watch is started.
func Watch(configFile string, onChange func(Config)) {
	if configFile == "" {
		return
	}

	v := viper.New()
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		cfg := Default()
		if err := v.Unmarshal(&cfg); err != nil {
			log.Warn("config reload failed, keeping previous settings", "file", e.Name, "err", err)
			return
		}
		onChange(cfg)
	})
}
