package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	Secret     string        `mapstructure:"secret"`
	LogLevel   string        `mapstructure:"log_level"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`

	CORSOrigins    []string `mapstructure:"cors_origins"`
	SnapshotBuffer int      `mapstructure:"snapshot_buffer"`
	// Backpressure is close or drop.
	Backpressure  string        `mapstructure:"backpressure"`
	IntentLimit   int           `mapstructure:"intent_limit"`
	IntentWindow  time.Duration `mapstructure:"intent_window"`
	SessionMaxAge int           `mapstructure:"session_max_age"`

	GridLayout          string        `mapstructure:"grid_layout"`
	ParticipantThrottle time.Duration `mapstructure:"participant_throttle"`
	UIThrottle          time.Duration `mapstructure:"ui_throttle"`

	DisplayName           string `mapstructure:"display_name"`
	StartWithCameraOn     bool   `mapstructure:"start_with_camera_on"`
	StartWithMicrophoneOn bool   `mapstructure:"start_with_microphone_on"`
	SkipSetup             bool   `mapstructure:"skip_setup"`

	SignalURL  string   `mapstructure:"signal_url"`
	Room       string   `mapstructure:"room"`
	ICEServers []string `mapstructure:"ice_servers"`

	LiveKit LiveKitConfig `mapstructure:"livekit"`
}

type LiveKitConfig struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("snapshot_buffer", 32)
	v.SetDefault("backpressure", "close")
	v.SetDefault("intent_limit", 20)
	v.SetDefault("intent_window", "1s")
	v.SetDefault("session_max_age", 3600*24*7)
	v.SetDefault("grid_layout", "compact")
	v.SetDefault("participant_throttle", "1250ms")
	v.SetDefault("ui_throttle", "300ms")
	v.SetDefault("display_name", "Guest")
	v.SetDefault("room", "lobby")
	v.SetDefault("secret", "")
	v.SetDefault("signal_url", "")
	v.SetDefault("ice_servers", []string{})
	v.SetDefault("livekit.api_key", "")
	v.SetDefault("livekit.api_secret", "")
}

// Load reads .env, then config/config.<CONFIG_ENV>.yaml, then COMPOSITE_*
// environment overrides. A missing file leaves the defaults in place.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("module", "config").Msg(".env not loaded")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("COMPOSITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("static", cfg.StaticPath).
		Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.GridLayout {
	case "compact", "regular":
	default:
		return fmt.Errorf("grid_layout must be compact or regular, got %q", c.GridLayout)
	}
	switch c.Backpressure {
	case "close", "drop":
	default:
		return fmt.Errorf("backpressure must be close or drop, got %q", c.Backpressure)
	}
	if c.Port <= 0 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// Level is the configured log level; unknown names fall back to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
