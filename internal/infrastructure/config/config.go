package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"chat-harvester/internal/domain/entity"
	"chat-harvester/internal/infrastructure/rows"
	"chat-harvester/internal/infrastructure/store"

	"github.com/spf13/viper"
)

const EnvPrefix = "HARVESTER"

type Config struct {
	URL       string                `mapstructure:"url"`
	Browser   BrowserConfig         `mapstructure:"browser"`
	Selectors entity.SelectorConfig `mapstructure:"selectors"`
	Run       RunConfig             `mapstructure:"run"`
	Rows      RowsConfig            `mapstructure:"rows"`
	Store     store.Config          `mapstructure:"store"`
	Logger    LoggerConfig          `mapstructure:"logger"`
	Server    ServerConfig          `mapstructure:"server"`
}

type BrowserConfig struct {
	Headless    bool          `mapstructure:"headless"`
	NoSandbox   bool          `mapstructure:"no_sandbox"`
	Stealth     bool          `mapstructure:"stealth"`
	UserDataDir string        `mapstructure:"user_data_dir"`
	ControlURL  string        `mapstructure:"control_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SlowMotion  time.Duration `mapstructure:"slow_motion"`
}

type RunConfig struct {
	Settle        time.Duration `mapstructure:"settle"`
	Pacing        time.Duration `mapstructure:"pacing"`
	ScreenshotDir string        `mapstructure:"screenshot_dir"`
	// WaitForLogin pauses after navigation until the operator confirms.
	WaitForLogin bool `mapstructure:"wait_for_login"`
}

type RowsConfig struct {
	Delimiter     string `mapstructure:"delimiter"`
	QuestionField string `mapstructure:"question_field"`
	QuestionIndex int    `mapstructure:"question_index"`
}

type LoggerConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	Dir     string `mapstructure:"dir"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Options converts the row settings; the delimiter is its first rune.
func (r RowsConfig) Options() rows.Options {
	opts := rows.Options{Delimiter: ',', QuestionField: r.QuestionField, QuestionIndex: r.QuestionIndex}
	if r.Delimiter == `\t` || r.Delimiter == "tab" {
		opts.Delimiter = '\t'
	} else if d, _ := utf8.DecodeRuneInString(r.Delimiter); d != utf8.RuneError {
		opts.Delimiter = d
	}
	return opts
}

func SetDefaults(v *viper.Viper) {
	sel := entity.DefaultSelectorConfig()
	v.SetDefault("url", "")

	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.no_sandbox", false)
	v.SetDefault("browser.stealth", true)
	v.SetDefault("browser.user_data_dir", "")
	v.SetDefault("browser.control_url", "")
	v.SetDefault("browser.timeout", "10s")
	v.SetDefault("browser.slow_motion", "0s")

	v.SetDefault("selectors.inputs", sel.Inputs)
	v.SetDefault("selectors.submit_buttons", sel.SubmitButtons)
	v.SetDefault("selectors.forms", sel.Forms)
	v.SetDefault("selectors.messages_container", sel.MessagesContainer)
	v.SetDefault("selectors.assistant_messages", sel.AssistantMessages)
	v.SetDefault("selectors.streaming_class", sel.StreamingClass)
	v.SetDefault("selectors.stabilize_after", sel.StabilizeAfter.String())
	v.SetDefault("selectors.hard_timeout", sel.HardTimeout.String())

	v.SetDefault("run.settle", "2s")
	v.SetDefault("run.pacing", "800ms")
	v.SetDefault("run.screenshot_dir", "")
	v.SetDefault("run.wait_for_login", false)

	v.SetDefault("rows.delimiter", ",")
	v.SetDefault("rows.question_field", "question")
	v.SetDefault("rows.question_index", 0)

	storeDefaults := store.DefaultConfig()
	v.SetDefault("store.backend", storeDefaults.Backend)
	v.SetDefault("store.path", storeDefaults.Path)
	v.SetDefault("store.redis_url", storeDefaults.RedisURL)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.console", true)
	v.SetDefault("logger.dir", "log")

	v.SetDefault("server.addr", "127.0.0.1:8089")
}

// Load reads the YAML profile at path (or ./harvester.yaml when empty) and
// HARVESTER_* environment variables over the defaults.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("harvester")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Selectors = cfg.Selectors.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Run.Settle < 0 || c.Run.Pacing < 0 {
		return errors.New("run.settle and run.pacing must not be negative")
	}
	if len(c.Selectors.Inputs) == 0 || len(c.Selectors.AssistantMessages) == 0 {
		return errors.New("selectors.inputs and selectors.assistant_messages must not be empty")
	}
	if strings.ContainsFunc(c.Selectors.StreamingClass, unicode.IsSpace) {
		return fmt.Errorf("selectors.streaming_class %q must be a single class name", c.Selectors.StreamingClass)
	}
	if c.Rows.QuestionField == "" && c.Rows.QuestionIndex < 0 {
		return errors.New("rows.question_index must not be negative")
	}
	return nil
}
