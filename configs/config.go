package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		Env      string `koanf:"env"`
		HTTPAddr string `koanf:"http_addr"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	Checkout struct {
		// DueOffset is the default shipment due date offset applied when a
		// checkout request does not carry one.
		DueOffset time.Duration `koanf:"due_offset"`
	} `koanf:"checkout"`

	Store struct {
		// Backend selects the shipment store: memory, redis, or sqlite.
		Backend    string `koanf:"backend"`
		SQLitePath string `koanf:"sqlite_path"`
	} `koanf:"store"`

	Notifier struct {
		// Backend selects the shipping notifier: memory, rabbit, or kafka.
		Backend string `koanf:"backend"`
	} `koanf:"notifier"`

	Redis struct {
		Addr string `koanf:"addr"`
	} `koanf:"redis"`

	Rabbit struct {
		URL string `koanf:"url"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers []string `koanf:"brokers"`
		Topic   string   `koanf:"topic"`
	} `koanf:"kafka"`

	Worker struct {
		// Grace is added on top of each shipment's due date before processing.
		Grace time.Duration `koanf:"grace"`
	} `koanf:"worker"`
}

// Load reads <dir>/base.yaml, overlays <dir>/<env>.yaml when present, then
// applies CHECKOUT_-prefixed environment variables (nested keys joined
// with __, e.g. CHECKOUT_REDIS__ADDR).
func Load(dir, envName string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", dir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base config: %w", err)
	}
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", dir, envName)), yaml.Parser())

	if err := k.Load(env.Provider("CHECKOUT_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "CHECKOUT_")
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "checkout"
	}
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = ":8080"
	}
	if c.Checkout.DueOffset <= 0 {
		c.Checkout.DueOffset = 3 * time.Second
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "memory"
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = "./data/shipments.db"
	}
	if c.Notifier.Backend == "" {
		c.Notifier.Backend = "memory"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "shipment.created"
	}
}
