package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivanzxc/go-realtime-vitals/internal/logger"
	"github.com/ivanzxc/go-realtime-vitals/internal/signal"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Engine EngineConfig  `yaml:"engine"`
	Driver DriverConfig  `yaml:"driver"`
	NATS   NATSConfig    `yaml:"nats"`
	Kafka  KafkaConfig   `yaml:"kafka"`
	Server ServerConfig  `yaml:"server"`
	Log    logger.Config `yaml:"log"`
}

type EngineConfig struct {
	SampleRate float64 `yaml:"sample_rate"` // Hz
	BlockSize  int     `yaml:"block_size"`
	HeartRate  float64 `yaml:"heart_rate"`
	RespRate   float64 `yaml:"resp_rate"`
	Seed       int64   `yaml:"seed"` // 0 = reloj
}

// DriverConfig: Interval es la cadencia de pared, independiente de la
// duración simulada de cada bloque.
type DriverConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type NATSConfig struct {
	URL           string `yaml:"url"`
	WaveSubject   string `yaml:"wave_subject"`
	VitalsSubject string `yaml:"vitals_subject"`
	RatesSubject  string `yaml:"rates_subject"`
	ParamsSubject string `yaml:"params_subject"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

func Default() *Config {
	ec := signal.DefaultConfig()
	rates := signal.DefaultRates()
	return &Config{
		Engine: EngineConfig{
			SampleRate: ec.SampleRate,
			BlockSize:  ec.BlockSize,
			HeartRate:  rates.HeartRate,
			RespRate:   rates.RespRate,
		},
		Driver: DriverConfig{Interval: 50 * time.Millisecond},
		NATS: NATSConfig{
			URL:           "nats://127.0.0.1:4222",
			WaveSubject:   "monitor.wave",
			VitalsSubject: "monitor.vitals",
			RatesSubject:  "monitor.rates",
			ParamsSubject: "monitor.params",
		},
		Kafka: KafkaConfig{
			Brokers: []string{"127.0.0.1:9092"},
			Topic:   "monitor.wave",
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    logger.Config{Level: "info", Format: "console", Output: "stdout"},
	}
}

// Load lee path sobre los valores por defecto. path vacío devuelve Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.SignalConfig().Validate(); err != nil {
		return fmt.Errorf("%w: engine: %v", ErrInvalid, err)
	}
	if err := c.Rates().Validate(); err != nil {
		return fmt.Errorf("%w: engine: %v", ErrInvalid, err)
	}
	if c.Driver.Interval <= 0 {
		return fmt.Errorf("%w: driver interval %v", ErrInvalid, c.Driver.Interval)
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return fmt.Errorf("%w: kafka enabled without brokers or topic", ErrInvalid)
	}
	return nil
}

func (c *Config) SignalConfig() signal.Config {
	return signal.Config{
		SampleRate: c.Engine.SampleRate,
		BlockSize:  c.Engine.BlockSize,
		Seed:       c.Engine.Seed,
	}
}

func (c *Config) Rates() signal.Rates {
	return signal.Rates{HeartRate: c.Engine.HeartRate, RespRate: c.Engine.RespRate}
}
