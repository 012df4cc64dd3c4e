// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	APIs     APIsConfig              `mapstructure:"apis"`
	Season   SeasonConfig            `mapstructure:"season"`
	Search   SearchConfig            `mapstructure:"search"`
	Server   ServerConfig            `mapstructure:"server"`
	Logging  LoggingConfig           `mapstructure:"logging"`
	Tracing  TracingConfig           `mapstructure:"tracing"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	Database         string `mapstructure:"database"`
	User             string `mapstructure:"user"`
	Password         string `mapstructure:"password"`
	SSLMode          string `mapstructure:"sslmode"`
	MaxConnections   int    `mapstructure:"max_connections"`
	MaxIdle          int    `mapstructure:"max_idle"`
	IdleTimeoutMs    int    `mapstructure:"idle_timeout_ms"`
	ConnectTimeoutMs int    `mapstructure:"connect_timeout_ms"`
}

// GetDSN returns the lib/pq connection string. connect_timeout is expressed
// in whole seconds, minimum 1.
func (p PostgresConfig) GetDSN() string {
	connectTimeout := p.ConnectTimeoutMs / 1000
	if connectTimeout < 1 {
		connectTimeout = 1
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode, connectTimeout,
	)
}

func (p PostgresConfig) IdleTimeout() time.Duration {
	return GetDuration(p.IdleTimeoutMs)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
}

// GetURL returns the single URL or the first address.
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// APIsConfig holds settings for outbound API integrations.
type APIsConfig struct {
	Completion CompletionConfig `mapstructure:"completion"`
}

// CompletionConfig points at an OpenAI-compatible chat completion server
// (llama.cpp, Ollama, vLLM, LM Studio).
type CompletionConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	Timeout   int    `mapstructure:"timeout"` // milliseconds
	MaxTokens int    `mapstructure:"max_tokens"`
}

type SeasonConfig struct {
	Override   string `mapstructure:"override"`
	CacheTTLMs int    `mapstructure:"cache_ttl_ms"`
}

type SearchConfig struct {
	PlayersIndex string `mapstructure:"players_index"`
	TeamsIndex   string `mapstructure:"teams_index"`
	MaxResults   int    `mapstructure:"max_results"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}
