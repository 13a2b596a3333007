package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel               string `mapstructure:"log-level"`
	ERPHost                string `mapstructure:"erp-host"`
	ERPPort                int    `mapstructure:"erp-port"`
	ERPDatabase            string `mapstructure:"erp-database"`
	ERPUser                string `mapstructure:"erp-user"`
	ERPPassword            string `mapstructure:"erp-password"`
	KBPGHost               string `mapstructure:"kb-pg-host"`
	KBPGPort               int    `mapstructure:"kb-pg-port"`
	KBPGDatabase           string `mapstructure:"kb-pg-database"`
	KBPGUser               string `mapstructure:"kb-pg-user"`
	KBPGPassword           string `mapstructure:"kb-pg-password"`
	KBPGSSLMode            string `mapstructure:"kb-pg-sslmode"`
	OpenAIAPIKey           string `mapstructure:"openai-api-key"`
	LLMBaseURL             string `mapstructure:"llm-base-url"`
	LLMChatModel           string `mapstructure:"llm-chat-model"`
	LLMEmbeddingModel      string `mapstructure:"llm-embedding-model"`
	LLMEmbeddingDimensions int64  `mapstructure:"llm-embedding-dimensions"`
	HTTPAddr               string `mapstructure:"http-addr"`
	SessionTTLMinutes      int    `mapstructure:"session-ttl-minutes"`
	Voice                  string `mapstructure:"voice"`
	Analyze                bool   `mapstructure:"analyze"`
}

func Load() (*Config, error) {
	viper.SetEnvPrefix("")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	pflag.String("log-level", "warn", "Log level (debug, info, warn, error)")

	pflag.String("erp-host", "localhost", "ERP MySQL host")
	pflag.Int("erp-port", 3306, "ERP MySQL port")
	pflag.String("erp-database", "", "ERP MySQL database name")
	pflag.String("erp-user", "", "ERP MySQL username")
	pflag.String("erp-password", "", "ERP MySQL password")

	pflag.String("kb-pg-host", "localhost", "Knowledge base PostgreSQL host")
	pflag.Int("kb-pg-port", 5432, "Knowledge base PostgreSQL port")
	pflag.String("kb-pg-database", "semilla", "Knowledge base PostgreSQL database name")
	pflag.String("kb-pg-user", "", "Knowledge base PostgreSQL username")
	pflag.String("kb-pg-password", "", "Knowledge base PostgreSQL password")
	pflag.String("kb-pg-sslmode", "disable", "Knowledge base PostgreSQL SSL mode")

	pflag.String("openai-api-key", "", "OpenAI API key")
	pflag.String("llm-base-url", "", "Base URL for LLM API")
	pflag.String("llm-chat-model", "gpt-4o", "Chat model for LLM")
	pflag.String("llm-embedding-model", "text-embedding-ada-002", "Embedding model for LLM")
	pflag.Int64("llm-embedding-dimensions", 1536, "Embedding dimensions for LLM")

	pflag.String("http-addr", "", "HTTP listen address; empty runs the interactive console")
	pflag.Int("session-ttl-minutes", 30, "Minutes of inactivity before a conversation is forgotten")
	pflag.String("voice", "alloy", "TTS voice for spoken replies")
	pflag.Bool("analyze", false, "Narrate query results with a second LLM call")
	pflag.Parse()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return nil, fmt.Errorf("unable to bind pflags: %v", err)
	}

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %v", err)
	}

	return &cfg, nil
}

// ERPDSN builds the MySQL connection string for the ERP database.
func (c *Config) ERPDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.ERPUser, c.ERPPassword, c.ERPHost, c.ERPPort, c.ERPDatabase)
}

// KBDSN builds the PostgreSQL connection string for the knowledge base.
func (c *Config) KBDSN() string {
	return fmt.Sprintf("host='%s' port='%d' dbname='%s' user='%s' password='%s' sslmode='%s'",
		c.KBPGHost, c.KBPGPort, c.KBPGDatabase, c.KBPGUser, c.KBPGPassword, c.KBPGSSLMode)
}
