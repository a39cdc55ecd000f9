package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	LLM       LLMConfig
	Knowledge KnowledgeConfig
	Retrieval RetrievalConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
	CORSOrigins  string
}

type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

type KnowledgeConfig struct {
	// Paths is searched in order; the first existing directory wins.
	Paths       []string
	DefaultPath string
}

type RetrievalConfig struct {
	TopK         int
	ChunkSize    int
	ChunkOverlap int
	MaxChunkHard int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	// Empty host disables the reply cache.
	Host     string
	Port     int
	Password string
	DB       int
	TTLSec   int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/fitness-coach")

	viper.SetEnvPrefix("FITNESS_COACH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)
	viper.SetDefault("server.corsOrigins", "*")

	viper.SetDefault("llm.provider", "openrouter")
	viper.SetDefault("llm.apiKey", "")
	viper.SetDefault("llm.model", "meta-llama/llama-3.1-8b-instruct")
	viper.SetDefault("llm.baseURL", "")
	viper.SetDefault("llm.temperature", 0.55)
	viper.SetDefault("llm.maxTokens", 500)
	viper.SetDefault("llm.timeoutSec", 30)

	viper.SetDefault("knowledge.paths", []string{"knowledge_base", "../knowledge_base", "./data/knowledge_base"})
	viper.SetDefault("knowledge.defaultPath", "knowledge_base")

	viper.SetDefault("retrieval.topK", 4)
	viper.SetDefault("retrieval.chunkSize", 900)
	viper.SetDefault("retrieval.chunkOverlap", 150)
	viper.SetDefault("retrieval.maxChunkHard", 1200)

	viper.SetDefault("sqlite.path", "./data/coach.db")

	viper.SetDefault("redis.host", "")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlSec", 300)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
