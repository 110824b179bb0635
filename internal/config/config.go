package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration, loaded once at startup.
type Config struct {
	Server      ServerConfig
	DB          DBConfig
	Redis       RedisConfig
	Logger      LoggerConfig
	JWT         JWTConfig
	GoogleOAuth GoogleOAuthConfig
	LLM         LLMConfig
	Embedding   EmbeddingConfig
	CacheTTLs   CacheTTLConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type LoggerConfig struct {
	Env   string
	Level string
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// LLMConfig configures the two assessment capabilities. Validation and
// analysis run against separate models with separate deadlines.
type LLMConfig struct {
	Provider          string // "openai" or "ollama"
	OpenAIAPIKey      string
	ValidationModel   string
	AnalysisModel     string
	OllamaServerURL   string
	OllamaModel       string
	ValidationTimeout time.Duration
	AnalysisTimeout   time.Duration
	FailOpen          bool
}

type EmbeddingConfig struct {
	Source              string // "openai" or "ollama"
	SimilarityThreshold float64
	OpenAI              OpenAIEmbeddingConfig
	Ollama              OllamaEmbeddingConfig
}

type OpenAIEmbeddingConfig struct {
	APIKey string
	Model  string
}

type OllamaEmbeddingConfig struct {
	ServerURL string
	Model     string
}

type CacheTTLConfig struct {
	Assessments time.Duration
	Embeddings  time.Duration
	Catalog     time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Add config paths based on environment
	if os.Getenv("ENV") == "test" {
		// For test environment, look for config in the project root
		viper.AddConfigPath("../../configs")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
	}

	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", 20)
	viper.SetDefault("server.write_timeout", 20)
	viper.SetDefault("logger.env", "development")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("jwt.access_token_ttl", "15m")
	viper.SetDefault("jwt.refresh_token_ttl", "168h")
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.validation_model", "gpt-4o-mini")
	viper.SetDefault("llm.analysis_model", "gpt-4o")
	viper.SetDefault("llm.validation_timeout", "30s")
	viper.SetDefault("llm.analysis_timeout", "45s")
	viper.SetDefault("llm.fail_open", true)
	viper.SetDefault("embedding.similarity_threshold", 0.95)
	viper.SetDefault("cache_ttls.assessments", "24h")
	viper.SetDefault("cache_ttls.embeddings", "168h")
	viper.SetDefault("cache_ttls.catalog", "10m")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetInt("db.port"),
			User:     viper.GetString("db.user"),
			Password: viper.GetString("db.password"),
			DBName:   viper.GetString("db.name"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Logger: LoggerConfig{
			Env:   viper.GetString("logger.env"),
			Level: viper.GetString("logger.level"),
		},
		JWT: JWTConfig{
			SecretKey:       viper.GetString("jwt.secret_key"),
			AccessTokenTTL:  viper.GetDuration("jwt.access_token_ttl"),
			RefreshTokenTTL: viper.GetDuration("jwt.refresh_token_ttl"),
		},
		GoogleOAuth: GoogleOAuthConfig{
			ClientID:     viper.GetString("google_oauth.client_id"),
			ClientSecret: viper.GetString("google_oauth.client_secret"),
			RedirectURL:  viper.GetString("google_oauth.redirect_url"),
		},
		LLM: LLMConfig{
			Provider:          viper.GetString("llm.provider"),
			OpenAIAPIKey:      viper.GetString("llm.openai_api_key"),
			ValidationModel:   viper.GetString("llm.validation_model"),
			AnalysisModel:     viper.GetString("llm.analysis_model"),
			OllamaServerURL:   viper.GetString("llm.ollama_server_url"),
			OllamaModel:       viper.GetString("llm.ollama_model"),
			ValidationTimeout: viper.GetDuration("llm.validation_timeout"),
			AnalysisTimeout:   viper.GetDuration("llm.analysis_timeout"),
			FailOpen:          viper.GetBool("llm.fail_open"),
		},
		Embedding: EmbeddingConfig{
			Source:              viper.GetString("embedding.source"),
			SimilarityThreshold: viper.GetFloat64("embedding.similarity_threshold"),
			OpenAI: OpenAIEmbeddingConfig{
				APIKey: viper.GetString("embedding.openai.api_key"),
				Model:  viper.GetString("embedding.openai.model"),
			},
			Ollama: OllamaEmbeddingConfig{
				ServerURL: viper.GetString("embedding.ollama.server_url"),
				Model:     viper.GetString("embedding.ollama.model"),
			},
		},
		CacheTTLs: CacheTTLConfig{
			Assessments: viper.GetDuration("cache_ttls.assessments"),
			Embeddings:  viper.GetDuration("cache_ttls.embeddings"),
			Catalog:     viper.GetDuration("cache_ttls.catalog"),
		},
	}

	// Override with environment variables if set
	if host := os.Getenv("DB_HOST"); host != "" {
		config.DB.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		config.DB.Port = viper.GetInt("DB_PORT")
	}
	if user := os.Getenv("DB_USER"); user != "" {
		config.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.DB.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		config.DB.DBName = dbname
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		config.JWT.SecretKey = secret
	}
	if clientID := os.Getenv("GOOGLE_CLIENT_ID"); clientID != "" {
		config.GoogleOAuth.ClientID = clientID
	}
	if clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET"); clientSecret != "" {
		config.GoogleOAuth.ClientSecret = clientSecret
	}
	if openAIKey := os.Getenv("OPENAI_API_KEY"); openAIKey != "" {
		config.LLM.OpenAIAPIKey = openAIKey
		if config.Embedding.OpenAI.APIKey == "" {
			config.Embedding.OpenAI.APIKey = openAIKey
		}
	}

	return config, nil
}

func (c *Config) GetDSN() string {
	// Oracle DSN format: user/password@host:port/service
	return fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.DBName,
	)
}
