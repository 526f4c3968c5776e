package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultPerplexityBaseURL = "https://api.perplexity.ai/"
	DefaultLangfuseHost      = "https://cloud.langfuse.com"
)

type Config struct {
	HTTP struct {
		Addr          string
		ClientTimeout time.Duration
	}
	Log struct {
		Level  string
		Format string
	}
	Perplexity struct {
		APIKey        string
		BaseURL       string
		ResearchModel string
		ChatModel     string
	}
	Langfuse struct {
		PublicKey string
		SecretKey string
		Host      string
	}
	Storage struct {
		Driver        string
		Dir           string
		Ephemeral     bool
		RedisAddr     string
		RedisPassword string
		RedisDB       int
		RedisPrefix   string
	}
	Research struct {
		RepairJSON     bool
		FetchSiteHints bool
	}
}

// Load reads a .env file when present, then config from environment
// (TELEPERSON_ prefix, plus the bare provider variable names) and an optional
// teleperson-demo.yaml.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TELEPERSON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("teleperson-demo")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	_ = v.BindEnv("perplexity.api_key", "TELEPERSON_PERPLEXITY_API_KEY", "PERPLEXITY_API_KEY")
	_ = v.BindEnv("langfuse.public_key", "TELEPERSON_LANGFUSE_PUBLIC_KEY", "LANGFUSE_PUBLIC_KEY")
	_ = v.BindEnv("langfuse.secret_key", "TELEPERSON_LANGFUSE_SECRET_KEY", "LANGFUSE_SECRET_KEY")
	_ = v.BindEnv("langfuse.host", "TELEPERSON_LANGFUSE_HOST", "LANGFUSE_HOST")
	_ = v.BindEnv("storage.ephemeral", "TELEPERSON_STORAGE_EPHEMERAL", "VERCEL")

	v.SetDefault("http.addr", ":3000")
	v.SetDefault("http.client_timeout", "60s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("perplexity.base_url", DefaultPerplexityBaseURL)
	v.SetDefault("perplexity.research_model", "sonar-pro")
	v.SetDefault("perplexity.chat_model", "sonar")
	v.SetDefault("langfuse.host", DefaultLangfuseHost)
	v.SetDefault("storage.driver", "fs")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_prefix", "teleperson:prototype:")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")
	cfg.Perplexity.APIKey = v.GetString("perplexity.api_key")
	cfg.Perplexity.BaseURL = v.GetString("perplexity.base_url")
	cfg.Perplexity.ResearchModel = v.GetString("perplexity.research_model")
	cfg.Perplexity.ChatModel = v.GetString("perplexity.chat_model")
	cfg.Langfuse.PublicKey = v.GetString("langfuse.public_key")
	cfg.Langfuse.SecretKey = v.GetString("langfuse.secret_key")
	cfg.Langfuse.Host = strings.TrimRight(v.GetString("langfuse.host"), "/")
	cfg.Storage.Driver = v.GetString("storage.driver")
	cfg.Storage.Ephemeral = truthy(v.GetString("storage.ephemeral"))
	cfg.Storage.Dir = v.GetString("storage.dir")
	cfg.Storage.RedisAddr = v.GetString("storage.redis_addr")
	cfg.Storage.RedisPassword = v.GetString("storage.redis_password")
	cfg.Storage.RedisDB = v.GetInt("storage.redis_db")
	cfg.Storage.RedisPrefix = v.GetString("storage.redis_prefix")
	cfg.Research.RepairJSON = v.GetBool("research.repair_json")
	cfg.Research.FetchSiteHints = v.GetBool("research.fetch_site_hints")

	timeout, err := time.ParseDuration(v.GetString("http.client_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEPERSON_HTTP_CLIENT_TIMEOUT: %w", err)
	}
	cfg.HTTP.ClientTimeout = timeout

	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = PrototypeDir(cfg.Storage.Ephemeral)
	}

	switch cfg.Storage.Driver {
	case "fs", "redis":
	default:
		return nil, fmt.Errorf("TELEPERSON_STORAGE_DRIVER must be fs or redis, got %q", cfg.Storage.Driver)
	}

	return cfg, nil
}

// PrototypeDir returns where rendered pages live: a temporary directory on
// ephemeral-filesystem deployments, ./prototypes otherwise.
func PrototypeDir(ephemeral bool) string {
	if ephemeral {
		return filepath.Join(os.TempDir(), "prototypes")
	}
	return "prototypes"
}

// IsPlaceholder reports whether a credential is unset or still holds a
// template value such as "your_perplexity_api_key_here".
func IsPlaceholder(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return true
	}
	return strings.HasPrefix(v, "your_") && strings.HasSuffix(v, "_here")
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
