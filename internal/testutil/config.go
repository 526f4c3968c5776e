package testutil

import (
	"testing"
	"time"

	"github.com/teleperson/demo-generator/internal/config"
)

// NewConfig returns a config with working placeholder credentials, the
// filesystem page store in a per-test directory and a short client timeout.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{}
	cfg.HTTP.Addr = ":0"
	cfg.HTTP.ClientTimeout = 5 * time.Second
	cfg.Log.Level = "debug"
	cfg.Log.Format = "console"
	cfg.Perplexity.APIKey = "pplx-test"
	cfg.Perplexity.ResearchModel = "sonar-pro"
	cfg.Perplexity.ChatModel = "sonar"
	cfg.Langfuse.PublicKey = "pk-lf-test"
	cfg.Langfuse.SecretKey = "sk-lf-test"
	cfg.Storage.Driver = "fs"
	cfg.Storage.Dir = t.TempDir()
	cfg.Storage.RedisPrefix = "teleperson:prototype:"
	return cfg
}
