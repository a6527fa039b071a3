package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_ENV", "HTTP_ADDR", "REDIS_URL", "REDIS_KEY_PREFIX",
	"STORE_BACKEND", "SQLITE_PATH", "STORE_SEED_FILE",
	"SESSION_BACKEND", "SESSION_TIMEOUT",
	"COMMERCE_UNIT_PRICE", "COMMERCE_RESTOCK_LEVEL", "COMMERCE_SEARCH_LIMIT",
	"GEMINI_API_KEY", "GEMINI_BASE_URL", "CLASSIFIER_MODEL", "CLASSIFIER_MIN_CONFIDENCE", "CLASSIFIER_TIMEOUT",
}

// cleanEnv unsets every config variable for the duration of the test and
// marks the run as a test environment.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		if v, ok := os.LookupEnv(k); ok {
			require.NoError(t, os.Unsetenv(k))
			t.Cleanup(func() { _ = os.Setenv(k, v) })
		}
	}
	t.Setenv("APP_ENV", "testing")
	t.Chdir(t.TempDir())
}

func TestLoadConfigDefaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Session.Timeout)
	assert.Equal(t, 20, cfg.Commerce.UnitPrice)
	assert.Equal(t, 20, cfg.Commerce.RestockLevel)
	assert.Equal(t, 10, cfg.Commerce.SearchLimit)
	assert.Equal(t, "bookstore", cfg.Redis.KeyPrefix)
	assert.False(t, cfg.Classifier.Enabled())
	assert.InDelta(t, 0.5, cfg.Classifier.MinConfidence, 1e-9)
}

func TestLoadConfigOverrides(t *testing.T) {
	cleanEnv(t)
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SESSION_TIMEOUT", "5m")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Session.Timeout)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	cleanEnv(t)
	t.Setenv("STORE_BACKEND", "postgres")

	_, err := loadConfig()
	assert.ErrorContains(t, err, "STORE_BACKEND")
}

func TestChatCommand(t *testing.T) {
	cleanEnv(t)

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetArgs([]string{"chat", "--name", "Ada"})
	root.SetIn(strings.NewReader("buy\nDune, 5 copies\nexit\n"))
	root.SetOut(&out)

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Hello Ada!")
	assert.Contains(t, out.String(), "Purchase successful!")
	assert.Contains(t, out.String(), "Remaining credits: 0")
}

func TestSeedCommand(t *testing.T) {
	cleanEnv(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "books.db")
	seedPath := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(`
books:
  - title: Solaris
    author: Stanislaw Lem
    quantity: 4
accounts:
  - user_id: 9
    balance: 40
`), 0o600))
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", dbPath)

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetArgs([]string{"seed", seedPath})
	root.SetOut(&out)
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Seeded 1 books and 1 accounts into sqlite store")

	s, err := repo.OpenSQLite(dbPath)
	require.NoError(t, err)
	defer s.Close()
	b, ok, err := s.GetBook(context.Background(), "solaris")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, b.Quantity)
}

func TestSeedCommandRejectsMemoryStore(t *testing.T) {
	cleanEnv(t)

	root := NewRootCmd()
	root.SetArgs([]string{"seed"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.ExecuteContext(context.Background()))
}
