package testsupport

import (
	"testing"

	"unveil/internal/config"
	"unveil/internal/recogcache"
)

// MustOpenCache opens the recognition cache for tests and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *recogcache.Store {
	t.Helper()

	store, err := recogcache.Open(cfg.Cache.Path)
	if err != nil {
		t.Fatalf("recogcache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
