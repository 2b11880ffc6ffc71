package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore returns a store in a temp dir with the given environment.
func newTestStore(t *testing.T, env map[string]string) *ConfigStore {
	t.Helper()

	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	store.lookup = func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "deep")

	store, err := NewConfigStore(nestedPath)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(nestedPath, "config.toml"), store.Path())

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not toml {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newTestStore(t, nil)
	require.NoError(t, store.Set("search.ranker", "cross_encoder"))
	require.NoError(t, store.Set("search.k", 8))
	require.NoError(t, store.Set("cache.enabled", true))
	require.NoError(t, store.Set("pipeline.processors", []string{"summary", "chunker"}))

	assert.Equal(t, "cross_encoder", store.GetString("search.ranker"))
	assert.Equal(t, 8, store.GetInt("search.k"))
	assert.True(t, store.GetBool("cache.enabled"))
	assert.Equal(t, []string{"summary", "chunker"}, store.GetStringSlice("pipeline.processors"))

	// Wrong types read as zero values.
	assert.Empty(t, store.GetString("search.k"))
	assert.Zero(t, store.GetInt("search.ranker"))
	assert.False(t, store.GetBool("search.ranker"))
	assert.Nil(t, store.GetStringSlice("search.k"))

	_, ok := store.Get("missing.key")
	assert.False(t, ok)
}

func TestConfigStore_Persistence_NestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("search.k", 8))
	require.NoError(t, store.Set("search.browse_max_distance", 0.45))
	require.NoError(t, store.Set("llm.provider", "openai"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[search]")
	assert.Contains(t, string(raw), "[llm]")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 8, reloaded.GetInt("search.k"))
	assert.Equal(t, "openai", reloaded.GetString("llm.provider"))
	val, ok := reloaded.Get("search.browse_max_distance")
	require.True(t, ok)
	assert.InDelta(t, 0.45, val, 1e-9)
}

func TestConfigStore_Load_HandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := "[search]\nk = 12\nranker = \"none\"\n\n[reranker]\nprovider = \"tei\"\nbase_url = \"http://localhost:8081\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, 12, store.GetInt("search.k"))
	assert.Equal(t, "none", store.GetString("search.ranker"))
	assert.Equal(t, "tei", store.GetString("reranker.provider"))
	assert.Equal(t, "http://localhost:8081", store.GetString("reranker.base_url"))
}

func TestConfigStore_Load_CommentOnlyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("# Just a comment\n\n"), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_, ok := store.Get("any_key")
	assert.False(t, ok)
}

func TestConfigStore_EnvironmentFallback(t *testing.T) {
	store := newTestStore(t, map[string]string{
		"SAMPANN_LLM_API_KEY":  "sk-env",
		"SAMPANN_SEARCH_K":     "7",
		"SAMPANN_CACHE_ON":     "true",
		"SAMPANN_PIPELINE_SET": "summary, chunker",
		"OPENAI_API_KEY":       "sk-openai",
		"DATABASE_URL":         "postgres://localhost/sampann",
	})

	assert.Equal(t, "sk-env", store.GetString("llm.api_key"))
	assert.Equal(t, 7, store.GetInt("search.k"))
	assert.True(t, store.GetBool("cache.on"))
	assert.Equal(t, []string{"summary", "chunker"}, store.GetStringSlice("pipeline.set"))
	assert.Equal(t, "sk-openai", store.GetString("embedding.api_key"))
	assert.Equal(t, "postgres://localhost/sampann", store.GetString("storage.dsn"))

	require.NoError(t, store.Set("llm.api_key", "sk-file"))
	assert.Equal(t, "sk-file", store.GetString("llm.api_key"), "file values win")
}

func TestConfigStore_EnvironmentFallback_PrefixedBeatsAlias(t *testing.T) {
	store := newTestStore(t, map[string]string{
		"SAMPANN_EMBEDDING_API_KEY": "sk-prefixed",
		"OPENAI_API_KEY":            "sk-openai",
		"REDIS_ADDR":                "",
	})

	assert.Equal(t, "sk-prefixed", store.GetString("embedding.api_key"))
	_, ok := store.Get("cache.redis_addr")
	assert.False(t, ok, "empty variables are ignored")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "SAMPANN_SEARCH_CE_K", EnvKey("search.ce_k"))
	assert.Equal(t, "SAMPANN_LLM_BASE_URL", EnvKey("llm.base-url"))
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store := newTestStore(t, nil)

	err := store.Set("channel", make(chan int))

	assert.Error(t, err)
	_, ok := store.Get("channel")
	assert.False(t, ok, "failed writes are rolled back")
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store := newTestStore(t, nil)
	require.NoError(t, store.Set("search.k", 5))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("search.k", 6))
	assert.Equal(t, 5, store.GetInt("search.k"))
	assert.Error(t, store.Save())
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newTestStore(t, nil)
	require.NoError(t, store.Set("llm.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newTestStore(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("search.k", n)
			_ = store.GetInt("search.k")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("search.k")
	assert.True(t, ok)
}

func TestNestMap(t *testing.T) {
	nested := nestMap(map[string]any{
		"search.k":      5,
		"search.ranker": "none",
		"top":           true,
	})

	assert.Equal(t, map[string]any{
		"search": map[string]any{"k": 5, "ranker": "none"},
		"top":    true,
	}, nested)
	assert.Equal(t, map[string]any{"search.k": 5, "search.ranker": "none", "top": true}, flattenMap(nested, ""))
}
