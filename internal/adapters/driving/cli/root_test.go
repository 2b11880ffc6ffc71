package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driving"
)

// mockSearchService implements driving.SearchService and records requests.
type mockSearchService struct {
	result   *domain.SearchResult
	err      error
	requests []domain.SearchRequest
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.SearchResult{}, nil
}

func (m *mockSearchService) last() domain.SearchRequest {
	if len(m.requests) == 0 {
		return domain.SearchRequest{}
	}
	return m.requests[len(m.requests)-1]
}

// mockCompareService implements driving.CompareService.
type mockCompareService struct {
	result  *domain.Comparison
	err     error
	query   string
	targets [2]string
}

func (m *mockCompareService) Compare(_ context.Context, query string) (*domain.Comparison, error) {
	m.query = query
	return m.result, m.err
}

func (m *mockCompareService) CompareTargets(_ context.Context, targets [2]string) (*domain.Comparison, error) {
	m.targets = targets
	return m.result, m.err
}

// mockAssistantService implements driving.AssistantService.
type mockAssistantService struct {
	answer   *domain.Answer
	err      error
	messages []string
}

func (m *mockAssistantService) Ask(_ context.Context, message string) (*domain.Answer, error) {
	m.messages = append(m.messages, message)
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

// mockCatalogService implements driving.CatalogService.
type mockCatalogService struct {
	stats *domain.CatalogStats
}

func (m *mockCatalogService) Product(_ context.Context, _ string) (*domain.ProductCard, error) {
	return nil, domain.ErrNotFound
}

func (m *mockCatalogService) Products(_ context.Context, _ string) ([]domain.ProductCard, error) {
	return nil, nil
}

func (m *mockCatalogService) Stats(_ context.Context) (*domain.CatalogStats, error) {
	if m.stats == nil {
		return &domain.CatalogStats{}, nil
	}
	return m.stats, nil
}

// mockSettingsService implements driving.SettingsService over an in-memory copy.
type mockSettingsService struct {
	settings    *domain.AppSettings
	getErr      error
	setErr      error
	set         map[string]string
	embedErr    error
	rerankerErr error
	llmErr      error
}

func newMockSettingsService() *mockSettingsService {
	settings := domain.DefaultAppSettings()
	return &mockSettingsService{
		settings: &settings,
		set:      make(map[string]string),
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.settings, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = s
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"search.k", "embedding.provider", "llm.api_key"}
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.embedErr }
func (m *mockSettingsService) ValidateRerankerConfig() error  { return m.rerankerErr }
func (m *mockSettingsService) ValidateLLMConfig() error       { return m.llmErr }

// mockIngestService implements driving.IngestService and reports progress.
type mockIngestService struct {
	stats    *domain.IngestStats
	err      error
	progress func(done, total int)
	paths    []string
}

func (m *mockIngestService) IngestFile(_ context.Context, path string) (*domain.IngestStats, error) {
	m.paths = append(m.paths, path)
	if m.progress != nil {
		m.progress(1, 2)
		m.progress(2, 2)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

func (m *mockIngestService) Ingest(_ context.Context, _ io.Reader) (*domain.IngestStats, error) {
	return m.stats, m.err
}

// mockResultCache implements driven.ResultCache and counts flushes.
type mockResultCache struct {
	flushes  int
	flushErr error
}

func (m *mockResultCache) Get(_ context.Context, _ string) (*domain.SearchResult, error) {
	return nil, domain.ErrNotFound
}

func (m *mockResultCache) Set(_ context.Context, _ string, _ *domain.SearchResult, _ time.Duration) error {
	return nil
}

func (m *mockResultCache) Flush(_ context.Context) error {
	m.flushes++
	return m.flushErr
}

func (m *mockResultCache) Close() error { return nil }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	search    *mockSearchService
	compare   *mockCompareService
	assistant *mockAssistantService
	catalog   *mockCatalogService
	settings  *mockSettingsService
	ingest    *mockIngestService
	cache     *mockResultCache
}

// setupTestServices installs mocks in the package variables, clears any
// bootstrap and resets flags left over from earlier Execute calls.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		search:    &mockSearchService{},
		compare:   &mockCompareService{},
		assistant: &mockAssistantService{},
		catalog:   &mockCatalogService{},
		settings:  newMockSettingsService(),
		ingest:    &mockIngestService{stats: &domain.IngestStats{}},
		cache:     &mockResultCache{},
	}

	searchService = ts.search
	compareService = ts.compare
	assistantService = ts.assistant
	catalogService = ts.catalog
	settingsService = ts.settings
	ingestFactory = func(progress func(done, total int)) driving.IngestService {
		ts.ingest.progress = progress
		return ts.ingest
	}
	resultCache = ts.cache
	rerankerAvailable = func() bool { return false }
	SetBootstrap(nil)
	resetFlags(rootCmd)

	return ts, func() {
		searchService = nil
		compareService = nil
		assistantService = nil
		catalogService = nil
		settingsService = nil
		ingestFactory = nil
		resultCache = nil
		rerankerAvailable = nil
		SetBootstrap(nil)
		resetFlags(rootCmd)
	}
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the root command with args and returns combined output.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"search", "compare", "ask", "ingest", "serve", "mcp", "settings", "tui", "version"} {
		assert.True(t, names[want], "%s command should be registered", want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	v := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, v)
	assert.Equal(t, "v", v.Shorthand)

	timeout := rootCmd.PersistentFlags().Lookup("timeout")
	require.NotNil(t, timeout)
	assert.Equal(t, "0s", timeout.DefValue)
}

func TestLoadServices_RunsBootstrapOnce(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	search := &mockSearchService{result: &domain.SearchResult{}}
	calls := 0
	SetBootstrap(func(_ context.Context) (*Services, error) {
		calls++
		return &Services{
			Search:   search,
			Warnings: []string{"re-ranker unavailable"},
		}, nil
	})

	out, err := executeCommand("search", "kaju")
	require.NoError(t, err)
	_, err = executeCommand("search", "badam")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Len(t, search.requests, 2)
	assert.Contains(t, out, "Warning: re-ranker unavailable")
}

func TestLoadServices_BootstrapErrorIsSticky(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	bootErr := errors.New("embedder unreachable")
	calls := 0
	SetBootstrap(func(_ context.Context) (*Services, error) {
		calls++
		return nil, bootErr
	})

	_, err := executeCommand("search", "kaju")
	require.ErrorIs(t, err, bootErr)
	_, err = executeCommand("ask", "hello")
	require.ErrorIs(t, err, bootErr)

	assert.Equal(t, 1, calls)
}

func TestCloseServices(t *testing.T) {
	closed := false
	loaded = &Services{Close: func() error {
		closed = true
		return nil
	}}

	closeServices()

	assert.True(t, closed)
	assert.Nil(t, loaded)
}

func TestCommandContext_AppliesTimeout(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	commandTimeout = 50 * time.Millisecond
	ctx, cancel := commandContext(rootCmd)
	defer cancel()

	_, ok := ctx.Deadline()
	assert.True(t, ok)

	commandTimeout = 0
	ctx2, cancel2 := commandContext(rootCmd)
	defer cancel2()

	_, ok = ctx2.Deadline()
	assert.False(t, ok)
}

func TestSetVersion_IgnoresEmpty(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)

	SetVersion("")
	assert.Equal(t, "1.2.3", version)
}

func TestErrNotConfigured(t *testing.T) {
	assert.EqualError(t, errNotConfigured("search"), "search service not configured")
}
