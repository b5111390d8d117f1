package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/gmacarthur/innersync-desktop/internal/adapters/driven/storage/memory"
	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driven"
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driving"
)

var (
	_ driving.SyncService = (*mockSyncService)(nil)
	_ driven.RemoteClient = (*mockRemote)(nil)
)

// mockSyncService records lifecycle calls and returns a scripted result.
type mockSyncService struct {
	mu       sync.Mutex
	result   domain.RunResult
	syncErr  error
	startErr error
	starts   int
	stops    int
	reasons  []string
}

func (m *mockSyncService) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts++
	return m.startErr
}

func (m *mockSyncService) Stop(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	return nil
}

func (m *mockSyncService) Pause(_ context.Context) error  { return nil }
func (m *mockSyncService) Resume(_ context.Context) error { return nil }

func (m *mockSyncService) TriggerSync(_ context.Context, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reasons = append(m.reasons, reason)
	return nil
}

func (m *mockSyncService) SyncNow(_ context.Context, reason string) (domain.RunResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reasons = append(m.reasons, reason)
	return m.result, m.syncErr
}

func (m *mockSyncService) UpdateWatchFiles(_ context.Context, _ []string) error { return nil }
func (m *mockSyncService) Status() domain.SyncStatus                           { return domain.SyncStatus{} }
func (m *mockSyncService) History() []domain.HistoryEntry                      { return nil }
func (m *mockSyncService) ClearHistory(_ context.Context) error                { return nil }

func (m *mockSyncService) Subscribe(_ int) (<-chan domain.Event, func()) {
	ch := make(chan domain.Event)
	close(ch)
	return ch, func() {}
}

// mockRemote answers logins with a fixed token.
type mockRemote struct {
	token string
	err   error
	creds []domain.Credentials
}

func (m *mockRemote) Login(_ context.Context, creds domain.Credentials) (string, error) {
	m.creds = append(m.creds, creds)
	return m.token, m.err
}

func (m *mockRemote) Upload(_ context.Context, _ string, _ domain.Payload) (*domain.RemoteResponse, error) {
	return &domain.RemoteResponse{Status: domain.RemoteStatusOK}, nil
}

// testEnv is the runtime handed to commands by the test bootstrap.
type testEnv struct {
	settings  *memory.ConfigStore
	sync      *mockSyncService
	history   *memory.HistoryStore
	tokens    *memory.TokenCache
	remote    *mockRemote
	scheduler driving.Scheduler
	cfg       domain.SyncConfig
	opts      []BuildOptions
	configDir string
	closes    int
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		settings: memory.NewConfigStore(nil),
		sync:     &mockSyncService{result: domain.RunResult{Status: domain.RunSuccess}},
		history:  memory.NewHistoryStore(),
		tokens:   memory.NewTokenCache(""),
		remote:   &mockRemote{token: "tok-new"},
		cfg: domain.SyncConfig{
			BaseDir:      "/data",
			SourcePath:   "/data/Timetable.tfx",
			OutputDir:    "/data/exports",
			WatchFiles:   []string{"/data/Timetable.tfx"},
			Debounce:     domain.DefaultDebounce,
			HistoryLimit: domain.DefaultHistoryLimit,
			APIBaseURL:   domain.DefaultAPIBaseURL,
		},
	}

	old := bootstrap
	SetBootstrap(&Bootstrap{
		OpenSettings: func(dir string) (driven.ConfigStore, error) {
			env.configDir = dir
			return env.settings, nil
		},
		Build: func(_ driven.ConfigStore, opts BuildOptions) (*Runtime, error) {
			env.opts = append(env.opts, opts)
			return &Runtime{
				Config:    env.cfg,
				Sync:      env.sync,
				Scheduler: env.scheduler,
				History:   env.history,
				Tokens:    env.tokens,
				Remote:    env.remote,
				Close: func() error {
					env.closes++
					return nil
				},
			}, nil
		},
	})
	t.Cleanup(func() { bootstrap = old })
	return env
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		configDir = ""
		verbose = false
		resetFlags(rootCmd)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so tests do not leak
// values into each other.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func requireContainsAll(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		require.Contains(t, out, w)
	}
}
