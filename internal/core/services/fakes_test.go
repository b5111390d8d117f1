package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driven"
)

// --- Mock implementations for service testing ---

var (
	_ driven.Exporter      = (*mockExporter)(nil)
	_ driven.RemoteClient  = (*mockRemote)(nil)
	_ driven.TokenCache    = (*mockTokenCache)(nil)
	_ driven.HistoryStore  = (*mockHistoryStore)(nil)
	_ driven.ChangeWatcher = (*mockWatcher)(nil)
	_ PayloadUploader      = (*mockUploader)(nil)
)

// writeExportFiles creates the three export files in dir.
func writeExportFiles(t *testing.T, dir, content string) domain.ExportResult {
	t.Helper()
	result := domain.ExportResult{
		StudentCoursePath:    filepath.Join(dir, domain.StudentCourseFile),
		StudentTimetablePath: filepath.Join(dir, domain.StudentTimetableFile),
		TimetablePath:        filepath.Join(dir, domain.TimetableFile),
		OutputDir:            dir,
	}
	for _, p := range result.Files() {
		require.NoError(t, os.WriteFile(p, []byte(content+filepath.Base(p)), 0644))
	}
	return result
}

// mockExporter returns a fixed result, optionally blocking until released.
type mockExporter struct {
	mu      sync.Mutex
	result  domain.ExportResult
	err     error
	panics  bool
	calls   int
	started chan struct{}
	release chan struct{}
}

func (m *mockExporter) Export(ctx context.Context, _, _ string) (domain.ExportResult, error) {
	m.mu.Lock()
	m.calls++
	started, release := m.started, m.release
	result, err, panics := m.result, m.err, m.panics
	m.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return domain.ExportResult{}, ctx.Err()
		}
	}
	if panics {
		panic("exporter exploded")
	}
	return result, err
}

func (m *mockExporter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockUploader records requests and returns scripted results.
type mockUploader struct {
	mu       sync.Mutex
	requests []domain.UploadRequest
	result   domain.UploadResult
	err      error
}

func (m *mockUploader) Upload(_ context.Context, req domain.UploadRequest) (domain.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return m.result, m.err
}

// mockRemote scripts login and upload answers.
type mockRemote struct {
	mu           sync.Mutex
	loginToken   string
	loginErr     error
	loginCalls   int
	uploadTokens []string
	uploadErrs   []error // consumed in order; nil entries succeed
	response     *domain.RemoteResponse
	seenHashes   map[string]bool
	dedupe       bool
}

func (m *mockRemote) Login(_ context.Context, creds domain.Credentials) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !creds.IsSet() {
		return "", nil
	}
	m.loginCalls++
	return m.loginToken, m.loginErr
}

func (m *mockRemote) Upload(_ context.Context, token string, payload domain.Payload) (*domain.RemoteResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadTokens = append(m.uploadTokens, token)

	if len(m.uploadErrs) > 0 {
		err := m.uploadErrs[0]
		m.uploadErrs = m.uploadErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	if m.dedupe {
		if m.seenHashes == nil {
			m.seenHashes = make(map[string]bool)
		}
		if m.seenHashes[payload.Hash] {
			return &domain.RemoteResponse{Status: domain.RemoteStatusSkipped, Reason: domain.ReasonDuplicate}, nil
		}
		m.seenHashes[payload.Hash] = true
	}
	if m.response != nil {
		r := *m.response
		return &r, nil
	}
	return &domain.RemoteResponse{Status: domain.RemoteStatusOK}, nil
}

func (m *mockRemote) tokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.uploadTokens...)
}

// mockTokenCache is an in-memory token cache.
type mockTokenCache struct {
	mu      sync.Mutex
	token   string
	saveErr error
	clears  int
	saved   []string
}

func (m *mockTokenCache) Load() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *mockTokenCache) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
	m.saved = append(m.saved, token)
	return nil
}

func (m *mockTokenCache) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.clears++
	return nil
}

func (m *mockTokenCache) Path() string { return "mock-token" }

// mockHistoryStore records saved snapshots.
type mockHistoryStore struct {
	mu      sync.Mutex
	initial []domain.HistoryEntry
	loadErr error
	saveErr error
	saves   [][]domain.HistoryEntry
	delay   time.Duration
}

func (m *mockHistoryStore) Load(_ context.Context) ([]domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.HistoryEntry(nil), m.initial...), m.loadErr
}

func (m *mockHistoryStore) Save(_ context.Context, entries []domain.HistoryEntry) error {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves = append(m.saves, append([]domain.HistoryEntry(nil), entries...))
	return m.saveErr
}

func (m *mockHistoryStore) last() []domain.HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saves) == 0 {
		return nil
	}
	return m.saves[len(m.saves)-1]
}

// mockWatcher lets tests inject file changes.
type mockWatcher struct {
	mu      sync.Mutex
	ch      chan domain.FileChange
	paths   []string
	watches int
	active  bool
	err     error
}

func newMockWatcher() *mockWatcher {
	return &mockWatcher{}
}

func (m *mockWatcher) Watch(ctx context.Context, paths []string) (<-chan domain.FileChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	// Unbuffered: emit returns once the consumer has received the change.
	ch := make(chan domain.FileChange)
	m.ch = ch
	m.paths = append([]string(nil), paths...)
	m.watches++
	m.active = true
	go func() {
		<-ctx.Done()
		m.mu.Lock()
		if m.ch == ch {
			m.active = false
		}
		m.mu.Unlock()
	}()
	return ch, nil
}

// emit hands a change to the consumer of the current watch channel.
func (m *mockWatcher) emit(path string, typ domain.ChangeType) error {
	m.mu.Lock()
	ch, active := m.ch, m.active
	m.mu.Unlock()
	if ch == nil || !active {
		return errors.New("not watching")
	}
	select {
	case ch <- domain.FileChange{Path: path, Type: typ, At: time.Now()}:
		return nil
	case <-time.After(time.Second):
		return errors.New("change not consumed")
	}
}

func (m *mockWatcher) watchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.watches
}

func (m *mockWatcher) isActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *mockWatcher) watchedPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}
