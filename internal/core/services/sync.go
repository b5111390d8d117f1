package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driven"
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driving"
	"github.com/gmacarthur/innersync-desktop/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncService = (*SyncOrchestrator)(nil)

// runOutcome is posted by the pipeline worker when a run completes.
type runOutcome struct {
	trigger string
	result  domain.RunResult
}

// waitResult is delivered to SyncNow callers.
type waitResult struct {
	result domain.RunResult
	err    error
}

// SyncOrchestrator coordinates export-then-upload runs.
//
// All engine state (run state, pending trigger, watch set, waiters) is owned
// by a single event-loop goroutine. Public methods send closures to the loop
// and wait for them to run, so state is never mutated concurrently. At most
// one pipeline worker runs at a time.
type SyncOrchestrator struct {
	cfg      domain.SyncConfig
	exporter driven.Exporter
	uploader PayloadUploader
	watcher  driven.ChangeWatcher
	history  *HistoryLog
	events   *Broadcaster

	cmds    chan func()
	results chan runOutcome
	done    chan struct{}

	// runCtx is handed to pipeline runs and watchers; it outlives Stop's
	// caller so an in-flight run can finish.
	runCtx    context.Context
	cancelRun context.CancelFunc
	wg        sync.WaitGroup

	// Snapshot of the last published status, readable from any goroutine.
	mu       sync.RWMutex
	snapshot domain.SyncStatus
	started  bool

	// Loop-owned state below. Never touch outside the event loop.
	state        domain.RunState
	paused       bool
	running      bool
	stopping     bool
	exit         bool
	lastRun      time.Time
	lastResult   *domain.RunResult
	watchFiles   []string
	pendingWatch []string
	watchCh      <-chan domain.FileChange
	stopWatch    context.CancelFunc
	deb          debounceState
	nextWaiters  []chan waitResult
	runWaiters   []chan waitResult
}

// NewSyncOrchestrator creates a sync orchestrator for a resolved configuration.
// watcher may be nil, in which case only manual and scheduled triggers run.
func NewSyncOrchestrator(
	cfg domain.SyncConfig,
	exporter driven.Exporter,
	uploader PayloadUploader,
	watcher driven.ChangeWatcher,
	history *HistoryLog,
) *SyncOrchestrator {
	if history == nil {
		history = NewHistoryLog(nil, cfg.HistoryLimit)
	}
	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	}
	o := &SyncOrchestrator{
		cfg:        cfg,
		exporter:   exporter,
		uploader:   uploader,
		watcher:    watcher,
		history:    history,
		events:     NewBroadcaster(),
		cmds:       make(chan func()),
		results:    make(chan runOutcome, 1),
		done:       make(chan struct{}),
		state:      domain.StateIdle,
		watchFiles: cfg.WatchSet(),
	}
	o.snapshot = o.buildStatus()
	return o
}

// Start loads history, begins watching and performs an initial run.
func (o *SyncOrchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return domain.ErrAlreadyStarted
	}
	o.started = true
	o.mu.Unlock()

	logger.Section("Sync engine")
	if err := o.history.Load(ctx); err != nil {
		logger.Error("%v", err)
	}

	o.runCtx, o.cancelRun = context.WithCancel(context.Background())
	o.startWatching()
	o.publish(domain.EventStatus)

	go o.loop()

	if o.cfg.SkipStartupRun {
		return nil
	}
	return o.do(ctx, func() error {
		o.scheduleRun(domain.TriggerStartup, true)
		return nil
	})
}

// Stop halts watching and cancels a pending debounce timer. An in-flight
// run is allowed to finish; Stop returns once the engine has stopped or
// ctx is done.
func (o *SyncOrchestrator) Stop(ctx context.Context) error {
	select {
	case <-o.done:
		return nil
	default:
	}

	err := o.do(ctx, func() error {
		if o.stopping {
			return nil
		}
		logger.Info("Stopping sync engine")
		o.stopping = true
		o.deb.stopTimer()
		o.unwatch()
		o.failWaiters(domain.ErrStopped)
		if !o.running {
			o.finishStop()
		} else {
			logger.Info("Waiting for in-flight run to finish")
		}
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrStopped) {
		return err
	}

	select {
	case <-o.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pause stops accepting triggers. The pending trigger and history are kept,
// and the watcher is released until Resume.
func (o *SyncOrchestrator) Pause(ctx context.Context) error {
	return o.do(ctx, func() error {
		if o.paused {
			return nil
		}
		logger.Info("Sync paused")
		o.paused = true
		o.deb.stopTimer()
		o.unwatch()
		o.failWaiters(domain.ErrSyncPaused)
		o.publish(domain.EventStatus)
		return nil
	})
}

// Resume accepts triggers again. A trigger left pending by Pause is
// re-armed for a full debounce window.
func (o *SyncOrchestrator) Resume(ctx context.Context) error {
	return o.do(ctx, func() error {
		if !o.paused {
			return nil
		}
		logger.Info("Sync resumed")
		o.paused = false
		o.startWatching()
		if o.deb.pending && !o.running {
			o.deb.arm(o.cfg.Debounce, o.deb.reason)
		}
		o.publish(domain.EventStatus)
		return nil
	})
}

// TriggerSync requests an immediate run. A trigger dropped while paused is
// logged and is not an error.
func (o *SyncOrchestrator) TriggerSync(ctx context.Context, reason string) error {
	if reason == "" {
		reason = domain.TriggerManual
	}
	return o.do(ctx, func() error {
		o.scheduleRun(reason, true)
		return nil
	})
}

// SyncNow triggers an immediate run and waits for its result. If a run is
// in flight, the result is that of the run started after it.
func (o *SyncOrchestrator) SyncNow(ctx context.Context, reason string) (domain.RunResult, error) {
	if reason == "" {
		reason = domain.TriggerManual
	}
	waiter := make(chan waitResult, 1)
	err := o.do(ctx, func() error {
		if !o.scheduleRun(reason, true) {
			if o.paused {
				return domain.ErrSyncPaused
			}
			return domain.ErrStopped
		}
		if o.running && !o.deb.immediate {
			// The run just started: wait for it.
			o.runWaiters = append(o.runWaiters, waiter)
		} else {
			o.nextWaiters = append(o.nextWaiters, waiter)
		}
		return nil
	})
	if err != nil {
		return domain.RunResult{}, err
	}

	select {
	case w := <-waiter:
		return w.result, w.err
	case <-ctx.Done():
		return domain.RunResult{}, ctx.Err()
	}
}

// UpdateWatchFiles replaces the watch set. Relative paths are resolved
// against the base directory. The change waits for an in-flight run.
func (o *SyncOrchestrator) UpdateWatchFiles(ctx context.Context, paths []string) error {
	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			return fmt.Errorf("%w: empty watch path", domain.ErrInvalidInput)
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(o.cfg.BaseDir, p)
		}
		resolved = append(resolved, filepath.Clean(p))
	}

	return o.do(ctx, func() error {
		if o.running {
			o.pendingWatch = resolved
			return nil
		}
		o.applyWatch(resolved)
		return nil
	})
}

// Status returns the last published snapshot.
func (o *SyncOrchestrator) Status() domain.SyncStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.snapshot.Clone()
}

// History returns the bounded history, oldest first.
func (o *SyncOrchestrator) History() []domain.HistoryEntry {
	return o.history.Entries()
}

// ClearHistory removes every history entry and broadcasts the change.
func (o *SyncOrchestrator) ClearHistory(ctx context.Context) error {
	return o.do(ctx, func() error {
		o.history.Clear()
		o.publish(domain.EventHistory)
		return nil
	})
}

// Subscribe returns events emitted after the call.
func (o *SyncOrchestrator) Subscribe(buffer int) (<-chan domain.Event, func()) {
	return o.events.Subscribe(buffer)
}

// do runs fn on the event loop and returns its error.
func (o *SyncOrchestrator) do(ctx context.Context, fn func() error) error {
	o.mu.RLock()
	started := o.started
	o.mu.RUnlock()
	if !started {
		return domain.ErrNotStarted
	}

	reply := make(chan error, 1)
	select {
	case o.cmds <- func() { reply <- fn() }:
	case <-o.done:
		return domain.ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// loop is the event loop. It exits once the engine has stopped.
func (o *SyncOrchestrator) loop() {
	defer o.shutdown()

	for !o.exit {
		select {
		case fn := <-o.cmds:
			fn()

		case change, ok := <-o.watchCh:
			if !ok {
				o.watchCh = nil
				continue
			}
			if change.Triggers() {
				o.scheduleRun(change.Reason(), false)
			}

		case <-o.deb.C():
			o.deb.fired()
			o.onTimer()

		case out := <-o.results:
			o.finishRun(out)
		}
	}
}

// shutdown releases resources after the loop exits. done is closed last so
// that Stop returns with history flushed.
func (o *SyncOrchestrator) shutdown() {
	o.wg.Wait()
	o.cancelRun()
	o.history.Close()
	o.events.Close()
	close(o.done)
}

// scheduleRun is the single entry point for triggers. It returns false if
// the trigger was dropped.
func (o *SyncOrchestrator) scheduleRun(reason string, immediate bool) bool {
	if o.stopping {
		logger.Debug("Engine stopping, ignoring trigger %q", reason)
		return false
	}
	if o.paused {
		if immediate {
			logger.Info("Sync paused, ignoring manual trigger %q", reason)
		} else {
			logger.Debug("Sync paused, ignoring %q", reason)
		}
		return false
	}

	if !immediate {
		logger.Debug("Trigger %q, waiting %s", reason, o.cfg.Debounce)
		o.deb.arm(o.cfg.Debounce, reason)
		return true
	}

	if o.running {
		logger.Debug("Run in progress, queueing %q", reason)
		o.deb.next(reason)
		return true
	}

	o.deb.stopTimer()
	o.startRun(reason)
	return true
}

// onTimer handles an expired debounce window.
func (o *SyncOrchestrator) onTimer() {
	if o.running {
		// Coalesce instead of queueing a second run.
		logger.Debug("Run in progress, re-arming debounce for %q", o.deb.reason)
		o.deb.rearm(o.cfg.Debounce)
		return
	}
	if o.paused || o.stopping || !o.deb.pending {
		return
	}
	o.startRun(o.deb.reason)
}

// startRun moves the engine to syncing and launches the pipeline worker.
func (o *SyncOrchestrator) startRun(reason string) {
	o.deb.take()

	if err := domain.Transition(o.state, domain.StateSyncing); err != nil {
		logger.Error("%v", err)
		return
	}
	o.state = domain.StateSyncing
	o.running = true
	o.runWaiters = append(o.runWaiters, o.nextWaiters...)
	o.nextWaiters = nil
	o.publish(domain.EventStatus)

	logger.Info("Sync started: %s", reason)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.results <- runOutcome{trigger: reason, result: o.execute(o.runCtx)}
	}()
}

// finishRun records the outcome of a run and decides what happens next.
func (o *SyncOrchestrator) finishRun(out runOutcome) {
	result := out.result
	o.lastRun = result.Timestamp
	o.lastResult = &result
	o.history.Append(domain.NewHistoryEntry(out.trigger, result))
	o.publish(domain.EventHistory)

	next := domain.StateIdle
	if result.Status == domain.RunError {
		next = domain.StateError
		logger.Error("sync failed: %s", result.Message)
	} else {
		logger.Info("Sync finished: %s %s", result.Status, result.Reason)
	}
	o.state = next
	o.running = false
	o.publish(domain.EventStatus)

	for _, w := range o.runWaiters {
		w <- waitResult{result: result}
	}
	o.runWaiters = nil

	if o.pendingWatch != nil {
		paths := o.pendingWatch
		o.pendingWatch = nil
		o.applyWatch(paths)
	}

	if o.stopping {
		o.finishStop()
		return
	}
	switch {
	case o.paused:
	case o.deb.immediate:
		o.startRun(o.deb.reason)
	case o.deb.pending && !o.deb.armed():
		// Left without a timer by a pause during the run.
		o.deb.arm(o.cfg.Debounce, o.deb.reason)
	}
}

// finishStop moves to the terminal state and ends the loop.
func (o *SyncOrchestrator) finishStop() {
	if err := domain.Transition(o.state, domain.StateStopped); err != nil {
		logger.Error("%v", err)
	}
	o.state = domain.StateStopped
	o.publish(domain.EventStatus)
	o.exit = true
	logger.Info("Sync engine stopped")
}

// execute runs the pipeline. It always returns a result; panics in
// adapters are reported as errors.
func (o *SyncOrchestrator) execute(ctx context.Context) (result domain.RunResult) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.RunResult{
				Status:    domain.RunError,
				Timestamp: time.Now(),
				Message:   fmt.Sprintf("pipeline panic: %v", r),
			}
		}
	}()

	export, err := o.exporter.Export(ctx, o.cfg.SourcePath, o.cfg.OutputDir)
	if err != nil {
		return domain.RunResult{
			Status:    domain.RunError,
			Timestamp: time.Now(),
			Message:   fmt.Sprintf("export: %v", err),
		}
	}

	upload, err := o.uploader.Upload(ctx, domain.UploadRequest{
		Files:       export.Files(),
		Token:       o.cfg.APIToken,
		Credentials: o.cfg.Credentials,
	})
	if err != nil {
		return domain.RunResult{
			Status:      domain.RunError,
			Timestamp:   time.Now(),
			PayloadHash: upload.PayloadHash,
			Message:     err.Error(),
		}
	}

	result = domain.RunResult{
		Status:      domain.RunSuccess,
		Timestamp:   time.Now(),
		PayloadHash: upload.PayloadHash,
		Message:     upload.Message,
	}
	if upload.Skipped {
		result.Status = domain.RunSkipped
		result.Reason = upload.Reason
	}
	return result
}

// applyWatch swaps the watch set and restarts the watcher if appropriate.
func (o *SyncOrchestrator) applyWatch(paths []string) {
	o.unwatch()
	o.watchFiles = paths
	if !o.paused && !o.stopping {
		o.startWatching()
	}
	o.publish(domain.EventStatus)
}

// startWatching begins observing the watch set. Watch failures are logged;
// manual triggers keep working.
func (o *SyncOrchestrator) startWatching() {
	if o.watcher == nil || len(o.watchFiles) == 0 {
		if len(o.watchFiles) == 0 {
			logger.Info("No files to watch")
		}
		return
	}
	ctx, cancel := context.WithCancel(o.runCtx)
	ch, err := o.watcher.Watch(ctx, o.watchFiles)
	if err != nil {
		cancel()
		logger.Error("watching %v: %v", o.watchFiles, err)
		return
	}
	o.watchCh = ch
	o.stopWatch = cancel
	logger.Info("Watching %d file(s)", len(o.watchFiles))
}

// unwatch releases the watcher.
func (o *SyncOrchestrator) unwatch() {
	if o.stopWatch != nil {
		o.stopWatch()
		o.stopWatch = nil
	}
	o.watchCh = nil
}

// failWaiters releases SyncNow callers whose run will not happen.
func (o *SyncOrchestrator) failWaiters(err error) {
	for _, w := range o.nextWaiters {
		w <- waitResult{err: err}
	}
	o.nextWaiters = nil
}

// publish refreshes the snapshot and broadcasts it.
func (o *SyncOrchestrator) publish(t domain.EventType) {
	status := o.buildStatus()

	o.mu.Lock()
	o.snapshot = status
	o.mu.Unlock()

	o.events.Publish(domain.Event{Type: t, Status: status.Clone()})
}

func (o *SyncOrchestrator) buildStatus() domain.SyncStatus {
	status := domain.SyncStatus{
		State:      o.state,
		Paused:     o.paused,
		Running:    o.running,
		LastRun:    o.lastRun,
		History:    o.history.Entries(),
		WatchFiles: append([]string(nil), o.watchFiles...),
	}
	if o.lastResult != nil {
		r := *o.lastResult
		status.LastResult = &r
	}
	return status
}
