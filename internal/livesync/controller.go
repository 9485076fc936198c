package livesync

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"imagery-live/internal/catalog"
)

// ControllerState represents the fetch controller's lifecycle state
type ControllerState string

const (
	StateIdle        ControllerState = "idle"
	StateJobPending  ControllerState = "job_pending"
	StateJobPolling  ControllerState = "job_polling"
	StateJobTerminal ControllerState = "job_terminal"
)

// FrameService is the backend surface the controller depends on
// (implemented by catalog.Client)
type FrameService interface {
	CatalogLatest(ctx context.Context, satellite, sector, band string) (*catalog.CatalogFrame, error)
	LocalLatest(ctx context.Context, satellite, sector, band string) (*catalog.LocalFrame, error)
	StartFetch(ctx context.Context, req catalog.FetchRequest) (string, error)
	Job(ctx context.Context, id string) (*catalog.FetchJob, error)
}

// Options tunes the controller's timers
type Options struct {
	PollInterval        time.Duration // job status poll cadence
	LingerDelay         time.Duration // how long a terminal status stays visible
	Cooldown            time.Duration // minimum gap between auto-fetch dispatches
	CatalogPollInterval time.Duration // auto-fetch evaluation cadence
	AutoFetchEnabled    bool
}

// DefaultOptions returns the controller defaults
func DefaultOptions() Options {
	return Options{
		PollInterval:        2 * time.Second,
		LingerDelay:         2 * time.Second,
		Cooldown:            DefaultCooldown,
		CatalogPollInterval: 15 * time.Second,
		AutoFetchEnabled:    true,
	}
}

// Controller owns the side effects of the auto-fetch decision: it issues
// fetch requests, tracks at most one active job, polls its status, holds
// the terminal status visible for a display delay, then retires the job
// and asks the view to refresh.
//
// A generation counter is bumped whenever the view parameters change or
// the controller shuts down; every asynchronous result re-checks it under
// the lock before being applied, so a slow response tied to a superseded
// view is dropped instead of mutating current state.
type Controller struct {
	svc   FrameService
	opts  Options
	bands []catalog.Band

	onNotify  func(level, message string)
	onRefresh func()

	// Injectable clock, defaulted in NewController
	now   func() time.Time
	after func(d time.Duration) <-chan time.Time

	mu         sync.Mutex
	state      ControllerState
	jobID      string
	job        *catalog.FetchJob
	satellite  string
	sector     string
	band       string
	guard      AutoFetchGuard
	generation uint64
	autoFetch  bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewController creates a fetch job controller for the given view.
// onNotify and onRefresh may be nil.
func NewController(svc FrameService, opts Options, bands []catalog.Band, onNotify func(level, message string), onRefresh func()) *Controller {
	def := DefaultOptions()
	if opts.PollInterval <= 0 {
		opts.PollInterval = def.PollInterval
	}
	if opts.LingerDelay <= 0 {
		opts.LingerDelay = def.LingerDelay
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = def.Cooldown
	}
	if opts.CatalogPollInterval <= 0 {
		opts.CatalogPollInterval = def.CatalogPollInterval
	}
	if len(bands) == 0 {
		bands = catalog.DefaultBands
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Controller{
		svc:       svc,
		opts:      opts,
		bands:     bands,
		onNotify:  onNotify,
		onRefresh: onRefresh,
		now:       time.Now,
		after:     time.After,
		state:     StateIdle,
		autoFetch: opts.AutoFetchEnabled,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SetView switches the controller to a new satellite/sector/band. Any
// in-flight work for the previous view becomes stale and is dropped when
// it resolves.
func (c *Controller) SetView(satellite, sector, band string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.satellite == satellite && c.sector == sector && c.band == band {
		return
	}

	c.satellite = satellite
	c.sector = sector
	c.band = band
	c.generation++
	c.state = StateIdle
	c.jobID = ""
	c.job = nil
}

// SetAutoFetchEnabled toggles background triggering
func (c *Controller) SetAutoFetchEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoFetch = enabled
}

// State returns the current lifecycle state
func (c *Controller) State() ControllerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ActiveJobID returns the tracked job id, or "" when idle
func (c *Controller) ActiveJobID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.jobID
}

// ActiveJob returns a copy of the last polled job state, or nil
func (c *Controller) ActiveJob() *catalog.FetchJob {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.job == nil {
		return nil
	}
	jobCopy := *c.job
	return &jobCopy
}

// Guard returns a copy of the auto-fetch guard cell
func (c *Controller) Guard() AutoFetchGuard {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.guard
}

// FetchNow manually triggers a fetch of the newest catalog capture for
// the current view. Failures are surfaced to the user and returned; the
// controller stays Idle so the user can retry.
func (c *Controller) FetchNow(ctx context.Context) error {
	c.mu.Lock()
	gen := c.generation
	satellite, sector, band := c.satellite, c.sector, c.band
	c.mu.Unlock()

	cat, err := c.svc.CatalogLatest(ctx, satellite, sector, band)
	if err == nil && cat == nil {
		err = fmt.Errorf("no catalog capture available for %s/%s/%s", satellite, sector, band)
	}
	if err != nil {
		c.notify("error", fmt.Sprintf("Fetch failed: %v", err))
		return err
	}

	return c.trigger(gen, cat.ScanTime, true)
}

// trigger dispatches a fetch job for the given capture time. Accepted
// only from Idle; manual failures notify the user, automatic failures
// are swallowed (they recur every cycle and must not spam).
func (c *Controller) trigger(gen uint64, scanTime time.Time, manual bool) error {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return nil // view changed since evaluation, drop silently
	}
	if c.state != StateIdle {
		c.mu.Unlock()
		if manual {
			return fmt.Errorf("a fetch is already in progress")
		}
		return nil
	}
	c.state = StateJobPending
	satellite, sector, band := c.satellite, c.sector, c.band
	c.mu.Unlock()

	req := catalog.FetchRequest{
		Satellite: strings.ToUpper(satellite),
		Sector:    sector,
		Band:      band,
		StartTime: scanTime,
		EndTime:   scanTime,
	}

	jobID, err := c.svc.StartFetch(c.ctx, req)

	c.mu.Lock()
	if c.generation != gen {
		// View changed while the request was in flight: don't attach the
		// job id to state that no longer describes it.
		c.mu.Unlock()
		if err == nil {
			log.Printf("[LiveSync] Dropping job %s started for a superseded view", jobID)
		}
		return nil
	}
	if err != nil {
		c.state = StateIdle
		c.mu.Unlock()
		if manual {
			c.notify("error", fmt.Sprintf("Fetch failed: %v", err))
			return err
		}
		log.Printf("[LiveSync] Auto-fetch dispatch failed: %v", err)
		return nil
	}

	c.jobID = jobID
	c.job = &catalog.FetchJob{ID: jobID, Status: catalog.JobStatusPending}
	c.state = StateJobPolling
	if !manual {
		// Written exactly at dispatch, never at decision time, so repeated
		// evaluation within one poll tick cannot double-trigger.
		c.guard.LastScanTime = scanTime
		c.guard.LastAttemptAt = c.now()
	}
	c.mu.Unlock()

	if manual {
		c.notify("success", "Fetching latest frame…")
	} else {
		c.notify("success", "Auto-fetching new frame…")
	}
	log.Printf("[LiveSync] Fetch job %s started (%s/%s/%s @ %s)",
		jobID, req.Satellite, sector, band, scanTime.Format(time.RFC3339))

	go c.pollJob(gen, jobID)
	return nil
}

// pollJob re-reads the job status on a fixed interval until it reaches a
// terminal state, keeps that state visible for the linger delay, then
// retires the job and invokes the refresh callback exactly once.
func (c *Controller) pollJob(gen uint64, jobID string) {
	for {
		select {
		case <-c.after(c.opts.PollInterval):
		case <-c.ctx.Done():
			return
		}

		if !c.tracking(gen, jobID) {
			return
		}

		job, err := c.svc.Job(c.ctx, jobID)
		if err != nil {
			// Recoverable: next cycle retries
			log.Printf("[LiveSync] Job %s poll failed: %v", jobID, err)
			continue
		}

		c.mu.Lock()
		if c.generation != gen || c.jobID != jobID {
			c.mu.Unlock()
			return
		}
		c.job = job
		if !job.Status.Terminal() {
			c.mu.Unlock()
			continue
		}
		c.state = StateJobTerminal
		c.mu.Unlock()

		log.Printf("[LiveSync] Job %s finished: %s", jobID, job.Status)
		c.retire(gen, jobID)
		return
	}
}

// retire holds the terminal status visible, then clears the job and
// returns to Idle
func (c *Controller) retire(gen uint64, jobID string) {
	select {
	case <-c.after(c.opts.LingerDelay):
	case <-c.ctx.Done():
		return
	}

	c.mu.Lock()
	if c.generation != gen || c.jobID != jobID {
		c.mu.Unlock()
		return
	}
	c.jobID = ""
	c.job = nil
	c.state = StateIdle
	c.mu.Unlock()

	if c.onRefresh != nil {
		c.onRefresh()
	}
}

// tracking reports whether the given job is still the one we own
func (c *Controller) tracking(gen uint64, jobID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation == gen && c.jobID == jobID
}

// RunAutoFetch drives the auto-fetch evaluation loop until ctx is done.
// Each cycle reads the catalog and local latest frames for the current
// view and triggers a background fetch when the decision says so.
// Non-cadenced bands (composites with no capture interval of their own)
// are never evaluated.
func (c *Controller) RunAutoFetch(ctx context.Context) {
	log.Printf("[LiveSync] Auto-fetch loop started (every %s)", c.opts.CatalogPollInterval)
	for {
		select {
		case <-c.after(c.opts.CatalogPollInterval):
		case <-ctx.Done():
			return
		case <-c.ctx.Done():
			return
		}
		c.evaluateOnce(ctx)
	}
}

// evaluateOnce performs one auto-fetch evaluation cycle. Poll failures
// and absent frames are "no update yet": skipped, never fatal.
func (c *Controller) evaluateOnce(ctx context.Context) {
	c.mu.Lock()
	gen := c.generation
	satellite, sector, band := c.satellite, c.sector, c.band
	enabled := c.autoFetch
	c.mu.Unlock()

	if !enabled || satellite == "" {
		return
	}
	if b, ok := catalog.FindBand(c.bands, band); !ok || !b.Cadenced {
		return
	}

	cat, err := c.svc.CatalogLatest(ctx, satellite, sector, band)
	if err != nil {
		log.Printf("[LiveSync] Catalog poll failed: %v", err)
		return
	}
	local, err := c.svc.LocalLatest(ctx, satellite, sector, band)
	if err != nil {
		log.Printf("[LiveSync] Local frame poll failed: %v", err)
		return
	}

	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return
	}
	hasActiveJob := c.state != StateIdle
	guard := c.guard
	c.mu.Unlock()

	if !ShouldAutoFetch(enabled, cat, local, &guard, hasActiveJob, c.opts.Cooldown, c.now()) {
		return
	}

	c.trigger(gen, cat.ScanTime, false)
}

// notify forwards a message to the notification sink, if any
func (c *Controller) notify(level, message string) {
	if c.onNotify != nil {
		c.onNotify(level, message)
	}
}

// Close tears the controller down: pending polls and timers for this
// instance observe the cancelled context and stop without mutating state.
func (c *Controller) Close() {
	c.mu.Lock()
	c.generation++
	c.jobID = ""
	c.job = nil
	c.state = StateIdle
	c.mu.Unlock()
	c.cancel()
}
