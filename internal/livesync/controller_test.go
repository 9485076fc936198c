package livesync

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"imagery-live/internal/catalog"
)

// fakeService is an in-memory FrameService for controller tests
type fakeService struct {
	mu           sync.Mutex
	catalogFrame *catalog.CatalogFrame
	localFrame   *catalog.LocalFrame
	fetchCalls   []catalog.FetchRequest
	catalogCalls int
	fetchErr     error
	jobID        string
	jobStates    []catalog.FetchJob // consumed one per poll, last repeats
	jobPolls     int
	onStartFetch func()
}

func (f *fakeService) CatalogLatest(ctx context.Context, satellite, sector, band string) (*catalog.CatalogFrame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catalogCalls++
	return f.catalogFrame, nil
}

func (f *fakeService) LocalLatest(ctx context.Context, satellite, sector, band string) (*catalog.LocalFrame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.localFrame, nil
}

func (f *fakeService) StartFetch(ctx context.Context, req catalog.FetchRequest) (string, error) {
	f.mu.Lock()
	f.fetchCalls = append(f.fetchCalls, req)
	err := f.fetchErr
	id := f.jobID
	hook := f.onStartFetch
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (f *fakeService) Job(ctx context.Context, id string) (*catalog.FetchJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.jobPolls
	if idx >= len(f.jobStates) {
		idx = len(f.jobStates) - 1
	}
	f.jobPolls++
	job := f.jobStates[idx]
	return &job, nil
}

func (f *fakeService) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetchCalls)
}

// recorder captures notifications and refreshes
type recorder struct {
	mu        sync.Mutex
	notices   []string
	refreshes int
	refreshed chan struct{}
}

func newRecorder() *recorder {
	return &recorder{refreshed: make(chan struct{}, 8)}
}

func (r *recorder) notify(level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, level+": "+message)
}

func (r *recorder) refresh() {
	r.mu.Lock()
	r.refreshes++
	r.mu.Unlock()
	r.refreshed <- struct{}{}
}

func (r *recorder) noticeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices)
}

func (r *recorder) refreshCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refreshes
}

// immediateAfter fires timers instantly so lifecycle tests run without
// real delays
func immediateAfter(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func newTestController(svc *fakeService, rec *recorder) *Controller {
	c := NewController(svc, DefaultOptions(), catalog.DefaultBands, rec.notify, rec.refresh)
	c.after = immediateAfter
	c.SetView("goes19", "FD", "C13")
	return c
}

func TestAutoFetchScenario(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	scan := base.Add(5 * time.Minute)

	svc := &fakeService{
		catalogFrame: &catalog.CatalogFrame{ScanTime: scan, Satellite: "goes19", Sector: "FD", Band: "C13"},
		localFrame:   &catalog.LocalFrame{CaptureTime: base},
		jobID:        "job-1",
		jobStates: []catalog.FetchJob{
			{ID: "job-1", Status: catalog.JobStatusRunning, Progress: 40},
			{ID: "job-1", Status: catalog.JobStatusCompleted, Progress: 100},
		},
	}
	rec := newRecorder()
	c := newTestController(svc, rec)
	defer c.Close()

	// Two evaluation cycles in a row: the active-job guard and the guard
	// cell must keep this to exactly one dispatched fetch.
	c.evaluateOnce(context.Background())
	c.evaluateOnce(context.Background())

	select {
	case <-rec.refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh callback never fired")
	}

	if got := svc.fetchCount(); got != 1 {
		t.Fatalf("StartFetch called %d times, want 1", got)
	}

	svc.mu.Lock()
	req := svc.fetchCalls[0]
	svc.mu.Unlock()
	if req.Satellite != "GOES19" {
		t.Errorf("satellite not uppercased: %q", req.Satellite)
	}
	if !req.StartTime.Equal(scan) || !req.EndTime.Equal(scan) {
		t.Errorf("start/end = %s/%s, want both %s", req.StartTime, req.EndTime, scan)
	}

	// Job retired: back to Idle with no tracked id
	if id := c.ActiveJobID(); id != "" {
		t.Errorf("active job id = %q after retirement, want empty", id)
	}
	if state := c.State(); state != StateIdle {
		t.Errorf("state = %s after retirement, want %s", state, StateIdle)
	}

	// Refresh fired exactly once
	time.Sleep(50 * time.Millisecond)
	if got := rec.refreshCount(); got != 1 {
		t.Errorf("refresh fired %d times, want 1", got)
	}

	// Guard written at dispatch
	guard := c.Guard()
	if !guard.LastScanTime.Equal(scan) {
		t.Errorf("guard scan time = %s, want %s", guard.LastScanTime, scan)
	}
	if guard.LastAttemptAt.IsZero() {
		t.Error("guard attempt time not written at dispatch")
	}
}

func TestAutoFetchSkipsNonCadencedBand(t *testing.T) {
	svc := &fakeService{}
	rec := newRecorder()
	c := newTestController(svc, rec)
	defer c.Close()

	c.SetView("goes19", "FD", "GEOCOLOR")
	c.evaluateOnce(context.Background())

	svc.mu.Lock()
	calls := svc.catalogCalls
	svc.mu.Unlock()
	if calls != 0 {
		t.Errorf("composite band was evaluated: %d catalog calls, want 0", calls)
	}
}

func TestAutoFetchFailureIsSilent(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &fakeService{
		catalogFrame: &catalog.CatalogFrame{ScanTime: base.Add(5 * time.Minute)},
		localFrame:   &catalog.LocalFrame{CaptureTime: base},
		fetchErr:     context.DeadlineExceeded,
	}
	rec := newRecorder()
	c := newTestController(svc, rec)
	defer c.Close()

	c.evaluateOnce(context.Background())

	if got := rec.noticeCount(); got != 0 {
		t.Errorf("background failure produced %d notifications, want 0", got)
	}
	if state := c.State(); state != StateIdle {
		t.Errorf("state = %s after failed auto dispatch, want %s", state, StateIdle)
	}
}

func TestFetchNowFailureNotifies(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &fakeService{
		catalogFrame: &catalog.CatalogFrame{ScanTime: base},
		fetchErr:     context.DeadlineExceeded,
	}
	rec := newRecorder()
	c := newTestController(svc, rec)
	defer c.Close()

	if err := c.FetchNow(context.Background()); err == nil {
		t.Fatal("FetchNow returned nil, want error")
	}

	rec.mu.Lock()
	notices := append([]string(nil), rec.notices...)
	rec.mu.Unlock()
	if len(notices) != 1 || !strings.HasPrefix(notices[0], "error:") {
		t.Errorf("notices = %v, want one error notification", notices)
	}

	// Back to Idle so the user can retry
	if state := c.State(); state != StateIdle {
		t.Errorf("state = %s, want %s", state, StateIdle)
	}
}

func TestTriggerRejectedWhileActive(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &fakeService{
		catalogFrame: &catalog.CatalogFrame{ScanTime: base},
		jobID:        "job-1",
		jobStates:    []catalog.FetchJob{{ID: "job-1", Status: catalog.JobStatusRunning}},
	}
	rec := newRecorder()
	c := newTestController(svc, rec)
	defer c.Close()

	c.mu.Lock()
	c.state = StateJobPolling
	c.jobID = "job-0"
	c.mu.Unlock()

	if err := c.FetchNow(context.Background()); err == nil {
		t.Fatal("second trigger while non-Idle accepted, want rejection")
	}
	if got := svc.fetchCount(); got != 0 {
		t.Errorf("StartFetch called %d times while non-Idle, want 0", got)
	}
}

func TestStaleTriggerDropped(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &fakeService{jobID: "job-1"}
	rec := newRecorder()
	c := newTestController(svc, rec)
	defer c.Close()

	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	// View changes between evaluation and dispatch
	c.SetView("goes18", "CONUS", "C02")

	if err := c.trigger(gen, base, false); err != nil {
		t.Fatalf("stale trigger returned error: %v", err)
	}
	if got := svc.fetchCount(); got != 0 {
		t.Errorf("stale trigger dispatched %d fetches, want 0", got)
	}
}

func TestSlowDispatchForSupersededViewIsDropped(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &fakeService{jobID: "job-1"}
	rec := newRecorder()
	c := newTestController(svc, rec)
	defer c.Close()

	// The view changes while the fetch request is in flight: the returned
	// job id must not be attached to the new view.
	svc.onStartFetch = func() {
		c.SetView("goes18", "CONUS", "C02")
	}

	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	if err := c.trigger(gen, base, false); err != nil {
		t.Fatalf("trigger returned error: %v", err)
	}
	if id := c.ActiveJobID(); id != "" {
		t.Errorf("job id %q attached to a superseded view", id)
	}
	if state := c.State(); state != StateIdle {
		t.Errorf("state = %s, want %s", state, StateIdle)
	}
}

func TestJobFailureStillRefreshes(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &fakeService{
		catalogFrame: &catalog.CatalogFrame{ScanTime: base.Add(5 * time.Minute)},
		localFrame:   &catalog.LocalFrame{CaptureTime: base},
		jobID:        "job-1",
		jobStates: []catalog.FetchJob{
			{ID: "job-1", Status: catalog.JobStatusFailed, StatusMessage: "upstream timeout"},
		},
	}
	rec := newRecorder()
	c := newTestController(svc, rec)
	defer c.Close()

	c.evaluateOnce(context.Background())

	select {
	case <-rec.refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh callback never fired for failed job")
	}

	if state := c.State(); state != StateIdle {
		t.Errorf("state = %s after failed job retired, want %s", state, StateIdle)
	}
}
