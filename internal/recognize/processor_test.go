package recognize_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"unveil/internal/dump"
	"unveil/internal/recogcache"
	"unveil/internal/recognize"
	"unveil/internal/table"
	"unveil/internal/vision"
)

// writeScreenshot renders a synthetic GGPoker-shaped capture: the diagnostic
// pixel carries the reference color so layout detection resolves without
// falling back.
func writeScreenshot(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 793, 600))
	img.Set(702, 64, color.RGBA{R: 219, G: 15, B: 6, A: 255})
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create screenshot: %v", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("encode screenshot: %v", err)
	}
	return path
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

type fakeCapability struct {
	mu      sync.Mutex
	calls   int
	errs    []error
	header  string
	started chan struct{}
	release chan struct{}
}

func (f *fakeCapability) Recognize(ctx context.Context, crops []image.Image, hints vision.FewShot) ([]string, error) {
	f.mu.Lock()
	f.calls++
	var err error
	if len(f.errs) > 0 {
		err = f.errs[0]
		f.errs = f.errs[1:]
	}
	started := f.started
	release := f.release
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, len(crops))
	names[0] = f.header
	for i := 1; i < len(crops); i++ {
		names[i] = fmt.Sprintf("player%d", i)
	}
	return names, nil
}

func (f *fakeCapability) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type captureObserver struct {
	mu       sync.Mutex
	results  []dump.Result
	failures []dump.Failure
	progress int
	summary  recognize.Summary
}

func (o *captureObserver) Progress(done, total int, filename string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress++
}

func (o *captureObserver) Result(result dump.Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, result)
}

func (o *captureObserver) Failure(failure dump.Failure) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, failure)
}

func (o *captureObserver) Summary(summary recognize.Summary) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.summary = summary
}

func testOptions(observer recognize.Observer) recognize.Options {
	return recognize.Options{
		CallsPerMinute: 600000,
		BaseDelay:      time.Millisecond,
		Observer:       observer,
	}
}

func TestProcessRecognizesScreenshots(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeScreenshot(t, dir, "2024-02-08_ 09-39_AM_$2_$5_#100.png"),
		writeScreenshot(t, dir, "2024-02-08_ 10-02_AM_$2_$5_#200.png"),
	}

	capability := &fakeCapability{header: "Poker Hand #OM900"}
	observer := &captureObserver{}
	processor := recognize.NewProcessor(capability, testOptions(observer))

	results, failures := processor.Process(context.Background(), paths)
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %+v", failures)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, result := range results {
		if result.HandID != "OM900" {
			t.Fatalf("expected hand id from header banner, got %q", result.HandID)
		}
		if result.TableType != "ggpoker" {
			t.Fatalf("expected ggpoker layout, got %q", result.TableType)
		}
		if len(result.Positions) != 6 {
			t.Fatalf("expected 6 seat positions, got %d", len(result.Positions))
		}
		if _, ok := result.Positions[table.HeaderLabel]; ok {
			t.Fatal("header region must not appear as a position")
		}
		if result.Positions[table.PositionTop] == "" {
			t.Fatal("expected recognized text for top position")
		}
	}
	if observer.progress != 2 || len(observer.results) != 2 {
		t.Fatalf("unexpected event counts: progress=%d results=%d", observer.progress, len(observer.results))
	}
	if observer.summary.Succeeded != 2 || observer.summary.Cancelled {
		t.Fatalf("unexpected summary: %+v", observer.summary)
	}
}

func TestProcessRecordsFilenameAndDecodeFailures(t *testing.T) {
	dir := t.TempDir()
	badName := filepath.Join(dir, "not-a-capture.png")
	if err := os.WriteFile(badName, []byte("png"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	badImage := filepath.Join(dir, "2024-02-08_ 09-39_AM_$2_$5_#100.png")
	if err := os.WriteFile(badImage, []byte("not a png"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	capability := &fakeCapability{header: "Poker Hand #OM1"}
	processor := recognize.NewProcessor(capability, testOptions(nil))

	results, failures := processor.Process(context.Background(), []string{badName, badImage})
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %+v", failures)
	}
	if capability.callCount() != 0 {
		t.Fatalf("capability must not be called for unusable inputs, got %d calls", capability.callCount())
	}
}

func TestHandIDFallsBackToTableID(t *testing.T) {
	dir := t.TempDir()
	path := writeScreenshot(t, dir, "2024-02-08_ 09-39_AM_$2_$5_#262668465.png")

	capability := &fakeCapability{header: "???"}
	processor := recognize.NewProcessor(capability, testOptions(nil))

	results, failures := processor.Process(context.Background(), []string{path})
	if len(failures) != 0 || len(results) != 1 {
		t.Fatalf("unexpected outcome: results=%d failures=%+v", len(results), failures)
	}
	if results[0].HandID != "OM262668465" {
		t.Fatalf("expected table-id fallback hand id, got %q", results[0].HandID)
	}
}

func TestTransientFailuresRetryUntilSuccess(t *testing.T) {
	dir := t.TempDir()
	path := writeScreenshot(t, dir, "2024-02-08_ 09-39_AM_$2_$5_#100.png")

	capability := &fakeCapability{
		header: "Poker Hand #OM7",
		errs:   []error{timeoutError{}, timeoutError{}},
	}
	processor := recognize.NewProcessor(capability, testOptions(nil))

	results, failures := processor.Process(context.Background(), []string{path})
	if len(failures) != 0 || len(results) != 1 {
		t.Fatalf("unexpected outcome: results=%d failures=%+v", len(results), failures)
	}
	if capability.callCount() != 3 {
		t.Fatalf("expected 2 retries before success, got %d calls", capability.callCount())
	}
}

func TestTransientFailuresExhaustRetryBudget(t *testing.T) {
	dir := t.TempDir()
	path := writeScreenshot(t, dir, "2024-02-08_ 09-39_AM_$2_$5_#100.png")

	capability := &fakeCapability{
		errs: []error{timeoutError{}, timeoutError{}, timeoutError{}},
	}
	opts := testOptions(nil)
	opts.MaxAttempts = 3
	processor := recognize.NewProcessor(capability, opts)

	results, failures := processor.Process(context.Background(), []string{path})
	if len(results) != 0 || len(failures) != 1 {
		t.Fatalf("unexpected outcome: results=%d failures=%+v", len(results), failures)
	}
	if capability.callCount() != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", capability.callCount())
	}
}

func TestPermanentFailureIsNotRetried(t *testing.T) {
	dir := t.TempDir()
	path := writeScreenshot(t, dir, "2024-02-08_ 09-39_AM_$2_$5_#100.png")

	capability := &fakeCapability{
		errs: []error{errors.New("recognition request: http 401: invalid key")},
	}
	processor := recognize.NewProcessor(capability, testOptions(nil))

	results, failures := processor.Process(context.Background(), []string{path})
	if len(results) != 0 || len(failures) != 1 {
		t.Fatalf("unexpected outcome: results=%d failures=%+v", len(results), failures)
	}
	if capability.callCount() != 1 {
		t.Fatalf("expected a single attempt, got %d", capability.callCount())
	}
}

func TestCancelReturnsAccumulatedWork(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 6)
	for i := range paths {
		paths[i] = writeScreenshot(t, dir, fmt.Sprintf("2024-02-08_ 09-%02d_AM_$2_$5_#%d.png", i+1, i+100))
	}

	capability := &fakeCapability{
		header:  "Poker Hand #OM5",
		started: make(chan struct{}, len(paths)),
		release: make(chan struct{}),
	}
	opts := testOptions(nil)
	opts.MaxConcurrency = 1
	processor := recognize.NewProcessor(capability, opts)

	type outcome struct {
		results  []dump.Result
		failures []dump.Failure
	}
	done := make(chan outcome, 1)
	go func() {
		results, failures := processor.Process(context.Background(), paths)
		done <- outcome{results, failures}
	}()

	<-capability.started
	processor.Cancel()
	close(capability.release)

	select {
	case got := <-done:
		total := len(got.results) + len(got.failures)
		if total < 1 || total >= len(paths) {
			t.Fatalf("expected partial outcomes after cancellation, got %d of %d", total, len(paths))
		}
	case <-time.After(10 * time.Second):
		t.Fatal("cancelled run did not return")
	}
	if !processor.Cancelled() {
		t.Fatal("expected processor to report cancellation")
	}
}

func TestCacheHitSkipsRecognitionCall(t *testing.T) {
	dir := t.TempDir()
	name := "2024-02-08_ 09-39_AM_$2_$5_#100.png"
	path := writeScreenshot(t, dir, name)
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat screenshot: %v", err)
	}

	store, err := recogcache.Open(filepath.Join(dir, "recognition.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer store.Close()
	entry := recogcache.Entry{
		Filename:  name,
		ModTime:   info.ModTime().Unix(),
		HandID:    "OM42",
		TableType: "ggpoker",
		Positions: map[string]string{table.PositionBottom: "Alice"},
	}
	if err := store.Put(context.Background(), entry); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	capability := &fakeCapability{header: "Poker Hand #OM42"}
	observer := &captureObserver{}
	opts := testOptions(observer)
	opts.Cache = store
	processor := recognize.NewProcessor(capability, opts)

	results, failures := processor.Process(context.Background(), []string{path})
	if len(failures) != 0 || len(results) != 1 {
		t.Fatalf("unexpected outcome: results=%d failures=%+v", len(results), failures)
	}
	if capability.callCount() != 0 {
		t.Fatalf("cache hit must skip the capability, got %d calls", capability.callCount())
	}
	if results[0].HandID != "OM42" || results[0].Positions[table.PositionBottom] != "Alice" {
		t.Fatalf("unexpected cached result: %+v", results[0])
	}
	if observer.summary.Cached != 1 {
		t.Fatalf("expected cached summary count 1, got %d", observer.summary.Cached)
	}
}

func TestRecognitionResultsPopulateCache(t *testing.T) {
	dir := t.TempDir()
	path := writeScreenshot(t, dir, "2024-02-08_ 09-39_AM_$2_$5_#100.png")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat screenshot: %v", err)
	}

	store, err := recogcache.Open(filepath.Join(dir, "recognition.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer store.Close()

	capability := &fakeCapability{header: "Poker Hand #OM900"}
	opts := testOptions(nil)
	opts.Cache = store
	processor := recognize.NewProcessor(capability, opts)

	if _, failures := processor.Process(context.Background(), []string{path}); len(failures) != 0 {
		t.Fatalf("unexpected failures: %+v", failures)
	}
	cached, hit, err := store.Get(context.Background(), filepath.Base(path), info.ModTime().Unix())
	if err != nil || !hit {
		t.Fatalf("expected cache entry after recognition, hit=%v err=%v", hit, err)
	}
	if cached.HandID != "OM900" || cached.TableType != "ggpoker" {
		t.Fatalf("unexpected cached entry: %+v", cached)
	}
}
