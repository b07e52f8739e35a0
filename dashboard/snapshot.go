package dashboard

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"sleep-dashboard/utils"
)

// captureFunc loads pageURL and returns a PNG of the element matching selector.
type captureFunc func(ctx context.Context, pageURL, selector string) ([]byte, error)

// Snapshotter writes a PNG of every dashboard chart using headless Chrome.
type Snapshotter struct {
	dir       string
	chromeBin string
	logger    *utils.Logger
	retry     *utils.RetryConfig
	workers   int
	timeout   time.Duration

	capture captureFunc
}

// NewSnapshotter returns a Snapshotter writing into dir, capturing up to
// workers charts at once. An empty chromeBin falls back to the usual install
// locations.
func NewSnapshotter(dir, chromeBin string, workers, maxRetries int, logger *utils.Logger) *Snapshotter {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	return &Snapshotter{
		dir:       dir,
		chromeBin: chromeBin,
		logger:    logger,
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
		workers: workers,
		timeout: 30 * time.Second,
	}
}

// Snapshot writes <dir>/<chartID>.png for each chart on the dashboard and
// returns the written paths in dashboard order. A chart that cannot be
// captured or saved is skipped with a warning.
func (s *Snapshotter) Snapshot(ctx context.Context, dash *Dashboard) ([]string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: create %q: %w", s.dir, err)
	}

	capture := s.capture
	if capture == nil {
		if s.chromeBin == "" {
			return nil, fmt.Errorf("snapshot: no chrome binary found, set CHROME_BIN")
		}
		s.logger.Info("[snapshot] Using browser binary: %s", s.chromeBin)

		browserCtx, cancel, err := s.newBrowser(ctx)
		if err != nil {
			return nil, err
		}
		defer cancel()
		capture = s.chromeCapture(browserCtx)
	}

	tmp, err := os.MkdirTemp("", "sleep-dashboard-*")
	if err != nil {
		return nil, fmt.Errorf("snapshot: temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	pages := make([]string, len(dash.Order))
	for i, id := range dash.Order {
		page, err := dash.Chart(id)
		if err != nil {
			return nil, err
		}
		pages[i] = filepath.Join(tmp, id+".html")
		if err := os.WriteFile(pages[i], page, 0o644); err != nil {
			return nil, fmt.Errorf("snapshot: write %q: %w", pages[i], err)
		}
	}

	results := make([]string, len(dash.Order))
	pool := utils.NewWorkerPool(s.workers)
	for i, id := range dash.Order {
		pool.Submit(func() {
			results[i] = s.snapshotOne(ctx, capture, id, pages[i])
		})
	}
	pool.Wait()

	written := make([]string, 0, len(results))
	for _, path := range results {
		if path != "" {
			written = append(written, path)
		}
	}

	s.logger.Info("[snapshot] Saved %d/%d charts to %s", len(written), len(dash.Order), s.dir)
	return written, nil
}

// snapshotOne captures one chart and returns the PNG path, or "" when the
// chart was skipped.
func (s *Snapshotter) snapshotOne(ctx context.Context, capture captureFunc, id, htmlPath string) string {
	var png []byte
	err := s.retry.Do(ctx, "snapshot "+id, func(ctx context.Context) error {
		var captureErr error
		png, captureErr = capture(ctx, "file://"+htmlPath, "#"+id)
		return captureErr
	})
	if err != nil {
		s.logger.Warn("[snapshot] Skipping %s: %v", id, err)
		return ""
	}

	out := filepath.Join(s.dir, id+".png")
	if err := os.WriteFile(out, png, 0o644); err != nil {
		s.logger.Warn("[snapshot] Skipping %s: write %q: %v", id, out, err)
		return ""
	}
	s.logger.Debug("[snapshot] Wrote %s (%d bytes)", out, len(png))
	return out
}

// newBrowser starts the browser up front so every tab shares it.
func (s *Snapshotter) newBrowser(ctx context.Context) (context.Context, context.CancelFunc, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("allow-file-access-from-files", true),
		chromedp.ExecPath(s.chromeBin),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	cancel := func() {
		cancelBrowser()
		cancelAlloc()
	}

	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("snapshot: start browser: %w", err)
	}
	return browserCtx, cancel, nil
}

// chromeCapture opens a fresh tab per chart on the shared browser.
func (s *Snapshotter) chromeCapture(browserCtx context.Context) captureFunc {
	return func(ctx context.Context, pageURL, selector string) ([]byte, error) {
		tabCtx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.timeout)
		defer cancelTimeout()

		stop := context.AfterFunc(ctx, cancelTimeout)
		defer stop()

		var buf []byte
		err := chromedp.Run(tabCtx,
			chromedp.EmulateViewport(1280, 800),
			chromedp.Navigate(pageURL),
			chromedp.WaitVisible(selector, chromedp.ByQuery),
			chromedp.Sleep(500*time.Millisecond),
			chromedp.Screenshot(selector, &buf, chromedp.ByQuery),
		)
		if err != nil {
			return nil, fmt.Errorf("chromedp screenshot %s: %w", selector, err)
		}
		return buf, nil
	}
}

func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	for _, p := range []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
