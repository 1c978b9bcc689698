package polovni

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"car-evaluator/utils"
)

// Fetcher returns the rendered HTML of a page. waitSelector, when set, must
// appear before the page is considered loaded.
type Fetcher interface {
	Fetch(ctx context.Context, url, waitSelector string) (string, error)
}

// BrowserFetcher renders pages in a shared headless Chrome instance, one tab per fetch.
type BrowserFetcher struct {
	logger *utils.Logger

	browserCtx context.Context
	cancel     func()

	PageTimeout time.Duration
	WaitTimeout time.Duration
	Settle      time.Duration
}

// NewBrowserFetcher starts the browser. chromeBin may be empty, in which case
// the usual install locations are searched.
func NewBrowserFetcher(chromeBin string, logger *utils.Logger) (*BrowserFetcher, error) {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[polovni] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// the first Run allocates the browser so later tabs share it
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("polovni: start browser: %w", err)
	}

	return &BrowserFetcher{
		logger:     logger,
		browserCtx: browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
		PageTimeout: 60 * time.Second,
		WaitTimeout: 15 * time.Second,
		Settle:      time.Second,
	}, nil
}

// Fetch opens url in a new tab and returns the document's outer HTML.
func (f *BrowserFetcher) Fetch(ctx context.Context, url, waitSelector string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	navCtx, cancelNav := context.WithTimeout(tabCtx, f.PageTimeout)
	defer cancelNav()
	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}

	if waitSelector != "" {
		waitCtx, cancelWait := context.WithTimeout(tabCtx, f.WaitTimeout)
		defer cancelWait()
		if err := chromedp.Run(waitCtx, chromedp.WaitReady(waitSelector, chromedp.ByQuery)); err != nil {
			return "", fmt.Errorf("wait for %q on %s: %w", waitSelector, url, err)
		}
	}

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Sleep(f.Settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("read html %s: %w", url, err)
	}

	f.logger.Debug("[polovni] Fetched %s (%d bytes)", url, len(html))
	return html, nil
}

// Close shuts the browser down.
func (f *BrowserFetcher) Close() {
	f.cancel()
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
