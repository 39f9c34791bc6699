package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	fakeua "github.com/EDDYCJY/fake-useragent"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"practo-scraper/config"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Non-essential asset types aborted to cut bandwidth and render time.
var blockedAssets = []string{
	"*.jpg", "*.jpeg", "*.png", "*.gif", "*.svg",
	"*.css", "*.woff", "*.woff2", "*.ttf",
}

// Browser drives a single headless Chrome tab, reused across all cities
// and pages.
type Browser struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    zerolog.Logger
}

// New launches the browser and prepares the tab: anti-automation flags,
// user-agent selection, optional proxy, asset blocking. An error here is
// fatal to the run.
func New(cfg *config.Config, log zerolog.Logger) (*Browser, error) {
	ua := defaultUserAgent
	if cfg.UserAgentRotation {
		if random := fakeua.Random(); random != "" {
			ua = random
		}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("log-level", "3"), // suppress Chrome logs
		chromedp.UserAgent(ua),
		chromedp.WindowSize(1366, 768),
	)
	if cfg.ProxyEnabled && cfg.ProxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(cfg.ProxyServer))
		log.Info().Str("proxy", cfg.ProxyServer).Msg("using proxy")
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	cancel := func() {
		cancelCtx()
		cancelAlloc()
	}

	// Starting the network domain also proves the browser process came up.
	if err := chromedp.Run(ctx,
		network.Enable(),
		network.SetBlockedURLS(blockedAssets),
	); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}

	log.Info().Bool("headless", cfg.Headless).Str("user_agent", ua).Msg("browser ready")
	return &Browser{ctx: ctx, cancel: cancel, log: log}, nil
}

// Navigate loads a URL, failing when the page does not load in time.
func (b *Browser) Navigate(url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(b.ctx, timeout)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// WaitForAny waits for the first selector of the ordered list to become
// visible and returns it. The timeout budget is split across selectors.
func (b *Browser) WaitForAny(selectors []string, timeout time.Duration) (string, error) {
	if len(selectors) == 0 {
		return "", fmt.Errorf("no selectors to wait for")
	}

	per := timeout / time.Duration(len(selectors))
	if per < time.Second {
		per = time.Second
	}
	for _, sel := range selectors {
		ctx, cancel := context.WithTimeout(b.ctx, per)
		err := chromedp.Run(ctx, chromedp.WaitVisible(sel, chromedp.ByQuery))
		cancel()
		if err == nil {
			return sel, nil
		}
	}
	return "", fmt.Errorf("none of %d selectors appeared within %s", len(selectors), timeout)
}

// HTML returns the rendered outer HTML of the current page.
func (b *Browser) HTML() (string, error) {
	var html string
	if err := chromedp.Run(b.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read page HTML: %w", err)
	}
	return html, nil
}

// Reload reloads the current page and waits for the document to settle.
func (b *Browser) Reload(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(b.ctx, timeout)
	defer cancel()
	if err := chromedp.Run(ctx,
		chromedp.Reload(),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(2*time.Second), // let in-flight requests drain
	); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return nil
}

// Screenshot captures a full-page screenshot for debugging.
func (b *Browser) Screenshot(path string) error {
	ctx, cancel := context.WithTimeout(b.ctx, 15*time.Second)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(ctx, chromedp.FullScreenshot(&buf, 80)); err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	b.log.Info().Str("file", path).Msg("screenshot saved")
	return nil
}

// Close releases the browser process.
func (b *Browser) Close() {
	b.cancel()
}
