package exporter

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"fielddash/pkg/contracts/domain"
)

var chromeCandidates = []string{
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"chrome",
}

// ChromeOptions configures ChromeRasterizer
type ChromeOptions struct {
	ExecPath  string
	Timeout   time.Duration
	Width     int
	Height    int
	PlotlyURL string
}

// ChromeRasterizer screenshots the Plotly rendering of a chart in headless Chrome
type ChromeRasterizer struct {
	opts     ChromeOptions
	execPath string
	html     *HTMLRenderer
}

// NewChromeRasterizer resolves the browser binary once. When no binary is
// found the rasterizer reports itself unavailable.
func NewChromeRasterizer(opts ChromeOptions) *ChromeRasterizer {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Width <= 0 {
		opts.Width = 1200
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}
	return &ChromeRasterizer{
		opts:     opts,
		execPath: findChrome(opts.ExecPath),
		html:     NewHTMLRenderer(opts.PlotlyURL, opts.Height),
	}
}

func findChrome(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
		return ""
	}
	for _, name := range chromeCandidates {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}

func (c *ChromeRasterizer) Name() string { return "chrome" }

func (c *ChromeRasterizer) Available() bool { return c.execPath != "" }

// Rasterize renders the chart page and captures the chart element as PNG
func (c *ChromeRasterizer) Rasterize(ctx context.Context, spec *domain.ChartSpec) ([]byte, error) {
	if !c.Available() {
		return nil, fmt.Errorf("chrome executable not found")
	}

	page, err := c.html.Document(spec.Title, []*domain.ChartSpec{spec})
	if err != nil {
		return nil, err
	}
	url := "data:text/html;base64," + base64.StdEncoding.EncodeToString(page)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(c.execPath),
		chromedp.Flag("headless", true),
		chromedp.WindowSize(c.opts.Width, c.opts.Height+100),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, c.opts.Timeout)
	defer cancelRun()

	var png []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`.chart .main-svg`, chromedp.ByQuery),
		chromedp.Screenshot(`.chart`, &png, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome screenshot: %w", err)
	}
	return png, nil
}
