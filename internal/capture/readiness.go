package capture

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

const (
	navigationTimeout    = 30 * time.Second
	containerWaitTimeout = 15 * time.Second
	canvasWaitTimeout    = 5 * time.Second
	renderWaitTimeout    = 5 * time.Second

	// renderSettleDelay is the heuristic grace period used when rendering
	// completion cannot be observed from any element's visibility.
	renderSettleDelay = 2 * time.Second
)

// chartPage is the slice of playwright.Page the capture pipeline needs.
// Having the pipeline depend on this instead of the full Page interface lets
// tests drive it with a fake.
type chartPage interface {
	Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error)
	WaitForSelector(selector string, options ...playwright.PageWaitForSelectorOptions) (playwright.ElementHandle, error)
	AddStyleTag(options playwright.PageAddStyleTagOptions) (playwright.ElementHandle, error)
	Screenshot(options ...playwright.PageScreenshotOptions) ([]byte, error)
	Close(options ...playwright.PageCloseOptions) error
}

// probe is one readiness wait: a selector, the state it must reach, and how
// long to give it. A probe that times out is a recoverable signal, not an
// error; probes in a list act as ordered fallbacks for each other.
type probe struct {
	selector string
	state    *playwright.WaitForSelectorState
	timeout  time.Duration
}

// containerProbes detect the chart's DOM scaffolding. The generic drawing
// surface is the fallback when the container never shows up.
func containerProbes() []probe {
	return []probe{
		{selector: ".chart-container", state: playwright.WaitForSelectorStateAttached, timeout: containerWaitTimeout},
		{selector: "canvas", state: playwright.WaitForSelectorStateAttached, timeout: canvasWaitTimeout},
	}
}

// renderProbes infer that candle data has actually painted.
func renderProbes() []probe {
	return []probe{
		{selector: ".chart-gui-wrapper", state: playwright.WaitForSelectorStateVisible, timeout: renderWaitTimeout},
	}
}

// waitAny runs probes in order and reports whether any succeeded. Failures
// are absorbed: a screenshot of whatever rendered beats no response.
func waitAny(page chartPage, probes []probe) bool {
	for _, p := range probes {
		_, err := page.WaitForSelector(p.selector, playwright.PageWaitForSelectorOptions{
			State:   p.state,
			Timeout: playwright.Float(float64(p.timeout.Milliseconds())),
		})
		if err == nil {
			return true
		}
	}
	return false
}

// noiseMaskCSS hides overlay chrome that would otherwise pollute the
// screenshot: floating toolbars, toasts, dialogs, the screenshot button and
// the left-side drawing-tool panel. Selectors that match nothing are free.
const noiseMaskCSS = `
#header-toolbar-screenshot,
.layout__area--left,
.tv-floating-toolbar,
.tv-dialog,
.tv-notification,
[data-role="toast-container"],
[data-dialog-name] {
	display: none !important;
	visibility: hidden !important;
}`

// capturePage runs the capture pipeline against an already-open page:
// navigate, staged readiness waits, noise suppression, screenshot. Only
// navigation and the screenshot itself can fail; every wait is soft.
func (e *Engine) capturePage(page chartPage, target string, log *slog.Logger) ([]byte, error) {
	if _, err := page.Goto(target, playwright.PageGotoOptions{
		// Chart data streams continuously, so the page never reaches network
		// idle; DOM readiness is the strongest load milestone available.
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(navigationTimeout.Milliseconds())),
	}); err != nil {
		return nil, fmt.Errorf("navigate to chart: %w", err)
	}

	if !waitAny(page, containerProbes()) {
		log.Warn("chart container not detected, capturing current page state")
	}

	if _, err := page.AddStyleTag(playwright.PageAddStyleTagOptions{
		Content: playwright.String(noiseMaskCSS),
	}); err != nil {
		log.Debug("noise mask injection failed", "error", err)
	}

	if !waitAny(page, renderProbes()) {
		log.Debug("render layer not visible, falling back to settle delay", "delay", e.settleDelay)
		time.Sleep(e.settleDelay)
	}

	img, err := page.Screenshot(playwright.PageScreenshotOptions{
		Type:     playwright.ScreenshotTypePng,
		FullPage: playwright.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return img, nil
}
