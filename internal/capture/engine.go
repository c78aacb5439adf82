package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
	"golang.org/x/sync/singleflight"

	"github.com/shehryarbajwa/tvsnap/internal/config"
	"github.com/shehryarbajwa/tvsnap/internal/ratelimit"
	"github.com/shehryarbajwa/tvsnap/pkg/models"
)

// deviceScaleFactor is fixed at 2x for high-density output; screenshots come
// back at viewport dimensions multiplied by this factor.
const deviceScaleFactor = 2.0

// ErrClosed is returned for captures attempted after Close.
var ErrClosed = errors.New("capture engine is closed")

// browserSession is the live browser half of the engine: one browser process
// plus one authenticated browsing context, handing out fresh pages.
type browserSession interface {
	NewPage() (chartPage, error)
	Close() error
}

// Engine owns the single shared browser process and produces chart
// screenshots. It moves through Uninitialized -> Ready -> Closed; the
// Uninitialized -> Ready transition happens exactly once, no matter how many
// captures race to trigger it.
type Engine struct {
	cfg *config.Config

	mu    sync.Mutex
	state models.EngineState
	sess  browserSession

	// launch builds the browser session; tests substitute a fake.
	launch func() (browserSession, error)

	initGroup   singleflight.Group
	gate        *ratelimit.Gate
	settleDelay time.Duration
}

// NewEngine creates an engine in the Uninitialized state. The browser is not
// launched until Init or the first Capture.
func NewEngine(cfg *config.Config) *Engine {
	e := &Engine{
		cfg:         cfg,
		state:       models.StateUninitialized,
		gate:        ratelimit.NewGate(cfg.MaxConcurrent),
		settleDelay: renderSettleDelay,
	}
	e.launch = e.launchBrowser
	return e
}

// State reports the engine's lifecycle state.
func (e *Engine) State() models.EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Init eagerly launches the browser and builds the browsing context. It is
// idempotent; a failure here means the process cannot serve captures.
func (e *Engine) Init(ctx context.Context) error {
	return e.ensureReady(ctx)
}

// ensureReady performs the one-time Uninitialized -> Ready transition.
// Concurrent callers serialize on a single in-flight initialization instead
// of racing to launch duplicate browser processes.
func (e *Engine) ensureReady(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case models.StateReady:
		e.mu.Unlock()
		return nil
	case models.StateClosed:
		e.mu.Unlock()
		return ErrClosed
	}
	e.mu.Unlock()

	_, err, _ := e.initGroup.Do("init", func() (interface{}, error) {
		e.mu.Lock()
		if e.state == models.StateReady {
			e.mu.Unlock()
			return nil, nil
		}
		if e.state == models.StateClosed {
			e.mu.Unlock()
			return nil, ErrClosed
		}
		e.mu.Unlock()

		sess, err := e.launch()
		if err != nil {
			return nil, err
		}

		e.mu.Lock()
		if e.state == models.StateClosed {
			// Close raced the launch; tear the session straight back down.
			e.mu.Unlock()
			sess.Close()
			return nil, ErrClosed
		}
		e.sess = sess
		e.state = models.StateReady
		e.mu.Unlock()
		return nil, nil
	})
	return err
}

// Capture navigates a fresh page to the chart for (ticker, interval) and
// returns a viewport-bounded PNG. Ticker and interval are opaque; anything
// the upstream site rejects surfaces as a blank chart, not a validation
// error. The page is closed on every path. Failures are returned to the
// caller without retry; the browser stays alive for subsequent calls.
func (e *Engine) Capture(ctx context.Context, ticker, interval string) ([]byte, error) {
	if ticker == "" || interval == "" {
		return nil, errors.New("ticker and interval are required")
	}
	if err := e.ensureReady(ctx); err != nil {
		return nil, err
	}
	if err := e.gate.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("acquire capture slot: %w", err)
	}
	defer e.gate.Release()

	e.mu.Lock()
	sess := e.sess
	e.mu.Unlock()
	if sess == nil {
		return nil, ErrClosed
	}

	log := slog.With("capture_id", uuid.NewString()[:8], "ticker", ticker, "interval", interval)

	page, err := sess.NewPage()
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Warn("page close failed", "error", err)
		}
	}()

	target := ChartURL(e.cfg.ChartPageID, ticker, interval)
	log.Info("capturing chart", "url", target)

	img, err := e.capturePage(page, target, log)
	if err != nil {
		log.Error("capture failed", "error", err)
		return nil, err
	}
	log.Info("capture complete", "bytes", len(img))
	return img, nil
}

// Close shuts the browser down. Safe to call multiple times; after the first
// call the engine is terminally Closed.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.state == models.StateClosed {
		e.mu.Unlock()
		return nil
	}
	sess := e.sess
	e.sess = nil
	e.state = models.StateClosed
	e.mu.Unlock()

	if sess == nil {
		return nil
	}
	return sess.Close()
}

// playwrightSession is the production browserSession: the playwright driver,
// the Chromium process and the shared authenticated context.
type playwrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	ctx     playwright.BrowserContext
}

func (s *playwrightSession) NewPage() (chartPage, error) {
	return s.ctx.NewPage()
}

func (s *playwrightSession) Close() error {
	var errs []error
	if err := s.ctx.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.browser.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.pw.Stop(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing browser session: %v", errs)
	}
	return nil
}

// launchBrowser starts the playwright driver, launches Chromium and builds
// the browsing context with authentication resolved in priority order:
// storage-state snapshot, then session cookies, then unauthenticated.
func (e *Engine) launchBrowser() (browserSession, error) {
	// Driver output goes nowhere near stdout; that belongs to the MCP
	// transport.
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("install playwright: %w", err)
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(e.cfg.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--no-sandbox",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	creds := credentials{sessionID: e.cfg.SessionID, sessionIDSign: e.cfg.SessionIDSign}
	seed := resolveAuthSeed(e.cfg.StorageStatePath, creds)

	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  e.cfg.WindowWidth,
			Height: e.cfg.WindowHeight,
		},
		DeviceScaleFactor: playwright.Float(deviceScaleFactor),
	}
	if seed == authStorageState {
		ctxOpts.StorageStatePath = playwright.String(e.cfg.StorageStatePath)
		slog.Info("seeding context from storage state snapshot", "path", e.cfg.StorageStatePath)
	}

	bctx, err := browser.NewContext(ctxOpts)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("create browser context: %w", err)
	}

	switch seed {
	case authCookies:
		if err := bctx.AddCookies(sessionCookies(creds)); err != nil {
			bctx.Close()
			browser.Close()
			pw.Stop()
			return nil, fmt.Errorf("inject session cookies: %w", err)
		}
		slog.Info("seeded context with session cookies", "signed", creds.sessionIDSign != "")
	case authNone:
		slog.Warn("no credentials or storage state found; captures run unauthenticated and may see delayed or rate-limited data")
	}

	// Chart export interactions read the clipboard; grant up front so they
	// never hit a permission prompt.
	if err := bctx.GrantPermissions([]string{"clipboard-read", "clipboard-write"}, playwright.BrowserContextGrantPermissionsOptions{
		Origin: playwright.String(tradingViewOrigin),
	}); err != nil {
		slog.Debug("clipboard permission grant failed", "error", err)
	}

	return &playwrightSession{pw: pw, browser: browser, ctx: bctx}, nil
}
