package capture

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shehryarbajwa/tvsnap/internal/config"
	"github.com/shehryarbajwa/tvsnap/pkg/models"
)

// fakeSession hands out fakePages and counts closes.
type fakeSession struct {
	mu         sync.Mutex
	pages      []*fakePage
	newPageErr error
	shot       []byte
	shotErr    error
	closed     int
}

func (s *fakeSession) NewPage() (chartPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.newPageErr != nil {
		return nil, s.newPageErr
	}
	page := &fakePage{shot: s.shot, shotErr: s.shotErr}
	s.pages = append(s.pages, page)
	return page, nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

// newTestEngine wires an engine to a fake session, returning the launch
// counter so tests can assert the one-time transition.
func newTestEngine(cfg *config.Config, sess *fakeSession, launchDelay time.Duration) (*Engine, *atomic.Int32) {
	e := NewEngine(cfg)
	e.settleDelay = time.Millisecond
	var launches atomic.Int32
	e.launch = func() (browserSession, error) {
		launches.Add(1)
		if launchDelay > 0 {
			time.Sleep(launchDelay)
		}
		return sess, nil
	}
	return e, &launches
}

func TestEngineCaptureLazyInit(t *testing.T) {
	sess := &fakeSession{shot: []byte("png-bytes")}
	e, launches := newTestEngine(&config.Config{}, sess, 0)

	assert.Equal(t, models.StateUninitialized, e.State())

	img, err := e.Capture(context.Background(), "NASDAQ:AAPL", "D")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), img)
	assert.Equal(t, models.StateReady, e.State())
	assert.Equal(t, int32(1), launches.Load())

	// Second capture reuses the session.
	_, err = e.Capture(context.Background(), "NASDAQ:AAPL", "W")
	require.NoError(t, err)
	assert.Equal(t, int32(1), launches.Load())
}

func TestEngineInitOnceUnderConcurrentCaptures(t *testing.T) {
	sess := &fakeSession{shot: []byte("png-bytes")}
	e, launches := newTestEngine(&config.Config{}, sess, 50*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Capture(context.Background(), "BYBIT:BTCUSDT.P", "60")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), launches.Load())
	assert.Equal(t, models.StateReady, e.State())
}

func TestEngineCloseIdempotent(t *testing.T) {
	sess := &fakeSession{shot: []byte("png-bytes")}
	e, _ := newTestEngine(&config.Config{}, sess, 0)

	require.NoError(t, e.Init(context.Background()))
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	assert.Equal(t, 1, sess.closed)
	assert.Equal(t, models.StateClosed, e.State())

	_, err := e.Capture(context.Background(), "NASDAQ:AAPL", "D")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestEngineCloseBeforeInit(t *testing.T) {
	sess := &fakeSession{}
	e, launches := newTestEngine(&config.Config{}, sess, 0)

	require.NoError(t, e.Close())
	assert.Equal(t, int32(0), launches.Load())
	assert.Equal(t, 0, sess.closed)

	_, err := e.Capture(context.Background(), "NASDAQ:AAPL", "D")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestEngineCaptureRequiresInput(t *testing.T) {
	sess := &fakeSession{}
	e, launches := newTestEngine(&config.Config{}, sess, 0)

	_, err := e.Capture(context.Background(), "", "D")
	require.Error(t, err)
	_, err = e.Capture(context.Background(), "NASDAQ:AAPL", "")
	require.Error(t, err)

	// Bad input never launches the browser.
	assert.Equal(t, int32(0), launches.Load())
}

func TestEngineLaunchFailurePropagates(t *testing.T) {
	e := NewEngine(&config.Config{})
	e.settleDelay = time.Millisecond
	launchErr := errors.New("chromium not found")
	e.launch = func() (browserSession, error) { return nil, launchErr }

	err := e.Init(context.Background())
	assert.ErrorIs(t, err, launchErr)
	assert.Equal(t, models.StateUninitialized, e.State())

	// A later call retries the launch rather than getting stuck.
	e.launch = func() (browserSession, error) { return &fakeSession{shot: []byte("x")}, nil }
	_, err = e.Capture(context.Background(), "NASDAQ:AAPL", "D")
	assert.NoError(t, err)
}

func TestEnginePageClosedOnFailure(t *testing.T) {
	sess := &fakeSession{shotErr: errors.New("target closed")}
	e, _ := newTestEngine(&config.Config{}, sess, 0)

	_, err := e.Capture(context.Background(), "NASDAQ:AAPL", "D")
	require.Error(t, err)

	require.Len(t, sess.pages, 1)
	assert.Equal(t, 1, sess.pages[0].closed)
}

func TestEnginePageClosedOnSuccess(t *testing.T) {
	sess := &fakeSession{shot: []byte("png-bytes")}
	e, _ := newTestEngine(&config.Config{}, sess, 0)

	_, err := e.Capture(context.Background(), "NASDAQ:AAPL", "D")
	require.NoError(t, err)

	require.Len(t, sess.pages, 1)
	assert.Equal(t, 1, sess.pages[0].closed)
}

func TestEngineUsesConfiguredLayoutID(t *testing.T) {
	sess := &fakeSession{shot: []byte("png-bytes")}
	e, _ := newTestEngine(&config.Config{ChartPageID: "XHDbt5Yy"}, sess, 0)

	_, err := e.Capture(context.Background(), "BYBIT:BTCUSDT.P", "60")
	require.NoError(t, err)

	require.Len(t, sess.pages, 1)
	assert.Equal(t,
		"https://www.tradingview.com/chart/XHDbt5Yy/?symbol=BYBIT:BTCUSDT.P&interval=60",
		sess.pages[0].gotoURL,
	)
}
