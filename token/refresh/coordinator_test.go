package refresh_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/moto-session/backend"
	apperrors "github.com/jrsteele09/moto-session/internal/errors"
	"github.com/jrsteele09/moto-session/token/refresh"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeRefresher struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
	seen    sync.Map
}

func (f *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (*backend.TokenResponse, error) {
	n := f.calls.Add(1)
	f.seen.Store(n, refreshToken)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	if n > 1 {
		return &backend.TokenResponse{AccessToken: "a.b.c-second", RefreshToken: "rotated-second"}, nil
	}
	return &backend.TokenResponse{AccessToken: "a2.b2.c2", RefreshToken: "r-2"}, nil
}

// fakeReauth is an in-memory session with a single stored pair.
type fakeReauth struct {
	mu        sync.Mutex
	stored    *oauth2.Token
	storedErr error
	installed []*oauth2.Token
	failures  []error
	signInErr error
	gate      chan struct{}
}

func newFakeReauth(refreshToken string) *fakeReauth {
	return &fakeReauth{stored: &oauth2.Token{AccessToken: "a.b.c", RefreshToken: refreshToken}}
}

func (f *fakeReauth) StoredTokens(ctx context.Context, sessionID string) (*oauth2.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storedErr != nil {
		return nil, f.storedErr
	}
	t := *f.stored
	return &t, nil
}

func (f *fakeReauth) SignInWithTokens(ctx context.Context, sessionID string, token *oauth2.Token) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.installed = append(f.installed, token)
	if f.signInErr != nil {
		return f.signInErr
	}
	f.stored = token
	return nil
}

func (f *fakeReauth) MarkRefreshFailed(ctx context.Context, sessionID string, cause error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, cause)
	return nil
}

func (f *fakeReauth) installedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.installed)
}

func TestRefreshNowSuccess(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	refresh.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { refresh.NowTimeFunc = time.Now })

	r := &fakeRefresher{}
	reauth := newFakeReauth("r-1")
	c := refresh.NewCoordinator(r, refresh.WithAccessLifetime(15*time.Minute))

	tok := c.RefreshNow(context.Background(), reauth, "sid-1")
	require.NotNil(t, tok)
	require.Equal(t, "a2.b2.c2", tok.AccessToken)
	require.Equal(t, "r-2", tok.RefreshToken)
	require.Equal(t, now.Add(15*time.Minute), tok.Expiry)
	require.Len(t, reauth.installed, 1)
	require.Equal(t, "a2.b2.c2", reauth.installed[0].AccessToken)

	sent, _ := r.seen.Load(int32(1))
	require.Equal(t, "r-1", sent)
}

func TestRefreshNowCannotRefresh(t *testing.T) {
	for name, err := range map[string]error{
		"no refresh token": apperrors.ErrNoRefreshToken,
		"expired":          apperrors.ErrRefreshTokenExpired,
		"unknown session":  apperrors.ErrSessionNotFound,
	} {
		t.Run(name, func(t *testing.T) {
			r := &fakeRefresher{}
			reauth := &fakeReauth{storedErr: err}
			c := refresh.NewCoordinator(r)

			require.Nil(t, c.RefreshNow(context.Background(), reauth, "sid-1"))
			require.Equal(t, int32(0), r.calls.Load())
			require.Empty(t, reauth.failures)
		})
	}
}

func TestRefreshNowBackendFailureIsRecorded(t *testing.T) {
	for name, err := range map[string]error{
		"rejected": &backend.HTTPError{Endpoint: backend.RouteRefresh, StatusCode: http.StatusUnauthorized},
		"5xx":      &backend.HTTPError{Endpoint: backend.RouteRefresh, StatusCode: http.StatusInternalServerError},
		"network":  errors.New("connection refused"),
	} {
		t.Run(name, func(t *testing.T) {
			reauth := newFakeReauth("r-1")
			c := refresh.NewCoordinator(&fakeRefresher{err: err})

			require.Nil(t, c.RefreshNow(context.Background(), reauth, "sid-1"))
			require.Empty(t, reauth.installed)
			require.Equal(t, []error{err}, reauth.failures)
		})
	}
}

func TestRefreshNowInstallFailure(t *testing.T) {
	reauth := newFakeReauth("r-1")
	reauth.signInErr = errors.New("store down")
	c := refresh.NewCoordinator(&fakeRefresher{})
	require.Nil(t, c.RefreshNow(context.Background(), reauth, "sid-1"))
}

func TestMissingRefreshTokenInResponseKeepsStoredOne(t *testing.T) {
	r := &fakeRefresher{}
	reauth := newFakeReauth("r-1")
	c := refresh.NewCoordinator(refresherFunc(func(ctx context.Context, rt string) (*backend.TokenResponse, error) {
		r.calls.Add(1)
		return &backend.TokenResponse{AccessToken: "a2.b2.c2"}, nil
	}))

	tok := c.RefreshNow(context.Background(), reauth, "sid-1")
	require.NotNil(t, tok)
	require.Equal(t, "r-1", tok.RefreshToken)
}

type refresherFunc func(ctx context.Context, refreshToken string) (*backend.TokenResponse, error)

func (f refresherFunc) Refresh(ctx context.Context, refreshToken string) (*backend.TokenResponse, error) {
	return f(ctx, refreshToken)
}

func TestConcurrentRefreshSharesOneExchange(t *testing.T) {
	r := &fakeRefresher{release: make(chan struct{})}
	reauth := newFakeReauth("r-1")
	c := refresh.NewCoordinator(r)

	const callers = 10
	results := make([]*oauth2.Token, callers)
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	for i := range callers {
		go func() {
			defer done.Done()
			started.Done()
			results[i] = c.RefreshNow(context.Background(), reauth, "sid-1")
		}()
	}

	started.Wait()
	require.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, time.Millisecond)
	// let the late goroutines reach the flight before it settles
	time.Sleep(100 * time.Millisecond)
	close(r.release)
	done.Wait()

	require.Equal(t, int32(1), r.calls.Load())
	require.Equal(t, 1, reauth.installedCount())
	for _, tok := range results {
		require.NotNil(t, tok)
		require.Equal(t, "a2.b2.c2", tok.AccessToken)
		require.Equal(t, "r-2", tok.RefreshToken)
	}
}

func TestFlightHoldsSlotUntilPersisted(t *testing.T) {
	r := &fakeRefresher{}
	reauth := newFakeReauth("r-1")
	reauth.gate = make(chan struct{})
	c := refresh.NewCoordinator(r)

	first := make(chan *oauth2.Token, 1)
	go func() {
		tok, _ := c.Refresh(context.Background(), reauth, "sid-1", "r-1")
		first <- tok
	}()
	// the exchange is done and the install is blocked
	require.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, time.Millisecond)

	second := make(chan *oauth2.Token, 1)
	go func() {
		tok, _ := c.Refresh(context.Background(), reauth, "sid-1", "r-1")
		second <- tok
	}()
	time.Sleep(50 * time.Millisecond)
	close(reauth.gate)

	require.Equal(t, "r-2", (<-first).RefreshToken)
	require.Equal(t, "r-2", (<-second).RefreshToken)
	require.Equal(t, int32(1), r.calls.Load())
}

func TestRefreshSkipsExchangeWhenAlreadyRotated(t *testing.T) {
	r := &fakeRefresher{}
	reauth := newFakeReauth("r-2")
	c := refresh.NewCoordinator(r)

	// the caller loaded r-1 before an earlier flight stored r-2
	tok, err := c.Refresh(context.Background(), reauth, "sid-1", "r-1")
	require.NoError(t, err)
	require.Equal(t, "r-2", tok.RefreshToken)
	require.Equal(t, int32(0), r.calls.Load())
	require.Empty(t, reauth.installed)
}

func TestFlightsAreKeyedPerSession(t *testing.T) {
	r := &fakeRefresher{release: make(chan struct{})}
	c := refresh.NewCoordinator(r)

	var wg sync.WaitGroup
	wg.Add(2)
	for _, key := range []string{"sid-1", "sid-2"} {
		go func() {
			defer wg.Done()
			_ = c.RefreshNow(context.Background(), newFakeReauth("r-"+key), key)
		}()
	}
	require.Eventually(t, func() bool { return r.calls.Load() == 2 }, time.Second, time.Millisecond)
	close(r.release)
	wg.Wait()
}

func TestSlotClearsAfterSettling(t *testing.T) {
	r := &fakeRefresher{}
	reauth := newFakeReauth("r-1")
	c := refresh.NewCoordinator(r)

	first := c.RefreshNow(context.Background(), reauth, "sid-1")
	second := c.RefreshNow(context.Background(), reauth, "sid-1")
	require.NotNil(t, first)
	require.NotNil(t, second)

	require.Equal(t, int32(2), r.calls.Load())
	require.NotEqual(t, first.AccessToken, second.AccessToken)
	// the second flight exchanged the pair the first one stored
	sent, _ := r.seen.Load(int32(2))
	require.Equal(t, "r-2", sent)
}

func TestRefreshCallerCancellation(t *testing.T) {
	r := &fakeRefresher{release: make(chan struct{})}
	reauth := newFakeReauth("r-1")
	c := refresh.NewCoordinator(r)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Refresh(ctx, reauth, "sid-1", "r-1")
		errCh <- err
	}()
	require.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, time.Millisecond)

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)

	// a second caller joins the still-running flight
	resCh := make(chan *oauth2.Token, 1)
	go func() {
		resCh <- c.RefreshNow(context.Background(), reauth, "sid-1")
	}()
	time.Sleep(50 * time.Millisecond)
	close(r.release)

	tok := <-resCh
	require.NotNil(t, tok)
	require.Equal(t, int32(1), r.calls.Load())
	// the abandoned caller's flight still persisted its result
	require.Equal(t, 1, reauth.installedCount())
}
