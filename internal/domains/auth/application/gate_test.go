package application

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/pawmatch/internal/domains/auth/domain"
)

type fakeProber struct {
	mu      sync.Mutex
	err     error
	calls   atomic.Int32
	release chan struct{}
}

func (f *fakeProber) Probe(_ context.Context) error {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeProber) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type redirectRecorder struct {
	mu        sync.Mutex
	redirects []domain.Redirect
}

func (r *redirectRecorder) record(_ context.Context, redirect domain.Redirect) {
	r.mu.Lock()
	r.redirects = append(r.redirects, redirect)
	r.mu.Unlock()
}

func (r *redirectRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.redirects)
}

func TestGate_StartsChecking(t *testing.T) {
	gate := NewGate(&fakeProber{})
	require.Equal(t, domain.GateChecking, gate.State())
	require.False(t, gate.Authenticated())
}

func TestGate_EnterAuthenticatedRunsDependentsOnce(t *testing.T) {
	prober := &fakeProber{}
	gate := NewGate(prober)
	var loads atomic.Int32
	gate.OnAuthenticated(func(context.Context) error {
		loads.Add(1)
		return nil
	})

	decision := gate.Enter(context.Background(), "/search")
	require.Equal(t, domain.GateAuthenticated, decision.State)
	require.Nil(t, decision.Redirect)

	decision = gate.Enter(context.Background(), "/search")
	require.Equal(t, domain.GateAuthenticated, decision.State)
	require.Equal(t, int32(1), loads.Load())
	require.Equal(t, int32(1), prober.calls.Load())
}

func TestGate_EnterFailsClosed(t *testing.T) {
	prober := &fakeProber{err: domain.ErrSessionExpired}
	recorder := &redirectRecorder{}
	gate := NewGate(prober, WithRedirect(recorder.record))
	var loads atomic.Int32
	gate.OnAuthenticated(func(context.Context) error {
		loads.Add(1)
		return nil
	})

	decision := gate.Enter(context.Background(), "/search")
	require.Equal(t, domain.GateUnauthenticated, decision.State)
	require.NotNil(t, decision.Redirect)
	require.Equal(t, "/auth?returnUrl=%2Fsearch", decision.Redirect.Location())
	require.Equal(t, 1, recorder.count())
	require.Zero(t, loads.Load())
}

func TestGate_ProbeTransportErrorFailsClosed(t *testing.T) {
	prober := &fakeProber{err: context.DeadlineExceeded}
	gate := NewGate(prober)

	decision := gate.Enter(context.Background(), "/search")
	require.Equal(t, domain.GateUnauthenticated, decision.State)
}

func TestGate_ConcurrentEntersShareProbe(t *testing.T) {
	prober := &fakeProber{release: make(chan struct{})}
	gate := NewGate(prober)

	var wg sync.WaitGroup
	results := make(chan Decision, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- gate.Enter(context.Background(), "/search")
		}()
	}
	require.Eventually(t, func() bool { return prober.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(prober.release)
	wg.Wait()
	close(results)

	for decision := range results {
		require.Equal(t, domain.GateAuthenticated, decision.State)
	}
	require.Equal(t, int32(1), prober.calls.Load())
}

func TestGate_ConcurrentInvalidateRedirectsOnce(t *testing.T) {
	recorder := &redirectRecorder{}
	gate := NewGate(&fakeProber{}, WithRedirect(recorder.record))
	require.Equal(t, domain.GateAuthenticated, gate.Enter(context.Background(), "/search").State)

	var wg sync.WaitGroup
	var transitions atomic.Int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if gate.Invalidate(context.Background()) {
				transitions.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), transitions.Load())
	require.Equal(t, 1, recorder.count())
	require.Equal(t, domain.GateUnauthenticated, gate.State())
	require.Equal(t, "/search", recorder.redirects[0].ReturnURL)
}

func TestGate_EstablishedEventReprobesAndReloads(t *testing.T) {
	prober := &fakeProber{err: domain.ErrSessionExpired}
	events := NewEvents()
	gate := NewGate(prober)
	unsubscribe := gate.Watch(events)
	defer unsubscribe()
	var loads atomic.Int32
	gate.OnAuthenticated(func(context.Context) error {
		loads.Add(1)
		return nil
	})

	require.Equal(t, domain.GateUnauthenticated, gate.Enter(context.Background(), "/search").State)

	prober.setErr(nil)
	events.Publish(context.Background(), domain.SessionEstablished)
	require.Equal(t, domain.GateAuthenticated, gate.State())
	require.Equal(t, int32(1), loads.Load())

	var invalidations atomic.Int32
	events.Subscribe(func(_ context.Context, event domain.SessionEvent) {
		if event.Kind == domain.SessionInvalidated {
			invalidations.Add(1)
		}
	})
	gate.Invalidate(context.Background())
	gate.Invalidate(context.Background())
	require.Equal(t, int32(1), invalidations.Load())
}
