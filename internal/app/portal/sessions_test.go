package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	portalmemory "github.com/Apurer/pawmatch/internal/domains/portal/adapters/memory"
	portaldomain "github.com/Apurer/pawmatch/internal/domains/portal/domain"
)

// gatedStore holds every Get until release is closed.
type gatedStore struct {
	*portalmemory.SessionStore
	entered chan struct{}
	release chan struct{}
}

func (s *gatedStore) Get(ctx context.Context, id string) (*portaldomain.Snapshot, error) {
	s.entered <- struct{}{}
	<-s.release
	return s.SessionStore.Get(ctx, id)
}

func newGatedSessions(t *testing.T, ids ...string) (*Sessions, *gatedStore) {
	t.Helper()
	store := &gatedStore{
		SessionStore: portalmemory.NewSessionStore(),
		entered:      make(chan struct{}, 8),
		release:      make(chan struct{}),
	}
	for _, id := range ids {
		snapshot, err := portaldomain.NewSnapshot(id, time.Now(), time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Save(context.Background(), snapshot))
	}
	sessions := NewSessions(store, SessionsConfig{
		BaseURL: "http://dogs.invalid",
		TTL:     time.Hour,
		HashKey: []byte("0123456789abcdef0123456789abcdef"),
	})
	t.Cleanup(sessions.Close)
	return sessions, store
}

func requestWithSession(t *testing.T, s *Sessions, id string) *http.Request {
	t.Helper()
	encoded, err := s.codec.Encode(CookieName, id)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, "/search", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: encoded})
	return r
}

func TestSessions_SlowRestoreDoesNotBlockOtherVisitors(t *testing.T) {
	sessions, store := newGatedSessions(t, "stored")

	r := requestWithSession(t, sessions, "stored")
	restored := make(chan *Visitor, 1)
	go func() {
		v, _, err := sessions.Acquire(context.Background(), r)
		if err == nil {
			restored <- v
		}
		close(restored)
	}()
	<-store.entered

	fresh, created, err := sessions.Acquire(context.Background(), httptest.NewRequest(http.MethodGet, "/auth", nil))
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, 1, sessions.Live())

	close(store.release)
	v, ok := <-restored
	require.True(t, ok)
	require.Equal(t, "stored", v.ID)
	require.NotEqual(t, fresh.ID, v.ID)
	require.Equal(t, 2, sessions.Live())
}

func TestSessions_ConcurrentRestoreSharesOneVisitor(t *testing.T) {
	sessions, store := newGatedSessions(t, "stored")

	const requests = 3
	visitors := make([]*Visitor, requests)
	var wg sync.WaitGroup
	for i := range requests {
		r := requestWithSession(t, sessions, "stored")
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, created, err := sessions.Acquire(context.Background(), r)
			if err == nil && !created {
				visitors[i] = v
			}
		}()
	}
	for range requests {
		<-store.entered
	}
	close(store.release)
	wg.Wait()

	require.NotNil(t, visitors[0])
	for _, v := range visitors[1:] {
		require.Same(t, visitors[0], v)
	}
	require.Equal(t, 1, sessions.Live())
}
