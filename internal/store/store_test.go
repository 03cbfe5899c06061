package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evcraddock/eventos/internal/client"
	"github.com/evcraddock/eventos/internal/comment"
	"github.com/evcraddock/eventos/internal/config"
	"github.com/evcraddock/eventos/internal/db"
	"github.com/evcraddock/eventos/internal/event"
	"github.com/evcraddock/eventos/internal/web"
)

type fakeAPI struct {
	mu    sync.Mutex
	calls int

	list func(ctx context.Context, eventID int64) ([]*comment.Comment, error)
	add  func(ctx context.Context, eventID int64, in comment.NewComment) (*comment.Comment, error)
	del  func(ctx context.Context, eventID, commentID int64) (*comment.Comment, error)
}

func (f *fakeAPI) count() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeAPI) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeAPI) ListComments(ctx context.Context, eventID int64) ([]*comment.Comment, error) {
	f.count()
	if f.list == nil {
		return []*comment.Comment{}, nil
	}
	return f.list(ctx, eventID)
}

func (f *fakeAPI) AddComment(ctx context.Context, eventID int64, in comment.NewComment) (*comment.Comment, error) {
	f.count()
	if f.add == nil {
		return &comment.Comment{EventID: eventID, Author: in.Author, Body: in.Body}, nil
	}
	return f.add(ctx, eventID, in)
}

func (f *fakeAPI) DeleteComment(ctx context.Context, eventID, commentID int64) (*comment.Comment, error) {
	f.count()
	if f.del == nil {
		return &comment.Comment{ID: commentID, EventID: eventID}, nil
	}
	return f.del(ctx, eventID, commentID)
}

// liveAPI runs the real HTTP handlers over a temp database and returns a
// client for them plus one seeded event.
func liveAPI(t *testing.T) (*client.Client, *event.Event) {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	srv, err := web.NewServer(d, config.Config{Port: 8080, CORSOrigin: "*", PingMessage: "ping"})
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	e, err := event.NewRepository(d).Insert(context.Background(), event.Input{Title: "Semana Acadêmica", Date: "2026-11-03"})
	require.NoError(t, err)

	return client.New(ts.URL + "/api"), e
}

func recorder(s *CommentStore) func() []State {
	var mu sync.Mutex
	var states []State
	s.Subscribe(func(st State) {
		mu.Lock()
		states = append(states, st)
		mu.Unlock()
	})
	return func() []State {
		mu.Lock()
		defer mu.Unlock()
		return append([]State(nil), states...)
	}
}

func TestNewStoreIsEmpty(t *testing.T) {
	s := New(&fakeAPI{})
	st := s.State()
	assert.NotNil(t, st.Comments)
	assert.Empty(t, st.Comments)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Err)
}

func TestInvalidEventIssuesNoRequest(t *testing.T) {
	api := &fakeAPI{list: func(context.Context, int64) ([]*comment.Comment, error) {
		return []*comment.Comment{{ID: 1, EventID: 1}}, nil
	}}
	s := New(api)
	ctx := context.Background()

	require.NoError(t, s.Fetch(ctx, 1))
	require.Len(t, s.State().Comments, 1)
	require.Equal(t, 1, api.Calls())

	for _, id := range []int64{0, -3} {
		require.NoError(t, s.Fetch(ctx, id))
		assert.Empty(t, s.State().Comments)

		assert.ErrorIs(t, s.Add(ctx, id, "Ana", "Oi", nil), ErrInvalidEvent)
		assert.ErrorIs(t, s.Delete(ctx, id, 7), ErrInvalidEvent)
	}

	assert.Equal(t, 1, api.Calls())
	assert.Empty(t, s.State().Err)
}

func TestFetchEmptyEvent(t *testing.T) {
	api, e := liveAPI(t)
	s := New(api)
	states := recorder(s)

	require.NoError(t, s.Fetch(context.Background(), e.ID))

	st := s.State()
	assert.NotNil(t, st.Comments)
	assert.Empty(t, st.Comments)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Err)

	got := states()
	require.GreaterOrEqual(t, len(got), 2)
	assert.True(t, got[0].Loading)
	assert.False(t, got[len(got)-1].Loading)
}

func TestFetchTimeoutClearsComments(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)

	fast := &fakeAPI{list: func(context.Context, int64) ([]*comment.Comment, error) {
		return []*comment.Comment{{ID: 1, EventID: 1, Author: "Ana"}}, nil
	}}

	// Seed a list and an error so the fetch has something to clear and
	// something to leave alone.
	s := New(fast)
	require.NoError(t, s.Fetch(context.Background(), 1))
	fast.add = func(context.Context, int64, comment.NewComment) (*comment.Comment, error) {
		return nil, &client.APIError{StatusCode: http.StatusBadRequest, Message: "autor is required"}
	}
	require.Error(t, s.Add(context.Background(), 1, "", "Oi", nil))
	require.Len(t, s.State().Comments, 1)

	s.api = client.New(slow.URL + "/api")
	s.timeout = 50 * time.Millisecond

	require.NoError(t, s.Fetch(context.Background(), 1))

	st := s.State()
	assert.Empty(t, st.Comments)
	assert.False(t, st.Loading)
	assert.Equal(t, "autor is required", st.Err)
}

func TestFetchServerErrorIsSilent(t *testing.T) {
	api := &fakeAPI{list: func(context.Context, int64) ([]*comment.Comment, error) {
		return nil, &client.APIError{StatusCode: http.StatusInternalServerError, Message: "failed to fetch comments"}
	}}
	s := New(api)

	require.NoError(t, s.Fetch(context.Background(), 5))
	st := s.State()
	assert.Empty(t, st.Comments)
	assert.Empty(t, st.Err)
	assert.False(t, st.Loading)
}

func TestAddRefetches(t *testing.T) {
	api, e := liveAPI(t)
	s := New(api)
	ctx := context.Background()

	require.NoError(t, s.Fetch(ctx, e.ID))
	require.NoError(t, s.Add(ctx, e.ID, "Ana", "Ótimo evento!", nil))

	st := s.State()
	require.Len(t, st.Comments, 1)
	assert.Equal(t, "Ana", st.Comments[0].Author)
	assert.Equal(t, "Ótimo evento!", st.Comments[0].Body)
	assert.Equal(t, e.ID, st.Comments[0].EventID)
	assert.Nil(t, st.Comments[0].UserID)
	assert.Empty(t, st.Err)
	assert.False(t, st.Loading)
}

func TestAddFailureKeepsComments(t *testing.T) {
	api, e := liveAPI(t)
	s := New(api)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, e.ID, "Ana", "Primeiro", nil))
	before := s.State().Comments
	require.Len(t, before, 1)

	err := s.Add(ctx, e.ID, "   ", "Segundo", nil)
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	st := s.State()
	assert.Equal(t, before, st.Comments)
	assert.NotEmpty(t, st.Err)
}

func TestAddToMissingEvent(t *testing.T) {
	api, _ := liveAPI(t)
	s := New(api)

	err := s.Add(context.Background(), 999, "Ana", "Oi", nil)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, apiErr.Message, s.State().Err)
}

func TestSuccessfulWriteClearsErr(t *testing.T) {
	api, e := liveAPI(t)
	s := New(api)
	ctx := context.Background()

	require.Error(t, s.Add(ctx, e.ID, "", "", nil))
	require.NotEmpty(t, s.State().Err)

	require.NoError(t, s.Add(ctx, e.ID, "Ana", "Oi", nil))
	assert.Empty(t, s.State().Err)
}

func TestDeleteMissingComment(t *testing.T) {
	api, e := liveAPI(t)
	s := New(api)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, e.ID, "Ana", "Oi", nil))
	before := s.State().Comments

	err := s.Delete(ctx, e.ID, 7)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	st := s.State()
	assert.NotEmpty(t, st.Err)
	assert.Equal(t, before, st.Comments)
}

func TestDeleteRefetches(t *testing.T) {
	api, e := liveAPI(t)
	s := New(api)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, e.ID, "Ana", "Primeiro", nil))
	require.NoError(t, s.Add(ctx, e.ID, "Bruno", "Segundo", nil))
	require.Len(t, s.State().Comments, 2)

	first := s.State().Comments[0]
	require.NoError(t, s.Delete(ctx, e.ID, first.ID))

	st := s.State()
	require.Len(t, st.Comments, 1)
	assert.Equal(t, "Bruno", st.Comments[0].Author)
}

func TestWriteTimeout(t *testing.T) {
	api := &fakeAPI{add: func(ctx context.Context, _ int64, _ comment.NewComment) (*comment.Comment, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	s := New(api, WithTimeout(20*time.Millisecond))

	err := s.Add(context.Background(), 1, "Ana", "Oi", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "request timed out", s.State().Err)
	assert.Equal(t, 1, api.Calls())
}

func TestOverlappingFetchesLastWins(t *testing.T) {
	gates := map[int64]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}
	api := &fakeAPI{list: func(_ context.Context, eventID int64) ([]*comment.Comment, error) {
		<-gates[eventID]
		return []*comment.Comment{{ID: eventID, EventID: eventID}}, nil
	}}
	s := New(api)
	ctx := context.Background()

	done1 := make(chan struct{})
	done2 := make(chan struct{})
	go func() { _ = s.Fetch(ctx, 1); close(done1) }()
	go func() { _ = s.Fetch(ctx, 2); close(done2) }()

	close(gates[2])
	<-done2
	close(gates[1])
	<-done1

	st := s.State()
	require.Len(t, st.Comments, 1)
	assert.Equal(t, int64(1), st.Comments[0].EventID)
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	s := New(&fakeAPI{})
	var n int
	unsubscribe := s.Subscribe(func(State) { n++ })

	require.NoError(t, s.Fetch(context.Background(), 0))
	assert.Equal(t, 1, n)

	unsubscribe()
	unsubscribe()
	require.NoError(t, s.Fetch(context.Background(), 0))
	assert.Equal(t, 1, n)
}

func TestStateIsSnapshot(t *testing.T) {
	api := &fakeAPI{list: func(context.Context, int64) ([]*comment.Comment, error) {
		return []*comment.Comment{{ID: 1}}, nil
	}}
	s := New(api)
	require.NoError(t, s.Fetch(context.Background(), 1))

	st := s.State()
	st.Comments[0] = nil
	st.Comments = append(st.Comments, &comment.Comment{ID: 2})

	again := s.State()
	require.Len(t, again.Comments, 1)
	assert.NotNil(t, again.Comments[0])
}

func TestClosedStore(t *testing.T) {
	api := &fakeAPI{}
	s := New(api)
	s.Close()
	ctx := context.Background()

	assert.ErrorIs(t, s.Fetch(ctx, 1), ErrNoProvider)
	assert.ErrorIs(t, s.Add(ctx, 1, "Ana", "Oi", nil), ErrNoProvider)
	assert.ErrorIs(t, s.Delete(ctx, 1, 2), ErrNoProvider)
	assert.PanicsWithValue(t, ErrNoProvider, func() { s.State() })
	assert.PanicsWithValue(t, ErrNoProvider, func() { s.Subscribe(func(State) {}) })
	assert.Equal(t, 0, api.Calls())
}

func TestNilStore(t *testing.T) {
	var s *CommentStore
	ctx := context.Background()

	assert.ErrorIs(t, s.Fetch(ctx, 1), ErrNoProvider)
	assert.ErrorIs(t, s.Add(ctx, 1, "Ana", "Oi", nil), ErrNoProvider)
	assert.ErrorIs(t, s.Delete(ctx, 1, 2), ErrNoProvider)
	assert.PanicsWithValue(t, ErrNoProvider, func() { s.State() })
	assert.NotPanics(t, s.Close)
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"api error", &client.APIError{StatusCode: 404, Message: "comentario 7 not found"}, "comentario 7 not found"},
		{"api error without body", &client.APIError{StatusCode: 502}, "HTTP 502"},
		{"timeout", context.DeadlineExceeded, "request timed out"},
		{"canceled", context.Canceled, "request canceled"},
		{"other", errors.New("connection refused"), "connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err))
		})
	}
}
