package twitch_poll

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	twitch_client "twitch_poll_client/internal/client/twitch-client"
	"twitch_poll_client/internal/models"
	twitch_session "twitch_poll_client/internal/service/twitch-session"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	body   string
}

// fakeTwitch answers poll calls from per-method queues. The last queued body
// is repeated once the queue runs dry.
type fakeTwitch struct {
	srv *httptest.Server

	mu       sync.Mutex
	bodies   map[string][]string
	statuses map[string]int
	gates    map[string]chan struct{}
	requests []recordedRequest
}

func newFakeTwitch(t *testing.T) *fakeTwitch {
	ft := &fakeTwitch{
		bodies:   map[string][]string{},
		statuses: map[string]int{},
		gates:    map[string]chan struct{}{},
	}
	ft.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		ft.mu.Lock()
		ft.requests = append(ft.requests, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			body:   string(body),
		})
		gate := ft.gates[r.Method]
		status := ft.statuses[r.Method]
		queue := ft.bodies[r.Method]
		resp := `{"data":[]}`
		if len(queue) > 0 {
			resp = queue[0]
			if len(queue) > 1 {
				ft.bodies[r.Method] = queue[1:]
			}
		}
		ft.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}

		if status != 0 {
			w.WriteHeader(status)
		}
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(ft.srv.Close)
	return ft
}

func (ft *fakeTwitch) respond(method string, bodies ...string) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.bodies[method] = bodies
}

func (ft *fakeTwitch) status(method string, code int) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.statuses[method] = code
}

// block holds every request with the method until the returned func is called.
func (ft *fakeTwitch) block(method string) func() {
	gate := make(chan struct{})
	ft.mu.Lock()
	ft.gates[method] = gate
	ft.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

func (ft *fakeTwitch) recorded() []recordedRequest {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return append([]recordedRequest(nil), ft.requests...)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newSession(t *testing.T, ft *fakeTwitch) *twitch_session.Session {
	s := twitch_session.NewSession(twitch_session.Config{
		ClientID:       "cid",
		APIBaseURL:     ft.srv.URL,
		IDBaseURL:      ft.srv.URL,
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, s.RestoreState([]byte(`{"format":"twitch-session/v1","oauth_token":"user-token","identity":{"id":"42","login":"streamer"}}`)))
	return s
}

func waitIdle(t *testing.T, p *Poll) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := p.WaitIdle(ctx)
	require.False(t, errors.Is(err, context.DeadlineExceeded), "poll request never completed")
	return err
}

const (
	createdBody   = `{"data":[{"id":"p1","title":"Best?","status":"ACTIVE","duration":60,"choices":[{"id":"a1","title":"A","votes":0},{"id":"a2","title":"B","votes":0}]}]}`
	refreshedBody = `{"data":[{"id":"p1","title":"Best?","status":"ACTIVE","duration":60,"choices":[{"id":"a1","title":"A","votes":5},{"id":"a2","title":"B","votes":3}]}]}`
)

func TestCreate_Validation(t *testing.T) {
	long := func(n int) string {
		s := make([]rune, n)
		for i := range s {
			s[i] = 'й'
		}
		return string(s)
	}

	tests := []struct {
		name     string
		title    string
		duration int
		choices  []string
		err      error
	}{
		{name: "duration too short", title: "t", duration: 14, choices: []string{"a", "b"}, err: ErrInvalidDuration},
		{name: "duration too long", title: "t", duration: 1801, choices: []string{"a", "b"}, err: ErrInvalidDuration},
		{name: "title too long", title: long(61), duration: 60, choices: []string{"a", "b"}, err: ErrTitleTooLong},
		{name: "one choice", title: "t", duration: 60, choices: []string{"a"}, err: ErrChoicesCount},
		{name: "six choices", title: "t", duration: 60, choices: []string{"a", "b", "c", "d", "e", "f"}, err: ErrChoicesCount},
		{name: "choice too long", title: "t", duration: 60, choices: []string{"a", long(26)}, err: ErrChoiceTitleTooLong},
		{name: "limits are inclusive", title: long(60), duration: 15, choices: []string{long(25), "b", "c", "d", "e"}},
		{name: "max duration", title: "t", duration: 1800, choices: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.title, tt.duration, tt.choices)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.err), "got %v", err)
		})
	}

	t.Run("nothing is sent for invalid arguments", func(t *testing.T) {
		ft := newFakeTwitch(t)
		p, err := Create(context.Background(), newSession(t, ft), "t", 10, []string{"a", "b"})
		assert.Nil(t, p)
		assert.True(t, errors.Is(err, ErrInvalidDuration))
		assert.Empty(t, ft.recorded())
	})
}

func TestCreate_RequiresTokenAndIdentity(t *testing.T) {
	ft := newFakeTwitch(t)

	cfg := twitch_session.Config{ClientID: "cid", APIBaseURL: ft.srv.URL, IDBaseURL: ft.srv.URL}

	_, err := Create(context.Background(), twitch_session.NewSession(cfg), "t", 60, []string{"a", "b"})
	assert.Equal(t, twitch_session.ErrNoToken, err)

	s := twitch_session.NewSessionWithToken(cfg, &oauth2.Token{AccessToken: "user-token"})
	_, err = Create(context.Background(), s, "t", 60, []string{"a", "b"})
	assert.Equal(t, twitch_session.ErrNoIdentity, err)

	assert.Empty(t, ft.recorded())
}

func TestPoll_EndToEnd(t *testing.T) {
	ft := newFakeTwitch(t)
	ft.respond(http.MethodPost, createdBody)
	ft.respond(http.MethodGet, refreshedBody)
	clock := newFakeClock()

	p, err := Create(context.Background(), newSession(t, ft), "Best?", 60, []string{"A", "B"}, WithClock(clock))
	require.NoError(t, err)
	require.NoError(t, waitIdle(t, p))

	assert.True(t, p.Started())
	assert.Equal(t, "p1", p.ID())
	assert.Equal(t, models.PollActive, p.Status())
	assert.Equal(t, []Answer{{Title: "A", ID: "a1"}, {Title: "B", ID: "a2"}}, p.Answers())

	reqs := ft.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/helix/polls", reqs[0].path)
	assert.JSONEq(t, `{"broadcaster_id":"42","title":"Best?","choices":[{"title":"A"},{"title":"B"}],"duration":60}`, reqs[0].body)

	done := make(chan error, 1)
	require.True(t, p.Refresh(context.Background(), func(got *Poll, err error) {
		assert.Same(t, p, got)
		done <- err
	}))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("refresh callback never ran")
	}

	assert.Equal(t, []Answer{{Title: "A", ID: "a1", Votes: 5}, {Title: "B", ID: "a2", Votes: 3}}, p.Answers())
	assert.Equal(t, "broadcaster_id=42&id=p1", ft.recorded()[1].query)
}

func TestPoll_InFlightGuard(t *testing.T) {
	ft := newFakeTwitch(t)
	ft.respond(http.MethodPost, createdBody)
	ft.respond(http.MethodGet, refreshedBody)

	release := ft.block(http.MethodPost)
	p, err := Create(context.Background(), newSession(t, ft), "Best?", 60, []string{"A", "B"})
	require.NoError(t, err)

	assert.True(t, p.InFlight())
	assert.False(t, p.Refresh(context.Background(), nil), "not started yet")
	release()
	require.NoError(t, waitIdle(t, p))

	release = ft.block(http.MethodGet)
	require.True(t, p.Refresh(context.Background(), nil))
	assert.False(t, p.Refresh(context.Background(), nil))
	assert.False(t, p.Terminate(context.Background(), nil))
	assert.False(t, p.Archive(context.Background(), nil))
	release()
	require.NoError(t, waitIdle(t, p))

	assert.False(t, p.InFlight())
	assert.Len(t, ft.recorded(), 2)
	assert.True(t, p.Refresh(context.Background(), nil))
	require.NoError(t, waitIdle(t, p))
	assert.Len(t, ft.recorded(), 3)
}

func TestPoll_CreationFailure(t *testing.T) {
	ft := newFakeTwitch(t)
	ft.status(http.MethodPost, http.StatusBadRequest)
	ft.respond(http.MethodPost, `{"error":"Bad Request","status":400,"message":"invalid duration"}`)

	p, err := Create(context.Background(), newSession(t, ft), "Best?", 60, []string{"A", "B"})
	require.NoError(t, err)

	err = waitIdle(t, p)
	var apiErr *models.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "invalid duration", apiErr.Message)

	assert.False(t, p.Started())
	assert.False(t, p.Ongoing())
	assert.Empty(t, p.ID())
	assert.Equal(t, time.Duration(0), p.Remaining())
	assert.False(t, p.Refresh(context.Background(), nil))
	assert.False(t, p.Terminate(context.Background(), nil))
	assert.Len(t, ft.recorded(), 1)
}

func TestPoll_OngoingEstimate(t *testing.T) {
	ft := newFakeTwitch(t)
	ft.respond(http.MethodPost, createdBody)
	clock := newFakeClock()

	p, err := Create(context.Background(), newSession(t, ft), "Best?", 60, []string{"A", "B"}, WithClock(clock))
	require.NoError(t, err)
	require.NoError(t, waitIdle(t, p))

	assert.True(t, p.Ongoing())
	assert.Equal(t, 60*time.Second, p.Remaining())

	clock.Advance(59 * time.Second)
	assert.True(t, p.Ongoing())
	assert.Equal(t, time.Second, p.Remaining())

	clock.Advance(time.Second)
	assert.False(t, p.Ongoing())
	assert.Equal(t, time.Duration(0), p.Remaining())
}

func TestPoll_TerminateThenRefresh(t *testing.T) {
	ft := newFakeTwitch(t)
	ft.respond(http.MethodPost, createdBody)
	ft.respond(http.MethodPatch, `{"data":[{"id":"p1","status":"TERMINATED","choices":[{"id":"a1","title":"A","votes":2},{"id":"a2","title":"B","votes":1}]}]}`)
	ft.respond(http.MethodGet, refreshedBody)
	clock := newFakeClock()

	p, err := Create(context.Background(), newSession(t, ft), "Best?", 60, []string{"A", "B"}, WithClock(clock))
	require.NoError(t, err)
	require.NoError(t, waitIdle(t, p))

	require.True(t, p.Terminate(context.Background(), nil))
	require.NoError(t, waitIdle(t, p))

	assert.False(t, p.Ongoing())
	assert.Equal(t, models.PollTerminated, p.Status())
	assert.Equal(t, []Answer{{Title: "A", ID: "a1", Votes: 2}, {Title: "B", ID: "a2", Votes: 1}}, p.Answers())

	reqs := ft.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPatch, reqs[1].method)
	assert.JSONEq(t, `{"broadcaster_id":"42","id":"p1","status":"TERMINATED"}`, reqs[1].body)

	require.True(t, p.Refresh(context.Background(), nil))
	require.NoError(t, waitIdle(t, p))
	assert.False(t, p.Ongoing())
	assert.Equal(t, 5, p.Answers()[0].Votes)
	assert.Equal(t, models.PollActive, p.Status(), "status follows the server, ongoing does not")
}

func TestPoll_Archive(t *testing.T) {
	ft := newFakeTwitch(t)
	ft.respond(http.MethodPost, createdBody)
	ft.respond(http.MethodPatch, `{"data":[{"id":"p1","status":"ARCHIVED","choices":[]}]}`)

	p, err := Create(context.Background(), newSession(t, ft), "Best?", 60, []string{"A", "B"})
	require.NoError(t, err)
	require.NoError(t, waitIdle(t, p))

	require.True(t, p.Archive(context.Background(), nil))
	require.NoError(t, waitIdle(t, p))

	assert.False(t, p.Ongoing())
	assert.JSONEq(t, `{"broadcaster_id":"42","id":"p1","status":"ARCHIVED"}`, ft.recorded()[1].body)
	assert.Equal(t, []Answer{{Title: "A", ID: "a1"}, {Title: "B", ID: "a2"}}, p.Answers(), "absent choices keep their state")
}

func TestPoll_RequestTimeoutClearsGuard(t *testing.T) {
	ft := newFakeTwitch(t)
	ft.respond(http.MethodPost, createdBody)

	p, err := Create(context.Background(), newSession(t, ft), "Best?", 60, []string{"A", "B"}, WithRequestTimeout(100*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, waitIdle(t, p))

	release := ft.block(http.MethodGet)
	defer release()

	require.True(t, p.Refresh(context.Background(), nil))
	err = waitIdle(t, p)
	assert.True(t, errors.Is(err, twitch_client.ErrRequestTimeout), "got %v", err)
	assert.False(t, p.InFlight())
	assert.True(t, p.Refresh(context.Background(), nil))
}

func TestPoll_UndecodableSnapshot(t *testing.T) {
	ft := newFakeTwitch(t)
	ft.respond(http.MethodPost, `{"data":[]}`)

	p, err := Create(context.Background(), newSession(t, ft), "Best?", 60, []string{"A", "B"})
	require.NoError(t, err)

	err = waitIdle(t, p)
	assert.Error(t, err)
	assert.False(t, p.Started())
	assert.False(t, p.InFlight())
}

func TestPoll_Watch(t *testing.T) {
	ft := newFakeTwitch(t)
	ft.respond(http.MethodPost, createdBody)
	ft.respond(http.MethodGet, refreshedBody)
	clock := newFakeClock()

	p, err := Create(context.Background(), newSession(t, ft), "Best?", 60, []string{"A", "B"}, WithClock(clock))
	require.NoError(t, err)

	updates := 0
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = p.Watch(ctx, 10*time.Millisecond, func(*Poll) {
		updates++
		clock.Advance(time.Minute)
	})
	require.NoError(t, err)

	assert.Equal(t, 2, updates, "one refresh while ongoing, one final")
	assert.Len(t, ft.recorded(), 3)
	assert.Equal(t, 5, p.Answers()[0].Votes)
}

func TestPoll_WatchCreationFailure(t *testing.T) {
	ft := newFakeTwitch(t)
	ft.status(http.MethodPost, http.StatusUnauthorized)
	ft.respond(http.MethodPost, `{"error":"Unauthorized","status":401}`)

	p, err := Create(context.Background(), newSession(t, ft), "Best?", 60, []string{"A", "B"})
	require.NoError(t, err)

	err = p.Watch(context.Background(), 10*time.Millisecond, nil)
	var apiErr *models.APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestPoll_WatchRejectsNonPositiveInterval(t *testing.T) {
	ft := newFakeTwitch(t)
	ft.respond(http.MethodPost, createdBody)

	p, err := Create(context.Background(), newSession(t, ft), "Best?", 60, []string{"A", "B"})
	require.NoError(t, err)
	require.NoError(t, waitIdle(t, p))

	for _, interval := range []time.Duration{0, -time.Second} {
		assert.NotPanics(t, func() {
			err = p.Watch(context.Background(), interval, nil)
		})
		assert.True(t, errors.Is(err, ErrInvalidInterval), "got %v", err)
	}
	assert.Len(t, ft.recorded(), 1)
}

func TestPoll_NonPositiveRequestTimeoutKeepsDefault(t *testing.T) {
	ft := newFakeTwitch(t)
	ft.respond(http.MethodPost, createdBody)

	p, err := Create(context.Background(), newSession(t, ft), "Best?", 60, []string{"A", "B"}, WithRequestTimeout(0))
	require.NoError(t, err)
	require.NoError(t, waitIdle(t, p))
	assert.True(t, p.Started())
}

// syncSession completes every call before Send returns.
type syncSession struct {
	mu     sync.Mutex
	reqs   []twitch_client.Request
	bodies map[string]string
}

func (s *syncSession) Send(ctx context.Context, req twitch_client.Request, h twitch_client.ResponseHandler) *twitch_client.Call {
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	body := s.bodies[req.Method]
	s.mu.Unlock()

	if h.OnSuccess != nil {
		_ = h.OnSuccess([]byte(body))
	}
	return nil
}

func (s *syncSession) Identity() (models.Identity, bool) {
	return models.Identity{ID: "42", Login: "streamer"}, true
}

func (s *syncSession) HasToken() bool {
	return true
}

func TestPoll_SynchronousSession(t *testing.T) {
	s := &syncSession{bodies: map[string]string{
		http.MethodPost:  createdBody,
		http.MethodGet:   refreshedBody,
		http.MethodPatch: refreshedBody,
	}}

	done := make(chan *Poll, 1)
	go func() {
		p, err := Create(context.Background(), s, "Best?", 60, []string{"A", "B"})
		assert.NoError(t, err)
		assert.True(t, p.Refresh(context.Background(), nil))
		assert.True(t, p.Terminate(context.Background(), nil))
		done <- p
	}()

	select {
	case p := <-done:
		assert.False(t, p.InFlight())
		assert.False(t, p.Ongoing())
		assert.Equal(t, 5, p.Answers()[0].Votes)
		assert.Len(t, s.reqs, 3)
	case <-time.After(5 * time.Second):
		t.Fatal("poll deadlocked on a synchronous session")
	}
}
