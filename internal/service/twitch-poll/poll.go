package twitch_poll

import (
	"context"
	"sync"
	"time"

	twitch_client "twitch_poll_client/internal/client/twitch-client"
	"twitch_poll_client/internal/models"
	twitch_session "twitch_poll_client/internal/service/twitch-session"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const defaultRequestTimeout = time.Second * 10

// Session is the part of twitch_session.Session a poll needs. Send may run
// the handler before it returns.
type Session interface {
	Send(ctx context.Context, req twitch_client.Request, h twitch_client.ResponseHandler) *twitch_client.Call
	Identity() (models.Identity, bool)
	HasToken() bool
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// Now carries a monotonic reading, so Sub is immune to wall clock jumps.
func (systemClock) Now() time.Time {
	return time.Now()
}

type Option func(*Poll)

func WithClock(clock Clock) Option {
	return func(p *Poll) {
		p.clock = clock
	}
}

// WithRequestTimeout bounds each create, refresh and end call. An expired
// call clears the in-flight guard and is reported as
// twitch_client.ErrRequestTimeout. Non-positive values keep the default.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(p *Poll) {
		if timeout > 0 {
			p.requestTimeout = timeout
		}
	}
}

// Poll mirrors one poll running on the broadcaster's channel. At most one
// request is outstanding at a time, so responses apply in issue order.
type Poll struct {
	session        Session
	clock          Clock
	requestTimeout time.Duration

	broadcasterID string
	title         string
	duration      time.Duration

	mu         sync.Mutex
	answers    []*answer
	id         string
	status     models.PollStatus
	startTime  time.Time
	started    bool
	terminated bool
	inFlight   bool
	idle       chan struct{}
	lastErr    error
}

// Create validates the arguments and issues the creation call right away.
// Invalid arguments fail before anything is sent. A poll whose creation fails
// stays unstarted for good; build a new one to retry.
func Create(ctx context.Context, session Session, title string, durationSeconds int, choices []string, opts ...Option) (*Poll, error) {
	if !session.HasToken() {
		return nil, twitch_session.ErrNoToken
	}

	identity, ok := session.Identity()
	if !ok {
		return nil, twitch_session.ErrNoIdentity
	}

	if err := Validate(title, durationSeconds, choices); err != nil {
		return nil, err
	}

	p := &Poll{
		session:        session,
		clock:          systemClock{},
		requestTimeout: defaultRequestTimeout,
		broadcasterID:  identity.ID,
		title:          title,
		duration:       time.Duration(durationSeconds) * time.Second,
		answers:        make([]*answer, 0, len(choices)),
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, choice := range choices {
		p.answers = append(p.answers, &answer{title: choice})
	}

	p.mu.Lock()
	idle := p.begin()
	p.mu.Unlock()

	logrus.Infof("creating poll %q for broadcaster %s", title, identity.ID)
	p.send(ctx, twitch_client.CreatePollRequest(identity.ID, title, durationSeconds, choices), idle, p.onCreated, nil)

	return p, nil
}

func (p *Poll) onCreated(models.PollData) {
	p.startTime = p.clock.Now()
	p.started = true
}

func (p *Poll) onEnded(models.PollData) {
	p.terminated = true
}

// Refresh fetches the current tallies. It returns false without sending when
// a request is in flight or the poll never started. Refreshing an ended poll
// is allowed on purpose: late votes keep showing up in the final tally.
func (p *Poll) Refresh(ctx context.Context, onDone func(*Poll, error)) bool {
	p.mu.Lock()
	if !p.launchable() {
		p.mu.Unlock()
		return false
	}
	idle := p.begin()
	req := twitch_client.GetPollRequest(p.broadcasterID, p.id)
	p.mu.Unlock()

	p.send(ctx, req, idle, nil, onDone)
	return true
}

// Terminate ends the poll early, keeping it visible with its results. Same
// guard as Refresh. On success the poll reads as not ongoing from then on.
func (p *Poll) Terminate(ctx context.Context, onDone func(*Poll, error)) bool {
	return p.end(ctx, models.PollTerminated, onDone)
}

// Archive ends the poll and hides it from the channel.
func (p *Poll) Archive(ctx context.Context, onDone func(*Poll, error)) bool {
	return p.end(ctx, models.PollArchived, onDone)
}

func (p *Poll) end(ctx context.Context, status models.PollStatus, onDone func(*Poll, error)) bool {
	p.mu.Lock()
	if !p.launchable() {
		p.mu.Unlock()
		return false
	}
	idle := p.begin()
	req := twitch_client.EndPollRequest(p.broadcasterID, p.id, status)
	p.mu.Unlock()

	p.send(ctx, req, idle, p.onEnded, onDone)
	return true
}

func (p *Poll) launchable() bool {
	return !p.inFlight && p.started && p.id != ""
}

// begin marks a request in flight. It must be called with p.mu held, and the
// returned channel handed to send once the lock is released.
func (p *Poll) begin() chan struct{} {
	idle := make(chan struct{})
	p.inFlight = true
	p.idle = idle
	return idle
}

// send must be called without p.mu held: the handlers take it, and a Session
// may complete the call before Send returns.
func (p *Poll) send(ctx context.Context, req twitch_client.Request, idle chan struct{}, apply func(models.PollData), onDone func(*Poll, error)) {
	ctx, cancel := context.WithTimeout(ctx, p.requestTimeout)

	p.session.Send(ctx, req, twitch_client.ResponseHandler{
		OnSuccess: func(body []byte) error {
			defer cancel()
			err := p.complete(idle, body, apply)
			if onDone != nil {
				onDone(p, err)
			}
			return err
		},
		OnError: func(err error) {
			defer cancel()
			p.fail(idle, err)
			if onDone != nil {
				onDone(p, err)
			}
		},
	})
}

func (p *Poll) complete(idle chan struct{}, body []byte, apply func(models.PollData)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer p.release(idle)

	data, err := twitch_client.DecodePoll(body)
	if err != nil {
		p.lastErr = errors.Wrap(err, "DecodePoll")
		return p.lastErr
	}

	p.merge(data)
	if apply != nil {
		apply(data)
	}
	p.lastErr = nil

	return nil
}

func (p *Poll) fail(idle chan struct{}, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer p.release(idle)

	logrus.Infof("poll %q request failed: %v", p.title, err)
	p.lastErr = err
}

func (p *Poll) release(idle chan struct{}) {
	p.inFlight = false
	close(idle)
}

// merge folds a server snapshot into the local answers. Answers the snapshot
// does not mention are left as they are until a later snapshot does.
func (p *Poll) merge(data models.PollData) {
	if p.id == "" {
		p.id = data.ID
	}
	if data.Status != "" {
		p.status = data.Status
	}

	for _, a := range p.answers {
		for _, choice := range data.Choices {
			if a.update(choice) {
				break
			}
		}
	}
}

// WaitIdle blocks until the current request completes and returns its error.
func (p *Poll) WaitIdle(ctx context.Context) error {
	p.mu.Lock()
	idle := p.idle
	p.mu.Unlock()

	if idle == nil {
		return nil
	}

	select {
	case <-idle:
	case <-ctx.Done():
		return ctx.Err()
	}

	return p.LastError()
}
