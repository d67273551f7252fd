package twitch_poll

import (
	"time"

	"twitch_poll_client/internal/models"
)

func (p *Poll) Title() string {
	return p.title
}

func (p *Poll) Duration() time.Duration {
	return p.duration
}

func (p *Poll) BroadcasterID() string {
	return p.broadcasterID
}

// ID is empty until the creation response arrives.
func (p *Poll) ID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.id
}

func (p *Poll) Answers() []Answer {
	p.mu.Lock()
	defer p.mu.Unlock()

	res := make([]Answer, 0, len(p.answers))
	for _, a := range p.answers {
		res = append(res, a.snapshot())
	}
	return res
}

// Status is the server status of the last snapshot. It is informational only;
// Ongoing does not read it.
func (p *Poll) Status() models.PollStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poll) Started() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

func (p *Poll) InFlight() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

func (p *Poll) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Ongoing estimates from the local clock whether the poll still runs: started,
// not ended through this instance, and less than Duration elapsed since the
// creation response. Between refreshes it can disagree with the server, so it
// is good for pacing refreshes and nothing more.
func (p *Poll) Ongoing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ongoing()
}

func (p *Poll) ongoing() bool {
	return p.started && !p.terminated && p.clock.Now().Sub(p.startTime) < p.duration
}

// Remaining is zero once the estimate says the poll is over.
func (p *Poll) Remaining() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ongoing() {
		return 0
	}
	return p.duration - p.clock.Now().Sub(p.startTime)
}
