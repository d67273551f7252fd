package twitch_client

import (
	"context"
	"sync"
)

// Call is the completion handle of one Send. It completes exactly once.
type Call struct {
	done chan struct{}
	once sync.Once
	body []byte
	err  error
}

func newCall() *Call {
	return &Call{done: make(chan struct{})}
}

func (c *Call) complete(body []byte, err error) {
	c.once.Do(func() {
		c.body = body
		c.err = err
		close(c.done)
	})
}

func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Err returns nil until the call is done.
func (c *Call) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Wait blocks until the call completes or ctx is done. Cancelling ctx does not
// cancel the call itself.
func (c *Call) Wait(ctx context.Context) ([]byte, error) {
	select {
	case <-c.done:
		return c.body, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
