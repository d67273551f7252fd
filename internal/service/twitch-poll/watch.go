package twitch_poll

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const pollWatchBGSync = "pollWatch_BGSync"

var (
	ErrNotStarted      = errors.New("poll was not started")
	ErrInvalidInterval = errors.New("watch interval must be positive")
)

// Watch waits for the creation to settle, then refreshes every interval while
// the poll is estimated ongoing. Once the estimate says it is over, one last
// refresh collects the final tally and Watch returns its error.
func (p *Poll) Watch(ctx context.Context, interval time.Duration, onUpdate func(*Poll)) error {
	if interval <= 0 {
		return errors.Wrapf(ErrInvalidInterval, "got %s", interval)
	}

	if err := p.WaitIdle(ctx); err != nil && !p.Started() {
		return errors.Wrap(err, "create poll")
	}
	if !p.Started() {
		return ErrNotStarted
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logrus.Infof("started bg %s process for poll %s", pollWatchBGSync, p.ID())

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("stoping bg %s process", pollWatchBGSync)
			return ctx.Err()
		case <-ticker.C:
		}

		final := !p.Ongoing()
		if !p.Refresh(ctx, nil) {
			continue
		}

		err := p.WaitIdle(ctx)
		if err != nil {
			logrus.Infof("could not refresh poll %s: %v", p.ID(), err)
		} else if onUpdate != nil {
			onUpdate(p)
		}

		if final {
			logrus.Infof("poll %s is over, final refresh done", p.ID())
			return err
		}
	}
}
