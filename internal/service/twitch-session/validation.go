package twitch_session

import (
	"context"
	"time"

	twitch_oauth_client "twitch_poll_client/internal/client/twitch-oauth-client"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	tokenValidationBGSync = "tokenValidation_BGSync"

	// Twitch asks apps holding user tokens to validate them hourly.
	TokenValidationInterval = time.Hour
)

// ValidateBg validates the token every interval until ctx is done. A token
// Twitch reports as invalid is dropped from the session, onInvalid is called
// and the loop ends. Other failures are logged and retried on the next tick.
func (s *Session) ValidateBg(ctx context.Context, interval time.Duration, onInvalid func(error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("stoping bg %s process", tokenValidationBGSync)
			return
		case <-ticker.C:
			logrus.Infof("started bg %s process", tokenValidationBGSync)
			_, err := s.ValidateToken(ctx)
			if errors.Is(err, twitch_oauth_client.ErrTokenInvalid) || errors.Is(err, ErrNoToken) {
				logrus.Infof("twitch token is no longer valid: %v", err)
				s.ForgetToken()
				if onInvalid != nil {
					onInvalid(err)
				}
				return
			}
			if err != nil {
				logrus.Infof("could not check twitch token: %v", err)
				continue
			}
			logrus.Info("twitch token check was complited")
		}
	}
}
