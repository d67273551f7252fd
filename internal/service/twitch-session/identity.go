package twitch_session

import (
	"context"

	twitch_client "twitch_poll_client/internal/client/twitch-client"
	"twitch_poll_client/internal/models"

	"github.com/pkg/errors"
)

// FetchIdentity looks up the token owner and replaces the session identity
// wholesale on success. onDone may be nil.
func (s *Session) FetchIdentity(ctx context.Context, onDone func(models.Identity, error)) (*twitch_client.Call, error) {
	if !s.HasToken() {
		return nil, ErrNoToken
	}

	if onDone == nil {
		onDone = func(models.Identity, error) {}
	}

	return s.Send(ctx, twitch_client.GetOwnUserRequest(), twitch_client.ResponseHandler{
		OnSuccess: func(body []byte) error {
			identity, err := twitch_client.DecodeIdentity(body)
			if err != nil {
				onDone(models.Identity{}, err)
				return errors.Wrap(err, "DecodeIdentity")
			}

			s.mu.Lock()
			s.identity = &identity
			s.mu.Unlock()

			onDone(identity, nil)
			return nil
		},
		OnError: func(err error) {
			onDone(models.Identity{}, errors.Wrap(err, "FetchIdentity"))
		},
	}), nil
}
