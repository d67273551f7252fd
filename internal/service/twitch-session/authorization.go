package twitch_session

import (
	"context"

	twitch_oauth_client "twitch_poll_client/internal/client/twitch-oauth-client"
	"twitch_poll_client/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// RequestAuthorization starts the loopback code grant. The token lands in the
// session when the returned server completes; wait on its Done channel. Only
// one authorization may be pending per session, and a session that already
// holds a live token is not re-authorized. A token past its known expiry
// counts as absent.
func (s *Session) RequestAuthorization(ctx context.Context, scopes ...models.Scope) (*twitch_oauth_client.LoopbackServer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil && !expired(s.token) {
		return nil, ErrAlreadyAuthorized
	}
	if s.pending != nil {
		return nil, ErrAuthorizationInProgress
	}

	var srv *twitch_oauth_client.LoopbackServer
	srv = s.oauthClient.NewLoopbackServer(models.ScopeStrings(scopes), func(token *oauth2.Token, err error) {
		s.onAuthorization(srv, token, err)
	})

	if err := srv.Start(ctx); err != nil {
		return nil, errors.Wrap(err, "Start")
	}

	s.pending = srv

	return srv, nil
}

func expired(token *oauth2.Token) bool {
	return !token.Expiry.IsZero() && !token.Valid()
}

// ForgetToken drops the token so the session can be authorized again. The
// identity is kept until the next FetchIdentity.
func (s *Session) ForgetToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
}

func (s *Session) onAuthorization(srv *twitch_oauth_client.LoopbackServer, token *oauth2.Token, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == srv {
		s.pending = nil
	}
	if err != nil {
		return
	}

	s.token = token
	logrus.Infof("twitch session %s authorized", s.clientID)
}

// CancelAuthorization disposes a pending authorization, if any.
func (s *Session) CancelAuthorization() {
	s.mu.RLock()
	pending := s.pending
	s.mu.RUnlock()

	if pending != nil {
		pending.Dispose()
	}
}

func (s *Session) AuthorizationPending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.pending != nil
}
