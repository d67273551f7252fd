package twitch_session

import (
	"context"
	"time"

	"twitch_poll_client/internal/models"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const stateFormat = "twitch-session/v1"

var (
	ErrStateFormat       = errors.New("invalid session state")
	ErrIncompleteSession = errors.New("session needs a token and an identity to be saved")
)

// StateStore persists serialized sessions keyed by client id. Load returns a
// nil state when nothing was saved.
type StateStore interface {
	SaveSessionState(ctx context.Context, clientID string, state []byte) error
	LoadSessionState(ctx context.Context, clientID string) ([]byte, error)
}

// The blob holds the token in clear text.
type sessionState struct {
	Format       string           `json:"format"`
	OAuthToken   string           `json:"oauth_token"`
	RefreshToken string           `json:"refresh_token,omitempty"`
	Expiry       *time.Time       `json:"expiry,omitempty"`
	Identity     *models.Identity `json:"identity"`
}

func (s *Session) SerializeState() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == nil || s.identity == nil {
		return nil, ErrIncompleteSession
	}

	identity := *s.identity
	state := sessionState{
		Format:       stateFormat,
		OAuthToken:   s.token.AccessToken,
		RefreshToken: s.token.RefreshToken,
		Identity:     &identity,
	}
	if !s.token.Expiry.IsZero() {
		expiry := s.token.Expiry
		state.Expiry = &expiry
	}

	return jsoniter.Marshal(state)
}

// RestoreState replaces token and identity from a SerializeState blob without
// touching the network.
func (s *Session) RestoreState(blob []byte) error {
	var state sessionState
	if err := jsoniter.Unmarshal(blob, &state); err != nil {
		return errors.Wrap(ErrStateFormat, err.Error())
	}

	switch {
	case state.Format != stateFormat:
		return errors.Wrapf(ErrStateFormat, "unknown format %q", state.Format)
	case state.OAuthToken == "":
		return errors.Wrap(ErrStateFormat, "missing oauth_token")
	case state.Identity == nil || state.Identity.ID == "" || state.Identity.Login == "":
		return errors.Wrap(ErrStateFormat, "missing identity")
	}

	token := &oauth2.Token{
		AccessToken:  state.OAuthToken,
		TokenType:    "Bearer",
		RefreshToken: state.RefreshToken,
	}
	if state.Expiry != nil {
		token.Expiry = *state.Expiry
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return ErrAuthorizationInProgress
	}

	s.token = token
	s.identity = state.Identity

	return nil
}

func (s *Session) Save(ctx context.Context, store StateStore) error {
	blob, err := s.SerializeState()
	if err != nil {
		return errors.Wrap(err, "SerializeState")
	}

	if err := store.SaveSessionState(ctx, s.clientID, blob); err != nil {
		return errors.Wrap(err, "SaveSessionState")
	}

	return nil
}

// Load restores a saved session. It reports false when the store holds
// nothing for this client id.
func (s *Session) Load(ctx context.Context, store StateStore) (bool, error) {
	blob, err := store.LoadSessionState(ctx, s.clientID)
	if err != nil {
		return false, errors.Wrap(err, "LoadSessionState")
	}
	if blob == nil {
		return false, nil
	}

	if err := s.RestoreState(blob); err != nil {
		return false, errors.Wrap(err, "RestoreState")
	}

	return true, nil
}
