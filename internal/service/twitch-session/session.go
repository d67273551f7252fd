package twitch_session

import (
	"context"
	"net/http"
	"sync"
	"time"

	twitch_client "twitch_poll_client/internal/client/twitch-client"
	twitch_oauth_client "twitch_poll_client/internal/client/twitch-oauth-client"
	"twitch_poll_client/internal/models"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const defaultRequestTimeout = time.Second * 10

var (
	ErrNoToken                 = errors.New("session has no oauth token")
	ErrNoIdentity              = errors.New("session has no broadcaster identity")
	ErrAuthorizationInProgress = errors.New("authorization already in progress")
	ErrAlreadyAuthorized       = errors.New("session already has an oauth token")
)

type Config struct {
	ClientID     string
	ClientSecret string
	APIBaseURL   string
	IDBaseURL    string
	RedirectURI  string
	// RequestTimeout bounds every call made through the session.
	RequestTimeout time.Duration
	OpenBrowser    twitch_oauth_client.BrowserOpener
	HTTPClient     *http.Client
}

// Session owns the credentials and the broadcaster identity. It is the only
// writer of both; readers get copies.
type Session struct {
	clientID       string
	requestTimeout time.Duration
	twitchClient   *twitch_client.TwitchClient
	oauthClient    *twitch_oauth_client.TwitchOauthClient

	mu       sync.RWMutex
	token    *oauth2.Token
	identity *models.Identity
	pending  *twitch_oauth_client.LoopbackServer
}

func NewSession(cfg Config) *Session {
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	return &Session{
		clientID:       cfg.ClientID,
		requestTimeout: requestTimeout,
		twitchClient:   twitch_client.NewTwitchClient(cfg.HTTPClient, cfg.APIBaseURL),
		oauthClient: twitch_oauth_client.NewTwitchOauthClient(twitch_oauth_client.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			IDBaseURL:    cfg.IDBaseURL,
			RedirectURI:  cfg.RedirectURI,
			CallTimeout:  requestTimeout,
			OpenBrowser:  cfg.OpenBrowser,
			HTTPClient:   cfg.HTTPClient,
		}),
	}
}

// NewSessionWithToken is for callers that already hold a user token.
func NewSessionWithToken(cfg Config, token *oauth2.Token) *Session {
	s := NewSession(cfg)
	if token != nil && token.AccessToken != "" {
		s.token = token
	}
	return s
}

func (s *Session) ClientID() string {
	return s.clientID
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

func (s *Session) HasToken() bool {
	return s.AccessToken() != ""
}

func (s *Session) Token() *oauth2.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == nil {
		return nil
	}
	token := *s.token
	return &token
}

func (s *Session) Identity() (models.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.identity == nil {
		return models.Identity{}, false
	}
	return *s.identity, true
}

// CanCreatePoll reports whether the broadcaster is an affiliate or partner;
// plain accounts cannot run polls.
func (s *Session) CanCreatePoll() bool {
	identity, ok := s.Identity()
	return ok && identity.BroadcasterType != ""
}

// Send issues an authorized call. The credentials are read at send time and
// the session request timeout is applied on top of ctx.
func (s *Session) Send(ctx context.Context, req twitch_client.Request, h twitch_client.ResponseHandler) *twitch_client.Call {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	return s.twitchClient.Send(ctx, s, req, releaseOnComplete(h, cancel))
}

func releaseOnComplete(h twitch_client.ResponseHandler, cancel context.CancelFunc) twitch_client.ResponseHandler {
	return twitch_client.ResponseHandler{
		OnSuccess: func(body []byte) error {
			defer cancel()
			if h.OnSuccess == nil {
				return nil
			}
			return h.OnSuccess(body)
		},
		OnError: func(err error) {
			defer cancel()
			if h.OnError != nil {
				h.OnError(err)
			}
		},
	}
}

func (s *Session) ValidateToken(ctx context.Context) (*models.TwitchOautValidateTokenResponse, error) {
	token := s.AccessToken()
	if token == "" {
		return nil, ErrNoToken
	}

	info, err := s.oauthClient.ValidateToken(ctx, token)
	if err != nil {
		return nil, errors.Wrap(err, "ValidateToken")
	}

	return info, nil
}
