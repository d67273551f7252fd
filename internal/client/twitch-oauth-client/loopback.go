package twitch_oauth_client

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

var (
	ErrRedirectRejected       = errors.New("oauth redirect rejected")
	ErrAuthorizationCancelled = errors.New("authorization cancelled")
	ErrAlreadyStarted         = errors.New("loopback server already started")
)

// LoopbackServer catches exactly one OAuth redirect on the configured
// redirect URI, exchanges the code and shuts itself down. The result is
// delivered exactly once: token, rejected redirect, failed exchange or
// cancellation.
type LoopbackServer struct {
	oauth   *TwitchOauthClient
	scopes  []string
	onToken func(*oauth2.Token, error)

	ctx         context.Context
	state       string
	redirectURI string
	authURL     string
	server      *http.Server

	started    atomic.Bool
	handled    atomic.Bool
	finishOnce sync.Once
	stopOnce   sync.Once
	done       chan struct{}
	stopped    chan struct{}

	token *oauth2.Token
	err   error
}

func (twc *TwitchOauthClient) NewLoopbackServer(scopes []string, onToken func(*oauth2.Token, error)) *LoopbackServer {
	return &LoopbackServer{
		oauth:       twc,
		scopes:      scopes,
		onToken:     onToken,
		redirectURI: twc.redirectURI,
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
}

// Start binds the redirect address, then sends the user's browser to the
// authorize page. A bind failure is returned and nothing is retried.
// Cancelling ctx disposes the server.
func (s *LoopbackServer) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	if s.handled.Load() {
		return ErrAuthorizationCancelled
	}

	state, err := NewState()
	if err != nil {
		return errors.Wrap(err, "NewState")
	}

	u, err := url.Parse(s.oauth.redirectURI)
	if err != nil {
		return errors.Wrap(err, "parse redirect uri")
	}

	listener, err := net.Listen("tcp", u.Host)
	if err != nil {
		return errors.Wrapf(err, "cannot listen on %s", u.Host)
	}

	if u.Port() == "0" {
		port := listener.Addr().(*net.TCPAddr).Port
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(port))
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	router := mux.NewRouter()
	router.HandleFunc(path, s.handleRedirect).Methods(http.MethodGet)

	s.ctx = ctx
	s.state = state
	s.redirectURI = u.String()
	s.authURL = s.oauth.AuthorizationURL(s.redirectURI, state, s.scopes)
	s.server = &http.Server{
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		err := s.server.Serve(listener)
		if err != nil && err != http.ErrServerClosed {
			logrus.Errorf("oauth loopback server on %s stopped: %v", u.Host, err)
			if s.handled.CompareAndSwap(false, true) {
				s.finish(nil, errors.Wrap(err, "Serve"))
			}
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			s.Dispose()
		case <-s.stopped:
		}
	}()

	logrus.Infof("waiting for twitch authorization redirect on %s", s.redirectURI)

	if err := s.oauth.openBrowser(ctx, s.authURL); err != nil {
		logrus.Warnf("cannot open browser (%v), open the link manually: %s", err, s.authURL)
	}

	return nil
}

func (s *LoopbackServer) handleRedirect(w http.ResponseWriter, r *http.Request) {
	if !s.handled.CompareAndSwap(false, true) {
		http.Error(w, "authorization already processed", http.StatusGone)
		return
	}

	query := r.URL.Query()
	code, state := query.Get("code"), query.Get("state")

	switch {
	case query.Get("error") != "":
		s.finish(nil, errors.Wrapf(ErrRedirectRejected, "%s: %s", query.Get("error"), query.Get("error_description")))
	case code == "":
		s.finish(nil, errors.Wrap(ErrRedirectRejected, "empty code"))
	case state != s.state:
		s.finish(nil, errors.Wrap(ErrRedirectRejected, "state mismatch"))
	default:
		ctx, cancel := context.WithTimeout(s.ctx, s.oauth.callTimeout)
		s.oauth.ExchangeCode(ctx, code, s.redirectURI, func(token *oauth2.Token, err error) {
			cancel()
			s.finish(token, err)
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = io.WriteString(w, closeTabPage)

	go s.stop()
}

func (s *LoopbackServer) finish(token *oauth2.Token, err error) {
	s.finishOnce.Do(func() {
		s.token, s.err = token, err
		if err != nil {
			logrus.Warnf("twitch authorization failed: %v", err)
		} else {
			logrus.Info("twitch authorization completed")
		}
		if s.onToken != nil {
			s.onToken(token, err)
		}
		close(s.done)
	})
}

func (s *LoopbackServer) stop() {
	s.stopOnce.Do(func() {
		if s.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.server.Shutdown(ctx); err != nil {
				logrus.Warnf("oauth loopback server shutdown: %v", err)
				_ = s.server.Close()
			}
		}
		close(s.stopped)
	})
}

// Dispose stops the listener. A still pending authorization completes with
// ErrAuthorizationCancelled; an exchange already in flight is left to finish.
func (s *LoopbackServer) Dispose() {
	if s.handled.CompareAndSwap(false, true) {
		s.finish(nil, ErrAuthorizationCancelled)
	}
	s.stop()
}

// Done is closed once the result is known.
func (s *LoopbackServer) Done() <-chan struct{} {
	return s.done
}

// Stopped is closed once the listener no longer accepts connections.
func (s *LoopbackServer) Stopped() <-chan struct{} {
	return s.stopped
}

// Result is meaningful after Done is closed.
func (s *LoopbackServer) Result() (*oauth2.Token, error) {
	select {
	case <-s.done:
		return s.token, s.err
	default:
		return nil, nil
	}
}

func (s *LoopbackServer) Wait(ctx context.Context) (*oauth2.Token, error) {
	select {
	case <-s.done:
		return s.token, s.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *LoopbackServer) State() string {
	return s.state
}

func (s *LoopbackServer) AuthURL() string {
	return s.authURL
}

func (s *LoopbackServer) RedirectURI() string {
	return s.redirectURI
}
