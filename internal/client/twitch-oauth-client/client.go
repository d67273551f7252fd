package twitch_oauth_client

import (
	"context"
	"net/http"
	"strings"
	"time"

	twitch_client "twitch_poll_client/internal/client/twitch-client"

	"golang.org/x/oauth2"
)

const (
	twitchIDSchemeHost  string = "https://id.twitch.tv"
	DefaultRedirectURI  string = "http://localhost:8080/"
	defaultCallTimeout         = time.Second * 10
	closeTabPage        string = `<html><body onload="close()"></body></html>`
)

type BrowserOpener func(ctx context.Context, url string) error

type Config struct {
	ClientID     string
	ClientSecret string
	// IDBaseURL defaults to https://id.twitch.tv.
	IDBaseURL   string
	RedirectURI string
	// CallTimeout bounds the token exchange and validation calls.
	CallTimeout time.Duration
	OpenBrowser BrowserOpener
	HTTPClient  *http.Client
}

type TwitchOauthClient struct {
	clientID     string
	clientSecret string
	endpoint     oauth2.Endpoint
	validateURL  string
	redirectURI  string
	callTimeout  time.Duration
	openBrowser  BrowserOpener
	httpClient   *http.Client
	twitchClient *twitch_client.TwitchClient
}

func NewTwitchOauthClient(cfg Config) *TwitchOauthClient {
	idBase := strings.TrimRight(cfg.IDBaseURL, "/")
	if idBase == "" {
		idBase = twitchIDSchemeHost
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = DefaultRedirectURI
	}

	callTimeout := cfg.CallTimeout
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}

	openBrowser := cfg.OpenBrowser
	if openBrowser == nil {
		openBrowser = LaunchBrowser
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: callTimeout,
		}
	}

	return &TwitchOauthClient{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		endpoint: oauth2.Endpoint{
			AuthURL:  idBase + "/oauth2/authorize",
			TokenURL: idBase + "/oauth2/token",
		},
		validateURL:  idBase + "/oauth2/validate",
		redirectURI:  redirectURI,
		callTimeout:  callTimeout,
		openBrowser:  openBrowser,
		httpClient:   httpClient,
		twitchClient: twitch_client.NewTwitchClient(httpClient, idBase),
	}
}

func (twc *TwitchOauthClient) Endpoint() oauth2.Endpoint {
	return twc.endpoint
}

func (twc *TwitchOauthClient) RedirectURI() string {
	return twc.redirectURI
}

// ClientID and AccessToken let the oauth client be its own transport
// credentials: the token exchange carries the client id and no bearer.
func (twc *TwitchOauthClient) ClientID() string {
	return twc.clientID
}

func (twc *TwitchOauthClient) AccessToken() string {
	return ""
}
