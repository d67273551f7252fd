package twitch_oauth_client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	twitch_client "twitch_poll_client/internal/client/twitch-client"
	"twitch_poll_client/internal/models"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

var (
	ErrEmptyToken   = errors.New("token endpoint returned no access token")
	ErrTokenInvalid = errors.New("token invalid")
)

// ExchangeCode trades an authorization code for a user token. onDone is
// invoked exactly once, from the transport goroutine.
func (twc *TwitchOauthClient) ExchangeCode(
	ctx context.Context,
	code, redirectURI string,
	onDone func(*oauth2.Token, error),
) *twitch_client.Call {

	req := twitch_client.Request{
		Method: http.MethodPost,
		URL:    twc.endpoint.TokenURL,
		Query: []twitch_client.QueryParam{
			twitch_client.Param("client_id", twc.clientID),
			twitch_client.Param("code", code),
			twitch_client.Param("client_secret", twc.clientSecret),
			twitch_client.Param("grant_type", "authorization_code"),
			twitch_client.Param("redirect_uri", redirectURI),
		},
	}

	return twc.twitchClient.Send(ctx, twc, req, twitch_client.ResponseHandler{
		OnSuccess: func(body []byte) error {
			token, err := decodeToken(body, time.Now())
			if err != nil {
				onDone(nil, err)
				return err
			}
			onDone(token, nil)
			return nil
		},
		OnError: func(err error) {
			onDone(nil, errors.Wrap(err, "ExchangeCode"))
		},
	})
}

func decodeToken(body []byte, now time.Time) (*oauth2.Token, error) {
	var tokenInfo models.TwitchOautGetUserTokenResponse
	if err := jsoniter.Unmarshal(body, &tokenInfo); err != nil {
		return nil, errors.Wrap(err, "Unmarshal")
	}

	if tokenInfo.AccessToken == "" {
		return nil, ErrEmptyToken
	}

	token := &oauth2.Token{
		AccessToken:  tokenInfo.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: tokenInfo.RefreshToken,
	}
	if tokenInfo.ExpiresIn > 0 {
		token.Expiry = now.Add(time.Duration(tokenInfo.ExpiresIn) * time.Second)
	}

	return token.WithExtra(map[string]interface{}{
		"scope": tokenInfo.Scope,
	}), nil
}

// ValidateToken asks id.twitch.tv whether the token is still alive. The
// validate endpoint does not use the "error" marker, so it goes around the
// helix transport.
func (twc *TwitchOauthClient) ValidateToken(ctx context.Context, token string) (data *models.TwitchOautValidateTokenResponse, err error) {

	ctx, cancel := context.WithTimeout(ctx, twc.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, twc.validateURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "NewRequestWithContext")
	}

	req.Header.Add("Authorization", fmt.Sprintf("OAuth %s", token))

	resp, err := twc.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "Do")
	}

	defer resp.Body.Close()

	readedResp, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "ReadAll")
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized {

			var unauthorizedResp models.ValidateTokenInvalid
			if err = jsoniter.Unmarshal(readedResp, &unauthorizedResp); err == nil && unauthorizedResp.Message != "" {
				return nil, errors.Wrap(ErrTokenInvalid, unauthorizedResp.Message)
			}

			return nil, ErrTokenInvalid
		}

		return nil, errors.Errorf("validate token failed with status code: %d", resp.StatusCode)
	}

	var validateTokenInfo models.TwitchOautValidateTokenResponse
	err = jsoniter.Unmarshal(readedResp, &validateTokenInfo)
	if err != nil {
		return nil, errors.Wrap(err, "Unmarshal")
	}

	return &validateTokenInfo, nil
}
