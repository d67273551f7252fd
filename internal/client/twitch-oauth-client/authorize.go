package twitch_oauth_client

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// NewState returns a single-use state value. UUIDv7 is time-ordered, so two
// attempts within one session never collide, and carries random bits.
func NewState() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", errors.Wrap(err, "NewV7")
	}
	return id.String(), nil
}

// AuthorizationURL builds the code-grant authorize link. Scopes are joined
// with '+' and left unescaped.
func (twc *TwitchOauthClient) AuthorizationURL(redirectURI, state string, scopes []string) string {
	return twc.endpoint.AuthURL +
		"?client_id=" + url.QueryEscape(twc.clientID) +
		"&redirect_uri=" + url.QueryEscape(redirectURI) +
		"&state=" + url.QueryEscape(state) +
		"&response_type=code" +
		"&scope=" + strings.Join(scopes, "+")
}
