package twitch_client

import (
	"net/http"

	"twitch_poll_client/internal/models"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const usersPath = "/helix/users"

// GetOwnUserRequest looks up the user the bearer token belongs to.
func GetOwnUserRequest() Request {
	return Request{
		Method: http.MethodGet,
		URL:    usersPath,
	}
}

func DecodeIdentity(body []byte) (models.Identity, error) {
	var usersInfo models.GetUserInfoResponse
	if err := jsoniter.Unmarshal(body, &usersInfo); err != nil {
		return models.Identity{}, errors.Wrap(err, "Unmarshal")
	}

	if len(usersInfo.Data) < 1 {
		return models.Identity{}, errors.Wrap(ErrEmptyData, "users")
	}

	return usersInfo.Data[0], nil
}
