package twitch_client

import (
	"net/http"

	"twitch_poll_client/internal/models"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const pollsPath = "/helix/polls"

func CreatePollRequest(broadcasterID, title string, durationSeconds int, choices []string) Request {
	body := models.CreatePollReq{
		BroadcasterID: broadcasterID,
		Title:         title,
		Choices:       make([]models.CreatePollChoice, 0, len(choices)),
		Duration:      durationSeconds,
	}
	for _, choice := range choices {
		body.Choices = append(body.Choices, models.CreatePollChoice{Title: choice})
	}

	return Request{
		Method: http.MethodPost,
		URL:    pollsPath,
		Body:   body,
	}
}

func GetPollRequest(broadcasterID, pollID string) Request {
	return Request{
		Method: http.MethodGet,
		URL:    pollsPath,
		Query: []QueryParam{
			Param("broadcaster_id", broadcasterID),
			Param("id", pollID),
		},
	}
}

func EndPollRequest(broadcasterID, pollID string, status models.PollStatus) Request {
	return Request{
		Method: http.MethodPatch,
		URL:    pollsPath,
		Body: models.EndPollReq{
			BroadcasterID: broadcasterID,
			ID:            pollID,
			Status:        status,
		},
	}
}

// DecodePoll returns the first poll of a polls response.
func DecodePoll(body []byte) (models.PollData, error) {
	var polls models.PollsResponse
	if err := jsoniter.Unmarshal(body, &polls); err != nil {
		return models.PollData{}, errors.Wrap(err, "Unmarshal")
	}

	if len(polls.Data) < 1 {
		return models.PollData{}, errors.Wrap(ErrEmptyData, "polls")
	}

	return polls.Data[0], nil
}
