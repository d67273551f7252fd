package models

import "fmt"

// APIError is a response body carrying the "error" marker. Twitch uses the same
// shape for helix and id.twitch.tv failures.
type APIError struct {
	ErrorName  string `json:"error"`
	Status     int    `json:"status"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Payload    []byte `json:"-"`
}

func (e *APIError) Error() string {
	status := e.Status
	if status == 0 {
		status = e.HTTPStatus
	}
	if e.Message == "" {
		return fmt.Sprintf("twitch api error %d: %s", status, e.ErrorName)
	}
	return fmt.Sprintf("twitch api error %d: %s: %s", status, e.ErrorName, e.Message)
}

type ValidateTokenInvalid struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
