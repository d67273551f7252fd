package models

type PollStatus string

var (
	PollActive     PollStatus = "ACTIVE"
	PollCompleted  PollStatus = "COMPLETED"
	PollTerminated PollStatus = "TERMINATED"
	PollArchived   PollStatus = "ARCHIVED"
	PollModerated  PollStatus = "MODERATED"
	PollInvalid    PollStatus = "INVALID"
)

type CreatePollReq struct {
	BroadcasterID string             `json:"broadcaster_id"`
	Title         string             `json:"title"`
	Choices       []CreatePollChoice `json:"choices"`
	Duration      int                `json:"duration"`
}

type CreatePollChoice struct {
	Title string `json:"title"`
}

type EndPollReq struct {
	BroadcasterID string     `json:"broadcaster_id"`
	ID            string     `json:"id"`
	Status        PollStatus `json:"status"`
}

type PollsResponse struct {
	Data []PollData `json:"data"`
}

type PollData struct {
	ID       string       `json:"id"`       // Poll ID
	Title    string       `json:"title"`    // Question displayed for the poll
	Choices  []PollChoice `json:"choices"`  // Poll choices, in creation order
	Status   PollStatus   `json:"status"`   // ACTIVE, COMPLETED, TERMINATED, ARCHIVED, MODERATED, INVALID
	Duration int          `json:"duration"` // Total duration in seconds
}

type PollChoice struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Votes *int   `json:"votes"` // nil when the field is absent; local count is kept
}
