package twitch_poll

import "twitch_poll_client/internal/models"

// Answer is a read-only copy of one poll choice.
type Answer struct {
	Title string
	ID    string
	Votes int
}

type answer struct {
	title string
	id    string
	votes int
}

// update applies a server choice if it is this answer: by id once the id is
// known, by title before that. The first matching id is kept for good.
func (a *answer) update(choice models.PollChoice) bool {
	if a.id != "" {
		if choice.ID != a.id {
			return false
		}
	} else {
		if choice.Title != a.title {
			return false
		}
		a.id = choice.ID
	}

	if choice.Votes != nil {
		a.votes = *choice.Votes
	}

	return true
}

func (a *answer) snapshot() Answer {
	return Answer{
		Title: a.title,
		ID:    a.id,
		Votes: a.votes,
	}
}
