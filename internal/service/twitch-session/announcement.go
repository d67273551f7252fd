package twitch_session

import (
	"context"

	twitch_client "twitch_poll_client/internal/client/twitch-client"
	"twitch_poll_client/internal/models"

	"github.com/pkg/errors"
)

var ErrInvalidAnnouncementColor = errors.New("invalid announcement color")

// MakeAnnouncement posts a highlighted message to the broadcaster's chat.
// Twitch truncates messages over 500 characters.
func (s *Session) MakeAnnouncement(ctx context.Context, message string, color models.AnnouncementColor) (*twitch_client.Call, error) {
	if color == "" {
		color = models.AnnouncementPrimary
	}
	if !color.Valid() {
		return nil, errors.Wrapf(ErrInvalidAnnouncementColor, "%q", color)
	}
	if !s.HasToken() {
		return nil, ErrNoToken
	}

	identity, ok := s.Identity()
	if !ok {
		return nil, ErrNoIdentity
	}

	return s.Send(ctx, twitch_client.AnnouncementRequest(identity.ID, message, color), twitch_client.ResponseHandler{}), nil
}
