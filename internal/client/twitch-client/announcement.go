package twitch_client

import (
	"net/http"

	"twitch_poll_client/internal/models"
)

const announcementsPath = "/helix/chat/announcements"

// AnnouncementRequest posts to the broadcaster's own chat, so the broadcaster
// is also the moderator.
func AnnouncementRequest(broadcasterID, message string, color models.AnnouncementColor) Request {
	return Request{
		Method: http.MethodPost,
		URL:    announcementsPath,
		Query: []QueryParam{
			Param("broadcaster_id", broadcasterID),
			Param("moderator_id", broadcasterID),
		},
		Body: models.AnnouncementReq{
			Message: message,
			Color:   color,
		},
	}
}
