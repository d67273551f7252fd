package models

type GetUserInfoResponse struct {
	Data []Identity `json:"data"`
}

// Identity is the authenticated broadcaster.
type Identity struct {
	ID              string `json:"id"`               // User’s ID
	Login           string `json:"login"`            // User’s login name
	DisplayName     string `json:"display_name"`     // User’s display name
	BroadcasterType string `json:"broadcaster_type"` // User’s broadcaster type: "partner", "affiliate", or ""
}

const TwitchWWWSchemeHost = "https://www.twitch.tv"
