package models

type Scope string

var (
	PollRead           Scope = "channel:read:polls"
	PollManage         Scope = "channel:manage:polls"
	ChatRead           Scope = "chat:read"
	ChatEdit           Scope = "chat:edit"
	AnnouncementManage Scope = "moderator:manage:announcements"
)

func ScopeStrings(scopes []Scope) []string {
	res := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		res = append(res, string(scope))
	}
	return res
}

type TwitchOautValidateTokenResponse struct {
	ClientId  string   `json:"client_id"`
	Login     string   `json:"login"`
	Scopes    []string `json:"scopes"`
	UserId    string   `json:"user_id"`
	ExpiresIn uint64   `json:"expires_in"`
}

type TwitchOautGetUserTokenResponse struct {
	AccessToken  string   `json:"access_token"`
	ExpiresIn    int32    `json:"expires_in"`
	RefreshToken string   `json:"refresh_token"`
	Scope        []string `json:"scope"`
	TokenType    string   `json:"token_type"`
}
