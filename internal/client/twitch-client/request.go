package twitch_client

import (
	"net/url"
	"strings"
)

type QueryParam struct {
	Key   string
	Value string
}

// Request describes one helix call. URL is either absolute or a path relative
// to the client's API base URL. Body, when set, is sent as JSON.
type Request struct {
	Method string
	URL    string
	Query  []QueryParam
	Body   interface{}
}

func Param(key, value string) QueryParam {
	return QueryParam{Key: key, Value: value}
}

// BuildURL appends the query parameters in the given order as escaped
// key=value pairs joined by '&'.
func BuildURL(baseURL string, params []QueryParam) string {
	if len(params) == 0 {
		return baseURL
	}

	pairs := make([]string, 0, len(params))
	for _, p := range params {
		pairs = append(pairs, url.QueryEscape(p.Key)+"="+url.QueryEscape(p.Value))
	}

	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}

	return baseURL + sep + strings.Join(pairs, "&")
}
