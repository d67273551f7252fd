package formater

import (
	"fmt"
	"regexp"
	"strings"

	"twitch_poll_client/internal/models"
	twitch_poll "twitch_poll_client/internal/service/twitch-poll"
)

var tagRe = regexp.MustCompile(`@[^\s.,!?]+`)

// change all twitch tags to hyperlinks with twitch channel's address for telegram
func TwitchTagToTelegram(text string) string {
	return tagRe.ReplaceAllStringFunc(text, func(tag string) string {
		return fmt.Sprintf("[%s](%s/%s)", tag, models.TwitchWWWSchemeHost, tag[1:])
	})
}

// clear all @ symbols in tag subtrings because we can interpret it wrong
func ClearTags(text string) string {
	return tagRe.ReplaceAllStringFunc(text, func(tag string) string {
		return tag[1:]
	})
}

// PollResultsText lists the answers in poll order as "title: votes (pct%)".
// Answers holding the most votes are marked once anyone voted.
func PollResultsText(title string, answers []twitch_poll.Answer) string {
	total, top := 0, 0
	for _, a := range answers {
		total += a.Votes
		if a.Votes > top {
			top = a.Votes
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Poll results: %s\n", title)

	for _, a := range answers {
		pct := 0
		if total > 0 {
			pct = a.Votes * 100 / total
		}

		mark := ""
		if total > 0 && a.Votes == top {
			mark = "🏆 "
		}

		fmt.Fprintf(&b, "%s%s: %d (%d%%)\n", mark, a.Title, a.Votes, pct)
	}

	fmt.Fprintf(&b, "Total votes: %d", total)

	return b.String()
}
