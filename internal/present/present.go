// Package present turns dispatcher results into human-readable replies.
// It is deliberately thin: structured data in, text and an optional
// embed out, no store access.
package present

import (
	"fmt"
	"strings"

	"github.com/ovenlight/orderboard/internal/command"
)

// Message is a rendered reply. Embed is nil for plain-text replies.
type Message struct {
	Content string
	Embed   *Embed
}

// Embed is a transport-agnostic rich reply.
type Embed struct {
	Title       string
	Description string
}

var medals = map[int]string{0: "🥇", 1: "🥈", 2: "🥉"}

var usage = map[string]string{
	"add":         "%sadd",
	"leaderboard": "%sleaderboard [limit]",
	"remove":      "%sremove @user",
	"set":         "%sset @user <amount>",
	"resetall":    "%sresetall",
}

// Render produces the reply for a dispatcher result. prefix is the
// configured command prefix, used in usage guidance.
func Render(prefix string, res command.Result) Message {
	switch res.Kind {
	case command.KindOrderAdded:
		return text(fmt.Sprintf("✅ Order complete, you now have **%d** orders completed.", res.NewCount))

	case command.KindLeaderboard:
		if len(res.Entries) == 0 {
			return text(fmt.Sprintf("No data yet. Use `%sadd` to get started!", prefix))
		}
		lines := make([]string, 0, len(res.Entries))
		for i, entry := range res.Entries {
			medal, ok := medals[i]
			if !ok {
				medal = fmt.Sprintf("%d.", i+1)
			}
			lines = append(lines, fmt.Sprintf("%s **%s** — **%d**", medal, entry.DisplayName, entry.Count))
		}
		return Message{Embed: &Embed{
			Title:       "🏆 Leaderboard",
			Description: strings.Join(lines, "\n"),
		}}

	case command.KindRemoved:
		return text(fmt.Sprintf("🗑️ Removed **%s** from the leaderboard.", res.Who))

	case command.KindNotFound:
		return text("That user wasn’t on the leaderboard.")

	case command.KindValueSet:
		return text(fmt.Sprintf("✏️ Set **%s** to **%d** orders.", res.Who, res.NewCount))

	case command.KindAllReset:
		return text(fmt.Sprintf("♻️ Reset **%d** users to **0** orders.", res.Affected))

	case command.KindUsageError:
		pattern, ok := usage[res.Command]
		if !ok {
			pattern = "%shelp"
		}
		return text(fmt.Sprintf("Usage: `%s`", fmt.Sprintf(pattern, prefix)))

	case command.KindForbidden:
		pretty := strings.Join(res.Required, " or ")
		return text(fmt.Sprintf("You need the **%s** role to use this command.", pretty))

	case command.KindNotInCommunity:
		return text("This command can only be used in a server.")

	case command.KindInvalidAmount:
		return text("Amount cannot be negative.")

	default:
		return Message{}
	}
}

// RenderFailure is the generic reply for storage-layer failures.
func RenderFailure() Message {
	return text("Something went wrong, please try again later.")
}

func text(content string) Message {
	return Message{Content: content}
}
