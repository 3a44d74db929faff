package command

import "github.com/bwmarrin/snowflake"

// Kind tags the outcome of a dispatched command.
type Kind int

const (
	KindUnknownCommand Kind = iota
	KindOrderAdded
	KindLeaderboard
	KindRemoved
	KindNotFound
	KindValueSet
	KindAllReset
	KindUsageError
	KindForbidden
	KindNotInCommunity
	KindInvalidAmount
)

func (k Kind) String() string {
	switch k {
	case KindOrderAdded:
		return "order_added"
	case KindLeaderboard:
		return "leaderboard"
	case KindRemoved:
		return "removed"
	case KindNotFound:
		return "not_found"
	case KindValueSet:
		return "value_set"
	case KindAllReset:
		return "all_reset"
	case KindUsageError:
		return "usage_error"
	case KindForbidden:
		return "forbidden"
	case KindNotInCommunity:
		return "not_in_community"
	case KindInvalidAmount:
		return "invalid_amount"
	default:
		return "unknown_command"
	}
}

// Entry is one leaderboard row.
type Entry struct {
	MemberID    snowflake.ID
	DisplayName string
	Count       int
}

// Result is the structured outcome of one invocation. Which fields are
// populated depends on Kind; the presentation layer renders it without
// re-querying the store.
type Result struct {
	Kind Kind

	// Command is the canonical command name, set for usage errors.
	Command string

	// NewCount carries the resulting count for order_added and value_set.
	NewCount int

	// Who names the target member for removed, not_found and value_set.
	Who string

	// Entries holds the ranked rows for leaderboard.
	Entries []Entry

	// Affected is the row count for all_reset.
	Affected int64

	// Required lists the role names that would have allowed a
	// forbidden command.
	Required []string
}
