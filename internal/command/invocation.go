package command

import "github.com/bwmarrin/snowflake"

// MemberRef is a member mention resolved by the transport: the stable ID
// plus the member's current display name. The name is presentation data
// only; the ID is the key.
type MemberRef struct {
	ID          snowflake.ID
	DisplayName string
}

// Arg is one positional command argument: either plain text or a
// resolved member reference.
type Arg struct {
	Member *MemberRef
	Text   string
}

// TextArg wraps a plain string argument.
func TextArg(text string) Arg {
	return Arg{Text: text}
}

// MemberArg wraps a resolved member reference.
func MemberArg(id snowflake.ID, displayName string) Arg {
	return Arg{Member: &MemberRef{ID: id, DisplayName: displayName}}
}

// Invocation is one inbound command, already parsed by the transport.
// The dispatcher neither knows nor cares how it arrived.
type Invocation struct {
	CommunityID snowflake.ID
	CallerID    snowflake.ID
	CallerName  string
	CallerRoles []string
	Command     string
	Args        []Arg
}
