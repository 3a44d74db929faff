package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
)

func TestParseMention(t *testing.T) {
	tests := []struct {
		in     string
		want   snowflake.ID
		wantOK bool
	}{
		{"<@123456789>", 123456789, true},
		{"<@!123456789>", 123456789, true},
		{"<@abc>", 0, false},
		{"@someone", 0, false},
		{"123456789", 0, false},
		{"<@>", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseMention(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestCallerDisplayName(t *testing.T) {
	msg := &discordgo.MessageCreate{Message: &discordgo.Message{
		Author: &discordgo.User{Username: "alice", GlobalName: "Alice"},
		Member: &discordgo.Member{Nick: "Chef Alice"},
	}}
	assert.Equal(t, "Chef Alice", callerDisplayName(msg))

	msg.Member.Nick = ""
	assert.Equal(t, "Alice", callerDisplayName(msg))

	msg.Author.GlobalName = ""
	assert.Equal(t, "alice", callerDisplayName(msg))
}

func TestUserNameFallback(t *testing.T) {
	assert.Equal(t, "Unknown", userName(nil))
}
