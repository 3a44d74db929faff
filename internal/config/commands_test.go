package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCommandConfig(t *testing.T) {
	cfg := DefaultCommandConfig()

	assert.Equal(t, 10, cfg.DefaultLeaderboardSize)
	assert.Equal(t, []string{"Chef"}, cfg.Required("add"))
	assert.Equal(t, []string{"Head Chef", "Owner"}, cfg.Required("remove"))
	assert.Empty(t, cfg.Required("leaderboard"))
	require.NoError(t, validateCommandConfig(cfg))
}

func TestCanonical(t *testing.T) {
	cfg := DefaultCommandConfig()

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"add", "add", true},
		{"ADD", "add", true},
		{" leaderboard ", "leaderboard", true},
		{"lb", "leaderboard", true},
		{"top", "leaderboard", true},
		{"resetall", "resetall", true},
		{"help", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := cfg.Canonical(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestValidateCommandConfig(t *testing.T) {
	t.Run("rejects non-positive leaderboard size", func(t *testing.T) {
		cfg := DefaultCommandConfig()
		cfg.DefaultLeaderboardSize = 0
		assert.Error(t, validateCommandConfig(cfg))
	})

	t.Run("rejects unknown command in role table", func(t *testing.T) {
		cfg := DefaultCommandConfig()
		cfg.RequiredRoles["promote"] = []string{"Owner"}
		assert.Error(t, validateCommandConfig(cfg))
	})

	t.Run("rejects blank role", func(t *testing.T) {
		cfg := DefaultCommandConfig()
		cfg.RequiredRoles["add"] = []string{" "}
		assert.Error(t, validateCommandConfig(cfg))
	})

	t.Run("rejects alias to unknown command", func(t *testing.T) {
		cfg := DefaultCommandConfig()
		cfg.Aliases["board"] = "scoreboard"
		assert.Error(t, validateCommandConfig(cfg))
	})
}

func TestStaticHolderNotifiesOnReload(t *testing.T) {
	holder := NewStaticCommandConfig(DefaultCommandConfig())

	var got []CommandConfig
	holder.OnReload(func(cfg CommandConfig) {
		got = append(got, cfg)
	})

	updated := DefaultCommandConfig()
	updated.DefaultLeaderboardSize = 25
	holder.current.Store(updated)
	holder.notify(updated)

	require.Len(t, got, 1)
	assert.Equal(t, 25, got[0].DefaultLeaderboardSize)
	assert.Equal(t, 25, holder.Current().DefaultLeaderboardSize)
}
