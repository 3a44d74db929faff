package authz

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/ovenlight/orderboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAuthz(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	holder := config.NewStaticCommandConfig(config.DefaultCommandConfig())

	enforcer, err := NewEnforcer(db, holder)
	require.NoError(t, err)

	return NewService(Params{
		Log:      zap.NewNop(),
		Enforcer: enforcer,
		Commands: holder,
	})
}

func TestAuthorize(t *testing.T) {
	svc := setupAuthz(t)

	tests := []struct {
		name    string
		roles   []string
		command string
		want    bool
	}{
		{"chef can add", []string{"Chef"}, "add", true},
		{"case insensitive roles", []string{"cHeF"}, "add", true},
		{"non chef cannot add", []string{"Waiter"}, "add", false},
		{"no roles cannot add", nil, "add", false},
		{"any one required role suffices", []string{"Owner"}, "remove", true},
		{"head chef can set", []string{"Head Chef"}, "set", true},
		{"chef cannot resetall", []string{"Chef"}, "resetall", false},
		{"open command allows everyone", nil, "leaderboard", true},
		{"extra roles do not hurt", []string{"Waiter", "owner", "DJ"}, "set", true},
		{"blank roles are ignored", []string{"", "  "}, "remove", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authorize(tt.roles, tt.command)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResyncFollowsConfigChange(t *testing.T) {
	svc := setupAuthz(t)

	allowed, err := svc.Authorize([]string{"Sous Chef"}, "add")
	require.NoError(t, err)
	assert.False(t, allowed)

	updated := config.DefaultCommandConfig()
	updated.RequiredRoles["add"] = []string{"Chef", "Sous Chef"}
	svc.resync(updated)

	allowed, err = svc.Authorize([]string{"Sous Chef"}, "add")
	require.NoError(t, err)
	assert.True(t, allowed)
}
