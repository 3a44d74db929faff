package communityctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// CommunityKey is the request context key for the active community
// (guild) ID. Every counter operation is scoped to one community.
type CommunityKey struct{}

// WithCommunityID stores the community ID in the context.
func WithCommunityID(ctx context.Context, id snowflake.ID) context.Context {
	return context.WithValue(ctx, CommunityKey{}, id)
}

// CommunityIDFromContext returns the community ID from context, if set.
func CommunityIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	value := ctx.Value(CommunityKey{})
	if value == nil {
		return 0, false
	}
	switch typed := value.(type) {
	case int64:
		return snowflake.ID(typed), true
	case snowflake.ID:
		return typed, true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
