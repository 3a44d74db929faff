package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Service is the counter store contract. The community scope travels in
// the context; member IDs identify rows within it. Display names are
// passed in by the caller, never fetched here, so no transaction ever
// blocks on the chat transport.
type Service interface {
	// Increment finds-or-creates the member's record and applies
	// count = max(0, count+delta), refreshing the display name when
	// non-empty. Returns the resulting count.
	Increment(ctx context.Context, memberID snowflake.ID, delta int, displayName string) (int, error)

	// SetValue finds-or-creates and sets count = max(0, value).
	SetValue(ctx context.Context, memberID snowflake.ID, value int, displayName string) (int, error)

	// Remove deletes the member's record if present. Idempotent; the
	// bool reports whether anything was deleted.
	Remove(ctx context.Context, memberID snowflake.ID) (bool, error)

	// ResetAll zeroes every count in the community, preserving rows
	// and names, and returns the number of rows touched.
	ResetAll(ctx context.Context) (int64, error)

	// TopN returns up to n records, count descending then member_id
	// ascending. Read-only; never creates records.
	TopN(ctx context.Context, n int) ([]Record, error)
}

var (
	ErrInvalidCommunity = errors.New("invalid_community")
	ErrInvalidMember    = errors.New("invalid_member")

	// ErrStore tags storage-layer failures (connectivity, constraint
	// violations). Business meaning stops at the error itself; callers
	// decide retry and reporting policy.
	ErrStore = errors.New("store_failure")
)
