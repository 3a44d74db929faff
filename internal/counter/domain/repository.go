package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the storage contract for counter records. Callers pass
// the *gorm.DB so one service transaction can span several calls.
type Repository interface {
	// ApplyDelta upserts the record and adds delta to its count,
	// clamping the result at zero. The whole read-modify-write happens
	// inside the database so concurrent deltas never lose updates.
	ApplyDelta(ctx context.Context, db *gorm.DB, communityID, memberID snowflake.ID, delta int, displayName string, now time.Time) error

	// SetCount upserts the record with an absolute count. value must
	// already be clamped non-negative by the caller.
	SetCount(ctx context.Context, db *gorm.DB, communityID, memberID snowflake.ID, value int, displayName string, now time.Time) error

	// GetCount reads the current count; the bool reports row existence.
	GetCount(ctx context.Context, db *gorm.DB, communityID, memberID snowflake.ID) (int, bool, error)

	// Delete removes the record if present and returns rows affected.
	Delete(ctx context.Context, db *gorm.DB, communityID, memberID snowflake.ID) (int64, error)

	// ZeroAll sets every count in the community to zero, preserving
	// rows and display names, and returns rows affected.
	ZeroAll(ctx context.Context, db *gorm.DB, communityID snowflake.ID, now time.Time) (int64, error)

	// TopN returns up to n records ordered by count descending, ties
	// broken by member_id ascending.
	TopN(ctx context.Context, db *gorm.DB, communityID snowflake.ID, n int) ([]Record, error)
}
