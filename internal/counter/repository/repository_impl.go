package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	counterdomain "github.com/ovenlight/orderboard/internal/counter/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() counterdomain.Repository {
	return &repo{}
}

func (r *repo) ApplyDelta(ctx context.Context, db *gorm.DB, communityID, memberID snowflake.ID, delta int, displayName string, now time.Time) error {
	initial := delta
	if initial < 0 {
		initial = 0
	}
	return db.WithContext(ctx).Exec(fmt.Sprintf(
		`INSERT INTO counters (community_id, member_id, display_name, count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (community_id, member_id) DO UPDATE SET
		   count = %s(0, counters.count + ?),
		   display_name = CASE WHEN ? <> '' THEN ? ELSE counters.display_name END,
		   updated_at = ?`, greatestFn(db)),
		communityID,
		memberID,
		insertName(displayName),
		initial,
		now,
		now,
		delta,
		displayName,
		displayName,
		now,
	).Error
}

func (r *repo) SetCount(ctx context.Context, db *gorm.DB, communityID, memberID snowflake.ID, value int, displayName string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO counters (community_id, member_id, display_name, count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (community_id, member_id) DO UPDATE SET
		   count = ?,
		   display_name = CASE WHEN ? <> '' THEN ? ELSE counters.display_name END,
		   updated_at = ?`,
		communityID,
		memberID,
		insertName(displayName),
		value,
		now,
		now,
		value,
		displayName,
		displayName,
		now,
	).Error
}

func (r *repo) GetCount(ctx context.Context, db *gorm.DB, communityID, memberID snowflake.ID) (int, bool, error) {
	var row struct {
		Count int  `gorm:"column:count"`
		Found bool `gorm:"column:found"`
	}
	err := db.WithContext(ctx).Raw(
		`SELECT count, TRUE AS found
		 FROM counters WHERE community_id = ? AND member_id = ?`,
		communityID,
		memberID,
	).Scan(&row).Error
	if err != nil {
		return 0, false, err
	}
	return row.Count, row.Found, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, communityID, memberID snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`DELETE FROM counters WHERE community_id = ? AND member_id = ?`,
		communityID,
		memberID,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) ZeroAll(ctx context.Context, db *gorm.DB, communityID snowflake.ID, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE counters SET count = 0, updated_at = ? WHERE community_id = ?`,
		now,
		communityID,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) TopN(ctx context.Context, db *gorm.DB, communityID snowflake.ID, n int) ([]counterdomain.Record, error) {
	var records []counterdomain.Record
	err := db.WithContext(ctx).Raw(
		`SELECT community_id, member_id, display_name, count, created_at, updated_at
		 FROM counters
		 WHERE community_id = ?
		 ORDER BY count DESC, member_id ASC
		 LIMIT ?`,
		communityID,
		n,
	).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// greatestFn picks the dialect's two-argument max: GREATEST on postgres,
// scalar MAX on sqlite.
func greatestFn(db *gorm.DB) string {
	if db != nil && strings.EqualFold(db.Dialector.Name(), "postgres") {
		return "GREATEST"
	}
	return "MAX"
}

func insertName(displayName string) string {
	if displayName == "" {
		return "Unknown"
	}
	return displayName
}
