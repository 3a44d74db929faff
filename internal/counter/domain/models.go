package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Record is one member's order counter within a community. At most one
// record exists per (community, member) pair; the unique index is the
// storage-level guarantee, not just application logic.
type Record struct {
	ID          uint64       `gorm:"primaryKey;autoIncrement" json:"id"`
	CommunityID snowflake.ID `gorm:"column:community_id;not null;index;uniqueIndex:uq_community_member" json:"community_id"`
	MemberID    snowflake.ID `gorm:"column:member_id;not null;uniqueIndex:uq_community_member" json:"member_id"`
	DisplayName string       `gorm:"column:display_name;size:128;not null;default:'Unknown'" json:"display_name"`
	Count       int          `gorm:"column:count;not null;default:0" json:"count"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Record) TableName() string {
	return "counters"
}
