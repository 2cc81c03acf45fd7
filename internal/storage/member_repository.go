package storage

import (
	"time"

	"tg-groupguard/internal/models"

	"gorm.io/gorm"
)

// MemberRepository handles database operations for GroupMember join records
type MemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// MigrateTable ensures the group_members table exists with the right schema
func (r *MemberRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.GroupMember{})
}

// RecordJoin upserts the join timestamp for a user. Rejoining resets the
// quarantine clock.
func (r *MemberRepository) RecordJoin(chatID, userID int64, joinedAt time.Time) error {
	var existing models.GroupMember
	result := r.db.Where("chat_id = ? AND user_id = ?", chatID, userID).First(&existing)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return r.db.Create(&models.GroupMember{
				ChatID:   chatID,
				UserID:   userID,
				JoinedAt: joinedAt,
			}).Error
		}
		return result.Error
	}
	existing.JoinedAt = joinedAt
	return r.db.Save(&existing).Error
}

// JoinTime returns when the user joined, zero time if unknown
func (r *MemberRepository) JoinTime(chatID, userID int64) (time.Time, error) {
	var member models.GroupMember
	result := r.db.Where("chat_id = ? AND user_id = ?", chatID, userID).First(&member)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return time.Time{}, nil
		}
		return time.Time{}, result.Error
	}
	return member.JoinedAt, nil
}
