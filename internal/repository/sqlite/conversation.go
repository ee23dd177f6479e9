package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gatherly-app/gatherly/internal/domain"
	"github.com/gatherly-app/gatherly/internal/repository"
)

// conversationRecord is the persisted row. One row per (owner,
// conversation); the same conversation may be stored for several owners on
// a shared device.
type conversationRecord struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	OwnerID           string    `gorm:"index;uniqueIndex:idx_owner_conversation"`
	ConversationID    string    `gorm:"uniqueIndex:idx_owner_conversation"`
	ParticipantID     string
	ParticipantName   string
	ParticipantAvatar string
	Title             string
	LastMessage       string
	LastMessageTime   time.Time
	UnreadCount       int
	IsActive          bool
	gorm.Model
}

type conversationStore struct {
	db *gorm.DB
}

func NewConversationStore(db *gorm.DB) repository.ConversationStore {
	return &conversationStore{db: db}
}

func (s *conversationStore) FetchLocal(ctx context.Context, userID string) ([]domain.Conversation, error) {
	var records []conversationRecord
	if err := s.db.WithContext(ctx).Where("owner_id = ?", userID).Find(&records).Error; err != nil {
		return nil, err
	}

	conversations := make([]domain.Conversation, 0, len(records))
	for _, rec := range records {
		conversations = append(conversations, rec.toDomain())
	}
	return conversations, nil
}

func (s *conversationStore) ReplaceAll(ctx context.Context, userID string, conversations []domain.Conversation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", userID).
			Unscoped().Delete(&conversationRecord{}).Error; err != nil {
			return err
		}
		if len(conversations) == 0 {
			return nil
		}

		records := make([]conversationRecord, 0, len(conversations))
		for _, conv := range conversations {
			records = append(records, newRecord(userID, conv))
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "conversation_id"}},
			UpdateAll: true,
		}).Create(&records).Error
	})
}

func (s *conversationStore) Delete(ctx context.Context, userID string, conversationID string) error {
	return s.db.WithContext(ctx).
		Where("owner_id = ? AND conversation_id = ?", userID, conversationID).
		Unscoped().Delete(&conversationRecord{}).Error
}

func newRecord(userID string, conv domain.Conversation) conversationRecord {
	return conversationRecord{
		ID:                uuid.New(),
		OwnerID:           userID,
		ConversationID:    conv.ID,
		ParticipantID:     conv.ParticipantID,
		ParticipantName:   conv.ParticipantName,
		ParticipantAvatar: conv.ParticipantAvatar,
		Title:             conv.Title,
		LastMessage:       conv.LastMessage,
		LastMessageTime:   conv.LastMessageTime,
		UnreadCount:       conv.UnreadCount,
		IsActive:          conv.IsActive,
	}
}

func (r conversationRecord) toDomain() domain.Conversation {
	return domain.Conversation{
		ID:                r.ConversationID,
		ParticipantID:     r.ParticipantID,
		ParticipantName:   r.ParticipantName,
		ParticipantAvatar: r.ParticipantAvatar,
		Title:             r.Title,
		LastMessage:       r.LastMessage,
		LastMessageTime:   r.LastMessageTime,
		UnreadCount:       r.UnreadCount,
		IsActive:          r.IsActive,
	}
}
