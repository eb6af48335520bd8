package chatlog

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"newsbot/internal/model"
)

// SQLLog stores history in chat_sessions/chat_messages tables. Ordering within
// a session comes from the auto-increment message ID, so racing appends keep
// their commit order.
type SQLLog struct {
	db *gorm.DB
}

func NewSQLLog(db *gorm.DB) *SQLLog {
	return &SQLLog{db: db}
}

func (l *SQLLog) History(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	if err := l.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list session messages failed: %w", err)
	}
	return messages, nil
}

func (l *SQLLog) Append(ctx context.Context, sessionID string, msg *model.ChatMessage) error {
	msg.SessionID = sessionID
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conflict-ignoring insert: racing appends for a new session must not
		// fail or duplicate the session row.
		session := model.ChatSession{SessionID: sessionID}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoNothing: true,
		}).Create(&session).Error; err != nil {
			return fmt.Errorf("upsert session failed: %w", err)
		}
		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("append message failed: %w", err)
		}
		return nil
	})
}

func (l *SQLLog) Clear(ctx context.Context, sessionID string) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&model.ChatMessage{}).Error; err != nil {
			return fmt.Errorf("delete session messages failed: %w", err)
		}
		if err := tx.Where("session_id = ?", sessionID).Delete(&model.ChatSession{}).Error; err != nil {
			return fmt.Errorf("delete session failed: %w", err)
		}
		return nil
	})
}
