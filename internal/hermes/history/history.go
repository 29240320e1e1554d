// Package history persists question/answer exchanges.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	historyopts "github.com/kart-io/hermes/pkg/options/history"
)

// Conversation groups the messages of one dialogue.
type Conversation struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one utterance inside a conversation. Assistant messages carry
// the pipeline mode and label for auditing.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID string    `gorm:"index;size:64" json:"conversation_id"`
	Role           string    `gorm:"size:16" json:"role"`
	Content        string    `json:"content"`
	Mode           string    `gorm:"size:16" json:"mode,omitempty"`
	Label          string    `gorm:"size:32" json:"label,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Store persists conversations. A nil Store is valid and drops everything.
type Store struct {
	db *gorm.DB
}

// Open connects to the configured history database and migrates the schema.
// A disabled configuration yields a nil Store.
func Open(opts *historyopts.Options) (*Store, error) {
	if opts == nil || !opts.Enabled {
		return nil, nil
	}

	var dialector gorm.Dialector
	switch opts.Driver {
	case historyopts.DriverSQLite:
		dialector = sqlite.Open(opts.DSN)
	case historyopts.DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("history: unknown driver %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", opts.Driver, err)
	}
	if err := db.AutoMigrate(&Conversation{}, &Message{}); err != nil {
		return nil, fmt.Errorf("history: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends a question/answer pair to a conversation, creating the
// conversation on first use.
func (s *Store) Record(ctx context.Context, conversationID, question, answer, mode, label string) error {
	if s == nil || conversationID == "" {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv := Conversation{ID: conversationID}
		if err := tx.FirstOrCreate(&conv, Conversation{ID: conversationID}).Error; err != nil {
			return err
		}
		messages := []Message{
			{ConversationID: conversationID, Role: RoleUser, Content: question},
			{ConversationID: conversationID, Role: RoleAssistant, Content: answer, Mode: mode, Label: label},
		}
		if err := tx.Create(&messages).Error; err != nil {
			return err
		}
		return tx.Model(&Conversation{}).
			Where("id = ?", conversationID).
			Update("updated_at", time.Now()).Error
	})
}

// Messages returns the messages of a conversation in chronological order.
func (s *Store) Messages(ctx context.Context, conversationID string) ([]Message, error) {
	if s == nil {
		return nil, nil
	}

	var messages []Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id asc").
		Find(&messages).Error
	return messages, err
}

// Conversations returns the most recently updated conversations.
func (s *Store) Conversations(ctx context.Context, limit int) ([]Conversation, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	var conversations []Conversation
	err := s.db.WithContext(ctx).
		Order("updated_at desc").
		Limit(limit).
		Find(&conversations).Error
	return conversations, err
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
