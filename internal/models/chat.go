package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// MaxMessageContentLen bounds conversation message content in characters.
	MaxMessageContentLen = 500
	// MaxMediaLinks bounds the number of media attachments per message.
	MaxMediaLinks = 3
)

// StringList is a []string persisted as a JSON text column. GORM has no
// portable array type across postgres and sqlite, so messages store their
// media links this way.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported StringList source type %T", src)
	}
}

// ChatMessage is a message in the sitewide conversation. Rows are immutable
// once created; UserName, ReplyToAuthor and ReplyToExcerpt are snapshots
// captured at write time, never refreshed from the referenced rows.
type ChatMessage struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	UserName       string     `gorm:"not null" json:"user_name"`
	Content        string     `gorm:"type:text" json:"content"`
	MediaLinks     StringList `gorm:"type:text" json:"media_links"`
	ReplyToID      *uint      `json:"reply_to_id,omitempty"`
	ReplyToAuthor  string     `json:"reply_to_author,omitempty"`
	ReplyToExcerpt string     `json:"reply_to_excerpt,omitempty"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (ChatMessage) TableName() string {
	return "chat_messages"
}
