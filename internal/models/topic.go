package models

import (
	"time"

	"gorm.io/gorm"
)

// Topic represents a forum discussion thread. The topic author is the only
// user allowed to flag posts made inside the topic.
type Topic struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"not null" json:"title"`
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	Author    *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Post represents a reply inside a topic.
type Post struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	TopicID   uint           `gorm:"not null;index" json:"topic_id"`
	Topic     *Topic         `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	Author    *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
