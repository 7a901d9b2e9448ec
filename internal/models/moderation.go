package models

import "time"

// ChatBan excludes a user from posting in the conversation. At most one active
// ban per user is meaningful: issuing a new ban deactivates prior active bans,
// and a partial unique index on (user_id) WHERE is_active backstops the
// read-then-write window.
type ChatBan struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	User           *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BannedByUserID uint       `gorm:"not null" json:"banned_by_user_id"`
	BannedByUser   *User      `gorm:"foreignKey:BannedByUserID" json:"banned_by_user,omitempty"`
	Reason         string     `gorm:"type:text;default:''" json:"reason"`
	BannedAt       time.Time  `json:"banned_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"` // nil = permanent
	IsActive       bool       `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (ChatBan) TableName() string {
	return "chat_bans"
}

// Expired reports whether the ban has a deadline that has passed.
func (b *ChatBan) Expired(now time.Time) bool {
	return b.ExpiresAt != nil && !now.Before(*b.ExpiresAt)
}

// BlacklistWord is a normalized (lowercased, trimmed) word blocked from
// conversation messages by substring match.
type BlacklistWord struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Word            string    `gorm:"unique;not null" json:"word"`
	CreatedByUserID uint      `gorm:"not null" json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (BlacklistWord) TableName() string {
	return "blacklist_words"
}

// Flag review states. pending is the only non-terminal state; transitions are
// admin-only and one-way.
const (
	FlagStatusPending   = "pending"
	FlagStatusReviewed  = "reviewed"
	FlagStatusDismissed = "dismissed"
)

// FlaggedPost is a topic author's report against a post in their topic.
// TopicTitle, PostContent, PostAuthorName and FlaggedByName are snapshots
// captured at flag time: they are historical record, not live references, and
// later edits to the post or profiles must not change them.
type FlaggedPost struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	PostID           uint       `gorm:"not null;index" json:"post_id"`
	TopicID          uint       `gorm:"not null;index" json:"topic_id"`
	TopicTitle       string     `gorm:"not null" json:"topic_title"`
	PostContent      string     `gorm:"type:text;not null" json:"post_content"`
	PostAuthorID     uint       `gorm:"not null" json:"post_author_id"`
	PostAuthorName   string     `gorm:"not null" json:"post_author_name"`
	FlaggedByUserID  uint       `gorm:"not null;index" json:"flagged_by_user_id"`
	FlaggedByName    string     `gorm:"not null" json:"flagged_by_name"`
	Reason           string     `gorm:"type:text;not null" json:"reason"`
	Status           string     `gorm:"not null;default:'pending';index" json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
	ReviewedByUserID *uint      `json:"reviewed_by_user_id,omitempty"`
}

// TableName specifies the table name for GORM.
func (FlaggedPost) TableName() string {
	return "flagged_posts"
}

// Terminal reports whether the flag has reached a final review decision.
func (f *FlaggedPost) Terminal() bool {
	return f.Status == FlagStatusReviewed || f.Status == FlagStatusDismissed
}
