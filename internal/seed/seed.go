// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"agora/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the login password of every seeded account.
const DefaultPassword = "password123"

// Options control how much data the seeder generates.
type Options struct {
	Users    int
	Topics   int
	Posts    int
	Messages int
}

// Seeder populates the database with demo data.
type Seeder struct {
	db   *gorm.DB
	rand *rand.Rand
	// passwordHash is computed once; bcrypt per-user is needlessly slow for
	// large seeds.
	passwordHash string
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) (*Seeder, error) {
	gofakeit.Seed(time.Now().UnixNano())

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	return &Seeder{
		db:           db,
		rand:         rand.New(rand.NewSource(time.Now().UnixNano())),
		passwordHash: string(hash),
	}, nil
}

// ClearAll deletes all seedable data. Order matters because of foreign keys.
func (s *Seeder) ClearAll() error {
	tables := []string{
		"flagged_posts",
		"chat_bans",
		"blacklist_words",
		"chat_messages",
		"posts",
		"topics",
		"users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	log.Println("cleared existing data")
	return nil
}

// CreateUser persists a generated user. Overrides may adjust the user before
// it is saved.
func (s *Seeder) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:    fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		DisplayName: gofakeit.Name(),
		Email:       gofakeit.Email(),
		Password:    s.passwordHash,
		Bio:         gofakeit.Sentence(10),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// EnsureAdmin creates (or promotes) the demo admin account.
func (s *Seeder) EnsureAdmin() (*models.User, error) {
	var admin models.User
	err := s.db.Where("email = ?", "admin@example.com").First(&admin).Error
	if err == nil {
		if !admin.IsAdmin {
			if uerr := s.db.Model(&admin).Update("is_admin", true).Error; uerr != nil {
				return nil, uerr
			}
			admin.IsAdmin = true
		}
		return &admin, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	return s.CreateUser(func(u *models.User) {
		u.Username = "admin"
		u.DisplayName = "Site Admin"
		u.Email = "admin@example.com"
		u.IsAdmin = true
	})
}

// SeedForum creates users, topics and posts.
func (s *Seeder) SeedForum(opts Options) ([]models.User, error) {
	users := make([]models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user, err := s.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	log.Printf("created %d users", len(users))

	topics := make([]models.Topic, 0, opts.Topics)
	for i := 0; i < opts.Topics; i++ {
		author := users[s.rand.Intn(len(users))]
		topic := models.Topic{
			Title:     gofakeit.Sentence(6),
			AuthorID:  author.ID,
			CreatedAt: s.pastTime(60),
		}
		if err := s.db.Create(&topic).Error; err != nil {
			return nil, fmt.Errorf("create topic: %w", err)
		}
		topics = append(topics, topic)
	}
	log.Printf("created %d topics", len(topics))

	for i := 0; i < opts.Posts; i++ {
		topic := topics[s.rand.Intn(len(topics))]
		author := users[s.rand.Intn(len(users))]
		post := models.Post{
			TopicID:   topic.ID,
			AuthorID:  author.ID,
			Content:   gofakeit.Paragraph(1, 3, 8, "\n"),
			CreatedAt: s.pastTime(30),
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
	}
	log.Printf("created %d posts", opts.Posts)

	return users, nil
}

// SeedConversation fills the sitewide conversation. Authors are drawn
// randomly, so long same-author runs that would trip the live throttle are
// unlikely but historically plausible.
func (s *Seeder) SeedConversation(users []models.User, count int) error {
	if len(users) == 0 {
		return fmt.Errorf("no users to author messages")
	}

	var prev *models.ChatMessage
	for i := 0; i < count; i++ {
		author := users[s.rand.Intn(len(users))]
		msg := models.ChatMessage{
			UserID:    author.ID,
			UserName:  author.PublicName(),
			Content:   gofakeit.HipsterSentence(s.rand.Intn(10) + 3),
			CreatedAt: s.pastTime(7),
		}
		// Occasionally reply to the previous message.
		if prev != nil && s.rand.Intn(5) == 0 {
			msg.ReplyToID = &prev.ID
			msg.ReplyToAuthor = prev.UserName
			msg.ReplyToExcerpt = prev.Content
		}
		if err := s.db.Create(&msg).Error; err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		prev = &msg
	}
	log.Printf("created %d conversation messages", count)
	return nil
}

// SeedBlacklist installs a starter word blacklist.
func (s *Seeder) SeedBlacklist(adminID uint) error {
	words := []string{"spamlink", "buynow", "freecrypto"}
	for _, w := range words {
		word := models.BlacklistWord{Word: w, CreatedByUserID: adminID}
		if err := s.db.Where("word = ?", w).FirstOrCreate(&word).Error; err != nil {
			return fmt.Errorf("create blacklist word %q: %w", w, err)
		}
	}
	log.Printf("ensured %d blacklist words", len(words))
	return nil
}

func (s *Seeder) pastTime(maxDays int) time.Time {
	daysBack := s.rand.Intn(maxDays)
	hoursBack := s.rand.Intn(24)
	minsBack := s.rand.Intn(60)
	return time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour -
			time.Duration(hoursBack)*time.Hour -
			time.Duration(minsBack)*time.Minute)
}
