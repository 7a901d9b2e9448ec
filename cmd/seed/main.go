// Command main runs the database seeder for Agora.
package main

import (
	"flag"
	"log"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numTopics := flag.Int("topics", 20, "Number of topics to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	numMessages := flag.Int("messages", 300, "Number of conversation messages to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d topics, %d posts, %d messages, clean=%v",
		*numUsers, *numTopics, *numPosts, *numMessages, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s, err := seed.NewSeeder(db)
	if err != nil {
		log.Fatalf("Failed to create seeder: %v", err)
	}

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	admin, err := s.EnsureAdmin()
	if err != nil {
		log.Fatalf("Admin bootstrap failed: %v", err)
	}

	users, err := s.SeedForum(seed.Options{
		Users:  *numUsers,
		Topics: *numTopics,
		Posts:  *numPosts,
	})
	if err != nil {
		log.Fatalf("Forum seeding failed: %v", err)
	}

	if err := s.SeedConversation(users, *numMessages); err != nil {
		log.Fatalf("Conversation seeding failed: %v", err)
	}

	if err := s.SeedBlacklist(admin.ID); err != nil {
		log.Fatalf("Blacklist seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with test data.")
	log.Printf("All test users have the password: %s", seed.DefaultPassword)
}
