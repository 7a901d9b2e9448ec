package database

import "agora/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Topic{},
		&models.Post{},
		&models.ChatMessage{},
		&models.ChatBan{},
		&models.BlacklistWord{},
		&models.FlaggedPost{},
	}
}
