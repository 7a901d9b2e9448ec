package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	TopicKeyPrefix        = "topic:%d"
	BlacklistKey          = "moderation:blacklist"
	ConversationKeyPrefix = "conversation:recent:%d"
)

const (
	UserTTL         = 5 * time.Minute
	TopicTTL        = 10 * time.Minute
	ConversationTTL = 30 * time.Second
	BlacklistTTL    = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func TopicKey(topicID uint) string {
	return fmt.Sprintf(TopicKeyPrefix, topicID)
}

// ConversationKey addresses the cached newest page of the conversation for
// one page size.
func ConversationKey(limit int) string {
	return fmt.Sprintf(ConversationKeyPrefix, limit)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateTopic(ctx context.Context, topicID uint) {
	Invalidate(ctx, TopicKey(topicID))
}

// InvalidateConversation drops every cached conversation page. The keyspace
// is bounded by the distinct page sizes clients request (capped at the
// pagination limit), so KEYS stays cheap here.
func InvalidateConversation(ctx context.Context) {
	if client == nil {
		return
	}
	keys, err := client.Keys(ctx, "conversation:recent:*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

func InvalidateBlacklist(ctx context.Context) {
	Invalidate(ctx, BlacklistKey)
}
