package notify

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/kampusgig/backend/internal/models"
)

// RedisNotifier persists a Notification row and publishes the same payload on
// the recipient's Redis channel for live delivery.
type RedisNotifier struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewRedisNotifier(db *gorm.DB, rdb *redis.Client) *RedisNotifier {
	return &RedisNotifier{DB: db, RDB: rdb}
}

func channelFor(userID uuid.UUID) string {
	return "notify:" + userID.String()
}

func (n *RedisNotifier) Notify(recipientID uuid.UUID, title, body, category string, data map[string]interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Notify] marshal data failed: %v", err)
		payload = []byte("{}")
	}

	row := models.Notification{
		ID:       uuid.New(),
		UserID:   recipientID,
		Title:    title,
		Body:     body,
		Category: category,
		Data:     payload,
	}
	if err := n.DB.Create(&row).Error; err != nil {
		log.Printf("[Notify] persist failed for user %s: %v", recipientID, err)
	}

	msg, err := json.Marshal(map[string]interface{}{
		"id":       row.ID,
		"title":    title,
		"body":     body,
		"category": category,
		"data":     data,
	})
	if err != nil {
		log.Printf("[Notify] marshal message failed: %v", err)
		return
	}

	if err := n.RDB.Publish(context.Background(), channelFor(recipientID), msg).Err(); err != nil {
		log.Printf("[Notify] publish failed for user %s: %v", recipientID, err)
	}
}
