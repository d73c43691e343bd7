//go:build ignore

// test_publish публикует событие изменения в Redis Stream, как это делает
// change relay worker. API с TRACKER_CHANGE_FEED=redis должен перечитать
// статусы маршрутов; результат виден в GET /api/v1/route-statuses/stream.
//
//	go run scripts/test_publish.go -redis localhost:6379 -type INSERT
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type changeEvent struct {
	Type       string    `json:"type"`
	Collection string    `json:"collection"`
	RecordID   string    `json:"record_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address")
	collection := flag.String("collection", "vehicle_locations", "Changed collection")
	changeType := flag.String("type", "INSERT", "INSERT, UPDATE, DELETE or RESYNC")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		log.Fatalf("Failed to generate record id: %v", err)
	}

	event := changeEvent{
		Type:       *changeType,
		Collection: *collection,
		RecordID:   id.String(),
		OccurredAt: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	stream := "stream:" + *collection + ":changes"
	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	groups, err := client.XInfoGroups(ctx, stream).Result()
	if err != nil {
		log.Printf("Failed to read consumer groups: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: %s\n", stream)
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Type: %s, record: %s\n", event.Type, event.RecordID)
	fmt.Printf("   Consumer groups: %d\n", len(groups))
	for _, g := range groups {
		fmt.Printf("   - %s (pending %d, lag %d)\n", g.Name, g.Pending, g.Lag)
	}
}
