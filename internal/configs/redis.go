package config

import (
	"log"

	"github.com/redis/rueidis"
)

// NewRedisClient connects the pub/sub transport used by the change notifier
// when several chore-mate instances share a backend.
func NewRedisClient(addr string) rueidis.Client {
	redisClient, err := rueidis.NewClient(
		rueidis.ClientOption{
			InitAddress: []string{addr},
		},
	)
	if err != nil {
		log.Fatalf("failed to create redis client: %v", err)
	}

	return redisClient
}
