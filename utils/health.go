package utils

import (
	"context"
	"errors"
	"sync"
	"time"

	"leadline/services/googleauth"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/oauth2"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Mongo     bool              `json:"mongo"`
	Redis     []bool            `json:"redis"`
	Google    map[string]string `json:"google"`
	CheckedAt time.Time         `json:"checkedAt"`
}

// Google credential states reported by the health monitor.
const (
	CredentialOK           = "ok"
	CredentialAuthRequired = "auth_required"
	CredentialUnavailable  = "unavailable"
)

// HealthTargets lists what the monitor checks. Google entries report whether
// a valid token can still be produced for that API, and if not, whether an
// operator has to redo the consent flow.
type HealthTargets struct {
	Redis  []*redis.Client
	Mongo  *mongo.Client
	Google map[string]oauth2.TokenSource
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// CheckHealth runs one round of checks and stores the result.
func CheckHealth(ctx context.Context, t HealthTargets) HealthStatus {
	var redisHealth []bool
	for _, client := range t.Redis {
		redisHealth = append(redisHealth, client.Ping(ctx).Err() == nil)
	}

	status := HealthStatus{
		Mongo:     t.Mongo != nil && t.Mongo.Ping(ctx, nil) == nil,
		Redis:     redisHealth,
		Google:    make(map[string]string, len(t.Google)),
		CheckedAt: time.Now(),
	}
	for name, ts := range t.Google {
		_, err := ts.Token()
		switch {
		case err == nil:
			status.Google[name] = CredentialOK
		case errors.Is(err, googleauth.ErrAuthRequired):
			status.Google[name] = CredentialAuthRequired
		default:
			status.Google[name] = CredentialUnavailable
		}
	}

	mu.Lock()
	currentHealth = status
	mu.Unlock()
	return status
}

// StartHealthMonitor performs periodic health checks until ctx is done.
func StartHealthMonitor(ctx context.Context, t HealthTargets, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			CheckHealth(checkCtx, t)
			cancel()

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}
