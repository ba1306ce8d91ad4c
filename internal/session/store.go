package session

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-console/internal/models"
	"github.com/noah-isme/timetable-console/pkg/cache"
	"github.com/noah-isme/timetable-console/pkg/config"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
)

// CLIKey is the session key the command line uses; the web console keys
// sessions by a uuid per browser.
const CLIKey = "cli"

// ErrNoSession means no live upstream session is stored for the key.
var ErrNoSession = appErrors.Clone(appErrors.ErrUnauthorized, "no active session, log in first")

// Store persists upstream sessions by key.
type Store interface {
	Load(ctx context.Context, key string) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, key string) error
}

// NewStore builds the store selected by SESSION_STORE. The returned close
// func releases backend connections.
func NewStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, func() error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Session.Store {
	case "", config.SessionStoreFile:
		return NewFileStore(cfg.Session.File), func() error { return nil }, nil
	case config.SessionStoreRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect session store: %w", err)
		}
		logger.Info("redis session store connected", zap.String("addr", cache.Addr(cfg.Redis)))
		return NewRedisStore(client, cfg.Session.TTL, logger), client.Close, nil
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown session store %q", cfg.Session.Store))
	}
}

func live(s *models.Session, now time.Time) (*models.Session, error) {
	if s == nil || s.Expired(now) {
		return nil, ErrNoSession
	}
	return s, nil
}
