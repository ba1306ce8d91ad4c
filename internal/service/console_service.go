package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-console/internal/client"
	"github.com/noah-isme/timetable-console/internal/controller"
	"github.com/noah-isme/timetable-console/internal/dto"
	"github.com/noah-isme/timetable-console/internal/generation"
	"github.com/noah-isme/timetable-console/internal/models"
	"github.com/noah-isme/timetable-console/internal/pivot"
	"github.com/noah-isme/timetable-console/internal/render"
	"github.com/noah-isme/timetable-console/internal/session"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
	"github.com/noah-isme/timetable-console/pkg/storage"
)

const exportPrefix = "timetable"

type sessionKeyCtx struct{}

// WithSessionKey binds the operator's session key to ctx; upstream calls made
// with it carry that session's cookies.
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyCtx{}, key)
}

// SessionKey returns the key bound by WithSessionKey.
func SessionKey(ctx context.Context) string {
	key, _ := ctx.Value(sessionKeyCtx{}).(string)
	return key
}

// ConsoleService composes the upstream client, the session store and one
// generation trigger per operator. The CLI and the web console share it.
type ConsoleService struct {
	client    *client.Client
	store     session.Store
	auth      *session.Authenticator
	pipeline  *pivot.Pipeline
	exports   *storage.LocalStorage
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	triggers map[string]*generation.Trigger
}

// NewConsoleService wires the console. exports and metrics may be nil.
func NewConsoleService(
	apiClient *client.Client,
	store session.Store,
	auth *session.Authenticator,
	pipeline *pivot.Pipeline,
	exports *storage.LocalStorage,
	metrics *MetricsService,
	logger *zap.Logger,
) *ConsoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pipeline == nil {
		pipeline = pivot.NewPipeline(pivot.DefaultAxes(), logger)
	}
	s := &ConsoleService{
		store:     store,
		auth:      auth,
		pipeline:  pipeline,
		exports:   exports,
		metrics:   metrics,
		validator: validator.New(),
		logger:    logger,
		now:       time.Now,
		triggers:  make(map[string]*generation.Trigger),
	}
	opts := []client.Option{client.WithCookieSource(s.cookies)}
	if metrics != nil {
		opts = append(opts, client.WithObserver(metrics))
	}
	s.client = apiClient.With(opts...)
	return s
}

// Requester exposes the session-aware upstream client.
func (s *ConsoleService) Requester() client.Requester {
	return s.client
}

// LoginPath is the entry point unauthorized operators are sent to.
func (s *ConsoleService) LoginPath() string {
	return s.client.LoginPath()
}

// Axes returns the grid axes results are pivoted on.
func (s *ConsoleService) Axes() pivot.Axes {
	return s.pipeline.Axes()
}

func (s *ConsoleService) cookies(ctx context.Context) []*http.Cookie {
	key := SessionKey(ctx)
	if key == "" {
		return nil
	}
	sess, err := s.store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			s.logger.Warn("session lookup failed", zap.Error(err))
		}
		return nil
	}
	return sess.HTTPCookies()
}

// Login authenticates against the backend and stores the session under key.
func (s *ConsoleService) Login(ctx context.Context, key string, form dto.CredentialsForm) (*models.Session, error) {
	sess, err := s.auth.Login(ctx, key, form)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store session")
	}
	return sess, nil
}

// Register creates a backend account.
func (s *ConsoleService) Register(ctx context.Context, form dto.CredentialsForm) error {
	return s.auth.Register(ctx, form)
}

// Logout ends the backend session, forgets it locally and drops the
// operator's generation state.
func (s *ConsoleService) Logout(ctx context.Context, key string) error {
	sess, err := s.store.Load(ctx, key)
	if err != nil && !errors.Is(err, session.ErrNoSession) {
		return err
	}
	if sess != nil {
		if err := s.auth.Logout(ctx, sess); err != nil {
			s.logger.Warn("backend logout failed", zap.String("username", sess.Username), zap.Error(err))
		}
	}
	s.mu.Lock()
	delete(s.triggers, key)
	s.mu.Unlock()
	return s.store.Delete(ctx, key)
}

// Session returns the live session stored under key.
func (s *ConsoleService) Session(ctx context.Context, key string) (*models.Session, error) {
	return s.store.Load(ctx, key)
}

// Board builds the manage controllers with the given dialog surface.
func (s *ConsoleService) Board(prompter controller.Prompter) *controller.Board {
	return controller.NewBoard(s.client, prompter, s.validator, s.logger)
}

// Trigger returns the generation trigger of the operator with key.
func (s *ConsoleService) Trigger(key string) *generation.Trigger {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.triggers[key]
	if !ok {
		t = generation.NewTrigger(s.client, s.pipeline,
			generation.WithObserver(s.metrics),
			generation.WithLogger(s.logger.With(zap.String("session", key))),
			generation.OnBusy(func(dto.GenerationView) {
				s.logger.Info("generation started", zap.String("session", key))
			}),
		)
		s.triggers[key] = t
	}
	return t
}

// Generate runs the operator's trigger with their session bound to ctx.
func (s *ConsoleService) Generate(ctx context.Context, key string) (dto.GenerationView, error) {
	return s.Trigger(key).Generate(WithSessionKey(ctx, key))
}

// Export encodes the operator's last results and saves them to the export
// directory. It returns the stored name alongside the document.
func (s *ConsoleService) Export(key, format string) (string, render.Document, error) {
	view := s.Trigger(key).View()
	if view.Results == nil {
		return "", render.Document{}, appErrors.Clone(appErrors.ErrNotFound, "generate a timetable before exporting")
	}
	return s.SaveDocument(format, view)
}

// SaveDocument encodes view and writes it to the export directory.
func (s *ConsoleService) SaveDocument(format string, view dto.GenerationView) (string, render.Document, error) {
	doc, err := render.Encode(format, view)
	if err != nil {
		return "", render.Document{}, err
	}
	if s.exports == nil {
		return "", doc, nil
	}
	name, err := s.exports.Save(storage.ExportName(exportPrefix, doc.Extension, s.now()), doc.Body)
	if err != nil {
		return "", render.Document{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "save export")
	}
	s.logger.Info("export saved", zap.String("name", name), zap.String("format", doc.Format), zap.Int("bytes", len(doc.Body)))
	return name, doc, nil
}

// Exports lists saved exports, newest first.
func (s *ConsoleService) Exports() ([]storage.StoredFile, error) {
	if s.exports == nil {
		return nil, nil
	}
	return s.exports.List()
}

// ExportStore exposes the export directory, nil when exports are disabled.
func (s *ConsoleService) ExportStore() *storage.LocalStorage {
	return s.exports
}
