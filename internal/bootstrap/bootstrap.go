// Package bootstrap builds the application from a Config. Both the API
// server and the CLI start here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/PabloGalante/serene/internal/adapters/crypto"
	httpadapter "github.com/PabloGalante/serene/internal/adapters/http"
	"github.com/PabloGalante/serene/internal/adapters/llm"
	"github.com/PabloGalante/serene/internal/adapters/notify"
	firestorestore "github.com/PabloGalante/serene/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/serene/internal/adapters/storage/memory"
	"github.com/PabloGalante/serene/internal/adapters/storage/sealed"
	sqlitestore "github.com/PabloGalante/serene/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/serene/internal/app/conversation"
	"github.com/PabloGalante/serene/internal/app/feed"
	"github.com/PabloGalante/serene/internal/app/insights"
	"github.com/PabloGalante/serene/internal/app/journal"
	"github.com/PabloGalante/serene/internal/app/logbook"
	"github.com/PabloGalante/serene/internal/app/memory"
	"github.com/PabloGalante/serene/internal/app/reminders"
	"github.com/PabloGalante/serene/internal/app/tasks"
	"github.com/PabloGalante/serene/internal/config"
	"github.com/PabloGalante/serene/internal/domain"
	"github.com/PabloGalante/serene/internal/observability"
)

// App holds the wired services. Close releases the storage backend.
type App struct {
	Config   *config.Config
	Location *time.Location
	Store    domain.DocumentStore
	AI       domain.AIClient
	Services httpadapter.Services
	Reminder *reminders.Checker

	closers []io.Closer
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := observability.WithFields("component", "bootstrap")

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Location: loc}

	store, err := app.openStore(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.EncryptSensitive {
		key, err := crypto.LoadOrCreateKey(cfg.KeyPath)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("load encryption key: %w", err)
		}
		cipher, err := crypto.NewAESCipher(key)
		if err != nil {
			app.Close()
			return nil, err
		}
		log.Info("encrypting sensitive collections", "key_path", cfg.KeyPath)
		store = sealed.NewStore(store, cipher)
	}
	app.Store = store

	ai, err := newAIClient(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.AI = ai

	conv := conversation.NewService(ai, store, loc)
	app.Services = httpadapter.Services{
		Conversation: conv,
		Feed:         feed.NewService(store, conv, loc),
		Journal:      journal.NewService(store, ai),
		Tasks:        tasks.NewService(store, ai),
		Logbook:      logbook.NewService(store),
		Insights:     insights.NewService(ai),
		Memory:       memory.NewService(store, ai),
		Location:     loc,

		AllowedOrigins: cfg.AllowedOrigins,
	}
	app.Reminder = reminders.NewChecker(notify.NewLogNotifier(), loc)

	return app, nil
}

func (a *App) openStore(ctx context.Context) (domain.DocumentStore, error) {
	log := observability.WithFields("component", "bootstrap")
	cfg := a.Config

	switch cfg.StorageBackend {
	case "firestore":
		log.Info("using firestore storage", "project", cfg.GCPProjectID)
		s, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, fmt.Errorf("init firestore: %w", err)
		}
		a.closers = append(a.closers, s)
		return s, nil
	case "sqlite":
		log.Info("using sqlite storage", "path", cfg.SQLitePath)
		s, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	default:
		log.Info("using in-memory storage")
		return memstore.NewStore(), nil
	}
}

func newAIClient(ctx context.Context, cfg *config.Config) (domain.AIClient, error) {
	log := observability.WithFields("component", "bootstrap")

	switch cfg.AIBackend {
	case "gemini":
		log.Info("using gemini", "model", cfg.ModelName, "vertex", cfg.GeminiAPIKey == "")
		c, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
			ProjectID: cfg.GCPProjectID,
			Location:  cfg.GCPLocation,
			APIKey:    cfg.GeminiAPIKey,
			Model:     cfg.ModelName,
		})
		if err != nil {
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		return c, nil
	case "openai":
		log.Info("using openai-compatible endpoint", "base_url", cfg.OpenAIBaseURL, "model", cfg.OpenAIModel)
		c, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			BaseURL: cfg.OpenAIBaseURL,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
		})
		if err != nil {
			return nil, fmt.Errorf("init openai: %w", err)
		}
		return c, nil
	default:
		log.Info("using mock AI client")
		return llm.NewMockClient(), nil
	}
}

// RunReminders blocks until ctx is done, checking the configured user's
// tasks every interval.
func (a *App) RunReminders(ctx context.Context) {
	uid := domain.UserID(a.Config.ReminderUser)
	ctx = observability.WithUserID(ctx, string(uid))
	a.Reminder.Run(ctx, func(ctx context.Context) ([]domain.Task, error) {
		return a.Services.Tasks.List(ctx, uid)
	}, a.Config.ReminderInterval)
}

// Close waits for background chat work and releases the storage backend.
func (a *App) Close() error {
	if a.Services.Conversation != nil {
		a.Services.Conversation.Wait()
	}
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
