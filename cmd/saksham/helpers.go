package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/config"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/gate"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/identity"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/queue"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/review"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/service"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/storage"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/syncer"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/workflow"
	"github.com/spf13/viper"
)

// initStore opens and migrates the review store.
func initStore(ctx context.Context) (*storage.SQLiteStore, error) {
	dbPath := viper.GetString("storage.path")
	if dbPath == "" {
		dbPath = config.DefaultStorePath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initQueue opens the offline work queue.
func initQueue() (*queue.Queue, error) {
	qPath := viper.GetString("queue.path")
	if qPath == "" {
		qPath = config.DefaultQueuePath()
	}
	return queue.New(config.ExpandPath(qPath))
}

// initIdentity builds the identity provider from config. Two modes exist:
// "token" reads a signed JWT directly, "oauth" refreshes one through the
// department SSO endpoint.
func initIdentity(ctx context.Context) (service.IdentityProvider, error) {
	secret := viper.GetString("auth.secret")
	if secret == "" {
		return nil, fmt.Errorf("auth.secret is not configured")
	}

	switch mode := viper.GetString("auth.mode"); mode {
	case "", "token":
		provider, err := identity.NewTokenProvider([]byte(secret))
		if err != nil {
			return nil, err
		}
		tokenFile := config.ExpandPath(viper.GetString("auth.token_file"))
		if tokenFile != "" {
			raw, readErr := os.ReadFile(tokenFile) // #nosec G304
			if readErr != nil {
				return nil, fmt.Errorf("failed to read token file: %w", readErr)
			}
			provider.SetToken(string(raw))
		}
		return provider, nil
	case "oauth":
		return identity.NewOAuthProvider(ctx, identity.OAuth2Config{
			ClientID:     viper.GetString("auth.oauth.client_id"),
			ClientSecret: viper.GetString("auth.oauth.client_secret"),
			AuthURL:      viper.GetString("auth.oauth.auth_url"),
			TokenURL:     viper.GetString("auth.oauth.token_url"),
			TokenFile:    config.ExpandPath(viper.GetString("auth.oauth.token_cache")),
			Secret:       secret,
		})
	default:
		return nil, fmt.Errorf("invalid auth.mode: %s", mode)
	}
}

// portal bundles the wired components behind one cleanup function.
type portal struct {
	controller *workflow.Controller
	store      *storage.SQLiteStore
	queue      *queue.Queue
	gate       *gate.Gate
}

func (p *portal) close() {
	_ = p.queue.Close()
	_ = p.store.Close()
}

// initPortal wires the full portal core: gate, state machine, queue, syncer
// and controller.
func initPortal(ctx context.Context, progress func(done, total int)) (*portal, error) {
	store, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	q, err := initQueue()
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	provider, err := initIdentity(ctx)
	if err != nil {
		_ = q.Close()
		_ = store.Close()
		return nil, err
	}

	g := gate.New(provider)
	machine := review.New(store)
	engine := syncer.New(q, store, syncer.Config{
		Progress: progress,
		RetryOpts: service.RetryOptions{
			MaxAttempts:  viper.GetInt("sync.retry_attempts"),
			InitialDelay: viper.GetDuration("sync.retry_delay"),
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	})

	return &portal{
		controller: workflow.New(g, machine, q, engine),
		store:      store,
		queue:      q,
		gate:       g,
	}, nil
}
