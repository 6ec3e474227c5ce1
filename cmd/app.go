package cmd

import (
	"context"
	"fmt"

	"github.com/iksnae/chatlegis/internal"
)

// app is everything a command needs for one invocation: the stored
// session and an engine bound to the configured backend
type app struct {
	store   *internal.Store
	cache   *internal.CacheManager
	engine  *internal.Engine
	session *internal.Session

	// storedToken is what login saved; a --token or CHATLEGIS_TOKEN
	// override is used for requests but never persisted
	storedToken string
}

func openApp(ctx context.Context) (*app, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	store, err := internal.OpenStore(cfg.StorePath())
	if err != nil {
		return nil, err
	}

	session, err := store.Load(ctx, cfg.Session)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a := &app{
		store:       store,
		cache:       internal.NewCacheManager(cfg.CacheDir()),
		session:     session,
		storedToken: session.AuthToken,
	}
	if cfg.Token != "" {
		session.AuthToken = cfg.Token
	}

	if len(session.Conversations) == 0 {
		list, fetchedAt, err := a.cache.LoadConversations(session.Name)
		if err != nil {
			internal.LogWarn("Ignoring unreadable conversation cache", "error", err)
		} else if list != nil {
			internal.LogDebug("Seeded conversations from cache", "count", len(list), "fetched_at", fetchedAt)
			session.Conversations = list
		}
	}

	client := internal.NewClient(internal.NewTransport(cfg.Timeout), cfg.Endpoints())
	a.engine = internal.NewEngine(client, a.cache)
	return a, nil
}

// setStoredToken changes the persisted login
func (a *app) setStoredToken(token string) {
	a.storedToken = token
	a.session.AuthToken = token
}

// save persists the session with the stored token, not an override
func (a *app) save(ctx context.Context) error {
	active := a.session.AuthToken
	a.session.AuthToken = a.storedToken
	defer func() { a.session.AuthToken = active }()
	return a.store.Save(ctx, a.session)
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		internal.LogWarn("Failed to close session store", "error", err)
	}
}

// withApp opens the app, runs fn and saves the session even when fn fails,
// since a failed turn still changes the transcript
func withApp(ctx context.Context, fn func(a *app) error) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	runErr := fn(a)
	if err := a.save(ctx); err != nil {
		if runErr != nil {
			internal.LogError("Failed to save session", "error", err)
			return runErr
		}
		return err
	}
	return runErr
}
