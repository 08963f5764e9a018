package main

import (
	"context"
	"fmt"
	"net"

	"github.com/indigo-web/restcore"
	"github.com/indigo-web/restcore/config"
	"github.com/indigo-web/restcore/db"
	"github.com/indigo-web/restcore/http"
	"github.com/indigo-web/restcore/internal/static"
	"github.com/indigo-web/restcore/internal/users"
	"github.com/rs/zerolog"
)

// frontend maps routes to the files they're served from.
var frontend = map[string]string{
	"/":           "index.html",
	"/style.css":  "style.css",
	"/script.js":  "script.js",
	"/index.html": "index.html",
}

// run serves until the context is done.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	backend, err := db.New(db.Type(cfg.Database.Backend))
	if err != nil {
		return err
	}

	if err = backend.Connect(cfg.Database.DSN); err != nil {
		return fmt.Errorf("connect to %s database: %w", cfg.Database.Backend, err)
	}

	defer func() {
		if err := backend.Disconnect(); err != nil {
			log.Warn().Err(err).Msg("disconnect from database")
		}
	}()

	helper := db.NewHelper(backend, log.With().Str("component", "db").Logger())
	usersHandler, err := users.New(helper, log.With().Str("component", "users").Logger())
	if err != nil {
		return err
	}

	store := static.NewStore(cfg.Static.Root, log.With().Str("component", "static").Logger())
	if cfg.Static.Watch {
		if err = store.Watch(); err != nil {
			log.Warn().Err(err).Msg("frontend files won't be reloaded")
		}

		defer func() {
			_ = store.Close()
		}()
	}

	server, err := restcore.New(cfg, log)
	if err != nil {
		return err
	}

	routes := map[string]http.Handler{
		"/api/users": usersHandler,
	}

	for path, file := range frontend {
		routes[path] = static.File(store, file, log)
	}

	for path, handler := range routes {
		if err = server.AddRoute(path, handler); err != nil {
			return err
		}
	}

	if err = server.Start(); err != nil {
		return err
	}

	addr := server.Addr()
	_, port, _ := net.SplitHostPort(addr.String())

	log.Info().
		Str("url", "http://localhost:"+port).
		Stringer("addr", addr).
		Strs("routes", server.Routes()).
		Str("database", cfg.Database.Backend).
		Msg("serving")

	<-ctx.Done()
	server.Stop()

	return nil
}
