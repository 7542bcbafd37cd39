/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package pokedex wires configuration, storage, the pokemon service and the
// HTTP API into a runnable application.
package pokedex

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tomoncle/pokedex/config"
	"github.com/tomoncle/pokedex/database"
	"github.com/tomoncle/pokedex/httpapi"
	"github.com/tomoncle/pokedex/pokemon"
	"github.com/tomoncle/pokedex/repository"
	"github.com/tomoncle/pokedex/utils"
)

type App struct {
	Config  *config.Config
	Service *pokemon.Service

	db  *database.BaseDatabaseFactory
	log *utils.Logger
}

// New configures logging, opens the database and builds the service.
// Migrations run when the configuration enables them.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	utils.ConfigureConsoleLogFormat(cfg.Log.Format)
	utils.ConfigureLogLevel(cfg.Log.Level)

	db, err := database.Open(ctx, &cfg.Database, database.DefaultRegistry())
	if err != nil {
		return nil, err
	}

	svc, err := pokemon.NewService(repository.NewRepository[pokemon.Pokemon](db.GetDB()), cfg.DefaultLimit)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		Config:  cfg,
		Service: svc,
		db:      db,
		log:     utils.NewLogger("POKEDEX"),
	}, nil
}

// Load is New over the configuration file at path.
func Load(ctx context.Context, path string) (*App, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg)
}

// Migrate creates any missing tables.
func (a *App) Migrate(ctx context.Context) error {
	return a.db.GetManager().RunMigrations(ctx)
}

// SeedFromFile loads the YAML seed at path, or the configured one when path
// is empty, and writes it. Without upsert the table is cleared first.
func (a *App) SeedFromFile(ctx context.Context, path string) (int, error) {
	if path == "" {
		path = a.Config.Seed.File
	}
	if path == "" {
		return 0, fmt.Errorf("no seed file configured")
	}
	dtos, err := pokemon.LoadSeedFile(path)
	if err != nil {
		return 0, err
	}
	opts := pokemon.SeedOptions{Replace: !a.Config.Seed.Upsert, Upsert: a.Config.Seed.Upsert}
	return a.Service.Seed(ctx, dtos, opts)
}

func (a *App) Health(ctx context.Context) *database.HealthStatus {
	return a.db.GetHealthStatus(ctx)
}

// Handler returns the HTTP API of the application.
func (a *App) Handler() http.Handler {
	return httpapi.NewHandler(a.Service, httpapi.Options{
		Seed: func(ctx context.Context) (int, error) {
			return a.SeedFromFile(ctx, "")
		},
		Health: a.Health,
	}).Routes()
}

// Serve listens on the configured address until ctx is done, then shuts the
// server down gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.Config.HTTP.Addr,
		Handler:      a.Handler(),
		ReadTimeout:  a.Config.HTTP.ReadTimeout,
		WriteTimeout: a.Config.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout)
	defer cancel()
	a.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() error {
	return a.db.Close()
}
