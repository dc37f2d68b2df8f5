// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/poiesic/mailvec/storage"
)

// Store is a PostgreSQL + pgvector storage.Store implementation. Vector
// search runs in the database via the cosine distance operator.
type Store struct {
	pool       *pgxpool.Pool
	dimensions int
	logger     *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// Option configures a Store during construction.
type Option func(*Store) error

// WithLogger sets the logger the store reports through.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// NewStore connects to PostgreSQL, registers the pgvector types on every
// pooled connection, and ensures the schema exists at the requested vector
// dimensionality.
func NewStore(ctx context.Context, dsn string, dimensions int, options ...Option) (*Store, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive", storage.ErrInvalidQuery)
	}

	store := &Store{
		dimensions: dimensions,
		logger:     slog.Default().With("component", "postgres-store"),
	}
	for _, option := range options {
		if err := option(store); err != nil {
			return nil, err
		}
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MaxConnIdleTime = time.Minute
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	store.pool = pool
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	store.logger.Debug("connected", "dimensions", dimensions)
	return store, nil
}

// Truncate deletes all stored data. Attachments go with their emails via
// the foreign key cascade.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE emails CASCADE`); err != nil {
		return fmt.Errorf("truncating: %w", err)
	}
	s.logger.Info("archive truncated")
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
