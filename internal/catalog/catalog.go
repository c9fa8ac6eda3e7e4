// Package catalog provides a read-only token-template lookup backed by
// PostgreSQL. Session state is never persisted here; the catalog only
// resolves token templates by name so clients can request well-known
// tokens without shipping the full card shape.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/opentabletop/tabletop-server-go/internal/game"
)

// ErrTemplateNotFound is returned when no template matches the name.
var ErrTemplateNotFound = errors.New("token template not found")

// Store is a pgx-backed token-template catalog.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// New connects to the database and verifies the connection.
func New(ctx context.Context, databaseURL string, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to catalog database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging catalog database: %w", err)
	}
	logger.Info("token catalog initialized")
	return &Store{pool: pool, logger: logger}, nil
}

// TokenTemplate resolves a token template by name, case-insensitively.
func (s *Store) TokenTemplate(ctx context.Context, name string) (*game.TokenData, error) {
	var data game.TokenData
	err := s.pool.QueryRow(ctx, `
		SELECT name, mana_cost, mana_value, type_line, power, toughness, image
		FROM token_templates
		WHERE lower(name) = lower($1)
	`, name).Scan(
		&data.Name,
		&data.ManaCost,
		&data.ManaValue,
		&data.TypeLine,
		&data.Power,
		&data.Toughness,
		&data.Image,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying token template %q: %w", name, err)
	}
	return &data, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
