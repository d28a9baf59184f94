package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/taida957789/maplesniffer/internal/model"
)

var testDSN string

// TestMain starts a disposable postgres container, migrates it once, and
// shares it across every test in this package.
func TestMain(m *testing.M) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		log.Fatalf("starting postgres container: %v", err)
	}
	defer func() { _ = container.Terminate(ctx) }()

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("getting container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		log.Fatalf("getting container port: %v", err)
	}
	testDSN = fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	s, err := New(ctx, testDSN)
	if err != nil {
		log.Fatalf("connecting to test db: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		log.Fatalf("running migrations: %v", err)
	}
	s.Close()

	os.Exit(m.Run())
}

func truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(context.Background(), "TRUNCATE decoded_packets"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

func TestInsertPacketRoundTrips(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, testDSN)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()
	truncate(t, s.pool)

	pkt := model.DecodedPacket{
		Timestamp: 1234.5,
		Direction: model.DirectionInbound,
		Opcode:    0x00AB,
		Length:    16,
		Payload:   []byte{0x01, 0x02, 0x03},
	}
	if err := s.InsertPacket(ctx, 7, pkt); err != nil {
		t.Fatalf("InsertPacket: %v", err)
	}

	var count int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM decoded_packets WHERE session_id = 7").Scan(&count); err != nil {
		t.Fatalf("querying count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestInsertPacketStoresHandshakeFields(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, testDSN)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()
	truncate(t, s.pool)

	pkt := model.DecodedPacket{
		IsHandshake: true,
		Opcode:      model.HandshakeOpcode,
		Handshake:   &model.HandshakeFields{Version: 0x0055, Locale: 6},
	}
	if err := s.InsertPacket(ctx, 1, pkt); err != nil {
		t.Fatalf("InsertPacket: %v", err)
	}

	var locale, version int
	err = s.pool.QueryRow(ctx,
		"SELECT handshake_locale, handshake_version FROM decoded_packets WHERE session_id = 1").
		Scan(&locale, &version)
	if err != nil {
		t.Fatalf("querying handshake fields: %v", err)
	}
	if locale != 6 || version != 0x0055 {
		t.Fatalf("locale=%d version=%d, want 6, 0x55", locale, version)
	}
}
