// Package sqlite persists the gateway's request audit log. Every
// request that reaches a terminal state is recorded with its
// capability, outcome, and timing.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

// Store is a SQLite-backed audit store.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the audit database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS requests (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			capability TEXT NOT NULL,
			state TEXT NOT NULL,
			providers TEXT,
			fault_kind TEXT,
			fault_message TEXT,
			duration_ns INTEGER,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_user ON requests(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_capability ON requests(capability)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_state ON requests(state)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// Record writes a settled request to the audit log. Re-recording the
// same request ID overwrites the previous row.
func (s *Store) Record(ctx context.Context, req *domain.GatewayRequest) error {
	providers, err := json.Marshal(req.Providers)
	if err != nil {
		return fmt.Errorf("failed to marshal providers: %w", err)
	}

	var faultKind, faultMessage sql.NullString
	if req.Fault != nil {
		faultKind = sql.NullString{String: string(req.Fault.Kind), Valid: true}
		faultMessage = sql.NullString{String: req.Fault.Message, Valid: true}
	}

	query := `INSERT INTO requests (id, user_id, capability, state, providers, fault_kind, fault_message, duration_ns, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	          ON CONFLICT(id) DO UPDATE SET
	            user_id=excluded.user_id, state=excluded.state, providers=excluded.providers,
	            fault_kind=excluded.fault_kind, fault_message=excluded.fault_message,
	            duration_ns=excluded.duration_ns, updated_at=excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		req.ID, req.UserID, string(req.Capability), string(req.State), string(providers),
		faultKind, faultMessage, int64(req.Duration), req.CreatedAt, req.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}

	return nil
}

// ListOptions filters audit queries.
type ListOptions struct {
	UserID string
	Limit  int
	Offset int
}

// List returns recorded requests, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*domain.GatewayRequest, error) {
	limit := opts.Limit
	if limit == 0 {
		limit = 100
	}

	query := `SELECT id, user_id, capability, state, providers, fault_kind, fault_message, duration_ns, created_at, updated_at
	          FROM requests`
	args := []any{}
	if opts.UserID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, opts.UserID)
	}
	query += ` ORDER BY updated_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []*domain.GatewayRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// Get returns one recorded request by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.GatewayRequest, error) {
	query := `SELECT id, user_id, capability, state, providers, fault_kind, fault_message, duration_ns, created_at, updated_at
	          FROM requests WHERE id = ?`

	row := s.db.QueryRowContext(ctx, query, id)
	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("request %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (*domain.GatewayRequest, error) {
	var req domain.GatewayRequest
	var providersJSON string
	var faultKind, faultMessage sql.NullString
	var durationNS int64

	err := row.Scan(&req.ID, &req.UserID, &req.Capability, &req.State,
		&providersJSON, &faultKind, &faultMessage, &durationNS,
		&req.CreatedAt, &req.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan request: %w", err)
	}

	if providersJSON != "" {
		if err := json.Unmarshal([]byte(providersJSON), &req.Providers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal providers: %w", err)
		}
	}
	if faultKind.Valid {
		req.Fault = &domain.Fault{
			Kind:    domain.FaultKind(faultKind.String),
			Message: faultMessage.String,
		}
	}
	req.Duration = time.Duration(durationNS)

	return &req, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
