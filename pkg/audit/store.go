package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq" // postgres driver for database/sql
)

// Store handles audit message persistence to database
type Store struct {
	db       *sql.DB
	hostname string
	pid      string
}

// Message is one persisted audit record
type Message struct {
	ID        int64                        `json:"id"`
	Facility  int                          `json:"facility"`
	Severity  int                          `json:"severity"`
	Timestamp time.Time                    `json:"timestamp"`
	Hostname  string                       `json:"hostname"`
	Appname   string                       `json:"appname"`
	Procid    string                       `json:"procid"`
	Msgid     string                       `json:"msgid"`
	Sdata     map[string]map[string]string `json:"sdata"`
	Message   string                       `json:"message"`
}

// ListOptions pages and filters List.
type ListOptions struct {
	MsgID  string
	Limit  int
	Offset int
}

// NewStore opens a dedicated audit connection to url.
// Returns nil if url is empty (audit persistence disabled).
func NewStore(url string) (*Store, error) {
	if url == "" {
		return nil, nil
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}

	return NewStoreWithDB(db), nil
}

// NewStoreWithDB creates a store with an existing database connection,
// such as the one shared with GORM or a sqlmock in tests
func NewStoreWithDB(db *sql.DB) *Store {
	hostname, _ := os.Hostname()
	return &Store{
		db:       db,
		hostname: hostname,
		pid:      strconv.Itoa(os.Getpid()),
	}
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save persists an audit event to the database
func (s *Store) Save(ctx context.Context, event Event, timestamp time.Time) error {
	if s.db == nil {
		return nil
	}

	sdataJSON, err := json.Marshal(event.StructuredData())
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (facility, severity, timestamp, hostname, appname, procid, msgid, sdata, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		event.Facility(),
		int(event.Severity()),
		timestamp,
		s.hostname,
		AppName,
		s.pid,
		event.MessageID(),
		sdataJSON,
		event.Message(),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// List returns persisted messages, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Message, error) {
	if s.db == nil {
		return []Message{}, nil
	}

	query := `
		SELECT id, facility, severity, timestamp, hostname, appname, procid, msgid, sdata, message
		FROM audit_logs
	`
	var args []any
	if opts.MsgID != "" {
		args = append(args, opts.MsgID)
		query += ` WHERE msgid = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY timestamp DESC, id DESC`
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var m Message
		var sdata []byte
		err := rows.Scan(&m.ID, &m.Facility, &m.Severity, &m.Timestamp, &m.Hostname,
			&m.Appname, &m.Procid, &m.Msgid, &sdata, &m.Message)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if len(sdata) > 0 {
			if err := json.Unmarshal(sdata, &m.Sdata); err != nil {
				return nil, fmt.Errorf("decode audit event %d: %w", m.ID, err)
			}
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// DB returns the underlying database connection (for testing)
func (s *Store) DB() *sql.DB {
	return s.db
}
