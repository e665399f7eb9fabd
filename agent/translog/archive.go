package translog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type ArchiveConfig struct {
	DSN string `envconfig:"DSN" split_words:"true"`
}

func (c ArchiveConfig) Enabled() bool {
	return strings.TrimSpace(c.DSN) != ""
}

type sessionLogRow struct {
	bun.BaseModel `bun:"table:session_logs"`

	ID              int64     `bun:"id,pk,autoincrement"`
	SessionID       string    `bun:"session_id,notnull"`
	ParticipantName string    `bun:"participant_name,notnull"`
	Position        string    `bun:"position"`
	Grade           string    `bun:"grade"`
	CreatedAtUTC    time.Time `bun:"created_at_utc,notnull"`
	Record          string    `bun:"record,type:jsonb,notnull"`
}

// ArchiveSink persists finished session records into Postgres. The full
// record goes into a jsonb column; the indexed columns exist for querying
// by candidate and date.
type ArchiveSink struct {
	db *bun.DB
}

func NewArchiveSink(cfg ArchiveConfig) (*ArchiveSink, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, fmt.Errorf("translog: archive dsn is required")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	return &ArchiveSink{db: db}, nil
}

// EnsureSchema creates the session_logs table if it does not exist yet.
func (s *ArchiveSink) EnsureSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*sessionLogRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("translog: ensure archive schema: %w", err)
	}
	return nil
}

func (s *ArchiveSink) Write(ctx context.Context, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("translog: marshal archive record: %w", err)
	}
	row := sessionLogRow{
		SessionID:       rec.SessionID,
		ParticipantName: rec.ParticipantName,
		Position:        rec.Position,
		Grade:           rec.Grade,
		CreatedAtUTC:    rec.CreatedAtUTC,
		Record:          string(raw),
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("translog: insert archive record: %w", err)
	}
	return nil
}

func (s *ArchiveSink) Close() error {
	return s.db.Close()
}
