package postgres

import (
	"database/sql"
	"time"
)

const documentsTable = "documents"

type documentTableModel struct {
	ID            int64        `db:"id"`
	Collection    string       `db:"collection"`
	Key           string       `db:"doc_key"`
	CompetitionID string       `db:"competition_id"`
	MatchID       string       `db:"match_id"`
	Date          sql.NullTime `db:"doc_date"`
	AdminCurated  bool         `db:"admin_curated"`
	Body          []byte       `db:"body"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
}

// Body goes over the wire as text so lib/pq does not send it as bytea.
type documentInsertModel struct {
	Collection    string     `db:"collection"`
	Key           string     `db:"doc_key"`
	CompetitionID string     `db:"competition_id"`
	MatchID       string     `db:"match_id"`
	Date          *time.Time `db:"doc_date"`
	AdminCurated  bool       `db:"admin_curated"`
	Body          string     `db:"body"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

var documentColumns = []string{
	"id", "collection", "doc_key", "competition_id", "match_id",
	"doc_date", "admin_curated", "body", "created_at", "updated_at",
}

// The admin flag is sticky: automated writes can set it but never clear it.
const documentUpsertSuffix = `ON CONFLICT (collection, doc_key)
DO UPDATE SET
    competition_id = EXCLUDED.competition_id,
    match_id = EXCLUDED.match_id,
    doc_date = EXCLUDED.doc_date,
    admin_curated = documents.admin_curated OR EXCLUDED.admin_curated,
    body = EXCLUDED.body,
    updated_at = EXCLUDED.updated_at`

func nullTimeToTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}
