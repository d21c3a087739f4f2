// Package events appends domain events (quiz lifecycle, submissions) to an
// append-only log table for offline inspection and future sync.
package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const (
	QuizCreated       = "QuizCreated"
	QuizDeleted       = "QuizDeleted"
	ResponseSubmitted = "ResponseSubmitted"
)

type Repo struct {
	db     *sql.DB
	siteID string
}

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db, siteID: "local"} }

// Append records one event. payload is marshalled to JSON; key is the
// natural key of the subject (quiz or response id).
func (r *Repo) Append(ctx context.Context, typ, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		r.siteID, typ, key, string(data), time.Now().Unix())
	return err
}
