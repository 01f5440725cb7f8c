package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"chat-broker/internal/models"
)

// TranscriptRepository records where exported chat logs were written.
type TranscriptRepository interface {
	Record(ctx context.Context, groupName, sessionID, location string, stoppedAt time.Time) (models.Transcript, error)
}

// TranscriptRepo is a sqlx implementation of TranscriptRepository.
type TranscriptRepo struct {
	db *sqlx.DB
}

// NewTranscriptRepo constructs a TranscriptRepo.
func NewTranscriptRepo(db *sqlx.DB) *TranscriptRepo {
	return &TranscriptRepo{db: db}
}

// Record stores the location of an exported transcript.
func (r *TranscriptRepo) Record(ctx context.Context, groupName, sessionID, location string, stoppedAt time.Time) (models.Transcript, error) {
	var t models.Transcript
	err := r.db.QueryRowxContext(ctx, `INSERT INTO transcripts (group_name, session_id, location, stopped_at) VALUES ($1, $2, $3, $4) RETURNING id, group_name, session_id, location, stopped_at`, groupName, sessionID, location, stoppedAt).
		Scan(&t.ID, &t.GroupName, &t.SessionID, &t.Location, &t.StoppedAt)
	return t, err
}
