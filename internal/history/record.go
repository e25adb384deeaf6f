package history

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Record is one processed video in a user's history.
type Record struct {
	DocID      string    `json:"doc_id"`
	UserID     string    `json:"user_id"`
	VideoURL   string    `json:"video_url"`
	Title      string    `json:"title,omitempty"`
	Transcript string    `json:"transcript"`
	Summary    string    `json:"summary"`
	Timestamp  time.Time `json:"timestamp"`
}

// Store persists records keyed by (user id, DocID(video url)).
type Store interface {
	// Save upserts rec. DocID is always derived from rec.VideoURL; a zero
	// Timestamp is replaced by the current time.
	Save(ctx context.Context, rec Record) error
	// List returns the user's records, most recently processed first.
	List(ctx context.Context, userID string) ([]Record, error)
	// Get returns the record for (userID, videoURL). found is false when the
	// video was never saved for that user.
	Get(ctx context.Context, userID, videoURL string) (rec Record, found bool, err error)
	// Delete removes the record for (userID, videoURL). deleted is false when
	// there was nothing to remove.
	Delete(ctx context.Context, userID, videoURL string) (deleted bool, err error)
	Close() error
}

// DocID is the hex SHA-256 of the UTF-8 video URL.
func DocID(videoURL string) string {
	sum := sha256.Sum256([]byte(videoURL))
	return hex.EncodeToString(sum[:])
}

func prepare(rec Record) Record {
	rec.DocID = DocID(rec.VideoURL)
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	rec.Timestamp = rec.Timestamp.UTC()
	return rec
}
