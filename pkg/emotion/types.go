package emotion

import (
	"context"
	"time"
)

// Label is one emotion class from the closed classification set.
type Label string

// The closed label set. Every classification result is projected onto
// exactly these seven labels.
const (
	Angry    Label = "angry"
	Disgust  Label = "disgust"
	Fear     Label = "fear"
	Happy    Label = "happy"
	Sad      Label = "sad"
	Surprise Label = "surprise"
	Neutral  Label = "neutral"
)

// Labels is the canonical ordering of the closed label set. Tie-breaks
// between equal scores resolve to the label appearing first in this order.
var Labels = [7]Label{Angry, Disgust, Fear, Happy, Sad, Surprise, Neutral}

// IsValidLabel reports whether l belongs to the closed label set.
func IsValidLabel(l Label) bool {
	for _, known := range Labels {
		if l == known {
			return true
		}
	}
	return false
}

// Scores maps each label of the closed set to a non-negative score.
// Scores are classifier-dependent and are not required to sum to 100.
type Scores map[Label]float64

// Dominant returns the highest-scoring label. Ties resolve to the label
// appearing first in the canonical ordering.
func (s Scores) Dominant() Label {
	dominant := Labels[0]
	best := s[Labels[0]]
	for _, label := range Labels[1:] {
		if s[label] > best {
			dominant = label
			best = s[label]
		}
	}
	return dominant
}

// Complete reports whether every canonical label is present with a
// non-negative score.
func (s Scores) Complete() bool {
	if len(s) != len(Labels) {
		return false
	}
	for _, label := range Labels {
		score, ok := s[label]
		if !ok || score < 0 {
			return false
		}
	}
	return true
}

// Session groups the analysis requests of one client interaction.
// Sessions are never deleted; only their dependent emotion records are
// purged by the retention scheduler.
type Session struct {
	// ID is an opaque UUID, generated at creation, immutable.
	ID string `json:"id"`

	// RemoteAddr is the client address captured at session start.
	RemoteAddr string `json:"remote_addr,omitempty"`

	// CreatedAt is set once at creation.
	CreatedAt time.Time `json:"created_at"`
}

// EmotionRecord is one persisted classification result tied to a session
// and a point in time. Records are immutable after creation and are deleted
// exclusively by the retention pruner.
type EmotionRecord struct {
	// ID is a surrogate identifier assigned by storage.
	ID int64 `json:"id"`

	// SessionID references an existing Session. No orphan records.
	SessionID string `json:"session_id"`

	// DominantEmotion is the highest-scoring label of EmotionScores.
	DominantEmotion Label `json:"dominant_emotion"`

	// EmotionScores holds the full distribution over the closed label set.
	EmotionScores Scores `json:"emotion_scores"`

	// CreatedAt is the classification time. Within a session it is
	// non-decreasing in insertion order.
	CreatedAt time.Time `json:"created_at"`
}

// AnalysisResult is a normalized classification outcome produced by the
// analysis gateway. It always carries exactly the seven canonical labels.
type AnalysisResult struct {
	DominantEmotion Label     `json:"dominant_emotion"`
	Emotions        Scores    `json:"emotions"`
	ClassifiedAt    time.Time `json:"classified_at"`
}

// Storage defines the interface for session and emotion record persistence.
// Implementations must be safe for concurrent use; the retention pruner and
// the request orchestrator share one Storage instance.
type Storage interface {
	// CreateSession persists a new session.
	// Returns a DuplicateSessionError if the id already exists.
	CreateSession(ctx context.Context, session *Session) error

	// GetSession retrieves a session by id.
	// Returns a SessionNotFoundError if the id is unknown.
	GetSession(ctx context.Context, id string) (*Session, error)

	// RecordEmotion persists one classification result and returns the
	// assigned record id. Returns an UnknownSessionError if the session
	// does not exist. The stored CreatedAt is clamped so that it never
	// precedes the newest existing record of the same session.
	RecordEmotion(ctx context.Context, record *EmotionRecord) (int64, error)

	// PurgeOlderThan deletes all emotion records with CreatedAt strictly
	// before cutoff and returns the number deleted. The delete is atomic
	// with respect to concurrent RecordEmotion calls and idempotent for a
	// fixed cutoff.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// CountRecords returns the number of records for a session.
	CountRecords(ctx context.Context, sessionID string) (int64, error)

	// ListRecords returns up to limit records for a session, newest first.
	ListRecords(ctx context.Context, sessionID string, limit int) ([]*EmotionRecord, error)

	// Close releases any resources held by the storage backend.
	Close() error
}
