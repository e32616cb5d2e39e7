package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/quizmint/qm-engine/internal/domain"
)

// QuestionEntry is one served question inside a session's ordered list.
// Entries are append-only per index; an answered entry is never re-scored.
type QuestionEntry struct {
	// QuestionID references the question served at this index
	QuestionID string `json:"question_id"`
	// ServedAt is when the server started this question's countdown
	ServedAt time.Time `json:"served_at"`
	// Deadline is ServedAt plus the per-question timer in effect at start
	Deadline time.Time `json:"deadline"`
	// Answered indicates a result has been recorded for this index
	Answered bool `json:"answered"`
	// Choice is the option the player picked (-1 when timed out)
	Choice int `json:"choice"`
	// Correct is the recorded scoring outcome
	Correct bool `json:"correct"`
	// TimedOut indicates the window elapsed with no answer
	TimedOut bool `json:"timed_out"`
	// ElapsedMS is the server-measured response time in milliseconds
	ElapsedMS int64 `json:"elapsed_ms"`
}

// Session represents the sessions table. A row becomes visible at the
// first-answer durability commit point and is immutable once terminal.
type Session struct {
	// ID is the session ULID
	ID string `gorm:"column:id;primaryKey;type:text"`
	// IdentityKey is the owning identity's stable key
	IdentityKey string `gorm:"column:identity_key;not null;type:text;index:idx_sessions_identity_day,priority:1"`
	// IdentityClass is guest or connected, frozen at start
	IdentityClass domain.IdentityClass `gorm:"column:identity_class;not null;type:text"`
	// Category is the trivia category played
	Category domain.Category `gorm:"column:category;not null;type:text"`
	// SeasonID is the season active when the session started
	SeasonID string `gorm:"column:season_id;not null;type:text"`
	// Status is active until exactly one terminal transition
	Status domain.SessionStatus `gorm:"column:status;not null;type:text;index"`
	// Score is the running count of correct answers
	Score int `gorm:"column:score;not null;default:0"`
	// Total is the fixed per-session question count
	Total int `gorm:"column:total;not null"`
	// Perfect is set at completion when score equals total
	Perfect bool `gorm:"column:perfect;not null;default:false"`
	// Questions is the ordered served-question list with per-index results
	Questions datatypes.JSONType[[]QuestionEntry] `gorm:"column:questions;type:jsonb"`
	// StartedAt is the session start time
	StartedAt time.Time `gorm:"column:started_at;not null;type:timestamptz;index:idx_sessions_identity_day,priority:2"`
	// EndedAt is set at the terminal transition
	EndedAt *time.Time `gorm:"column:ended_at;type:timestamptz"`
	// CreatedAt is when the row was first persisted (first-answer commit)
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt tracks the latest mutation
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Session model
func (Session) TableName() string {
	return "sessions"
}
