package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/quizmint/qm-engine/internal/domain"
)

// Question represents the questions table, the store-backed question source.
type Question struct {
	// ID is the question ULID
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Category buckets the question for selection
	Category domain.Category `gorm:"column:category;not null;type:text;index:idx_questions_category_served,priority:1"`
	// Prompt is the question text
	Prompt string `gorm:"column:prompt;not null;type:text"`
	// Options is the ordered answer option list
	Options datatypes.JSONType[[]string] `gorm:"column:options;type:jsonb;not null"`
	// CorrectIndex is the index of the correct option
	CorrectIndex int `gorm:"column:correct_index;not null"`
	// TimesServed counts how often the question was dealt
	TimesServed int64 `gorm:"column:times_served;not null;default:0"`
	// LastServedAt orders least-recently-served selection
	LastServedAt *time.Time `gorm:"column:last_served_at;type:timestamptz;index:idx_questions_category_served,priority:2"`
	// CreatedAt is when the question was authored
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Question model
func (Question) TableName() string {
	return "questions"
}
