package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// CurvePoint is the persisted form of one learning-curve data point.
type CurvePoint struct {
	Time         time.Time `json:"time"`
	MasteryRatio float64   `json:"masteryRatio"`
	Difficulty   string    `json:"difficulty"`
}

// LearningCurve is the analyzed curve for a (student, subject, type) key.
// The version column guards against lost updates between racing analyses.
type LearningCurve struct {
	ent.Schema
}

func (LearningCurve) Fields() []ent.Field {
	return []ent.Field{
		field.String("student_id").NotEmpty(),
		field.String("subject_id").NotEmpty(),
		field.String("curve_type").Default("mastery"),
		field.JSON("data_points", []CurvePoint{}),
		field.Float("slope").Default(0),
		field.JSON("plateau_points", []CurvePoint{}),
		field.JSON("acceleration_zones", []CurvePoint{}),
		field.JSON("difficulty_spikes", []CurvePoint{}),
		field.Float("confidence").Default(0),
		field.Int64("version").Default(0),
		field.Int64("source_sequence").
			Default(0).
			Comment("Highest event sequence folded into the curve"),
		field.Time("updated_at").Default(time.Now),
	}
}

func (LearningCurve) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("student_id", "subject_id", "curve_type").Unique(),
	}
}
