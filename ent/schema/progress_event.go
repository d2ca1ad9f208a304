package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ProgressEvent is the latest progress of one student on one lesson.
// Rows are upserted on (student_id, lesson_id).
type ProgressEvent struct {
	ent.Schema
}

func (ProgressEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (ProgressEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("student_id").NotEmpty(),
		field.String("lesson_id").NotEmpty(),
		field.String("subject_id").
			Default("").
			Comment("Resolved through lesson -> topic -> subject"),
		field.Enum("status").
			Values("not_started", "in_progress", "completed", "failed"),
		field.Int("attempts").Default(0),
		field.Int("time_spent").
			Default(0).
			Comment("Seconds"),
		field.Time("started_at").Optional().Nillable(),
		field.Time("completed_at").Optional().Nillable(),
	}
}

func (ProgressEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("student_id", "lesson_id").Unique(),
		index.Fields("subject_id"),
	}
}
