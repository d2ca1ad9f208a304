package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AttemptEvent records one assessment attempt. Append-only.
type AttemptEvent struct {
	ent.Schema
}

func (AttemptEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (AttemptEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("attempt_id").
			Unique().
			Comment("UUID assigned on append"),
		field.String("student_id").NotEmpty(),
		field.String("assessment_id").NotEmpty(),
		field.String("lesson_id").Default(""),
		field.String("subject_id").Default(""),
		field.String("topic").Default(""),
		field.Float("score").
			Default(0).
			Comment("Normalized to [0,1]"),
		field.Bool("passed").Default(false),
		field.Time("started_at"),
		field.Time("completed_at").Optional().Nillable(),
	}
}

func (AttemptEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("student_id"),
		index.Fields("lesson_id"),
		index.Fields("subject_id"),
	}
}
