package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SessionEvent records adaptive session lifecycle actions
// (start, complete, abandon).
type SessionEvent struct {
	ent.Schema
}

func (SessionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (SessionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").NotEmpty(),
		field.String("action").NotEmpty(),
		field.String("student_id").NotEmpty(),
		field.String("assessment_id").NotEmpty(),
		field.Int("questions_served").Default(0),
		field.Int("correct_answers").Default(0),
		field.Int("duration_secs").Default(0),
	}
}

func (SessionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
		index.Fields("action"),
	}
}
