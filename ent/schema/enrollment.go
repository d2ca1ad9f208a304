package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Enrollment links a student to a subject.
type Enrollment struct {
	ent.Schema
}

func (Enrollment) Fields() []ent.Field {
	return []ent.Field{
		field.String("student_id").NotEmpty(),
		field.String("subject_id").NotEmpty(),
		field.Int("total_lessons").
			Default(0).
			Comment("Lessons in the subject at enrollment time"),
		field.Time("enrolled_at"),
	}
}

func (Enrollment) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("student_id", "subject_id").Unique(),
	}
}
