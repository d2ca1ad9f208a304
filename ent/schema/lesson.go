package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Lesson is catalog data: the lesson's topic, subject and difficulty.
type Lesson struct {
	ent.Schema
}

func (Lesson) Fields() []ent.Field {
	return []ent.Field{
		field.String("lesson_id").Unique(),
		field.String("title").Default(""),
		field.String("topic_id").Default(""),
		field.String("topic_name").Default(""),
		field.String("subject_id").NotEmpty(),
		field.Enum("difficulty").
			Values("beginner", "intermediate", "advanced").
			Default("intermediate"),
	}
}

func (Lesson) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("subject_id"),
	}
}
