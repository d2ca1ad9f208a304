package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Question is one item of an assessment's question bank.
type Question struct {
	ent.Schema
}

func (Question) Fields() []ent.Field {
	return []ent.Field{
		field.String("question_id").Unique(),
		field.String("assessment_id").NotEmpty(),
		field.String("lesson_id").Default(""),
		field.String("topic").Default(""),
		field.String("concept").Default(""),
		field.Text("prompt"),
		field.JSON("options", []string{}).Optional(),
		field.String("correct_answer"),
		field.Float("difficulty").
			Default(0.5).
			Comment("In [0.1, 1]"),
		field.Text("explanation").Default(""),
	}
}

func (Question) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("assessment_id"),
	}
}
