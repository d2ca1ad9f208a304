package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AdaptiveSession holds the serialized state of one adaptive assessment
// attempt. Completed sessions stay as archived rows.
type AdaptiveSession struct {
	ent.Schema
}

func (AdaptiveSession) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").Unique(),
		field.String("assessment_id").NotEmpty(),
		field.String("student_id").NotEmpty(),
		field.String("state").NotEmpty(),
		field.Bytes("data").Comment("JSON-encoded session state"),
		field.Bool("archived").Default(false),
		field.Time("updated_at").Default(time.Now),
	}
}

func (AdaptiveSession) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("student_id"),
		index.Fields("archived", "updated_at"),
	}
}
