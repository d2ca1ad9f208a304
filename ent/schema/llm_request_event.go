package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LLMRequestEvent is one hint or explanation generation call, failed calls
// included. `aischool llm stats` prices these rows.
type LLMRequestEvent struct {
	ent.Schema
}

func (LLMRequestEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (LLMRequestEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("purpose").
			NotEmpty().
			Comment("hint or explanation"),
		field.String("provider").
			NotEmpty(),
		field.String("model").
			Comment("Model the vendor reported, else the configured one"),
		field.Bool("success"),
		field.Int64("latency_ms").
			NonNegative().
			Default(0),
		field.Int("input_tokens").
			NonNegative().
			Default(0),
		field.Int("output_tokens").
			NonNegative().
			Default(0),
		field.String("error_message").
			Default(""),
		field.Text("request_body").
			Default("").
			Comment("Prompt sections as sent"),
		field.Text("response_body").
			Default(""),
	}
}

func (LLMRequestEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("purpose", "timestamp"),
		index.Fields("model"),
	}
}
