package store

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/basil51/ai-school-sub003/ent/schema"
)

// Table names.
const (
	tableProgress    = "progress_events"
	tableAttempts    = "attempt_events"
	tableEnrollments = "enrollments"
	tableLessons     = "lessons"
	tableQuestions   = "questions"
	tableCurves      = "learning_curves"
	tableSessions    = "adaptive_sessions"
	tableSessionLog  = "session_events"
	tableHints       = "hint_events"
	tableLLMRequests = "llm_request_events"
)

// entities maps each table to its ent schema definition.
var entities = []struct {
	table  string
	schema ent.Interface
}{
	{tableProgress, entschema.ProgressEvent{}},
	{tableAttempts, entschema.AttemptEvent{}},
	{tableEnrollments, entschema.Enrollment{}},
	{tableLessons, entschema.Lesson{}},
	{tableQuestions, entschema.Question{}},
	{tableCurves, entschema.LearningCurve{}},
	{tableSessions, entschema.AdaptiveSession{}},
	{tableSessionLog, entschema.SessionEvent{}},
	{tableHints, entschema.HintEvent{}},
	{tableLLMRequests, entschema.LLMRequestEvent{}},
}

// sequencedTables lists the tables whose rows take a global sequence number.
func sequencedTables() []string {
	var out []string
	for _, e := range entities {
		for _, m := range e.schema.Mixin() {
			if _, ok := m.(entschema.EventMixin); ok {
				out = append(out, e.table)
				break
			}
		}
	}
	return out
}

// migrate creates or alters every table declared in ent/schema.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	tables := make([]*schema.Table, 0, len(entities))
	for _, e := range entities {
		t, err := tableFromSchema(e.table, e.schema)
		if err != nil {
			return err
		}
		tables = append(tables, t)
	}

	m, err := schema.NewMigrate(drv, schema.WithForeignKeys(false))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// tableFromSchema converts an ent schema (fields, mixin fields and indexes)
// into a migration table with an auto-increment "id" primary key.
func tableFromSchema(name string, s ent.Interface) (*schema.Table, error) {
	var (
		fields  []ent.Field
		indexes []ent.Index
	)
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	id := &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
	t := schema.NewTable(name).AddPrimary(id)

	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, d.Name, d.Err)
		}
		col := &schema.Column{
			Name:     columnName(d),
			Type:     d.Info.Type,
			Unique:   d.Unique,
			Nullable: d.Optional,
			Size:     int64(d.Size),
			Comment:  d.Comment,
		}
		for _, e := range d.Enums {
			col.Enums = append(col.Enums, e.V)
		}
		switch v := d.Default.(type) {
		case string, bool, int, int64, float64:
			col.Default = v
		}
		t.AddColumn(col)
	}

	for _, idx := range indexes {
		d := idx.Descriptor()
		iname := d.StorageKey
		if iname == "" {
			iname = name + "_" + strings.Join(d.Fields, "_")
		}
		t.AddIndex(iname, d.Unique, d.Fields)
	}
	return t, nil
}

func columnName(d *field.Descriptor) string {
	if d.StorageKey != "" {
		return d.StorageKey
	}
	return d.Name
}
