package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/basil51/ai-school-sub003/internal/events"
)

// curveRepo implements CurveRepo with a version column: every write names
// the version it was computed from and loses if another write got there
// first.
type curveRepo struct {
	drv *entsql.Driver
}

var curveColumns = []string{
	"student_id", "subject_id", "curve_type", "data_points", "slope",
	"plateau_points", "acceleration_zones", "difficulty_spikes",
	"confidence", "version", "updated_at", "source_sequence",
}

type curveRow struct {
	StudentID         string    `sql:"student_id"`
	SubjectID         string    `sql:"subject_id"`
	CurveType         string    `sql:"curve_type"`
	DataPoints        []byte    `sql:"data_points"`
	Slope             float64   `sql:"slope"`
	PlateauPoints     []byte    `sql:"plateau_points"`
	AccelerationZones []byte    `sql:"acceleration_zones"`
	DifficultySpikes  []byte    `sql:"difficulty_spikes"`
	Confidence        float64   `sql:"confidence"`
	Version           int64     `sql:"version"`
	UpdatedAt         time.Time `sql:"updated_at"`
	SourceSequence    int64     `sql:"source_sequence"`
}

func (r *curveRepo) LoadCurve(ctx context.Context, studentID, subjectID, curveType string) (*events.LearningCurve, error) {
	sel := sqlite.Select(curveColumns...).
		From(sqlite.Table(tableCurves)).
		Where(entsql.And(
			entsql.EQ("student_id", studentID),
			entsql.EQ("subject_id", subjectID),
			entsql.EQ("curve_type", curveType),
		)).
		Limit(1)
	var rows []curveRow
	if err := selectAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query learning curve: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].curve()
}

func (r *curveRepo) UpsertCurve(ctx context.Context, c *events.LearningCurve) error {
	if c.CurveType == "" {
		c.CurveType = events.CurveTypeMastery
	}
	blobs := make([][]byte, 0, 4)
	for _, pts := range [][]events.CurvePoint{c.DataPoints, c.PlateauPoints, c.AccelerationZones, c.DifficultySpikes} {
		if pts == nil {
			pts = []events.CurvePoint{}
		}
		b, err := json.Marshal(pts)
		if err != nil {
			return fmt.Errorf("marshal curve points: %w", err)
		}
		blobs = append(blobs, b)
	}

	expected := c.Version
	next := expected + 1
	now := time.Now().UTC()

	ins := sqlite.Insert(tableCurves).
		Columns(curveColumns...).
		Values(c.StudentID, c.SubjectID, c.CurveType, blobs[0], c.Slope,
			blobs[1], blobs[2], blobs[3], c.Confidence, next, now, c.SourceSequence).
		OnConflict(
			entsql.ConflictColumns("student_id", "subject_id", "curve_type"),
			entsql.ResolveWithNewValues(),
			entsql.UpdateWhere(entsql.EQ("version", expected)),
		)
	res, err := execute(ctx, r.drv, ins)
	if err != nil {
		return fmt.Errorf("upsert learning curve: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("upsert learning curve: %w", err)
	}
	if n == 0 {
		return events.ErrStaleCurve
	}
	c.Version = next
	c.UpdatedAt = now
	return nil
}

func (r curveRow) curve() (*events.LearningCurve, error) {
	c := &events.LearningCurve{
		StudentID:      r.StudentID,
		SubjectID:      r.SubjectID,
		CurveType:      r.CurveType,
		Slope:          r.Slope,
		Confidence:     r.Confidence,
		Version:        r.Version,
		UpdatedAt:      r.UpdatedAt,
		SourceSequence: r.SourceSequence,
	}
	targets := []struct {
		raw []byte
		dst *[]events.CurvePoint
	}{
		{r.DataPoints, &c.DataPoints},
		{r.PlateauPoints, &c.PlateauPoints},
		{r.AccelerationZones, &c.AccelerationZones},
		{r.DifficultySpikes, &c.DifficultySpikes},
	}
	for _, t := range targets {
		if len(t.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(t.raw, t.dst); err != nil {
			return nil, fmt.Errorf("unmarshal curve points: %w", err)
		}
	}
	return c, nil
}
