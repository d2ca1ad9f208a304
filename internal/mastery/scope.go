// Package mastery turns batches of learning events into completion, pass
// and score metrics for one student or for a whole cohort.
//
// Cohort figures are always a mean of per-student metrics: events are
// grouped by student first, reduced per student, and only then averaged.
package mastery

// Scope selects who a computation covers. It is either Student or Cohort.
type Scope interface {
	isScope()
}

// Student scopes a computation to one student's events.
type Student struct {
	ID string
}

// Cohort scopes a computation to every student present in the batch.
type Cohort struct{}

func (Student) isScope() {}
func (Cohort) isScope()  {}

// ScopeFor returns Student{id} for a non-empty id and Cohort otherwise.
func ScopeFor(studentID string) Scope {
	if studentID == "" {
		return Cohort{}
	}
	return Student{ID: studentID}
}

// includes reports whether scope covers studentID.
func includes(scope Scope, studentID string) bool {
	switch s := scope.(type) {
	case Student:
		return s.ID == studentID
	case Cohort:
		return true
	}
	return false
}
