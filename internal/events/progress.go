package events

// ProgressAfter applies an attempt to the previous progress row on the same
// lesson: a pass completes the lesson; a failure marks it failed and counts
// the attempt. prev may be nil.
func ProgressAfter(prev *ProgressEvent, a AttemptEvent, timeSpent int) ProgressEvent {
	p := ProgressEvent{
		StudentID: a.StudentID,
		LessonID:  a.LessonID,
		SubjectID: a.SubjectID,
		StartedAt: &a.StartedAt,
	}
	if prev != nil {
		p.Attempts = prev.Attempts
		p.TimeSpent = prev.TimeSpent
		p.CompletedAt = prev.CompletedAt
		if prev.StartedAt != nil {
			p.StartedAt = prev.StartedAt
		}
	}
	p.TimeSpent += timeSpent

	if a.Passed {
		p.Status = StatusCompleted
		p.CompletedAt = a.CompletedAt
	} else {
		p.Status = StatusFailed
		p.Attempts++
	}
	return p
}
