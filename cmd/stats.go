package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/basil51/ai-school-sub003/internal/curve"
	"github.com/basil51/ai-school-sub003/internal/insights"
	"github.com/basil51/ai-school-sub003/internal/mastery"
	"github.com/basil51/ai-school-sub003/internal/report"
	"github.com/basil51/ai-school-sub003/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a mastery report for a student, subject, lesson or the whole cohort",
	RunE:  runStats,
}

func init() {
	f := statsCmd.Flags()
	f.String("student", "", "Student ID")
	f.String("subject", "", "Subject ID")
	f.String("lesson", "", "Lesson ID")
	f.String("period", "", "Reporting period: daily, weekly or monthly")
	f.Bool("json", false, "Print the report as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	st, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	f := cmd.Flags()
	q := report.Query{}
	q.StudentID, _ = f.GetString("student")
	q.SubjectID, _ = f.GetString("subject")
	q.LessonID, _ = f.GetString("lesson")
	q.Period, _ = f.GetString("period")

	events := st.EventRepo()
	curves := curve.NewService(events, events, st.CurveRepo(), nil, nil)
	r, err := report.NewService(events, events, curves, nil).Get(cmd.Context(), q)
	if err != nil {
		return err
	}

	if asJSON, _ := f.GetBool("json"); asJSON {
		return printJSON(r)
	}
	printReport(r)
	return nil
}

func printReport(r *report.Report) {
	title := "Mastery report: " + r.Scope
	switch {
	case r.StudentID != "":
		title += " " + r.StudentID
	case r.LessonID != "":
		title += " " + r.LessonID
	case r.SubjectID != "":
		title += " " + r.SubjectID
	}
	fmt.Println(theme.Title.Render(title))
	fmt.Println(theme.Dim.Render(fmt.Sprintf("period %s, generated %s", r.Period, r.GeneratedAt.Format("2006-01-02 15:04"))))

	section("Overview")
	fmt.Println(renderTable(
		[]string{"Lessons completed", "Assessments passed", "Overall score", "Students"},
		[][]string{{
			pct(r.Mastery.LessonCompletionRate),
			pct(r.Mastery.AssessmentPassRate),
			ratio(r.Mastery.OverallScore),
			fmt.Sprint(r.Mastery.Students),
		}},
	))

	if len(r.SubjectProgress) > 0 {
		rows := make([][]string, 0, len(r.SubjectProgress))
		for _, s := range r.SubjectProgress {
			rows = append(rows, []string{
				s.SubjectID,
				fmt.Sprintf("%d/%d", s.CompletedLessons, s.TotalLessons),
				pct(s.LessonCompletionRate),
				pct(s.AssessmentPassRate),
				ratio(s.AverageScore),
			})
		}
		section("Subjects")
		fmt.Println(renderTable([]string{"Subject", "Lessons", "Completion", "Passed", "Avg score"}, rows))
	} else if len(r.Subjects) > 0 {
		section("Subjects")
		fmt.Println(renderTable([]string{"Subject", "Completion", "Passed", "Score"}, entityRows(r.Subjects)))
	}

	if len(r.LessonMastery) > 0 {
		rows := make([][]string, 0, len(r.LessonMastery))
		for _, l := range r.LessonMastery {
			name := l.LessonID
			if l.LessonTitle != "" {
				name = l.LessonTitle
			}
			rows = append(rows, []string{
				name,
				string(l.Status),
				fmt.Sprint(l.Attempts),
				string(l.MasteryLevel),
				ratio(l.AverageScore),
				formatSeconds(float64(l.TimeSpent)),
			})
		}
		section("Lessons")
		fmt.Println(renderTable([]string{"Lesson", "Status", "Attempts", "Mastery", "Avg score", "Time"}, rows))
	} else if len(r.Lessons) > 0 {
		section("Lessons")
		fmt.Println(renderTable([]string{"Lesson", "Completion", "Passed", "Score"}, entityRows(r.Lessons)))
	}

	if len(r.Topics) > 0 {
		rows := make([][]string, 0, len(r.Topics))
		for _, t := range r.Topics {
			rows = append(rows, []string{
				t.Topic,
				fmt.Sprintf("%d/%d", t.Passed, t.Total),
				ratio(t.PassRatio),
				ratio(t.AverageScore),
			})
		}
		section("Topics")
		fmt.Println(renderTable([]string{"Topic", "Passed", "Pass ratio", "Avg score"}, rows))
	}

	p := r.Performance
	if p.Attempts > 0 {
		section("Assessments")
		fmt.Printf("%d attempts, average %s, recent %s", p.Attempts, ratio(p.AverageScore), ratio(p.RecentAverage))
		if p.ImprovementTrend != "" {
			fmt.Printf(", %s", p.ImprovementTrend)
		}
		fmt.Println()
		printList("Strongest", p.StrongestTopics)
		printList("Weakest", p.WeakestTopics)
	}

	if r.StudentID != "" {
		section("Velocity")
		fmt.Printf("%.2f lessons/week, %s per lesson, acceleration %+.2f\n",
			r.Velocity.LessonsPerWeek, formatSeconds(r.Velocity.AvgTimePerLesson), r.Velocity.Acceleration)
		if r.Curve != nil {
			fmt.Printf("curve slope %+.4f/day over %d points (confidence %.2f)\n",
				r.Curve.Slope, len(r.Curve.DataPoints), r.Curve.Confidence)
		}
	}

	if r.Trend != "" {
		fmt.Println()
		fmt.Println(theme.Body.Render("Trend: " + string(r.Trend)))
	}
	printList("Strengths", r.Strengths)
	printList("Weaknesses", r.Weaknesses)

	if len(r.Recommendations) > 0 {
		section("Recommendations")
		for _, rec := range r.Recommendations {
			style := theme.Body
			switch rec.Severity {
			case insights.SeverityHigh:
				style = theme.Incorrect
			case insights.SeverityInfo:
				style = theme.Dim
			}
			fmt.Println(style.Render(fmt.Sprintf("• [%s] %s", rec.Type, rec.Message)))
		}
	}
}

func entityRows(items []mastery.EntitySnapshot) [][]string {
	rows := make([][]string, 0, len(items))
	for _, e := range items {
		rows = append(rows, []string{
			e.ID,
			pct(e.LessonCompletionRate),
			pct(e.AssessmentPassRate),
			ratio(e.OverallScore),
		})
	}
	return rows
}

func printList(label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("%s: %s\n", theme.Dim.Render(label), strings.Join(items, ", "))
}

func formatSeconds(s float64) string {
	if s < 60 {
		return fmt.Sprintf("%.0fs", s)
	}
	return fmt.Sprintf("%.0fm", s/60)
}
