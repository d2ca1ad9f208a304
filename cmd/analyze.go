package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/basil51/ai-school-sub003/internal/curve"
	"github.com/basil51/ai-school-sub003/internal/events"
	"github.com/basil51/ai-school-sub003/internal/ui/theme"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Recompute and store the learning curve of a student in a subject",
	RunE:  runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.String("student", "", "Student ID")
	f.String("subject", "", "Subject ID")
	f.Bool("points", false, "List every data point")
	f.Bool("json", false, "Print the curve as JSON")
	_ = analyzeCmd.MarkFlagRequired("student")
	_ = analyzeCmd.MarkFlagRequired("subject")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	st, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	student, _ := cmd.Flags().GetString("student")
	subject, _ := cmd.Flags().GetString("subject")

	repo := st.EventRepo()
	c, err := curve.NewService(repo, repo, st.CurveRepo(), nil, nil).Refresh(cmd.Context(), student, subject)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(c)
	}

	fmt.Println(theme.Title.Render(fmt.Sprintf("Learning curve: %s in %s", c.StudentID, c.SubjectID)))
	fmt.Println(theme.Dim.Render(fmt.Sprintf("version %d, updated %s", c.Version, c.UpdatedAt.Format("2006-01-02 15:04"))))
	fmt.Println()
	fmt.Println(renderTable(
		[]string{"Points", "Slope/day", "Confidence", "Plateaus", "Accelerations", "Spikes"},
		[][]string{{
			fmt.Sprint(len(c.DataPoints)),
			fmt.Sprintf("%+.4f", c.Slope),
			ratio(c.Confidence),
			fmt.Sprint(len(c.PlateauPoints)),
			fmt.Sprint(len(c.AccelerationZones)),
			fmt.Sprint(len(c.DifficultySpikes)),
		}},
	))

	if len(c.DataPoints) > 0 {
		last := c.DataPoints[len(c.DataPoints)-1]
		fmt.Printf("current mastery %s\n", ratio(last.MasteryRatio))
	}

	printPoints("Plateaus", c.PlateauPoints)
	printPoints("Accelerations", c.AccelerationZones)
	printPoints("Difficulty spikes", c.DifficultySpikes)
	if all, _ := cmd.Flags().GetBool("points"); all {
		printPoints("Data points", c.DataPoints)
	}
	return nil
}

func printPoints(title string, points []events.CurvePoint) {
	if len(points) == 0 {
		return
	}
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			p.Time.Format("2006-01-02 15:04"),
			ratio(p.MasteryRatio),
			string(p.Difficulty),
		})
	}
	section(title)
	fmt.Println(renderTable([]string{"Time", "Mastery", "Difficulty"}, rows))
}
