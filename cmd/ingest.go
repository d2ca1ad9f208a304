package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/basil51/ai-school-sub003/internal/curve"
	"github.com/basil51/ai-school-sub003/internal/fixture"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest FILE.yaml...",
	Short: "Load lessons, enrollments, progress, attempts and questions from YAML",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		repo := st.EventRepo()
		curves := curve.NewService(repo, repo, st.CurveRepo(), nil, nil)
		for _, path := range args {
			f, err := fixture.Read(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			c, err := f.Apply(cmd.Context(), repo, st.QuestionRepo())
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			pairs, err := f.Pairs(cmd.Context(), repo)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			for _, p := range pairs {
				if _, err := curves.Refresh(cmd.Context(), p.StudentID, p.SubjectID); err != nil {
					return fmt.Errorf("%s: refresh curve %s/%s: %w", path, p.StudentID, p.SubjectID, err)
				}
			}
			fmt.Printf("%s: %d lessons, %d enrollments, %d progress, %d attempts, %d questions, %d curves\n",
				path, c.Lessons, c.Enrollments, c.Progress, c.Attempts, c.Questions, len(pairs))
		}
		return nil
	},
}
