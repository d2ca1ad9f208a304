package cmd

import (
	"github.com/spf13/cobra"

	"github.com/basil51/ai-school-sub003/internal/app"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Take an adaptive assessment in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		student, _ := cmd.Flags().GetString("student")
		assessment, _ := cmd.Flags().GetString("assessment")

		// Logging stays off: the TUI owns the terminal.
		svc, err := buildServices(cmd.Context(), cmd, nil, nil)
		if err != nil {
			return err
		}
		defer svc.Close()

		return app.Run(cmd.Context(), app.Options{
			Sessions:     svc.sessions,
			StudentID:    student,
			AssessmentID: assessment,
		})
	},
}

func init() {
	practiceCmd.Flags().String("student", "", "Student ID")
	practiceCmd.Flags().String("assessment", "", "Assessment ID")
	_ = practiceCmd.MarkFlagRequired("student")
	_ = practiceCmd.MarkFlagRequired("assessment")
}
