package cmd

import (
	"github.com/spf13/cobra"

	"github.com/speechmetrics/cpwer/internal/evalcmd"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Transcription evaluation tools",
		Long: `Evaluation tools for measuring multi-speaker transcription accuracy.

Supports scoring single recordings, running whole hypothesis corpora against
a reference directory, inspecting corpus files, and rendering saved runs as
reports.`,
	}

	// Add eval subcommands
	cmd.AddCommand(evalcmd.NewRunCmd())
	cmd.AddCommand(evalcmd.NewScoreCmd())
	cmd.AddCommand(evalcmd.NewReportCmd())
	cmd.AddCommand(evalcmd.NewInspectCmd())

	return cmd
}
