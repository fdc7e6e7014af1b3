package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cpwer",
		Short: "Multi-speaker transcription scoring with cpWER",
		Long: `cpwer scores multi-speaker speech transcription hypotheses against
reference transcripts using the concatenated minimum-permutation word error
rate (cpWER).

Per-recording error components (length, substitutions, deletions, insertions)
are pooled into a micro-averaged corpus score rather than averaging
per-recording rates.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newEvalCmd())

	return cmd
}
