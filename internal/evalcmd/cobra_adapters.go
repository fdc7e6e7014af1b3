package evalcmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// NewRunCmd creates the run command for scoring a whole hypothesis corpus
func NewRunCmd() *cobra.Command {
	var referenceDir string
	var datasetPath string
	var sampleSize int
	var concurrency int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Score a hypothesis corpus against a reference directory",
		Long: `Score every recording in a hypothesis corpus against its reference
transcripts and pool the error components into a corpus-level cpWER.

The reference directory holds one plain-text file per reference annotator,
named with the recording URI as prefix. The corpus file is JSONL or Parquet
with one record per recording: its URI and one hypothesis transcript per
detected speaker.`,
		Example: `  # Score 10 recordings
  cpwer eval run --references ./refs --dataset ./hyps.jsonl --sample 10

  # Score the full corpus with 8 workers
  cpwer eval run --references ./refs --dataset ./hyps.parquet --sample -1 --concurrency 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if referenceDir == "" {
				return fmt.Errorf("--references is required (or set CPWER_REFERENCE_DIR)")
			}
			if datasetPath == "" {
				return fmt.Errorf("--dataset is required (or set CPWER_DATASET)")
			}

			if _, err := os.Stat(datasetPath); os.IsNotExist(err) {
				return fmt.Errorf("dataset file not found: %s", datasetPath)
			}

			return executeRun(referenceDir, datasetPath, sampleSize, concurrency)
		},
	}

	cmd.Flags().StringVar(&referenceDir, "references", envOr("CPWER_REFERENCE_DIR", ""), "Directory of reference transcript files (prefix-named by recording URI)")
	cmd.Flags().StringVar(&datasetPath, "dataset", envOr("CPWER_DATASET", ""), "Path to hypothesis corpus file (.jsonl or .parquet)")
	cmd.Flags().IntVar(&sampleSize, "sample", -1, "Number of recordings to score (-1 for all)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Number of concurrent scoring workers")

	return cmd
}

// NewScoreCmd creates the score command for scoring a single recording
func NewScoreCmd() *cobra.Command {
	var referenceDir string
	var uri string
	var hypotheses []string
	var hypothesisFile string
	var detailed bool

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a single recording",
		Long: `Score one recording's hypothesis against its reference transcripts.

The hypothesis is given either inline with repeated --hypothesis flags (one
per speaker stream) or via --hypothesis-file with one stream per line.`,
		Example: `  # Single-speaker hypothesis, scalar output
  cpwer eval score --references ./refs --uri EN2002a --hypothesis "good morning everyone"

  # Two speaker streams, full component breakdown
  cpwer eval score --references ./refs --uri EN2002a \
    --hypothesis "good morning" --hypothesis "thanks for joining" --detailed

  # Streams from a file, one per line
  cpwer eval score --references ./refs --uri EN2002a --hypothesis-file hyp.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if referenceDir == "" {
				return fmt.Errorf("--references is required (or set CPWER_REFERENCE_DIR)")
			}
			if uri == "" {
				return fmt.Errorf("--uri is required")
			}
			if len(hypotheses) == 0 && hypothesisFile == "" {
				return fmt.Errorf("provide --hypothesis or --hypothesis-file")
			}
			if len(hypotheses) > 0 && hypothesisFile != "" {
				return fmt.Errorf("--hypothesis and --hypothesis-file are mutually exclusive")
			}

			if hypothesisFile != "" {
				loaded, err := readHypothesisFile(hypothesisFile)
				if err != nil {
					return err
				}
				hypotheses = loaded
			}

			return executeScore(referenceDir, uri, hypotheses, detailed)
		},
	}

	cmd.Flags().StringVar(&referenceDir, "references", envOr("CPWER_REFERENCE_DIR", ""), "Directory of reference transcript files")
	cmd.Flags().StringVar(&uri, "uri", "", "Recording URI used to locate reference files (required)")
	cmd.Flags().StringArrayVar(&hypotheses, "hypothesis", nil, "Hypothesis transcript, repeat once per speaker stream")
	cmd.Flags().StringVar(&hypothesisFile, "hypothesis-file", "", "File with one hypothesis stream per line")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Print the full component breakdown instead of the scalar rate")

	return cmd
}

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a saved evaluation run",
		Long: `Render the YAML results of a previous run as a text report, JSON, or CSV.

The text report lists recordings worst-first so problem samples surface
immediately.`,
		Example: `  # Human-readable report
  cpwer eval report --results evals/cpwer-2026-01-01_00-00-00.yaml

  # CSV for spreadsheets
  cpwer eval report --results evals/cpwer-2026-01-01_00-00-00.yaml --format csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if resultsPath == "" {
				return fmt.Errorf("--results is required")
			}
			if _, err := os.Stat(resultsPath); os.IsNotExist(err) {
				return fmt.Errorf("results file not found: %s", resultsPath)
			}

			return executeReport(resultsPath, format)
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "Path to a results YAML written by 'eval run' (required)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json, or csv)")

	_ = cmd.MarkFlagRequired("results")
	return cmd
}

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var datasetPath string
	var limit int
	var interactive bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect hypothesis corpus records",
		Long: `Inspect records from a JSONL or Parquet hypothesis corpus.

Useful for checking speaker stream splits and transcript content before
running an evaluation.`,
		Example: `  # Page through the first 5 records
  cpwer eval inspect --dataset ./hyps.jsonl --limit 5 --interactive

  # Dump all records
  cpwer eval inspect --dataset ./hyps.parquet --limit 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetPath == "" {
				return fmt.Errorf("--dataset is required (or set CPWER_DATASET)")
			}

			// Create a context that gets canceled on an interrupt signal (Ctrl+C)
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return executeInspect(ctx, datasetPath, limit, interactive)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", envOr("CPWER_DATASET", ""), "Path to hypothesis corpus file (.jsonl or .parquet)")
	cmd.Flags().IntVar(&limit, "limit", 5, "Number of records to show (0 for all)")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Pause between records")

	return cmd
}
