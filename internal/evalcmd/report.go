package evalcmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/speechmetrics/cpwer/internal/eval/results"
)

func executeReport(resultsPath, format string) error {
	run, err := results.Load(resultsPath)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	switch format {
	case "text":
		return printTextReport(run)
	case "json":
		return printJSONReport(run)
	case "csv":
		return printCSVReport(run)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTextReport(run *results.RunResults) error {
	fmt.Println("========================================")
	fmt.Printf("cpWER Evaluation Report\n")
	fmt.Println("========================================")
	fmt.Printf("Reference Dir: %s\n", run.Config.ReferenceDir)
	fmt.Printf("Dataset:       %s\n", run.Config.DatasetPath)
	fmt.Printf("Timestamp:     %s\n", run.Config.Timestamp)
	fmt.Println()

	printRunSummary(run)

	// Worst recordings first so problem samples surface immediately.
	scored := make([]results.SampleScore, 0, len(run.Samples))
	failed := make([]results.SampleScore, 0)
	for _, sample := range run.Samples {
		if sample.Error != "" {
			failed = append(failed, sample)
			continue
		}
		scored = append(scored, sample)
	}
	sort.Slice(scored, func(i, j int) bool {
		return scored[i].CpWER > scored[j].CpWER
	})

	fmt.Println("\nDetailed Results (worst first):")
	fmt.Println("========================================")
	for i, sample := range scored {
		fmt.Printf("\n[%d] Recording: %s\n", i+1, sample.URI)
		fmt.Printf("  cpWER: %.2f%%\n", sample.CpWER*100)
		fmt.Printf("  Length: %.0f  S: %.0f  D: %.0f  I: %.0f\n",
			sample.Length, sample.Substitutions, sample.Deletions, sample.Insertions)
	}

	if len(failed) > 0 {
		fmt.Println("\nFailed Samples:")
		fmt.Println("========================================")
		for _, sample := range failed {
			fmt.Printf("  %s: %s\n", sample.URI, sample.Error)
		}
	}

	return nil
}

func printJSONReport(run *results.RunResults) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(run)
}

func printCSVReport(run *results.RunResults) error {
	writer := csv.NewWriter(os.Stdout)
	defer writer.Flush()

	header := []string{"uri", "cpwer", "length", "substitutions", "deletions", "insertions", "error"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, sample := range run.Samples {
		row := []string{
			sample.URI,
			strconv.FormatFloat(sample.CpWER, 'f', 6, 64),
			strconv.FormatFloat(sample.Length, 'f', 0, 64),
			strconv.FormatFloat(sample.Substitutions, 'f', 0, 64),
			strconv.FormatFloat(sample.Deletions, 'f', 0, 64),
			strconv.FormatFloat(sample.Insertions, 'f', 0, 64),
			sample.Error,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}
