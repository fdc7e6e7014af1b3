package evalcmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/speechmetrics/cpwer/internal/eval/dataset"
)

func executeInspect(ctx context.Context, datasetPath string, limit int, interactive bool) error {
	loadLimit := limit
	if loadLimit == 0 {
		loadLimit = -1
	}

	records, err := dataset.NewLoader(datasetPath).LoadSample(loadLimit)
	if err != nil {
		return fmt.Errorf("failed to load hypothesis corpus: %w", err)
	}

	fmt.Printf("Loaded %d records from %s\n", len(records), datasetPath)

	reader := bufio.NewReader(os.Stdin)

	for i, record := range records {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Println("\n" + strings.Repeat("=", 70))
		fmt.Printf("RECORD %d/%d: %s\n", i+1, len(records), record.URI)
		if record.System != "" {
			fmt.Printf("System: %s\n", record.System)
		}
		fmt.Printf("Speakers: %d, Words: %d\n", record.SpeakerCount(), record.WordCount())
		fmt.Println(strings.Repeat("-", 70))

		for s, hypothesis := range record.Hypotheses {
			fmt.Printf("\n[speaker %d]\n%s\n", s, previewText(hypothesis, 500))
		}

		if interactive && i < len(records)-1 {
			fmt.Print("\nPress Enter for next record (Ctrl+C to quit)...")
			if _, err := reader.ReadString('\n'); err != nil {
				return nil
			}
		}
	}

	return nil
}

func previewText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "... [truncated]"
}
