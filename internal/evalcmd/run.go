package evalcmd

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/speechmetrics/cpwer/internal/eval/align"
	"github.com/speechmetrics/cpwer/internal/eval/dataset"
	"github.com/speechmetrics/cpwer/internal/eval/metrics"
	"github.com/speechmetrics/cpwer/internal/eval/normalize"
	"github.com/speechmetrics/cpwer/internal/eval/refstore"
	"github.com/speechmetrics/cpwer/internal/eval/results"
)

func executeRun(referenceDir, datasetPath string, sampleSize, concurrency int) error {
	slog.Info("Starting evaluation run", "references", referenceDir, "dataset", datasetPath)

	slog.Info("Loading hypothesis corpus...")
	records, err := dataset.NewLoader(datasetPath).LoadSample(sampleSize)
	if err != nil {
		return fmt.Errorf("failed to load hypothesis corpus: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("hypothesis corpus is empty: %s", datasetPath)
	}

	slog.Info("Corpus loaded", "records", len(records))

	if concurrency < 1 {
		concurrency = 1
	}

	store := refstore.New(referenceDir)
	normalizer := normalize.NewEnglish()
	aligner := align.NewCP()

	type failure struct {
		uri     string
		message string
	}

	// Each worker folds samples into its own accumulator; partial totals
	// are merged with a single pass at the end, so no accumulator is ever
	// shared between goroutines mid-run.
	slog.Info("Scoring samples", "concurrency", concurrency)

	recordsChan := make(chan dataset.HypothesisRecord)
	failuresChan := make(chan failure, len(records))

	workers := make([]*metrics.CpWER, concurrency)
	var wg sync.WaitGroup
	for w := range workers {
		workers[w] = metrics.NewCpWER(store, normalizer, aligner)
		wg.Add(1)
		go func(m *metrics.CpWER) {
			defer wg.Done()
			for record := range recordsChan {
				value, err := m.Evaluate(record.URI, record.Hypotheses)
				if err != nil {
					slog.Warn("Skipping sample", "uri", record.URI, "error", err)
					failuresChan <- failure{uri: record.URI, message: err.Error()}
					continue
				}
				slog.Info("Scored sample", "uri", record.URI, "cpwer", value)
			}
		}(workers[w])
	}

	for _, record := range records {
		recordsChan <- record
	}
	close(recordsChan)
	wg.Wait()
	close(failuresChan)

	corpus := metrics.NewCpWER(store, normalizer, aligner)
	for _, worker := range workers {
		corpus.Merge(worker)
	}

	run := &results.RunResults{
		Config: results.RunConfig{
			ReferenceDir: referenceDir,
			DatasetPath:  datasetPath,
			SampleSize:   len(records),
			Concurrency:  concurrency,
			Timestamp:    time.Now().Format("2006-01-02_15-04-05"),
		},
	}

	for _, sample := range corpus.Results() {
		run.Samples = append(run.Samples, results.SampleFromComponents(sample.URI, sample.Components))
	}

	failureCount := 0
	for f := range failuresChan {
		failureCount++
		run.Samples = append(run.Samples, results.SampleScore{URI: f.uri, Error: f.message})
	}

	// Worker interleaving makes the merged order nondeterministic; sort so
	// runs over the same corpus diff cleanly.
	sort.Slice(run.Samples, func(i, j int) bool {
		return run.Samples[i].URI < run.Samples[j].URI
	})

	run.Corpus = results.CorpusFromTotals(corpus.Accumulated(), len(corpus.Results()), failureCount)

	slog.Info("Saving results")
	path, err := results.Save(run)
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	printRunSummary(run)

	fmt.Printf("\nResults saved to: %s\n", path)
	fmt.Printf("\nGenerate a detailed report with:\n")
	fmt.Printf("  cpwer eval report --results %s\n", path)

	return nil
}

func printRunSummary(run *results.RunResults) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("CPWER EVALUATION SUMMARY")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Reference Dir: %s\n", run.Config.ReferenceDir)
	fmt.Printf("Dataset: %s\n", run.Config.DatasetPath)
	fmt.Printf("Samples Scored: %d\n", run.Corpus.Samples)
	fmt.Printf("Samples Failed: %d\n", run.Corpus.Failures)
	fmt.Println()

	fmt.Println("POOLED CORPUS COMPONENTS")
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("Reference Length: %.0f words\n", run.Corpus.Length)
	fmt.Printf("Substitutions: %.0f\n", run.Corpus.Substitutions)
	fmt.Printf("Deletions: %.0f\n", run.Corpus.Deletions)
	fmt.Printf("Insertions: %.0f\n", run.Corpus.Insertions)
	fmt.Println()

	fmt.Println("CORPUS SCORE")
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("cpWER: %.2f%% (%.4f)\n", run.Corpus.CpWER*100, run.Corpus.CpWER)
	fmt.Println(strings.Repeat("=", 70))
}
