package evalcmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/speechmetrics/cpwer/internal/eval/align"
	"github.com/speechmetrics/cpwer/internal/eval/metrics"
	"github.com/speechmetrics/cpwer/internal/eval/normalize"
	"github.com/speechmetrics/cpwer/internal/eval/refstore"
)

func executeScore(referenceDir, uri string, hypotheses []string, detailed bool) error {
	metric := metrics.NewCpWER(refstore.New(referenceDir), normalize.NewEnglish(), align.NewCP())

	if !detailed {
		value, err := metric.Evaluate(uri, hypotheses)
		if err != nil {
			return err
		}
		fmt.Printf("%.6f\n", value)
		return nil
	}

	components, err := metric.EvaluateDetailed(uri, hypotheses)
	if err != nil {
		return err
	}

	fmt.Printf("uri: %s\n", uri)
	for _, name := range metrics.ComponentNames() {
		fmt.Printf("%s: %.0f\n", name, components[name])
	}
	fmt.Printf("%s: %.6f\n", metrics.MetricName, components[metrics.MetricName])

	return nil
}

// readHypothesisFile reads one hypothesis stream per non-blank line.
func readHypothesisFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hypothesis file: %w", err)
	}
	defer file.Close()

	var hypotheses []string
	scanner := bufio.NewScanner(file)

	const maxCapacity = 10 * 1024 * 1024 // 10MB per line
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		hypotheses = append(hypotheses, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading hypothesis file: %w", err)
	}

	if len(hypotheses) == 0 {
		return nil, fmt.Errorf("hypothesis file %s has no transcript lines", path)
	}

	return hypotheses, nil
}
