package filter

import (
	"strings"
	"time"

	"image-tagger/internal/logging"
	"image-tagger/internal/metrics"
)

// TagSource is the read side of a tag store that the evaluator needs.
type TagSource interface {
	Images() []string
	Tags(image string) []string
}

// Evaluate returns the images of src that satisfy q, in src's image order.
func Evaluate(src TagSource, q Query) []string {
	start := time.Now()
	defer func() {
		metrics.FilterEvaluationsTotal.WithLabelValues(string(q.Branch)).Inc()
		metrics.FilterEvaluationDuration.WithLabelValues(string(q.Branch)).Observe(time.Since(start).Seconds())
	}()

	if q.Branch == BranchOr && len(q.Exclude) > 0 {
		logging.Debug("Filter %q: exclusions %v are not applied to OR queries", q.Raw, q.Exclude)
	}

	result := []string{}
	for _, image := range src.Images() {
		if q.Matches(src.Tags(image)) {
			result = append(result, image)
		}
	}

	metrics.FilterResultSize.Observe(float64(len(result)))
	return result
}

// Apply parses and evaluates query. A blank query returns every image
// without evaluating anything.
func Apply(src TagSource, query string) []string {
	if strings.TrimSpace(query) == "" {
		return src.Images()
	}
	return Evaluate(src, Parse(query))
}
