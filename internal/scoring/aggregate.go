package scoring

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/grade-pilot/gradepilot/internal/rubric"
)

// ErrTotalMismatch means an externally-declared total disagrees with the sum
// of criterion scores. That is a defect in the calling pipeline, not bad user
// input, so it fails loudly instead of being corrected.
var ErrTotalMismatch = errors.New("aggregate: declared total does not match computed total")

// Summary is the aggregated outcome over all scored criteria.
type Summary struct {
	TotalPointsPossible int
	TotalPointsEarned   int
	OverallBand         string
	Diagnostics         []Diagnostic
}

// Aggregate sums per-criterion scores into a total and selects the overall
// band label. declaredTotal, when non-nil, is asserted against the computed
// sum. A band gap yields an empty label plus a diagnostic, not an error.
func (e *Engine) Aggregate(r rubric.Rubric, results []CriterionResult, declaredTotal *int) (Summary, error) {
	total := 0
	for _, cr := range results {
		total += cr.PointsEarned
	}
	if declaredTotal != nil && *declaredTotal != total {
		return Summary{}, fmt.Errorf("%w: declared %d, computed %d", ErrTotalMismatch, *declaredTotal, total)
	}

	s := Summary{
		TotalPointsPossible: r.TotalPointsPossible(),
		TotalPointsEarned:   total,
	}
	if band, ok := r.BandFor(total); ok {
		s.OverallBand = band.Label
	} else if len(r.OverallBands) > 0 {
		s.Diagnostics = append(s.Diagnostics, Diagnostic{
			Code:    DiagNoOverallBand,
			Message: fmt.Sprintf("no overall band contains total %d", total),
		})
		if e.logger != nil {
			e.logger.Warn("no overall band for total", slog.Int("total", total), slog.String("rubric_id", r.ID))
		}
	}
	return s, nil
}
