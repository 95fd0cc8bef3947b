package scoring

import (
	"fmt"
	"log/slog"

	"github.com/grade-pilot/gradepilot/internal/rubric"
)

// Engine converts observations into exact per-criterion scores. Scoring is a
// pure function of (criterion, observation); the logger only mirrors
// diagnostics for observability and never influences a score.
type Engine struct {
	logger *slog.Logger
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ScoreCriterion computes the points earned for one criterion, dispatching on
// its scoring mode. The returned score is always within
// [0, criterion.MaxPoints]. Missing or malformed observation input yields a
// zero-backed safe default plus a diagnostic, never a failure. The audit is
// non-nil only for error_count criteria.
func (e *Engine) ScoreCriterion(c rubric.Criterion, obs Observation) (CriterionResult, *ErrorCountAudit, []Diagnostic) {
	res := CriterionResult{
		CriterionID:    c.ID,
		Name:           c.Name,
		PointsPossible: c.MaxPoints,
		SelectedLevel:  obs.SelectedLevel,
		Feedback:       obs.Feedback,
		Evidence:       obs.Evidence,
	}

	var (
		points int
		audit  *ErrorCountAudit
		diags  []Diagnostic
	)
	switch cfg := c.Config.(type) {
	case rubric.ManualConfig:
		points, diags = scoreManual(c, obs)
	case rubric.LevelBandConfig:
		points, diags = scoreLevelBand(c, cfg, obs)
	case rubric.ErrorCountConfig:
		points, audit, diags = scoreErrorCount(c, cfg, obs)
	default:
		// Unreachable for a validated rubric.
		diags = append(diags, Diagnostic{
			CriterionID: c.ID,
			Code:        DiagMissingObservation,
			Message:     "criterion has no scoring mode configuration; awarding 0",
		})
	}

	if points < 0 {
		points = 0
	}
	if points > c.MaxPoints {
		points = c.MaxPoints
	}
	res.PointsEarned = points

	e.emit(diags)
	return res, audit, diags
}

// scoreManual trusts the upstream collaborator with arithmetic; a missing
// value is an upstream contract violation, reported but not fatal.
func scoreManual(c rubric.Criterion, obs Observation) (int, []Diagnostic) {
	if obs.PointsEarned == nil {
		return 0, []Diagnostic{{
			CriterionID: c.ID,
			Code:        DiagMissingManualPoints,
			Message:     "manual criterion has no points_earned; awarding 0",
		}}
	}
	pts := *obs.PointsEarned
	if pts < 0 || pts > c.MaxPoints {
		return clampInt(pts, 0, c.MaxPoints), []Diagnostic{{
			CriterionID: c.ID,
			Code:        DiagPointsOutOfRange,
			Message:     fmt.Sprintf("manual points %d outside [0,%d]; clamped", pts, c.MaxPoints),
		}}
	}
	return pts, nil
}

func scoreLevelBand(c rubric.Criterion, cfg rubric.LevelBandConfig, obs Observation) (int, []Diagnostic) {
	level, ok := c.Level(obs.SelectedLevel)
	if !ok {
		return 0, []Diagnostic{{
			CriterionID: c.ID,
			Code:        DiagUnknownLevelLabel,
			Message:     fmt.Sprintf("selected level %q matches no performance level; awarding 0", obs.SelectedLevel),
		}}
	}
	switch cfg.Strategy {
	case rubric.StrategyMin:
		return level.ScoreMin, nil
	case rubric.StrategyMax:
		return level.ScoreMax, nil
	default: // StrategyMid; validation admits no other value
		return level.Midpoint(), nil
	}
}

func scoreErrorCount(c rubric.Criterion, cfg rubric.ErrorCountConfig, obs Observation) (int, *ErrorCountAudit, []Diagnostic) {
	rules := cfg.Rules
	var diags []Diagnostic

	major, minor := obs.MajorCount, obs.MinorCount
	if major < 0 || minor < 0 {
		diags = append(diags, Diagnostic{
			CriterionID: c.ID,
			Code:        DiagNegativeErrorCount,
			Message:     fmt.Sprintf("negative error counts (major=%d minor=%d); treated as 0", major, minor),
		})
		if major < 0 {
			major = 0
		}
		if minor < 0 {
			minor = 0
		}
	}

	// Ratio is validated >= 1 at rubric construction, so this cannot fail.
	effMajor, effMinor, _ := NormalizeErrors(major, minor, rules.MinorToMajorRatio)
	audit := &ErrorCountAudit{
		CriterionID:    c.ID,
		RawMajor:       obs.MajorCount,
		RawMinor:       obs.MinorCount,
		EffectiveMajor: effMajor,
		EffectiveMinor: effMinor,
	}

	if len(rules.Bands) > 0 {
		if obs.NotSubmitted {
			return 0, audit, diags
		}
		for _, b := range rules.Bands {
			if b.Matches(effMajor, effMinor) {
				return b.Midpoint(), audit, diags
			}
		}
		diags = append(diags, Diagnostic{
			CriterionID: c.ID,
			Code:        DiagNoErrorBand,
			Message:     fmt.Sprintf("no error band matches effective counts (major=%d minor=%d); awarding 0", effMajor, effMinor),
		})
		return 0, audit, diags
	}

	deduction := effMajor*rules.MajorWeight + effMinor*rules.MinorWeight
	if deduction > rules.MaxDeduction {
		deduction = rules.MaxDeduction
	}
	points := c.MaxPoints - deduction
	if points < rules.FloorScore {
		points = rules.FloorScore
	}
	return points, audit, diags
}

func (e *Engine) emit(diags []Diagnostic) {
	if e.logger == nil {
		return
	}
	for _, d := range diags {
		e.logger.Warn("scoring diagnostic",
			slog.String("criterion_id", d.CriterionID),
			slog.String("code", d.Code),
			slog.String("message", d.Message),
		)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
