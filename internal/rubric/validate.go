package rubric

import "fmt"

// ValidationError reports a structurally invalid rubric or override. It names
// the offending criterion/band and the rule broken; nothing is ever silently
// repaired.
type ValidationError struct {
	RubricID  string
	Subject   string // "criterion", "level", "overall_band", "override"
	SubjectID string
	Rule      string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("rubric %q: %s %q: %s", e.RubricID, e.Subject, e.SubjectID, e.Rule)
}

// Validate checks the structural invariants of a rubric, in order: level
// ranges within each criterion's max points, overall bands within the total
// over enabled criteria, error_count rules present and sane, level_band
// criteria carrying at least one level and a points strategy.
func (r Rubric) Validate() error {
	for _, c := range r.Criteria {
		if c.ID == "" {
			return &ValidationError{RubricID: r.ID, Subject: "criterion", SubjectID: c.Name, Rule: "criterion_id is required"}
		}
		if c.MaxPoints < 0 {
			return &ValidationError{RubricID: r.ID, Subject: "criterion", SubjectID: c.ID, Rule: "max_points must be non-negative"}
		}
		seen := map[string]bool{}
		for _, l := range c.Levels {
			if l.Label == "" {
				return &ValidationError{RubricID: r.ID, Subject: "level", SubjectID: c.ID, Rule: "level label is required"}
			}
			if seen[l.Label] {
				return &ValidationError{RubricID: r.ID, Subject: "level", SubjectID: c.ID, Rule: fmt.Sprintf("duplicate level label %q", l.Label)}
			}
			seen[l.Label] = true
			if l.ScoreMin < 0 || l.ScoreMin > l.ScoreMax || l.ScoreMax > c.MaxPoints {
				return &ValidationError{
					RubricID: r.ID, Subject: "level", SubjectID: c.ID,
					Rule: fmt.Sprintf("level %q range [%d,%d] must satisfy 0 <= min <= max <= %d", l.Label, l.ScoreMin, l.ScoreMax, c.MaxPoints),
				}
			}
		}
	}

	totalPossible := r.TotalPointsPossible()
	for _, b := range r.OverallBands {
		if b.Label == "" {
			return &ValidationError{RubricID: r.ID, Subject: "overall_band", SubjectID: b.Label, Rule: "band label is required"}
		}
		if b.ScoreMin < 0 || b.ScoreMin > b.ScoreMax || b.ScoreMax > totalPossible {
			return &ValidationError{
				RubricID: r.ID, Subject: "overall_band", SubjectID: b.Label,
				Rule: fmt.Sprintf("band range [%d,%d] must satisfy 0 <= min <= max <= %d", b.ScoreMin, b.ScoreMax, totalPossible),
			}
		}
	}

	for _, c := range r.Criteria {
		switch cfg := c.Config.(type) {
		case ManualConfig:
			// nothing mode-specific to check
		case ErrorCountConfig:
			if err := validateErrorRules(r.ID, c, cfg.Rules); err != nil {
				return err
			}
		case LevelBandConfig:
			if len(c.Levels) == 0 {
				return &ValidationError{RubricID: r.ID, Subject: "criterion", SubjectID: c.ID, Rule: "level_band criterion requires at least one performance level"}
			}
			switch cfg.Strategy {
			case StrategyMin, StrategyMid, StrategyMax:
			default:
				return &ValidationError{RubricID: r.ID, Subject: "criterion", SubjectID: c.ID, Rule: fmt.Sprintf("unknown points_strategy %q", cfg.Strategy)}
			}
		default:
			return &ValidationError{RubricID: r.ID, Subject: "criterion", SubjectID: c.ID, Rule: "scoring_mode configuration is required"}
		}
	}
	return nil
}

func validateErrorRules(rubricID string, c Criterion, rules ErrorRules) error {
	bad := func(rule string) error {
		return &ValidationError{RubricID: rubricID, Subject: "criterion", SubjectID: c.ID, Rule: rule}
	}
	if rules.MinorToMajorRatio < 1 {
		return bad("error_rules.minor_to_major_ratio must be >= 1")
	}
	if rules.MajorWeight < 0 || rules.MinorWeight < 0 {
		return bad("error_rules weights must be non-negative")
	}
	if rules.MaxDeduction < 0 {
		return bad("error_rules.max_deduction must be non-negative")
	}
	if rules.FloorScore < 0 || rules.FloorScore > c.MaxPoints {
		return bad(fmt.Sprintf("error_rules.floor_score must be within [0,%d]", c.MaxPoints))
	}
	for _, b := range rules.Bands {
		if b.Label == "" {
			return bad("error band label is required")
		}
		if b.MaxMajor < 0 {
			return bad(fmt.Sprintf("error band %q: max_major must be non-negative", b.Label))
		}
		if b.ScoreMin < 0 || b.ScoreMin > b.ScoreMax || b.ScoreMax > c.MaxPoints {
			return bad(fmt.Sprintf("error band %q range [%d,%d] must satisfy 0 <= min <= max <= %d", b.Label, b.ScoreMin, b.ScoreMax, c.MaxPoints))
		}
	}
	return nil
}
