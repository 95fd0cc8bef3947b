package rubric

// Overrides are transient instructor deltas applied onto a base rubric. They
// are produced by the UI per grading run and never persisted into the base.
type Overrides struct {
	Title    *string                      `json:"title,omitempty"`
	Criteria map[string]CriterionOverride `json:"criteria,omitempty"` // keyed by criterion id
	Bands    map[string]BandOverride      `json:"overall_bands,omitempty"` // keyed by band label
}

// Empty reports whether the override set changes nothing.
func (o Overrides) Empty() bool {
	return o.Title == nil && len(o.Criteria) == 0 && len(o.Bands) == 0
}

// CriterionOverride replaces any subset of a criterion's fields. Nil fields
// keep the base value.
type CriterionOverride struct {
	Enabled   *bool                    `json:"enabled,omitempty"`
	Name      *string                  `json:"name,omitempty"`
	MaxPoints *int                     `json:"max_points,omitempty"`
	Levels    map[string]LevelOverride `json:"levels,omitempty"` // keyed by level label
}

type LevelOverride struct {
	ScoreMin *int `json:"score_min,omitempty"`
	ScoreMax *int `json:"score_max,omitempty"`
}

type BandOverride struct {
	ScoreMin *int `json:"score_min,omitempty"`
	ScoreMax *int `json:"score_max,omitempty"`
}

// Merge applies overrides onto base and returns a new, re-validated rubric.
// Referencing an unknown criterion id, level label, or band label fails with
// a ValidationError. This is the only path to an effective rubric, so an
// override set can never yield an invalid one. Disabling a criterion removes
// it from the total but keeps it in the output so it can be re-enabled later.
func Merge(base Rubric, ov Overrides) (Rubric, error) {
	out := base.Clone()
	if ov.Title != nil {
		out.Title = *ov.Title
	}

	for id, co := range ov.Criteria {
		idx := -1
		for i := range out.Criteria {
			if out.Criteria[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return Rubric{}, &ValidationError{RubricID: base.ID, Subject: "override", SubjectID: id, Rule: "unknown criterion id"}
		}
		c := &out.Criteria[idx]
		if co.Enabled != nil {
			c.Enabled = *co.Enabled
		}
		if co.Name != nil {
			c.Name = *co.Name
		}
		if co.MaxPoints != nil {
			c.MaxPoints = *co.MaxPoints
		}
		for label, lo := range co.Levels {
			li := -1
			for i := range c.Levels {
				if c.Levels[i].Label == label {
					li = i
					break
				}
			}
			if li < 0 {
				return Rubric{}, &ValidationError{RubricID: base.ID, Subject: "override", SubjectID: id, Rule: "unknown level label " + label}
			}
			if lo.ScoreMin != nil {
				c.Levels[li].ScoreMin = *lo.ScoreMin
			}
			if lo.ScoreMax != nil {
				c.Levels[li].ScoreMax = *lo.ScoreMax
			}
		}
	}

	for label, bo := range ov.Bands {
		bi := -1
		for i := range out.OverallBands {
			if out.OverallBands[i].Label == label {
				bi = i
				break
			}
		}
		if bi < 0 {
			return Rubric{}, &ValidationError{RubricID: base.ID, Subject: "override", SubjectID: label, Rule: "unknown overall band label"}
		}
		if bo.ScoreMin != nil {
			out.OverallBands[bi].ScoreMin = *bo.ScoreMin
		}
		if bo.ScoreMax != nil {
			out.OverallBands[bi].ScoreMax = *bo.ScoreMax
		}
	}

	if err := out.Validate(); err != nil {
		return Rubric{}, err
	}
	return out, nil
}
