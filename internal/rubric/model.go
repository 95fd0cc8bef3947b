package rubric

// ScoringMode identifies how a criterion's points are computed.
type ScoringMode string

const (
	ModeManual     ScoringMode = "manual"
	ModeLevelBand  ScoringMode = "level_band"
	ModeErrorCount ScoringMode = "error_count"
)

// PointsStrategy picks the awarded point inside a performance level's range.
type PointsStrategy string

const (
	StrategyMin PointsStrategy = "min"
	StrategyMid PointsStrategy = "mid"
	StrategyMax PointsStrategy = "max"
)

// CourseUnassigned marks a rubric that is not bound to any course yet.
const CourseUnassigned = "unassigned"

// PerformanceLevel is a labeled point sub-range within a criterion.
type PerformanceLevel struct {
	Label    string `json:"label"`
	ScoreMin int    `json:"score_min"`
	ScoreMax int    `json:"score_max"`
}

// Midpoint returns the integer midpoint of the range; ties round down.
func (l PerformanceLevel) Midpoint() int { return (l.ScoreMin + l.ScoreMax) / 2 }

// OverallBand is a labeled point range over the rubric total.
type OverallBand struct {
	Label    string `json:"label"`
	ScoreMin int    `json:"score_min"`
	ScoreMax int    `json:"score_max"`
}

// Contains reports whether total falls inside the band.
func (b OverallBand) Contains(total int) bool {
	return total >= b.ScoreMin && total <= b.ScoreMax
}

// ErrorBand is one entry of the banded error_count variant. Bands are declared
// from best to worst and the first matching band wins.
type ErrorBand struct {
	Label    string `json:"label"`
	MaxMajor int    `json:"max_major"`
	MaxMinor int    `json:"max_minor"` // -1 disables the minor-count constraint
	ScoreMin int    `json:"score_min"`
	ScoreMax int    `json:"score_max"`
}

// Matches reports whether the effective error counts fall inside the band.
func (b ErrorBand) Matches(major, minor int) bool {
	if major > b.MaxMajor {
		return false
	}
	if b.MaxMinor >= 0 && minor > b.MaxMinor {
		return false
	}
	return true
}

// Midpoint returns the awarded score for the band; ties round down.
func (b ErrorBand) Midpoint() int { return (b.ScoreMin + b.ScoreMax) / 2 }

// ErrorRules configures error_count scoring. A non-empty Bands list selects
// the banded variant; otherwise the weighted-deduction formula applies.
type ErrorRules struct {
	MajorWeight       int         `json:"major_weight"`
	MinorWeight       int         `json:"minor_weight"`
	FloorScore        int         `json:"floor_score"`
	MaxDeduction      int         `json:"max_deduction"`
	MinorToMajorRatio int         `json:"minor_to_major_ratio"`
	Bands             []ErrorBand `json:"bands,omitempty"`
}

// ModeConfig carries the mode-specific configuration of a criterion. Each
// scoring mode has exactly one concrete type holding only the fields that
// mode needs, so e.g. a level_band criterion cannot exist without a points
// strategy.
type ModeConfig interface {
	Mode() ScoringMode
}

type ManualConfig struct{}

func (ManualConfig) Mode() ScoringMode { return ModeManual }

type LevelBandConfig struct {
	Strategy PointsStrategy `json:"points_strategy"`
}

func (LevelBandConfig) Mode() ScoringMode { return ModeLevelBand }

type ErrorCountConfig struct {
	Rules ErrorRules `json:"error_rules"`
}

func (ErrorCountConfig) Mode() ScoringMode { return ModeErrorCount }

// Criterion is one gradable dimension with its own point budget and mode.
type Criterion struct {
	ID        string
	Name      string
	MaxPoints int
	Enabled   bool
	Config    ModeConfig
	Levels    []PerformanceLevel
}

// Mode returns the criterion's scoring mode, or "" when unconfigured.
func (c Criterion) Mode() ScoringMode {
	if c.Config == nil {
		return ""
	}
	return c.Config.Mode()
}

// Level looks up a performance level by exact label match.
func (c Criterion) Level(label string) (PerformanceLevel, bool) {
	for _, l := range c.Levels {
		if l.Label == label {
			return l, true
		}
	}
	return PerformanceLevel{}, false
}

// Rubric is a named, versioned grading scheme. It is immutable once
// constructed: overrides produce a new instance via Merge, never a mutation.
type Rubric struct {
	ID           string
	Version      string
	Title        string
	CourseIDs    []string
	Criteria     []Criterion
	OverallBands []OverallBand
}

// Criterion looks up a criterion by id.
func (r Rubric) Criterion(id string) (Criterion, bool) {
	for _, c := range r.Criteria {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}

// TotalPointsPossible sums max points over enabled criteria only.
func (r Rubric) TotalPointsPossible() int {
	total := 0
	for _, c := range r.Criteria {
		if c.Enabled {
			total += c.MaxPoints
		}
	}
	return total
}

// BandFor returns the first overall band containing total.
func (r Rubric) BandFor(total int) (OverallBand, bool) {
	for _, b := range r.OverallBands {
		if b.Contains(total) {
			return b, true
		}
	}
	return OverallBand{}, false
}

// Clone deep-copies the rubric so merges never alias the base's slices.
func (r Rubric) Clone() Rubric {
	out := r
	out.CourseIDs = append([]string(nil), r.CourseIDs...)
	out.OverallBands = append([]OverallBand(nil), r.OverallBands...)
	out.Criteria = make([]Criterion, len(r.Criteria))
	for i, c := range r.Criteria {
		cc := c
		cc.Levels = append([]PerformanceLevel(nil), c.Levels...)
		if ec, ok := c.Config.(ErrorCountConfig); ok {
			rules := ec.Rules
			rules.Bands = append([]ErrorBand(nil), ec.Rules.Bands...)
			cc.Config = ErrorCountConfig{Rules: rules}
		}
		out.Criteria[i] = cc
	}
	return out
}
