package rubric

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the wire shape of a rubric definition file. YAML and JSON both
// parse through it (yaml.v3 accepts JSON input). Rubric() converts to the
// validated in-memory model; DocumentFor goes the other way for API output.
type Document struct {
	RubricID      string         `json:"rubric_id" yaml:"rubric_id"`
	RubricVersion string         `json:"rubric_version" yaml:"rubric_version"`
	Title         string         `json:"title" yaml:"title"`
	CourseIDs     []string       `json:"course_ids,omitempty" yaml:"course_ids,omitempty"`
	Criteria      []CriterionDoc `json:"criteria" yaml:"criteria"`
	OverallBands  []BandDoc      `json:"overall_bands,omitempty" yaml:"overall_bands,omitempty"`
}

type CriterionDoc struct {
	CriterionID    string         `json:"criterion_id" yaml:"criterion_id"`
	Name           string         `json:"name" yaml:"name"`
	MaxPoints      int            `json:"max_points" yaml:"max_points"`
	Enabled        *bool          `json:"enabled,omitempty" yaml:"enabled,omitempty"` // default true
	ScoringMode    string         `json:"scoring_mode" yaml:"scoring_mode"`
	PointsStrategy string         `json:"points_strategy,omitempty" yaml:"points_strategy,omitempty"`
	ErrorRules     *ErrorRulesDoc `json:"error_rules,omitempty" yaml:"error_rules,omitempty"`
	Levels         []LevelDoc     `json:"levels,omitempty" yaml:"levels,omitempty"`
}

type LevelDoc struct {
	Label    string `json:"label" yaml:"label"`
	ScoreMin int    `json:"score_min" yaml:"score_min"`
	ScoreMax int    `json:"score_max" yaml:"score_max"`
}

type BandDoc struct {
	Label    string `json:"label" yaml:"label"`
	ScoreMin int    `json:"score_min" yaml:"score_min"`
	ScoreMax int    `json:"score_max" yaml:"score_max"`
}

type ErrorRulesDoc struct {
	MajorWeight       int            `json:"major_weight" yaml:"major_weight"`
	MinorWeight       int            `json:"minor_weight" yaml:"minor_weight"`
	FloorScore        int            `json:"floor_score" yaml:"floor_score"`
	MaxDeduction      int            `json:"max_deduction" yaml:"max_deduction"`
	MinorToMajorRatio int            `json:"minor_to_major_ratio" yaml:"minor_to_major_ratio"`
	Bands             []ErrorBandDoc `json:"bands,omitempty" yaml:"bands,omitempty"`
}

type ErrorBandDoc struct {
	Label    string `json:"label" yaml:"label"`
	MaxMajor int    `json:"max_major" yaml:"max_major"`
	MaxMinor *int   `json:"max_minor,omitempty" yaml:"max_minor,omitempty"` // absent = unconstrained
	ScoreMin int    `json:"score_min" yaml:"score_min"`
	ScoreMax int    `json:"score_max" yaml:"score_max"`
}

// Rubric converts the document into a validated Rubric.
func (d Document) Rubric() (Rubric, error) {
	r := Rubric{
		ID:        d.RubricID,
		Version:   d.RubricVersion,
		Title:     d.Title,
		CourseIDs: append([]string(nil), d.CourseIDs...),
	}
	if len(r.CourseIDs) == 0 {
		r.CourseIDs = []string{CourseUnassigned}
	}
	for _, cd := range d.Criteria {
		c := Criterion{
			ID:        cd.CriterionID,
			Name:      cd.Name,
			MaxPoints: cd.MaxPoints,
			Enabled:   cd.Enabled == nil || *cd.Enabled,
		}
		for _, ld := range cd.Levels {
			c.Levels = append(c.Levels, PerformanceLevel(ld))
		}
		switch ScoringMode(cd.ScoringMode) {
		case ModeManual:
			c.Config = ManualConfig{}
		case ModeLevelBand:
			c.Config = LevelBandConfig{Strategy: PointsStrategy(cd.PointsStrategy)}
		case ModeErrorCount:
			if cd.ErrorRules == nil {
				return Rubric{}, &ValidationError{RubricID: d.RubricID, Subject: "criterion", SubjectID: cd.CriterionID, Rule: "error_count criterion requires error_rules"}
			}
			rules := ErrorRules{
				MajorWeight:       cd.ErrorRules.MajorWeight,
				MinorWeight:       cd.ErrorRules.MinorWeight,
				FloorScore:        cd.ErrorRules.FloorScore,
				MaxDeduction:      cd.ErrorRules.MaxDeduction,
				MinorToMajorRatio: cd.ErrorRules.MinorToMajorRatio,
			}
			for _, bd := range cd.ErrorRules.Bands {
				b := ErrorBand{Label: bd.Label, MaxMajor: bd.MaxMajor, MaxMinor: -1, ScoreMin: bd.ScoreMin, ScoreMax: bd.ScoreMax}
				if bd.MaxMinor != nil {
					b.MaxMinor = *bd.MaxMinor
				}
				rules.Bands = append(rules.Bands, b)
			}
			c.Config = ErrorCountConfig{Rules: rules}
		default:
			return Rubric{}, &ValidationError{RubricID: d.RubricID, Subject: "criterion", SubjectID: cd.CriterionID, Rule: fmt.Sprintf("unknown scoring_mode %q", cd.ScoringMode)}
		}
		r.Criteria = append(r.Criteria, c)
	}
	for _, bd := range d.OverallBands {
		r.OverallBands = append(r.OverallBands, OverallBand(bd))
	}
	if err := r.Validate(); err != nil {
		return Rubric{}, err
	}
	return r, nil
}

// DocumentFor renders a rubric back into its wire shape.
func DocumentFor(r Rubric) Document {
	d := Document{
		RubricID:      r.ID,
		RubricVersion: r.Version,
		Title:         r.Title,
		CourseIDs:     append([]string(nil), r.CourseIDs...),
	}
	for _, c := range r.Criteria {
		enabled := c.Enabled
		cd := CriterionDoc{
			CriterionID: c.ID,
			Name:        c.Name,
			MaxPoints:   c.MaxPoints,
			Enabled:     &enabled,
			ScoringMode: string(c.Mode()),
		}
		for _, l := range c.Levels {
			cd.Levels = append(cd.Levels, LevelDoc(l))
		}
		switch cfg := c.Config.(type) {
		case LevelBandConfig:
			cd.PointsStrategy = string(cfg.Strategy)
		case ErrorCountConfig:
			rd := &ErrorRulesDoc{
				MajorWeight:       cfg.Rules.MajorWeight,
				MinorWeight:       cfg.Rules.MinorWeight,
				FloorScore:        cfg.Rules.FloorScore,
				MaxDeduction:      cfg.Rules.MaxDeduction,
				MinorToMajorRatio: cfg.Rules.MinorToMajorRatio,
			}
			for _, b := range cfg.Rules.Bands {
				bd := ErrorBandDoc{Label: b.Label, MaxMajor: b.MaxMajor, ScoreMin: b.ScoreMin, ScoreMax: b.ScoreMax}
				if b.MaxMinor >= 0 {
					mm := b.MaxMinor
					bd.MaxMinor = &mm
				}
				rd.Bands = append(rd.Bands, bd)
			}
			cd.ErrorRules = rd
		}
		d.Criteria = append(d.Criteria, cd)
	}
	for _, b := range r.OverallBands {
		d.OverallBands = append(d.OverallBands, BandDoc(b))
	}
	return d
}

// Parse reads one rubric definition from YAML or JSON bytes.
func Parse(data []byte) (Rubric, error) {
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Rubric{}, fmt.Errorf("parse rubric: %w", err)
	}
	return d.Rubric()
}

// Load reads and parses a single rubric definition file.
func Load(path string) (Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rubric{}, err
	}
	r, err := Parse(data)
	if err != nil {
		return Rubric{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return r, nil
}

// LoadDir loads every .yaml/.yml/.json rubric in dir into an id-keyed
// catalog. Duplicate rubric ids are a configuration error.
func LoadDir(dir string) (map[string]Rubric, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	catalog := make(map[string]Rubric, len(names))
	for _, name := range names {
		r, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if _, dup := catalog[r.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate rubric id %q", name, r.ID)
		}
		catalog[r.ID] = r
	}
	return catalog, nil
}
