package rubric_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grade-pilot/gradepilot/internal/rubric"
)

const essayYAML = `
rubric_id: essay-v1
rubric_version: "1.0"
title: Essay Rubric
course_ids: [cs101]
criteria:
  - criterion_id: structure
    name: Structure
    max_points: 25
    scoring_mode: level_band
    points_strategy: mid
    levels:
      - {label: excellent, score_min: 23, score_max: 25}
      - {label: good, score_min: 18, score_max: 22}
      - {label: weak, score_min: 0, score_max: 17}
  - criterion_id: grammar
    name: Grammar
    max_points: 50
    scoring_mode: error_count
    error_rules:
      major_weight: 10
      minor_weight: 2
      floor_score: 0
      max_deduction: 50
      minor_to_major_ratio: 4
  - criterion_id: style
    name: Style
    max_points: 20
    scoring_mode: manual
overall_bands:
  - {label: excellent, score_min: 85, score_max: 95}
  - {label: pass, score_min: 40, score_max: 84}
  - {label: fail, score_min: 0, score_max: 39}
`

func TestParse_YAML(t *testing.T) {
	r, err := rubric.Parse([]byte(essayYAML))
	require.NoError(t, err)
	if diff := cmp.Diff(validRubric(), r); diff != "" {
		t.Fatalf("parsed rubric mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_JSON(t *testing.T) {
	// yaml.v3 parses JSON documents too, so a single Parse covers both.
	data := []byte(`{
		"rubric_id": "quiz-v2",
		"rubric_version": "2.1",
		"title": "Quiz",
		"criteria": [
			{"criterion_id": "answers", "name": "Answers", "max_points": 10, "scoring_mode": "manual"}
		]
	}`)
	r, err := rubric.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "quiz-v2", r.ID)
	assert.Equal(t, []string{rubric.CourseUnassigned}, r.CourseIDs, "missing course_ids default to unassigned")

	c, ok := r.Criterion("answers")
	require.True(t, ok)
	assert.True(t, c.Enabled, "enabled defaults to true")
	assert.Equal(t, rubric.ModeManual, c.Mode())
}

func TestParse_ErrorBandMaxMinor(t *testing.T) {
	data := []byte(`
rubric_id: translation-v1
rubric_version: "1.0"
title: Translation
criteria:
  - criterion_id: accuracy
    name: Accuracy
    max_points: 70
    scoring_mode: error_count
    error_rules:
      minor_to_major_ratio: 4
      bands:
        - {label: clean, max_major: 0, max_minor: 2, score_min: 61, score_max: 70}
        - {label: rough, max_major: 3, score_min: 31, score_max: 60}
`)
	r, err := rubric.Parse(data)
	require.NoError(t, err)

	c, ok := r.Criterion("accuracy")
	require.True(t, ok)
	rules := c.Config.(rubric.ErrorCountConfig).Rules
	require.Len(t, rules.Bands, 2)
	assert.Equal(t, 2, rules.Bands[0].MaxMinor)
	assert.Equal(t, -1, rules.Bands[1].MaxMinor, "absent max_minor means unconstrained")
}

func TestParse_Rejections(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "unknown scoring mode",
			data: `
rubric_id: r1
rubric_version: "1"
title: R
criteria:
  - {criterion_id: a, name: A, max_points: 10, scoring_mode: vibes}
`,
		},
		{
			name: "error_count without rules",
			data: `
rubric_id: r1
rubric_version: "1"
title: R
criteria:
  - {criterion_id: a, name: A, max_points: 10, scoring_mode: error_count}
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rubric.Parse([]byte(tt.data))
			var ve *rubric.ValidationError
			require.True(t, errors.As(err, &ve), "want *ValidationError, got %v", err)
		})
	}
}

func TestDocumentFor_RoundTrip(t *testing.T) {
	base := validRubric()
	again, err := rubric.DocumentFor(base).Rubric()
	require.NoError(t, err)
	if diff := cmp.Diff(base, again); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "essay.yaml"), []byte(essayYAML), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o600))

	catalog, err := rubric.LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	_, ok := catalog["essay-v1"]
	assert.True(t, ok)
}

func TestLoadDir_DuplicateID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(essayYAML), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(essayYAML), 0o600))

	_, err := rubric.LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate rubric id")
}
