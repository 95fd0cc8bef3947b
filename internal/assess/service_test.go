package assess

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/grade-pilot/gradepilot/internal/rubric"
	"github.com/grade-pilot/gradepilot/internal/scoring"
)

type fakeAssessor struct {
	assessment Assessment
	err        error
	gotRubric  rubric.Rubric
}

func (f *fakeAssessor) Assess(_ context.Context, r rubric.Rubric, _ Submission) (Assessment, error) {
	f.gotRubric = r
	return f.assessment, f.err
}

type memStore struct {
	saved []scoring.AssessmentResult
	err   error
}

func (m *memStore) SaveResult(_ context.Context, res scoring.AssessmentResult) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, res)
	return nil
}

func (m *memStore) GetResult(_ context.Context, id string) (scoring.AssessmentResult, error) {
	for _, r := range m.saved {
		if r.ID == id {
			return r, nil
		}
	}
	return scoring.AssessmentResult{}, errors.New("assessment not found")
}

func (m *memStore) ListResults(_ context.Context, opts ListOpts) ([]scoring.AssessmentResult, error) {
	var out []scoring.AssessmentResult
	for _, r := range m.saved {
		if opts.RubricID != "" && r.RubricID != opts.RubricID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func intp(n int) *int { return &n }

func testRubric() rubric.Rubric {
	return rubric.Rubric{
		ID: "essay-v1", Version: "1.0", Title: "Essay",
		CourseIDs: []string{"cs101"},
		Criteria: []rubric.Criterion{
			{
				ID: "structure", Name: "Structure", MaxPoints: 25, Enabled: true,
				Config: rubric.LevelBandConfig{Strategy: rubric.StrategyMid},
				Levels: []rubric.PerformanceLevel{
					{Label: "excellent", ScoreMin: 23, ScoreMax: 25},
					{Label: "good", ScoreMin: 18, ScoreMax: 22},
				},
			},
			{ID: "style", Name: "Style", MaxPoints: 20, Enabled: true, Config: rubric.ManualConfig{}},
		},
		OverallBands: []rubric.OverallBand{
			{Label: "pass", ScoreMin: 25, ScoreMax: 45},
			{Label: "fail", ScoreMin: 0, ScoreMax: 24},
		},
	}
}

func newTestService(a Assessor, st Store) *Service {
	catalog := map[string]rubric.Rubric{"essay-v1": testRubric()}
	return NewService(catalog, scoring.NewEngine(), a, st, nil)
}

func TestGrade_EndToEnd(t *testing.T) {
	assessor := &fakeAssessor{assessment: Assessment{
		Observations: []scoring.Observation{
			{CriterionID: "structure", SelectedLevel: "good", Feedback: "solid flow"},
			{CriterionID: "style", PointsEarned: intp(15)},
		},
		OverallFeedback: "well done",
	}}
	store := &memStore{}
	svc := newTestService(assessor, store)

	res, err := svc.Grade(context.Background(), "essay-v1", rubric.Overrides{}, Submission{
		ID: "sub-1", StudentID: "stu-9", CourseID: "cs101", Text: "essay text",
	})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}

	if res.TotalPointsEarned != 35 { // good mid=20 + manual 15
		t.Fatalf("total = %d, want 35", res.TotalPointsEarned)
	}
	if res.TotalPointsPossible != 45 {
		t.Fatalf("possible = %d, want 45", res.TotalPointsPossible)
	}
	if res.OverallBand != "pass" {
		t.Fatalf("band = %q, want pass", res.OverallBand)
	}
	if res.OverallFeedback != "well done" {
		t.Fatalf("feedback = %q", res.OverallFeedback)
	}
	if res.ID == "" || res.CreatedAt == 0 {
		t.Fatalf("result missing id or timestamp: %+v", res)
	}
	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", res.Diagnostics)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d results, want 1", len(store.saved))
	}

	got, err := svc.Result(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if got.ID != res.ID {
		t.Fatalf("Result returned %q, want %q", got.ID, res.ID)
	}
}

func TestGrade_OverridesShapeAssessorInput(t *testing.T) {
	assessor := &fakeAssessor{assessment: Assessment{
		Observations: []scoring.Observation{
			{CriterionID: "structure", SelectedLevel: "good"},
		},
	}}
	svc := newTestService(assessor, nil)

	disabled := false
	res, err := svc.Grade(context.Background(), "essay-v1", rubric.Overrides{
		Criteria: map[string]rubric.CriterionOverride{
			"style": {Enabled: &disabled},
		},
		Bands: map[string]rubric.BandOverride{
			"pass": {ScoreMin: intp(15), ScoreMax: intp(25)},
			"fail": {ScoreMax: intp(14)},
		},
	}, Submission{ID: "sub-2"})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}

	// The assessor sees the effective rubric, so it never prompts for
	// disabled criteria.
	if got := assessor.gotRubric.TotalPointsPossible(); got != 25 {
		t.Fatalf("assessor rubric total = %d, want 25", got)
	}
	if res.TotalPointsPossible != 25 {
		t.Fatalf("possible = %d, want 25", res.TotalPointsPossible)
	}
	if len(res.Criteria) != 1 {
		t.Fatalf("scored %d criteria, want 1 (style disabled)", len(res.Criteria))
	}
}

func TestGrade_MissingObservation(t *testing.T) {
	assessor := &fakeAssessor{assessment: Assessment{
		Observations: []scoring.Observation{
			{CriterionID: "structure", SelectedLevel: "excellent"},
			// no observation for "style"
		},
	}}
	svc := newTestService(assessor, nil)

	res, err := svc.Grade(context.Background(), "essay-v1", rubric.Overrides{}, Submission{ID: "sub-3"})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if res.TotalPointsEarned != 24 { // excellent mid=24, style defaults to 0
		t.Fatalf("total = %d, want 24", res.TotalPointsEarned)
	}

	var codes []string
	for _, d := range res.Diagnostics {
		codes = append(codes, d.Code)
	}
	joined := strings.Join(codes, ",")
	if !strings.Contains(joined, scoring.DiagMissingObservation) {
		t.Fatalf("diagnostics missing %s: %v", scoring.DiagMissingObservation, codes)
	}
	if !strings.Contains(joined, scoring.DiagMissingManualPoints) {
		t.Fatalf("diagnostics missing %s: %v", scoring.DiagMissingManualPoints, codes)
	}
}

func TestGradeObservations_DeclaredTotalMismatch(t *testing.T) {
	svc := newTestService(nil, nil)

	_, err := svc.GradeObservations(context.Background(), "essay-v1", rubric.Overrides{}, Submission{ID: "sub-4"}, Assessment{
		Observations: []scoring.Observation{
			{CriterionID: "structure", SelectedLevel: "good"},
			{CriterionID: "style", PointsEarned: intp(10)},
		},
		DeclaredTotal: intp(31), // engine computes 30
	})
	if !errors.Is(err, scoring.ErrTotalMismatch) {
		t.Fatalf("err = %v, want ErrTotalMismatch", err)
	}
}

func TestGrade_UnknownRubric(t *testing.T) {
	svc := newTestService(&fakeAssessor{}, nil)
	_, err := svc.Grade(context.Background(), "nope", rubric.Overrides{}, Submission{ID: "sub-5"})
	if !errors.Is(err, ErrRubricNotFound) {
		t.Fatalf("err = %v, want ErrRubricNotFound", err)
	}
}

func TestGrade_AssessorFailure(t *testing.T) {
	svc := newTestService(&fakeAssessor{err: errors.New("model unavailable")}, nil)
	_, err := svc.Grade(context.Background(), "essay-v1", rubric.Overrides{}, Submission{ID: "sub-6"})
	if err == nil || !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("err = %v, want wrapped assessor error", err)
	}
}

func TestGrade_InvalidOverride(t *testing.T) {
	svc := newTestService(&fakeAssessor{}, nil)
	_, err := svc.Grade(context.Background(), "essay-v1", rubric.Overrides{
		Criteria: map[string]rubric.CriterionOverride{"nope": {}},
	}, Submission{ID: "sub-7"})

	var ve *rubric.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
}

func TestRubrics_SortedByID(t *testing.T) {
	catalog := map[string]rubric.Rubric{
		"b": {ID: "b"},
		"a": {ID: "a"},
		"c": {ID: "c"},
	}
	svc := NewService(catalog, scoring.NewEngine(), nil, nil, nil)
	got := svc.Rubrics()
	if len(got) != 3 || got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Fatalf("Rubrics() order wrong: %+v", got)
	}
}
