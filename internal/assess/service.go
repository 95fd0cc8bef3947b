package assess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/grade-pilot/gradepilot/internal/rubric"
	"github.com/grade-pilot/gradepilot/internal/scoring"
)

var ErrRubricNotFound = errors.New("rubric not found")

// Submission is one piece of student work to be graded against a rubric.
type Submission struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id,omitempty"`
	Text      string `json:"text"`
}

// Assessment is the qualitative output of the model-call collaborator:
// per-criterion observations plus overall prose. DeclaredTotal is the model's
// own claim about the total, verified but never trusted.
type Assessment struct {
	Observations    []scoring.Observation
	OverallFeedback string
	DeclaredTotal   *int
}

// Assessor produces qualitative observations for a submission. The scoring
// pipeline consumes its output; it never calls back into scoring.
type Assessor interface {
	Assess(ctx context.Context, r rubric.Rubric, sub Submission) (Assessment, error)
}

// Store persists finished assessment results.
type Store interface {
	SaveResult(ctx context.Context, res scoring.AssessmentResult) error
	GetResult(ctx context.Context, id string) (scoring.AssessmentResult, error)
	ListResults(ctx context.Context, opts ListOpts) ([]scoring.AssessmentResult, error)
}

type ListOpts struct {
	RubricID  string
	StudentID string
	CourseID  string
	Limit     int
	Offset    int
}

// Service runs the single-submission grading pipeline: effective rubric →
// per-criterion scoring → aggregation → persisted immutable result.
type Service struct {
	rubrics  map[string]rubric.Rubric
	engine   *scoring.Engine
	assessor Assessor
	store    Store
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(rubrics map[string]rubric.Rubric, engine *scoring.Engine, assessor Assessor, store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		rubrics:  rubrics,
		engine:   engine,
		assessor: assessor,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

// Rubrics lists the loaded catalog, ordered by id.
func (s *Service) Rubrics() []rubric.Rubric {
	out := make([]rubric.Rubric, 0, len(s.rubrics))
	for _, r := range s.rubrics {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Service) Rubric(id string) (rubric.Rubric, error) {
	r, ok := s.rubrics[id]
	if !ok {
		return rubric.Rubric{}, fmt.Errorf("%w: %s", ErrRubricNotFound, id)
	}
	return r, nil
}

// Preview applies overrides without grading anything, so instructors can see
// the effective rubric (and its new total) before a run.
func (s *Service) Preview(id string, ov rubric.Overrides) (rubric.Rubric, error) {
	base, err := s.Rubric(id)
	if err != nil {
		return rubric.Rubric{}, err
	}
	return rubric.Merge(base, ov)
}

// Grade obtains observations from the configured assessor and scores them.
func (s *Service) Grade(ctx context.Context, rubricID string, ov rubric.Overrides, sub Submission) (scoring.AssessmentResult, error) {
	if s.assessor == nil {
		return scoring.AssessmentResult{}, errors.New("no assessor configured")
	}
	eff, err := s.Preview(rubricID, ov)
	if err != nil {
		return scoring.AssessmentResult{}, err
	}
	a, err := s.assessor.Assess(ctx, eff, sub)
	if err != nil {
		return scoring.AssessmentResult{}, fmt.Errorf("assess submission %s: %w", sub.ID, err)
	}
	return s.score(ctx, eff, sub, a)
}

// GradeObservations scores already-obtained observations (e.g. a cached or
// instructor-corrected model run) against the effective rubric.
func (s *Service) GradeObservations(ctx context.Context, rubricID string, ov rubric.Overrides, sub Submission, a Assessment) (scoring.AssessmentResult, error) {
	eff, err := s.Preview(rubricID, ov)
	if err != nil {
		return scoring.AssessmentResult{}, err
	}
	return s.score(ctx, eff, sub, a)
}

func (s *Service) score(ctx context.Context, eff rubric.Rubric, sub Submission, a Assessment) (scoring.AssessmentResult, error) {
	byID := make(map[string]scoring.Observation, len(a.Observations))
	for _, o := range a.Observations {
		byID[o.CriterionID] = o
	}

	res := scoring.AssessmentResult{
		ID:              uuid.NewString(),
		RubricID:        eff.ID,
		RubricVersion:   eff.Version,
		SubmissionID:    sub.ID,
		StudentID:       sub.StudentID,
		CourseID:        sub.CourseID,
		OverallFeedback: a.OverallFeedback,
		CreatedAt:       s.now().Unix(),
	}

	for _, c := range eff.Criteria {
		if !c.Enabled {
			continue
		}
		obs, ok := byID[c.ID]
		if !ok {
			res.Diagnostics = append(res.Diagnostics, scoring.Diagnostic{
				CriterionID: c.ID,
				Code:        scoring.DiagMissingObservation,
				Message:     "no observation supplied for enabled criterion; awarding defaults",
			})
			obs = scoring.Observation{CriterionID: c.ID}
		}
		cr, audit, diags := s.engine.ScoreCriterion(c, obs)
		res.Criteria = append(res.Criteria, cr)
		if audit != nil {
			res.ErrorCounts = append(res.ErrorCounts, *audit)
		}
		res.Diagnostics = append(res.Diagnostics, diags...)
		res.DetectedErrors = append(res.DetectedErrors, obs.Errors...)
	}

	summary, err := s.engine.Aggregate(eff, res.Criteria, a.DeclaredTotal)
	if err != nil {
		return scoring.AssessmentResult{}, err
	}
	res.TotalPointsPossible = summary.TotalPointsPossible
	res.TotalPointsEarned = summary.TotalPointsEarned
	res.OverallBand = summary.OverallBand
	res.Diagnostics = append(res.Diagnostics, summary.Diagnostics...)

	if s.store != nil {
		if err := s.store.SaveResult(ctx, res); err != nil {
			return scoring.AssessmentResult{}, fmt.Errorf("save result: %w", err)
		}
	}
	s.logger.Info("submission graded",
		slog.String("rubric_id", eff.ID),
		slog.String("submission_id", sub.ID),
		slog.Int("total", res.TotalPointsEarned),
		slog.Int("possible", res.TotalPointsPossible),
		slog.Int("diagnostics", len(res.Diagnostics)),
	)
	return res, nil
}

// Result fetches a stored assessment result.
func (s *Service) Result(ctx context.Context, id string) (scoring.AssessmentResult, error) {
	if s.store == nil {
		return scoring.AssessmentResult{}, errors.New("no result store configured")
	}
	return s.store.GetResult(ctx, id)
}

// Results lists stored assessment results.
func (s *Service) Results(ctx context.Context, opts ListOpts) ([]scoring.AssessmentResult, error) {
	if s.store == nil {
		return nil, errors.New("no result store configured")
	}
	return s.store.ListResults(ctx, opts)
}
