package scoring

// Severity of a detected error.
type Severity string

const (
	SeverityMajor Severity = "major"
	SeverityMinor Severity = "minor"
)

// DetectedError is one error class the model reported in a submission.
type DetectedError struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description,omitempty"`
	Count       int      `json:"count"`
	Notes       string   `json:"notes,omitempty"`
}

// Observation is the model-supplied qualitative input for one criterion:
// direct points (manual mode), a selected level label (level_band), or error
// tallies (error_count). The engine turns an observation into an exact score;
// the model never computes one itself.
type Observation struct {
	CriterionID   string          `json:"criterion_id"`
	PointsEarned  *int            `json:"points_earned,omitempty"`
	SelectedLevel string          `json:"selected_level,omitempty"`
	MajorCount    int             `json:"major_count,omitempty"`
	MinorCount    int             `json:"minor_count,omitempty"`
	NotSubmitted  bool            `json:"not_submitted,omitempty"`
	Feedback      string          `json:"feedback,omitempty"`
	Evidence      []string        `json:"evidence,omitempty"`
	Errors        []DetectedError `json:"errors,omitempty"`
}

// CriterionResult is the immutable scored outcome for one criterion.
type CriterionResult struct {
	CriterionID    string   `json:"criterion_id"`
	Name           string   `json:"name"`
	PointsPossible int      `json:"points_possible"`
	PointsEarned   int      `json:"points_earned"`
	SelectedLevel  string   `json:"selected_level,omitempty"`
	Feedback       string   `json:"feedback,omitempty"`
	Evidence       []string `json:"evidence,omitempty"`
}

// ErrorCountAudit records raw and post-normalization error tallies for one
// error_count criterion, kept on the result for auditability.
type ErrorCountAudit struct {
	CriterionID    string `json:"criterion_id"`
	RawMajor       int    `json:"raw_major"`
	RawMinor       int    `json:"raw_minor"`
	EffectiveMajor int    `json:"effective_major"`
	EffectiveMinor int    `json:"effective_minor"`
}

// Diagnostic is a non-fatal scoring observation: the engine substituted a
// safe default instead of aborting the submission.
type Diagnostic struct {
	CriterionID string `json:"criterion_id,omitempty"`
	Code        string `json:"code"`
	Message     string `json:"message"`
}

const (
	DiagMissingManualPoints = "missing_manual_points"
	DiagPointsOutOfRange    = "points_out_of_range"
	DiagUnknownLevelLabel   = "unknown_level_label"
	DiagNegativeErrorCount  = "negative_error_count"
	DiagNoErrorBand         = "no_error_band"
	DiagNoOverallBand       = "no_overall_band"
	DiagMissingObservation  = "missing_observation"
)

// AssessmentResult is the fully-populated outcome for one submission. It is
// frozen once the engine has run; downstream consumers read it only.
type AssessmentResult struct {
	ID                  string            `json:"id"`
	RubricID            string            `json:"rubric_id"`
	RubricVersion       string            `json:"rubric_version"`
	SubmissionID        string            `json:"submission_id,omitempty"`
	StudentID           string            `json:"student_id,omitempty"`
	CourseID            string            `json:"course_id,omitempty"`
	TotalPointsPossible int               `json:"total_points_possible"`
	TotalPointsEarned   int               `json:"total_points_earned"`
	OverallBand         string            `json:"overall_band,omitempty"`
	OverallFeedback     string            `json:"overall_feedback,omitempty"`
	Criteria            []CriterionResult `json:"criteria"`
	DetectedErrors      []DetectedError   `json:"detected_errors,omitempty"`
	ErrorCounts         []ErrorCountAudit `json:"error_counts,omitempty"`
	Diagnostics         []Diagnostic      `json:"diagnostics,omitempty"`
	CreatedAt           int64             `json:"created_at"`
}
