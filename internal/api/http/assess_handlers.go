package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/grade-pilot/gradepilot/internal/assess"
	"github.com/grade-pilot/gradepilot/internal/report"
	"github.com/grade-pilot/gradepilot/internal/rubric"
	"github.com/grade-pilot/gradepilot/internal/scoring"
)

type gradeReq struct {
	RubricID   string            `json:"rubric_id"`
	Overrides  rubric.Overrides  `json:"overrides,omitempty"`
	Submission assess.Submission `json:"submission"`

	// When observations are supplied (a cached or corrected model run) the
	// service scores them directly instead of calling the assessor.
	Observations    []scoring.Observation `json:"observations,omitempty"`
	OverallFeedback string                `json:"overall_feedback,omitempty"`
	DeclaredTotal   *int                  `json:"declared_total,omitempty"`
}

// POST /assessments
func CreateAssessmentHandler(svc *assess.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gradeReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.RubricID) == "" {
			http.Error(w, "rubric_id required", http.StatusBadRequest)
			return
		}

		var (
			res scoring.AssessmentResult
			err error
		)
		if len(req.Observations) > 0 {
			a := assess.Assessment{
				Observations:    req.Observations,
				OverallFeedback: req.OverallFeedback,
				DeclaredTotal:   req.DeclaredTotal,
			}
			res, err = svc.GradeObservations(r.Context(), req.RubricID, req.Overrides, req.Submission, a)
		} else {
			res, err = svc.Grade(r.Context(), req.RubricID, req.Overrides, req.Submission)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// GET /assessments/{assessmentID}
func GetAssessmentHandler(svc *assess.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "assessmentID"))
		if id == "" {
			http.Error(w, "assessmentID required", http.StatusBadRequest)
			return
		}
		res, err := svc.Result(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// GET /assessments?rubric_id=&student_id=&course_id=&limit=&offset=
func ListAssessmentsHandler(svc *assess.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list, err := svc.Results(r.Context(), assess.ListOpts{
			RubricID:  strings.TrimSpace(q.Get("rubric_id")),
			StudentID: strings.TrimSpace(q.Get("student_id")),
			CourseID:  strings.TrimSpace(q.Get("course_id")),
			Limit:     parseIntDefault(q.Get("limit"), 100),
			Offset:    parseIntDefault(q.Get("offset"), 0),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		if list == nil {
			list = []scoring.AssessmentResult{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /assessments/export?rubric_id=&course_id=
func ExportAssessmentsHandler(svc *assess.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list, err := svc.Results(r.Context(), assess.ListOpts{
			RubricID: strings.TrimSpace(q.Get("rubric_id")),
			CourseID: strings.TrimSpace(q.Get("course_id")),
			Limit:    500,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="assessments.xlsx"`)
		if err := report.WriteResults(w, list); err != nil {
			http.Error(w, "export: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}
}
