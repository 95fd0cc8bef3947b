package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/grade-pilot/gradepilot/internal/assess"
	"github.com/grade-pilot/gradepilot/internal/rubric"
)

// GET /rubrics
func ListRubricsHandler(svc *assess.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs := []rubric.Document{}
		for _, rb := range svc.Rubrics() {
			docs = append(docs, rubric.DocumentFor(rb))
		}
		writeJSON(w, http.StatusOK, docs)
	}
}

// GET /rubrics/{rubricID}
func GetRubricHandler(svc *assess.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "rubricID"))
		if id == "" {
			http.Error(w, "rubricID required", http.StatusBadRequest)
			return
		}
		rb, err := svc.Rubric(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rubric.DocumentFor(rb))
	}
}

// POST /rubrics/{rubricID}/preview
// Body is a rubric.Overrides document; the response is the effective rubric
// plus its recomputed total, without grading anything.
func PreviewRubricHandler(svc *assess.Service) http.HandlerFunc {
	type previewResp struct {
		Rubric              rubric.Document `json:"rubric"`
		TotalPointsPossible int             `json:"total_points_possible"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "rubricID"))
		if id == "" {
			http.Error(w, "rubricID required", http.StatusBadRequest)
			return
		}
		var ov rubric.Overrides
		if err := json.NewDecoder(r.Body).Decode(&ov); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		eff, err := svc.Preview(id, ov)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, previewResp{
			Rubric:              rubric.DocumentFor(eff),
			TotalPointsPossible: eff.TotalPointsPossible(),
		})
	}
}
