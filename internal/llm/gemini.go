package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/grade-pilot/gradepilot/internal/assess"
	"github.com/grade-pilot/gradepilot/internal/rubric"
	"github.com/grade-pilot/gradepilot/internal/scoring"
)

// Gemini asks a Gemini model for qualitative observations only: chosen level
// labels, error tallies, and prose. The deterministic engine downstream does
// all arithmetic; any totals the model claims are verified, never copied.
type Gemini struct {
	apiKey string
	model  string
}

func NewGemini(apiKey, model string) *Gemini {
	return &Gemini{
		apiKey: strings.TrimSpace(apiKey),
		model:  strings.TrimSpace(model),
	}
}

func (g *Gemini) Name() string { return "gemini" }

// assessmentPayload is the JSON the model must return.
type assessmentPayload struct {
	OverallFeedback string             `json:"overall_feedback"`
	Criteria        []criterionPayload `json:"criteria"`
}

type criterionPayload struct {
	CriterionID   string                  `json:"criterion_id"`
	PointsEarned  *int                    `json:"points_earned,omitempty"`
	SelectedLevel string                  `json:"selected_level,omitempty"`
	MajorCount    int                     `json:"major_count,omitempty"`
	MinorCount    int                     `json:"minor_count,omitempty"`
	NotSubmitted  bool                    `json:"not_submitted,omitempty"`
	Feedback      string                  `json:"feedback,omitempty"`
	Evidence      []string                `json:"evidence,omitempty"`
	Errors        []scoring.DetectedError `json:"errors,omitempty"`
}

func (g *Gemini) Assess(ctx context.Context, r rubric.Rubric, sub assess.Submission) (assess.Assessment, error) {
	if g.apiKey == "" {
		return assess.Assessment{}, errors.New("gemini: api key is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return assess.Assessment{}, err
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{
			genai.Text(systemPrompt),
			genai.Text("RUBRIC_JSON:\n" + rubricJSON(r)),
		},
	}

	userObj := map[string]any{
		"task":       "Assess the submission against RUBRIC_JSON and return only JSON in the response format.",
		"submission": sub.Text,
	}
	userJSON, _ := json.Marshal(userObj)
	parts := []genai.Part{genai.Text("INPUT_JSON:\n" + string(userJSON))}

	// Retries cover transient transport failures only; schema failures are
	// final (a retry with temperature 0 returns the same payload).
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			select {
			case <-ctx.Done():
				return assess.Assessment{}, ctx.Err()
			case <-time.After(time.Duration(attempt) * 300 * time.Millisecond):
			}
			continue
		}
		txt := strings.TrimSpace(firstText(resp))
		if txt == "" {
			return assess.Assessment{}, errors.New("gemini assess: empty response")
		}
		txt = stripCodeFences(txt)

		var payload assessmentPayload
		if err := json.Unmarshal([]byte(txt), &payload); err != nil {
			return assess.Assessment{}, fmt.Errorf("gemini assess: bad JSON: %w", err)
		}
		return toAssessment(payload), nil
	}
	return assess.Assessment{}, lastErr
}

const systemPrompt = `You are the assessment module of an instructor grading platform.
Evaluate one student submission against RUBRIC_JSON and return strictly JSON:
{"overall_feedback": string,
 "criteria": [{"criterion_id": string,
               "points_earned": int (manual criteria only),
               "selected_level": string (level_band criteria: one existing level label, verbatim),
               "major_count": int, "minor_count": int (error_count criteria),
               "not_submitted": bool,
               "feedback": string,
               "evidence": [string],
               "errors": [{"code","name","severity","description","count","notes"}]}]}
Rules:
- One entry per enabled criterion, using its exact criterion_id.
- For level_band criteria pick a label; never invent one.
- For error_count criteria count errors; do not compute deductions.
- Assign points_earned only for manual-mode criteria.
- Quote short evidence snippets from the submission.
Any text outside the JSON object is an error.`

func rubricJSON(r rubric.Rubric) string {
	buf, _ := json.Marshal(rubric.DocumentFor(r))
	return string(buf)
}

func toAssessment(p assessmentPayload) assess.Assessment {
	// The model is never asked for a total, so there is no DeclaredTotal to
	// carry: totals come only from the deterministic engine.
	a := assess.Assessment{OverallFeedback: p.OverallFeedback}
	for _, c := range p.Criteria {
		a.Observations = append(a.Observations, scoring.Observation{
			CriterionID:   c.CriterionID,
			PointsEarned:  c.PointsEarned,
			SelectedLevel: c.SelectedLevel,
			MajorCount:    c.MajorCount,
			MinorCount:    c.MinorCount,
			NotSubmitted:  c.NotSubmitted,
			Feedback:      c.Feedback,
			Evidence:      c.Evidence,
			Errors:        c.Errors,
		})
	}
	return a
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func ptrFloat32(v float32) *float32 { return &v }
