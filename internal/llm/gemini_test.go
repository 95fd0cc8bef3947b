package llm

import (
	"encoding/json"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripCodeFences(tt.in); got != tt.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToAssessment(t *testing.T) {
	raw := `{
		"overall_feedback": "strong work",
		"criteria": [
			{"criterion_id": "structure", "selected_level": "good", "feedback": "clear", "evidence": ["para 2"]},
			{"criterion_id": "grammar", "major_count": 1, "minor_count": 5,
			 "errors": [{"code": "agr", "name": "agreement", "severity": "major", "count": 1}]},
			{"criterion_id": "style", "points_earned": 15}
		]
	}`
	var p assessmentPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	a := toAssessment(p)
	if a.OverallFeedback != "strong work" {
		t.Fatalf("feedback = %q", a.OverallFeedback)
	}
	if len(a.Observations) != 3 {
		t.Fatalf("observations = %d, want 3", len(a.Observations))
	}
	if a.DeclaredTotal != nil {
		t.Fatal("model output must never carry a declared total")
	}
	if a.Observations[0].SelectedLevel != "good" {
		t.Fatalf("obs[0] = %+v", a.Observations[0])
	}
	if a.Observations[1].MajorCount != 1 || a.Observations[1].MinorCount != 5 {
		t.Fatalf("obs[1] = %+v", a.Observations[1])
	}
	if len(a.Observations[1].Errors) != 1 || a.Observations[1].Errors[0].Code != "agr" {
		t.Fatalf("detected errors = %+v", a.Observations[1].Errors)
	}
	if a.Observations[2].PointsEarned == nil || *a.Observations[2].PointsEarned != 15 {
		t.Fatalf("obs[2] = %+v", a.Observations[2])
	}
}
