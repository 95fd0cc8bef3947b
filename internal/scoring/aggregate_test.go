package scoring_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grade-pilot/gradepilot/internal/rubric"
	"github.com/grade-pilot/gradepilot/internal/scoring"
)

func aggregateRubric() rubric.Rubric {
	return rubric.Rubric{
		ID: "essay-v1", Version: "1.0", Title: "Essay",
		Criteria: []rubric.Criterion{
			levelCriterion(rubric.StrategyMid),
			deductionCriterion(),
		},
		OverallBands: []rubric.OverallBand{
			{Label: "pass", ScoreMin: 40, ScoreMax: 75},
			{Label: "fail", ScoreMin: 0, ScoreMax: 29},
		},
	}
}

func TestAggregate(t *testing.T) {
	e := scoring.NewEngine()
	results := []scoring.CriterionResult{
		{CriterionID: "structure", PointsEarned: 20, PointsPossible: 25},
		{CriterionID: "grammar", PointsEarned: 28, PointsPossible: 50},
	}

	s, err := e.Aggregate(aggregateRubric(), results, nil)
	require.NoError(t, err)
	assert.Equal(t, 75, s.TotalPointsPossible)
	assert.Equal(t, 48, s.TotalPointsEarned)
	assert.Equal(t, "pass", s.OverallBand)
	assert.Empty(t, s.Diagnostics)
}

func TestAggregate_DeclaredTotal(t *testing.T) {
	e := scoring.NewEngine()
	results := []scoring.CriterionResult{
		{CriterionID: "structure", PointsEarned: 20},
		{CriterionID: "grammar", PointsEarned: 28},
	}

	_, err := e.Aggregate(aggregateRubric(), results, intPtr(48))
	require.NoError(t, err)

	_, err = e.Aggregate(aggregateRubric(), results, intPtr(47))
	require.Error(t, err)
	assert.True(t, errors.Is(err, scoring.ErrTotalMismatch))
}

func TestAggregate_BandGap(t *testing.T) {
	e := scoring.NewEngine()

	// Total 35 falls between "fail" (<=29) and "pass" (>=40).
	s, err := e.Aggregate(aggregateRubric(), []scoring.CriterionResult{
		{CriterionID: "structure", PointsEarned: 10},
		{CriterionID: "grammar", PointsEarned: 25},
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, s.OverallBand)
	require.Len(t, s.Diagnostics, 1)
	assert.Equal(t, scoring.DiagNoOverallBand, s.Diagnostics[0].Code)
}

func TestAggregate_NoBandsConfigured(t *testing.T) {
	e := scoring.NewEngine()
	r := aggregateRubric()
	r.OverallBands = nil

	s, err := e.Aggregate(r, []scoring.CriterionResult{
		{CriterionID: "structure", PointsEarned: 10},
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, s.OverallBand)
	assert.Empty(t, s.Diagnostics, "a band gap only matters when bands exist")
}
