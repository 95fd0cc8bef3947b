package assess

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/grade-pilot/gradepilot/internal/scoring"
)

// SQLStore keeps finished assessment results in SQL. Summary columns are
// denormalized for listing; the full result rides along as JSON.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) SaveResult(ctx context.Context, res scoring.AssessmentResult) error {
	buf, err := json.Marshal(res)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO assessments
		(id, rubric_id, rubric_version, submission_id, student_id, course_id,
		 total_possible, total_earned, overall_band, result_json, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		res.ID, res.RubricID, res.RubricVersion, res.SubmissionID, res.StudentID, res.CourseID,
		res.TotalPointsPossible, res.TotalPointsEarned, res.OverallBand, string(buf), res.CreatedAt)
	return err
}

func (s *SQLStore) GetResult(ctx context.Context, id string) (scoring.AssessmentResult, error) {
	row := s.db.QueryRowContext(ctx, `SELECT result_json FROM assessments WHERE id=$1`, id)
	var buf string
	if err := row.Scan(&buf); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return scoring.AssessmentResult{}, errors.New("assessment not found")
		}
		return scoring.AssessmentResult{}, err
	}
	var res scoring.AssessmentResult
	if err := json.Unmarshal([]byte(buf), &res); err != nil {
		return scoring.AssessmentResult{}, err
	}
	return res, nil
}

func (s *SQLStore) ListResults(ctx context.Context, opts ListOpts) ([]scoring.AssessmentResult, error) {
	if opts.Limit <= 0 || opts.Limit > 500 {
		opts.Limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `SELECT result_json FROM assessments
		WHERE ($1 = '' OR rubric_id = $1)
		  AND ($2 = '' OR student_id = $2)
		  AND ($3 = '' OR course_id = $3)
		ORDER BY created_at DESC, id
		LIMIT $4 OFFSET $5`,
		opts.RubricID, opts.StudentID, opts.CourseID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scoring.AssessmentResult
	for rows.Next() {
		var buf string
		if err := rows.Scan(&buf); err != nil {
			return nil, err
		}
		var res scoring.AssessmentResult
		if err := json.Unmarshal([]byte(buf), &res); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
