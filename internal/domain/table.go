// Package domain defines the core value types shared across the analysis
// pipeline: score tables, pass policies, and analysis reports.
package domain

// Student represents one row of a ScoreTable: a single examinee and the
// scores recorded for them.
type Student struct {
	// ID uniquely identifies this student within a table.
	// Uniqueness and presence are enforced by the validation gate
	// before analysis runs.
	ID string `json:"id"`

	// Name is an optional display label. It may be empty or duplicated
	// across students; DisplayName falls back to ID when empty.
	Name string `json:"name,omitempty"`

	// Scores maps subject name to the recorded score. A subject absent
	// from the map was not attempted by this student. An attempted
	// score is never treated as zero by omission.
	Scores map[string]float64 `json:"scores"`
}

// Score returns the recorded score for subject and whether the student
// attempted it.
func (s Student) Score(subject string) (float64, bool) {
	v, ok := s.Scores[subject]
	return v, ok
}

// DisplayName returns the student's name, falling back to the ID when no
// name was supplied.
func (s Student) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// ScoreTable is the in-memory representation of one imported result sheet.
// Row order is import order and is preserved throughout: it is the
// tie-break order for ranking and the row order for export.
type ScoreTable struct {
	// Students holds one record per row in import order.
	Students []Student `json:"students"`

	// Subjects holds the subject column names in source column order.
	// It determines the order statistics and anomalies are produced in.
	Subjects []string `json:"subjects"`
}

// AttemptedScores returns the non-missing scores recorded for subject,
// in row order.
func (t *ScoreTable) AttemptedScores(subject string) []float64 {
	var scores []float64
	for _, s := range t.Students {
		if v, ok := s.Scores[subject]; ok {
			scores = append(scores, v)
		}
	}
	return scores
}
