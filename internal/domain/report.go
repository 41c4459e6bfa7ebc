package domain

import "time"

// Topper identifies the highest-scoring student in a single subject.
// When several students share the maximum score, the first in table
// order is recorded.
type Topper struct {
	// Name is the student's display label (name, or ID when unnamed).
	Name string `json:"name"`

	// Score is the winning score.
	Score float64 `json:"score"`
}

// SubjectStats holds the per-subject aggregate figures, computed over the
// attempted (non-missing) scores only.
type SubjectStats struct {
	// Attempted is the number of students with a recorded score.
	Attempted int `json:"attempted"`

	// Passed counts attempted scores meeting the subject's threshold.
	Passed int `json:"passed"`

	// Failed counts attempted scores below the subject's threshold.
	// Passed + Failed always equals Attempted.
	Failed int `json:"failed"`

	// PassRate and FailRate are percentages over the attempted set.
	// They sum to 100 whenever Attempted > 0.
	PassRate float64 `json:"pass_rate"`
	FailRate float64 `json:"fail_rate"`

	// Mean, Max, and Min describe the attempted score distribution.
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
	Min  float64 `json:"min"`

	// Threshold is the passing threshold resolved for this subject at
	// analysis time.
	Threshold float64 `json:"threshold"`

	// Topper is the highest-scoring student for this subject.
	Topper Topper `json:"topper"`
}

// RankedStudent is one entry of the overall performance ranking.
type RankedStudent struct {
	// ID is the student's unique identifier.
	ID string `json:"id"`

	// Name is the student's display label.
	Name string `json:"name"`

	// Mean is the average of the student's own attempted scores.
	Mean float64 `json:"mean"`

	// SubjectsTaken counts the subjects the student has a score in.
	SubjectsTaken int `json:"subjects_taken"`

	// PassedAll reports whether every attempted score met its subject's
	// threshold.
	PassedAll bool `json:"passed_all"`
}

// AnomalyKind tags a category of statistical irregularity flagged during
// analysis.
type AnomalyKind string

// Anomaly kinds emitted by the engine, in per-subject check order.
const (
	// AnomalyEmptySubject flags a subject with no attempted scores.
	// It suppresses all other checks for that subject.
	AnomalyEmptySubject AnomalyKind = "empty_subject"

	// AnomalyExcessivePerfectScores flags a subject where strictly more
	// than 30% of attempted scores are exactly 100.
	AnomalyExcessivePerfectScores AnomalyKind = "excessive_perfect_scores"

	// AnomalyZeroScores flags a subject with at least one score of
	// exactly 0.
	AnomalyZeroScores AnomalyKind = "zero_scores"

	// AnomalyLowPassRate flags a subject whose pass rate is strictly
	// below 20%.
	AnomalyLowPassRate AnomalyKind = "low_pass_rate"
)

// Anomaly is a single advisory flag raised for a subject. Anomalies are
// independent checks: one subject may raise several.
type Anomaly struct {
	// Kind tags the anomaly category.
	Kind AnomalyKind `json:"kind"`

	// Subject names the subject the flag applies to.
	Subject string `json:"subject"`

	// Detail carries the numeric evidence for the flag: a count for
	// perfect-score and zero-score anomalies, the pass rate for
	// low-pass-rate anomalies, and 0 for empty subjects.
	Detail float64 `json:"detail,omitempty"`

	// Description is a human-readable explanation of the flag.
	Description string `json:"description"`
}

// AnalysisReport is the immutable result of one analysis run. It holds no
// reference back to the source table and is safe to hand to multiple
// consumers concurrently.
type AnalysisReport struct {
	// ID uniquely identifies this report (a UUID).
	ID string `json:"id"`

	// GeneratedAt records when this report was produced.
	GeneratedAt time.Time `json:"generated_at"`

	// TotalStudents and TotalSubjects count the table's rows and
	// subject columns, including students and subjects with no scores.
	TotalStudents int `json:"total_students"`
	TotalSubjects int `json:"total_subjects"`

	// SubjectOrder lists the subjects with statistics, in source column
	// order. Subjects with no attempted scores are absent here and from
	// SubjectStats, and surface as anomalies instead.
	SubjectOrder []string `json:"subject_order"`

	// SubjectStats maps subject name to its aggregate figures.
	SubjectStats map[string]SubjectStats `json:"subject_stats"`

	// DepartmentPassRate is the percentage of all students that passed
	// every subject they attempted. Zero when the table has no rows.
	DepartmentPassRate float64 `json:"department_pass_rate"`

	// OverallTopStudent is rank 1 of RankedStudents, or nil when no
	// student has any attempted score.
	OverallTopStudent *RankedStudent `json:"overall_top_student,omitempty"`

	// RankedStudents orders students by their mean attempted score,
	// descending, ties broken by table order. Students with no attempted
	// scores are excluded entirely.
	RankedStudents []RankedStudent `json:"ranked_students"`

	// StudentsPassedAll counts students whose every attempted score met
	// its threshold; students with no attempted scores never count.
	// StudentsFailedAny is the remainder, TotalStudents - StudentsPassedAll.
	StudentsPassedAll int `json:"students_passed_all"`
	StudentsFailedAny int `json:"students_failed_any"`

	// AverageScore is the mean over the flat pool of every attempted
	// score across all students and subjects, not an average of
	// averages. Zero when the pool is empty.
	AverageScore float64 `json:"average_score"`

	// Anomalies lists the advisory flags raised, in subject table order.
	Anomalies []Anomaly `json:"anomalies,omitempty"`

	// DefaultThreshold and Overrides snapshot the pass policy the
	// report was computed under.
	DefaultThreshold float64            `json:"default_threshold"`
	Overrides        map[string]float64 `json:"overrides,omitempty"`
}
