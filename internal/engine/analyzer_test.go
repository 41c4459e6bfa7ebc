package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradelens/gradelens/internal/domain"
)

// student is a test shorthand for building table rows.
func student(id, name string, scores map[string]float64) domain.Student {
	return domain.Student{ID: id, Name: name, Scores: scores}
}

// TestAnalyzer_SubjectStats verifies per-subject aggregation: attempted
// counts over non-missing scores, pass/fail split at the resolved
// threshold, rates, mean, extremes, and topper selection.
func TestAnalyzer_SubjectStats(t *testing.T) {
	table := &domain.ScoreTable{
		Subjects: []string{"Mathematics", "Physics"},
		Students: []domain.Student{
			student("S1", "Ada", map[string]float64{"Mathematics": 85, "Physics": 60}),
			student("S2", "Ben", map[string]float64{"Mathematics": 40, "Physics": 30}),
			student("S3", "Cleo", map[string]float64{"Physics": 70}),
		},
	}
	policy := domain.NewPassPolicy(40, nil)

	report := NewAnalyzer().Analyze(table, policy)

	require.Equal(t, []string{"Mathematics", "Physics"}, report.SubjectOrder)

	math := report.SubjectStats["Mathematics"]
	assert.Equal(t, 2, math.Attempted)
	// A score exactly at the threshold passes.
	assert.Equal(t, 2, math.Passed)
	assert.Equal(t, 0, math.Failed)
	assert.InDelta(t, 100.0, math.PassRate, 1e-9)
	assert.InDelta(t, 0.0, math.FailRate, 1e-9)
	assert.InDelta(t, 62.5, math.Mean, 1e-9)
	assert.Equal(t, 85.0, math.Max)
	assert.Equal(t, 40.0, math.Min)
	assert.Equal(t, domain.Topper{Name: "Ada", Score: 85}, math.Topper)

	physics := report.SubjectStats["Physics"]
	assert.Equal(t, 3, physics.Attempted)
	assert.Equal(t, 2, physics.Passed)
	assert.Equal(t, 1, physics.Failed)
	assert.InDelta(t, 66.666666, physics.PassRate, 1e-4)
	assert.InDelta(t, 33.333333, physics.FailRate, 1e-4)
	assert.Equal(t, domain.Topper{Name: "Cleo", Score: 70}, physics.Topper)

	// Pass and fail counts always partition the attempted set.
	for _, subject := range report.SubjectOrder {
		stats := report.SubjectStats[subject]
		assert.Equal(t, stats.Attempted, stats.Passed+stats.Failed)
		assert.InDelta(t, 100.0, stats.PassRate+stats.FailRate, 1e-9)
	}
}

// TestAnalyzer_TopperTieKeepsTableOrder verifies that a tie at the
// maximum score is broken by first occurrence in table order.
func TestAnalyzer_TopperTieKeepsTableOrder(t *testing.T) {
	table := &domain.ScoreTable{
		Subjects: []string{"Chemistry"},
		Students: []domain.Student{
			student("S1", "First", map[string]float64{"Chemistry": 91}),
			student("S2", "Second", map[string]float64{"Chemistry": 91}),
		},
	}

	report := NewAnalyzer().Analyze(table, domain.NewPassPolicy(40, nil))

	assert.Equal(t, "First", report.SubjectStats["Chemistry"].Topper.Name)
}

// TestAnalyzer_PerSubjectOverrides verifies that a subject override
// changes that subject's pass split while others keep the default.
func TestAnalyzer_PerSubjectOverrides(t *testing.T) {
	table := &domain.ScoreTable{
		Subjects: []string{"Mathematics", "Physics"},
		Students: []domain.Student{
			student("S1", "Ada", map[string]float64{"Mathematics": 45, "Physics": 45}),
		},
	}
	policy := domain.NewPassPolicy(40, map[string]float64{"Mathematics": 50})

	report := NewAnalyzer().Analyze(table, policy)

	assert.Equal(t, 0, report.SubjectStats["Mathematics"].Passed)
	assert.Equal(t, 50.0, report.SubjectStats["Mathematics"].Threshold)
	assert.Equal(t, 1, report.SubjectStats["Physics"].Passed)
	assert.Equal(t, 40.0, report.SubjectStats["Physics"].Threshold)
}

// TestAnalyzer_PolicyReadPerCall verifies that an override update between
// calls is observed by the next analysis.
func TestAnalyzer_PolicyReadPerCall(t *testing.T) {
	table := &domain.ScoreTable{
		Subjects: []string{"Mathematics"},
		Students: []domain.Student{
			student("S1", "Ada", map[string]float64{"Mathematics": 45}),
		},
	}
	policy := domain.NewPassPolicy(40, nil)
	analyzer := NewAnalyzer()

	before := analyzer.Analyze(table, policy)
	assert.Equal(t, 1, before.SubjectStats["Mathematics"].Passed)

	policy.SetOverrides(map[string]float64{"Mathematics": 60})

	after := analyzer.Analyze(table, policy)
	assert.Equal(t, 0, after.SubjectStats["Mathematics"].Passed)
}

// TestAnalyzer_DepartmentAggregates verifies the passed-all predicate
// over attempted scores, the failed-any remainder, and the department
// pass rate arithmetic.
func TestAnalyzer_DepartmentAggregates(t *testing.T) {
	table := &domain.ScoreTable{
		Subjects: []string{"Mathematics", "Physics"},
		Students: []domain.Student{
			// Passes both attempted subjects.
			student("S1", "Ada", map[string]float64{"Mathematics": 85, "Physics": 60}),
			// Fails Physics.
			student("S2", "Ben", map[string]float64{"Mathematics": 50, "Physics": 30}),
			// Missing Mathematics entirely; the attempted Physics score
			// passes, so the student counts as passed-all.
			student("S3", "Cleo", map[string]float64{"Physics": 70}),
			// No scores at all: never passed-all.
			student("S4", "Dov", map[string]float64{}),
		},
	}

	report := NewAnalyzer().Analyze(table, domain.NewPassPolicy(40, nil))

	assert.Equal(t, 2, report.StudentsPassedAll)
	assert.Equal(t, 2, report.StudentsFailedAny)
	assert.Equal(t, report.TotalStudents, report.StudentsPassedAll+report.StudentsFailedAny)
	assert.InDelta(t, 50.0, report.DepartmentPassRate, 1e-9)
}

// TestAnalyzer_Ranking verifies descending order by per-student mean,
// stable tie-breaking on table order, and exclusion of students with no
// attempted scores.
func TestAnalyzer_Ranking(t *testing.T) {
	table := &domain.ScoreTable{
		Subjects: []string{"Mathematics", "Physics"},
		Students: []domain.Student{
			student("S1", "Ada", map[string]float64{"Mathematics": 70, "Physics": 70}),  // mean 70
			student("S2", "Ben", map[string]float64{"Mathematics": 90}),                 // mean 90
			student("S3", "Cleo", map[string]float64{"Mathematics": 60, "Physics": 80}), // mean 70, ties Ada
			student("S4", "Dov", map[string]float64{}),                                  // unranked
		},
	}

	report := NewAnalyzer().Analyze(table, domain.NewPassPolicy(40, nil))

	require.Len(t, report.RankedStudents, 3)
	assert.Equal(t, "S2", report.RankedStudents[0].ID)
	// Ada precedes Cleo: identical means keep table order.
	assert.Equal(t, "S1", report.RankedStudents[1].ID)
	assert.Equal(t, "S3", report.RankedStudents[2].ID)

	require.NotNil(t, report.OverallTopStudent)
	assert.Equal(t, "Ben", report.OverallTopStudent.Name)
	assert.InDelta(t, 90.0, report.OverallTopStudent.Mean, 1e-9)
	assert.Equal(t, 1, report.OverallTopStudent.SubjectsTaken)
}

// TestAnalyzer_PooledAverage verifies the flat-pool average: every
// attempted score weighs equally, regardless of subject.
func TestAnalyzer_PooledAverage(t *testing.T) {
	table := &domain.ScoreTable{
		Subjects: []string{"Mathematics", "Physics"},
		Students: []domain.Student{
			student("S1", "Ada", map[string]float64{"Mathematics": 100, "Physics": 50}),
			student("S2", "Ben", map[string]float64{"Physics": 50}),
		},
	}

	report := NewAnalyzer().Analyze(table, domain.NewPassPolicy(40, nil))

	// (100 + 50 + 50) / 3, not the average of subject means.
	assert.InDelta(t, 66.666666, report.AverageScore, 1e-4)
}

// TestAnalyzer_EmptyTable verifies the engine is total over the
// fully-empty case: all counts and rates zero, no crash.
func TestAnalyzer_EmptyTable(t *testing.T) {
	report := NewAnalyzer().Analyze(&domain.ScoreTable{}, domain.NewPassPolicy(40, nil))

	assert.Equal(t, 0, report.TotalStudents)
	assert.Equal(t, 0, report.TotalSubjects)
	assert.Zero(t, report.DepartmentPassRate)
	assert.Zero(t, report.AverageScore)
	assert.Empty(t, report.SubjectStats)
	assert.Empty(t, report.RankedStudents)
	assert.Nil(t, report.OverallTopStudent)
	assert.Empty(t, report.Anomalies)
}

// TestAnalyzer_SubjectsWithoutRows verifies that a table with subject
// columns but zero students yields an empty_subject anomaly per subject
// and no statistics entries.
func TestAnalyzer_SubjectsWithoutRows(t *testing.T) {
	table := &domain.ScoreTable{Subjects: []string{"Mathematics", "Physics"}}

	report := NewAnalyzer().Analyze(table, domain.NewPassPolicy(40, nil))

	assert.Equal(t, 2, report.TotalSubjects)
	assert.Empty(t, report.SubjectStats)
	require.Len(t, report.Anomalies, 2)
	assert.Equal(t, domain.AnomalyEmptySubject, report.Anomalies[0].Kind)
	assert.Equal(t, "Mathematics", report.Anomalies[0].Subject)
	assert.Equal(t, domain.AnomalyEmptySubject, report.Anomalies[1].Kind)
	assert.Equal(t, "Physics", report.Anomalies[1].Subject)
}

// TestAnalyzer_Idempotence verifies that two runs over the same table
// and policy produce identical analytical content. Report identity (the
// UUID and timestamp) is generated per run and excluded.
func TestAnalyzer_Idempotence(t *testing.T) {
	table := &domain.ScoreTable{
		Subjects: []string{"Mathematics", "Physics"},
		Students: []domain.Student{
			student("S1", "Ada", map[string]float64{"Mathematics": 85, "Physics": 60}),
			student("S2", "Ben", map[string]float64{"Mathematics": 40}),
		},
	}
	policy := domain.NewPassPolicy(40, map[string]float64{"Physics": 50})
	analyzer := NewAnalyzer()

	first := analyzer.Analyze(table, policy)
	second := analyzer.Analyze(table, policy)

	assert.NotEqual(t, first.ID, second.ID)

	first.ID, second.ID = "", ""
	first.GeneratedAt = second.GeneratedAt
	assert.Equal(t, first, second)
}

// TestAnalyzer_ReportDetachedFromTable verifies the report keeps no
// reference back to the table: mutating the table afterwards does not
// change the report.
func TestAnalyzer_ReportDetachedFromTable(t *testing.T) {
	table := &domain.ScoreTable{
		Subjects: []string{"Mathematics"},
		Students: []domain.Student{
			student("S1", "Ada", map[string]float64{"Mathematics": 85}),
		},
	}

	report := NewAnalyzer().Analyze(table, domain.NewPassPolicy(40, nil))
	table.Students[0].Scores["Mathematics"] = 10
	table.Students[0].Name = "Changed"

	assert.Equal(t, 85.0, report.SubjectStats["Mathematics"].Max)
	assert.Equal(t, "Ada", report.SubjectStats["Mathematics"].Topper.Name)
}
