// Package export turns an AnalysisReport into presentation formats:
// flat tables for spreadsheet rendering, a markdown report, an xlsx
// workbook, and a PDF document.
package export

import (
	"fmt"
	"strconv"

	"github.com/gradelens/gradelens/internal/domain"
)

// NotAvailable is the sentinel shown for missing scores and undefined
// per-student aggregates.
const NotAvailable = "N/A"

// Options control formatting of every rendered output. They never affect
// the underlying analysis.
type Options struct {
	// DecimalPlaces is the precision used for rates, means and scores
	// derived from them.
	DecimalPlaces int

	// Anonymize replaces student identities with per-export pseudonyms.
	Anonymize bool

	// TopStudents caps the ranked-students section of rendered reports.
	// Zero means show everyone.
	TopStudents int
}

// fmtFloat renders a float at the configured precision.
func (o Options) fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', o.DecimalPlaces, 64)
}

// Table is one flat, render-ready table: a header row and data rows.
type Table struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ScoreRangeLabels name the fixed buckets of the score distribution,
// lowest first. Bucket edges are inclusive on the upper bound.
var ScoreRangeLabels = [4]string{"0-40", "41-60", "61-80", "81-100"}

// Data is the complete export assembly: the three tables every
// spreadsheet and document consumer renders, plus the capped ranking
// used by terminal and markdown front matter and the pooled score
// distribution used by chart renderers.
type Data struct {
	Summary            Table `json:"summary"`
	SubjectAnalysis    Table `json:"subject_analysis"`
	StudentPerformance Table `json:"student_performance"`
	TopStudents        Table `json:"top_students"`

	// ScoreDistribution counts every attempted score into the ranges
	// of ScoreRangeLabels, pooled across all subjects.
	ScoreDistribution [4]int `json:"score_distribution"`
}

// Assemble flattens a report (plus the source table, for per-row detail)
// into render-ready tables. The transformation is pure serialization:
// no analytical branching happens here.
func Assemble(report *domain.AnalysisReport, table *domain.ScoreTable, opts Options) Data {
	anon := newAnonymizer(opts.Anonymize)
	return Data{
		Summary:            summaryTable(report, opts),
		SubjectAnalysis:    subjectTable(report, opts, anon),
		StudentPerformance: studentTable(report, table, opts, anon),
		TopStudents:        topStudentsTable(report, opts, anon),
		ScoreDistribution:  scoreDistribution(table),
	}
}

// scoreDistribution pools every attempted score into the fixed ranges.
func scoreDistribution(table *domain.ScoreTable) [4]int {
	var counts [4]int
	for _, student := range table.Students {
		for _, subject := range table.Subjects {
			score, ok := student.Score(subject)
			if !ok {
				continue
			}
			switch {
			case score <= 40:
				counts[0]++
			case score <= 60:
				counts[1]++
			case score <= 80:
				counts[2]++
			default:
				counts[3]++
			}
		}
	}
	return counts
}

// summaryTable holds the six fixed metric/value rows.
func summaryTable(report *domain.AnalysisReport, opts Options) Table {
	return Table{
		Name:    "Summary",
		Columns: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total Students", strconv.Itoa(report.TotalStudents)},
			{"Total Subjects", strconv.Itoa(report.TotalSubjects)},
			{"Department Pass Rate (%)", opts.fmtFloat(report.DepartmentPassRate)},
			{"Students Passed All Subjects", strconv.Itoa(report.StudentsPassedAll)},
			{"Students Failed At Least One Subject", strconv.Itoa(report.StudentsFailedAny)},
			{"Average Score Across All Subjects (%)", opts.fmtFloat(report.AverageScore)},
		},
	}
}

// subjectTable has one row per non-empty subject in table order.
func subjectTable(report *domain.AnalysisReport, opts Options, anon *anonymizer) Table {
	t := Table{
		Name: "Subject Analysis",
		Columns: []string{
			"Subject", "Students", "Passed", "Failed",
			"Pass Rate (%)", "Fail Rate (%)",
			"Average Score", "Highest Score", "Lowest Score", "Topper",
		},
	}
	for _, subject := range report.SubjectOrder {
		stats := report.SubjectStats[subject]
		t.Rows = append(t.Rows, []string{
			subject,
			strconv.Itoa(stats.Attempted),
			strconv.Itoa(stats.Passed),
			strconv.Itoa(stats.Failed),
			opts.fmtFloat(stats.PassRate),
			opts.fmtFloat(stats.FailRate),
			opts.fmtFloat(stats.Mean),
			opts.fmtFloat(stats.Max),
			opts.fmtFloat(stats.Min),
			anon.label(stats.Topper.Name),
		})
	}
	return t
}

// studentTable has one row per student in table order: identity, every
// subject score (missing as N/A), the student's mean, and the pass-all
// verdict.
func studentTable(report *domain.AnalysisReport, table *domain.ScoreTable, opts Options, anon *anonymizer) Table {
	t := Table{
		Name:    "Student Performance",
		Columns: append([]string{"Student_ID", "Student_Name"}, table.Subjects...),
	}
	t.Columns = append(t.Columns, "Average Score", "Passed All Subjects")

	ranked := make(map[string]domain.RankedStudent, len(report.RankedStudents))
	for _, r := range report.RankedStudents {
		ranked[r.ID] = r
	}

	for _, student := range table.Students {
		row := []string{anon.label(student.ID), anon.label(student.Name)}
		for _, subject := range table.Subjects {
			if score, ok := student.Score(subject); ok {
				row = append(row, strconv.FormatFloat(score, 'f', -1, 64))
			} else {
				row = append(row, NotAvailable)
			}
		}

		if r, ok := ranked[student.ID]; ok {
			row = append(row, opts.fmtFloat(r.Mean))
			if r.PassedAll {
				row = append(row, "Yes")
			} else {
				row = append(row, "No")
			}
		} else {
			// No attempted scores: mean and verdict are undefined.
			row = append(row, NotAvailable, NotAvailable)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// topStudentsTable has one row per ranked student, best first, capped at
// opts.TopStudents. Students with no attempted scores never appear.
func topStudentsTable(report *domain.AnalysisReport, opts Options, anon *anonymizer) Table {
	t := Table{
		Name:    "Top Students",
		Columns: []string{"Rank", "Student", "Average Score", "Passed All Subjects"},
	}
	for i, r := range report.RankedStudents {
		if opts.TopStudents > 0 && i >= opts.TopStudents {
			break
		}
		verdict := "No"
		if r.PassedAll {
			verdict = "Yes"
		}
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			anon.label(r.Name),
			opts.fmtFloat(r.Mean),
			verdict,
		})
	}
	return t
}

// anonymizer assigns deterministic pseudonymous labels for one export.
// The same input value always maps to the same label within the export;
// the mapping is rebuilt per export and is not stable across exports.
type anonymizer struct {
	enabled bool
	labels  map[string]string
}

func newAnonymizer(enabled bool) *anonymizer {
	return &anonymizer{enabled: enabled, labels: make(map[string]string)}
}

// label returns the pseudonym for value, assigning one on first sight.
// Empty values pass through untouched.
func (a *anonymizer) label(value string) string {
	if !a.enabled || value == "" {
		return value
	}
	if l, ok := a.labels[value]; ok {
		return l
	}
	l := fmt.Sprintf("Student_%04d", len(a.labels)+1)
	a.labels[value] = l
	return l
}
