package export

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gradelens/gradelens/internal/domain"
)

// Department and subject pass-rate levels that trigger recommendations.
const (
	criticalDeptRate    = 50.0
	improvableDeptRate  = 70.0
	criticalSubjectRate = 40.0
	weakSubjectRate     = 60.0
	failedShareConcern  = 0.3
)

var titleCaser = cases.Title(language.English)

// Markdown renders the full analysis report as markdown text. Section
// order is fixed: executive summary, department performance, top
// performer, subject table, detailed per-subject sections, top-students
// table, anomalies, recommendations.
func Markdown(report *domain.AnalysisReport, opts Options) string {
	anon := newAnonymizer(opts.Anonymize)
	var b strings.Builder

	b.WriteString("# Student Examination Results Analysis Report\n\n")

	b.WriteString("## Executive Summary\n\n")
	fmt.Fprintf(&b, "**Total Students Analyzed:** %d\n", report.TotalStudents)
	fmt.Fprintf(&b, "**Total Subjects:** %d\n", report.TotalSubjects)
	fmt.Fprintf(&b, "**Department Pass Rate:** %s%%\n", opts.fmtFloat(report.DepartmentPassRate))
	fmt.Fprintf(&b, "**Pass Criteria:** %g%% minimum per subject\n\n", report.DefaultThreshold)

	b.WriteString("### Department Performance\n\n")
	fmt.Fprintf(&b, "- **%d** students passed all subjects\n", report.StudentsPassedAll)
	fmt.Fprintf(&b, "- **%d** students failed at least one subject\n", report.StudentsFailedAny)
	fmt.Fprintf(&b, "- **Average score across all subjects:** %s%%\n\n", opts.fmtFloat(report.AverageScore))

	if report.OverallTopStudent != nil {
		top := report.OverallTopStudent
		b.WriteString("### Overall Top Performer\n\n")
		fmt.Fprintf(&b, "**%s** with an average score of **%s%%**\n\n",
			anon.label(top.Name), opts.fmtFloat(top.Mean))
	}

	writeSubjectSections(&b, report, opts, anon)
	writeTopStudents(&b, report, opts, anon)
	writeAnomalies(&b, report)
	writeRecommendations(&b, report)

	b.WriteString("---\n")
	b.WriteString("*This report was generated automatically by gradelens.*\n")
	return b.String()
}

func writeSubjectSections(b *strings.Builder, report *domain.AnalysisReport, opts Options, anon *anonymizer) {
	b.WriteString("## Subject-wise Analysis\n\n")
	b.WriteString("### Subject Performance Summary\n\n")
	b.WriteString("| Subject | Students | Pass Rate | Fail Rate | Avg Score | Highest | Topper |\n")
	b.WriteString("|---------|----------|-----------|-----------|-----------|---------|--------|\n")
	for _, subject := range report.SubjectOrder {
		stats := report.SubjectStats[subject]
		fmt.Fprintf(b, "| %s | %d | %s%% | %s%% | %s | %s | %s |\n",
			subject, stats.Attempted,
			opts.fmtFloat(stats.PassRate), opts.fmtFloat(stats.FailRate),
			opts.fmtFloat(stats.Mean), opts.fmtFloat(stats.Max),
			anon.label(stats.Topper.Name))
	}
	b.WriteString("\n### Detailed Subject Analysis\n\n")
	for _, subject := range report.SubjectOrder {
		stats := report.SubjectStats[subject]
		fmt.Fprintf(b, "#### %s\n", subject)
		fmt.Fprintf(b, "- **Total Students:** %d\n", stats.Attempted)
		fmt.Fprintf(b, "- **Passed:** %d (%s%%)\n", stats.Passed, opts.fmtFloat(stats.PassRate))
		fmt.Fprintf(b, "- **Failed:** %d (%s%%)\n", stats.Failed, opts.fmtFloat(stats.FailRate))
		fmt.Fprintf(b, "- **Average Score:** %s\n", opts.fmtFloat(stats.Mean))
		fmt.Fprintf(b, "- **Score Range:** %s - %s\n", opts.fmtFloat(stats.Min), opts.fmtFloat(stats.Max))
		fmt.Fprintf(b, "- **Pass Threshold:** %g\n", stats.Threshold)
		fmt.Fprintf(b, "- **Top Performer:** %s (%s%%)\n\n",
			anon.label(stats.Topper.Name), opts.fmtFloat(stats.Topper.Score))
	}
}

func writeTopStudents(b *strings.Builder, report *domain.AnalysisReport, opts Options, anon *anonymizer) {
	b.WriteString("## Top Performing Students\n\n")

	top := report.RankedStudents
	if opts.TopStudents > 0 && len(top) > opts.TopStudents {
		top = top[:opts.TopStudents]
	}
	if len(top) == 0 {
		b.WriteString("No students with recorded scores.\n\n")
		return
	}

	b.WriteString("| Rank | Student | Average Score |\n")
	b.WriteString("|------|---------|---------------|\n")
	for i, student := range top {
		fmt.Fprintf(b, "| %d | %s | %s%% |\n", i+1, anon.label(student.Name), opts.fmtFloat(student.Mean))
	}
	b.WriteString("\n")
}

func writeAnomalies(b *strings.Builder, report *domain.AnalysisReport) {
	if len(report.Anomalies) == 0 {
		return
	}
	b.WriteString("## Anomalies and Concerns\n\n")
	for _, a := range report.Anomalies {
		fmt.Fprintf(b, "- **%s:** %s\n", HumanizeKind(a.Kind), a.Description)
	}
	b.WriteString("\n")
}

func writeRecommendations(b *strings.Builder, report *domain.AnalysisReport) {
	b.WriteString("## Recommendations\n\n")
	for _, r := range Recommendations(report) {
		fmt.Fprintf(b, "- %s\n", r)
	}
	b.WriteString("\n")
}

// HumanizeKind renders an anomaly kind tag as a title-cased phrase,
// e.g. "excessive_perfect_scores" becomes "Excessive Perfect Scores".
func HumanizeKind(kind domain.AnomalyKind) string {
	return titleCaser.String(strings.ReplaceAll(string(kind), "_", " "))
}

// Recommendations derives advisory follow-ups from the report figures:
// department and subject pass-rate levels, the share of students failing
// at least one subject, and the anomaly flags.
func Recommendations(report *domain.AnalysisReport) []string {
	var recs []string

	switch {
	case report.DepartmentPassRate < criticalDeptRate:
		recs = append(recs,
			"**Critical:** Department pass rate is below 50%. Consider reviewing curriculum and teaching methods.")
	case report.DepartmentPassRate < improvableDeptRate:
		recs = append(recs,
			"Department pass rate needs improvement. Focus on identifying struggling students early.")
	}

	for _, subject := range report.SubjectOrder {
		stats := report.SubjectStats[subject]
		switch {
		case stats.PassRate < criticalSubjectRate:
			recs = append(recs, fmt.Sprintf(
				"**%s:** Very low pass rate (%.1f%%). Consider additional support or curriculum review.",
				subject, stats.PassRate))
		case stats.PassRate < weakSubjectRate:
			recs = append(recs, fmt.Sprintf(
				"**%s:** Below-average performance. Consider targeted interventions.", subject))
		}
	}

	if float64(report.StudentsFailedAny) > float64(report.TotalStudents)*failedShareConcern {
		recs = append(recs,
			"High number of students failing subjects. Consider implementing peer tutoring or additional support systems.")
	}

	for _, a := range report.Anomalies {
		switch a.Kind {
		case domain.AnomalyZeroScores:
			recs = append(recs, fmt.Sprintf(
				"Investigate zero scores in %s. May indicate attendance or assessment issues.", a.Subject))
		case domain.AnomalyExcessivePerfectScores:
			recs = append(recs, fmt.Sprintf(
				"Review assessment difficulty in %s due to high number of perfect scores.", a.Subject))
		}
	}

	if len(recs) == 0 {
		recs = append(recs,
			"Overall performance is satisfactory. Continue monitoring and supporting student progress.")
	}
	recs = append(recs,
		"Regular monitoring and early intervention for at-risk students is recommended.",
		"Consider subject-wise faculty meetings to discuss improvement strategies.")
	return recs
}
