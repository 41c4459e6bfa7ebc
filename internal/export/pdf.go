package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/gradelens/gradelens/internal/domain"
)

// Page geometry for chart drawing, in millimeters.
const (
	chartLeft      = 20.0
	chartWidth     = 170.0
	chartBarHeight = 6.0
	chartGap       = 3.0
)

// WritePDF renders the export assembly as a PDF document: the three
// tables followed by the charts (pass-rate bars, score distribution,
// pass/fail comparison, min/avg/max range, department pie). A chart
// that cannot be drawn degrades to a textual placeholder; it never
// aborts the rest of the document.
func WritePDF(data Data, report *domain.AnalysisReport, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Examination Results Analysis", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Student Examination Results Analysis", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	writePDFTable(pdf, data.Summary)
	writePDFTable(pdf, data.SubjectAnalysis)
	writePDFTable(pdf, data.StudentPerformance)

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 9, "Charts", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	drawChart(pdf, "Subject Pass Rates", func() error {
		return drawPassRateChart(pdf, report)
	})
	drawChart(pdf, "Score Distribution", func() error {
		return drawScoreDistributionChart(pdf, data)
	})
	drawChart(pdf, "Pass/Fail Comparison", func() error {
		return drawPassFailChart(pdf, report)
	})
	drawChart(pdf, "Score Range (Min / Avg / Max)", func() error {
		return drawScoreRangeChart(pdf, report)
	})
	drawChart(pdf, "Department Pass/Fail Split", func() error {
		return drawDepartmentPieChart(pdf, report)
	})

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// writePDFTable renders one flat table as a grid of bordered cells.
// Wide tables compress column widths evenly to fit the page.
func writePDFTable(pdf *fpdf.Fpdf, table Table) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, table.Name, "", 1, "L", false, 0, "")

	colWidth := chartWidth / float64(len(table.Columns))

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 236, 245)
	for _, col := range table.Columns {
		pdf.CellFormat(colWidth, 6, col, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, row := range table.Rows {
		for _, cell := range row {
			pdf.CellFormat(colWidth, 6, cell, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

// drawChart runs a chart renderer, replacing its output with a textual
// placeholder when it fails or panics.
func drawChart(pdf *fpdf.Fpdf, title string, render func() error) {
	if pdf.GetY() > 230 {
		pdf.AddPage()
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("chart renderer panicked: %v", r)
			}
		}()
		return render()
	}()
	if err != nil {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 6, fmt.Sprintf("[chart unavailable: %v]", err), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

// drawPassRateChart draws one horizontal bar per subject, scaled so the
// full chart width represents a 100% pass rate.
func drawPassRateChart(pdf *fpdf.Fpdf, report *domain.AnalysisReport) error {
	if len(report.SubjectOrder) == 0 {
		return fmt.Errorf("no subject data")
	}

	pdf.SetFont("Helvetica", "", 8)
	for _, subject := range report.SubjectOrder {
		stats := report.SubjectStats[subject]
		y := pdf.GetY()

		pdf.CellFormat(40, chartBarHeight, subject, "", 0, "L", false, 0, "")
		barWidth := (chartWidth - 60) * stats.PassRate / 100
		pdf.SetFillColor(46, 204, 113)
		pdf.Rect(chartLeft+40, y, barWidth, chartBarHeight, "F")

		pdf.SetXY(chartLeft+40+barWidth+2, y)
		pdf.CellFormat(20, chartBarHeight, fmt.Sprintf("%.1f%%", stats.PassRate), "", 0, "L", false, 0, "")
		pdf.SetY(y + chartBarHeight + chartGap)
	}
	return nil
}

// drawScoreDistributionChart draws one horizontal bar per score range,
// scaled against the most populated range.
func drawScoreDistributionChart(pdf *fpdf.Fpdf, data Data) error {
	most := 0
	for _, count := range data.ScoreDistribution {
		if count > most {
			most = count
		}
	}
	if most == 0 {
		return fmt.Errorf("no recorded scores")
	}

	pdf.SetFont("Helvetica", "", 8)
	for i, label := range ScoreRangeLabels {
		count := data.ScoreDistribution[i]
		y := pdf.GetY()

		pdf.CellFormat(40, chartBarHeight, label, "", 0, "L", false, 0, "")
		barWidth := (chartWidth - 60) * float64(count) / float64(most)
		pdf.SetFillColor(142, 68, 173)
		pdf.Rect(chartLeft+40, y, barWidth, chartBarHeight, "F")

		pdf.SetXY(chartLeft+40+barWidth+2, y)
		pdf.CellFormat(20, chartBarHeight, fmt.Sprintf("%d", count), "", 0, "L", false, 0, "")
		pdf.SetY(y + chartBarHeight + chartGap)
	}
	return nil
}

// drawPassFailChart draws, per subject, paired bars of passed (green)
// and failed (red) counts on a shared attempted-count scale.
func drawPassFailChart(pdf *fpdf.Fpdf, report *domain.AnalysisReport) error {
	if len(report.SubjectOrder) == 0 {
		return fmt.Errorf("no subject data")
	}

	mostAttempted := 0
	for _, subject := range report.SubjectOrder {
		if stats := report.SubjectStats[subject]; stats.Attempted > mostAttempted {
			mostAttempted = stats.Attempted
		}
	}
	scale := (chartWidth - 60) / float64(mostAttempted)

	pdf.SetFont("Helvetica", "", 8)
	for _, subject := range report.SubjectOrder {
		stats := report.SubjectStats[subject]
		y := pdf.GetY()

		pdf.CellFormat(40, chartBarHeight, subject, "", 0, "L", false, 0, "")

		pdf.SetFillColor(46, 204, 113)
		pdf.Rect(chartLeft+40, y, float64(stats.Passed)*scale, chartBarHeight/2, "F")
		pdf.SetFillColor(231, 76, 60)
		pdf.Rect(chartLeft+40, y+chartBarHeight/2, float64(stats.Failed)*scale, chartBarHeight/2, "F")

		pdf.SetXY(chartLeft+40+float64(stats.Attempted)*scale+2, y)
		pdf.CellFormat(30, chartBarHeight,
			fmt.Sprintf("%d passed / %d failed", stats.Passed, stats.Failed), "", 0, "L", false, 0, "")
		pdf.SetY(y + chartBarHeight + chartGap)
	}
	return nil
}

// drawDepartmentPieChart draws the pass/fail split of the whole cohort
// as a two-slice pie.
func drawDepartmentPieChart(pdf *fpdf.Fpdf, report *domain.AnalysisReport) error {
	if report.TotalStudents == 0 {
		return fmt.Errorf("no student data")
	}

	const radius = 22.0
	cx := chartLeft + 50.0
	cy := pdf.GetY() + radius + 2
	passAngle := 360 * report.DepartmentPassRate / 100

	drawPieSlice(pdf, cx, cy, radius, 0, passAngle, 46, 204, 113)
	drawPieSlice(pdf, cx, cy, radius, passAngle, 360, 231, 76, 60)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(cx+radius+10, cy-chartBarHeight)
	pdf.CellFormat(60, chartBarHeight,
		fmt.Sprintf("Pass: %.1f%%", report.DepartmentPassRate), "", 1, "L", false, 0, "")
	pdf.SetX(cx + radius + 10)
	pdf.CellFormat(60, chartBarHeight,
		fmt.Sprintf("Fail: %.1f%%", 100-report.DepartmentPassRate), "", 1, "L", false, 0, "")
	pdf.SetY(cy + radius + 4)
	return nil
}

// drawPieSlice fills one pie sector. Zero-width slices draw nothing.
func drawPieSlice(pdf *fpdf.Fpdf, cx, cy, r, degStart, degEnd float64, red, green, blue int) {
	if degEnd-degStart <= 0 {
		return
	}
	pdf.SetFillColor(red, green, blue)
	pdf.MoveTo(cx, cy)
	pdf.ArcTo(cx, cy, r, r, 0, degStart, degEnd)
	pdf.ClosePath()
	pdf.DrawPath("F")
}

// drawScoreRangeChart draws, per subject, the min-to-max score span with
// a tick at the mean.
func drawScoreRangeChart(pdf *fpdf.Fpdf, report *domain.AnalysisReport) error {
	if len(report.SubjectOrder) == 0 {
		return fmt.Errorf("no subject data")
	}

	scale := (chartWidth - 60) / 100
	pdf.SetFont("Helvetica", "", 8)
	for _, subject := range report.SubjectOrder {
		stats := report.SubjectStats[subject]
		y := pdf.GetY()

		pdf.CellFormat(40, chartBarHeight, subject, "", 0, "L", false, 0, "")

		spanStart := chartLeft + 40 + stats.Min*scale
		spanWidth := (stats.Max - stats.Min) * scale
		pdf.SetFillColor(52, 152, 219)
		pdf.Rect(spanStart, y+2, spanWidth, chartBarHeight-4, "F")

		// Tick at the mean.
		pdf.SetFillColor(231, 76, 60)
		pdf.Rect(chartLeft+40+stats.Mean*scale, y, 0.8, chartBarHeight, "F")

		pdf.SetXY(chartLeft+40+100*scale+2, y)
		pdf.CellFormat(30, chartBarHeight,
			fmt.Sprintf("%.0f/%.0f/%.0f", stats.Min, stats.Mean, stats.Max), "", 0, "L", false, 0, "")
		pdf.SetY(y + chartBarHeight + chartGap)
	}
	return nil
}
