package export

import (
	"bytes"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradelens/gradelens/internal/domain"
	"github.com/gradelens/gradelens/internal/engine"
)

// TestWritePDF verifies the renderer produces a well-formed document.
func TestWritePDF(t *testing.T) {
	report, table := fixtureReport(t)
	data := Assemble(report, table, Options{DecimalPlaces: 2})

	var buf bytes.Buffer
	require.NoError(t, WritePDF(data, report, &buf))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")), "output is not a PDF")
	assert.Greater(t, buf.Len(), 1000)
}

// TestChartRenderers verifies every chart kind draws without error on
// populated data and reports an error on data it cannot draw, so the
// placeholder path engages instead of producing a misleading empty
// chart.
func TestChartRenderers(t *testing.T) {
	report, table := fixtureReport(t)
	data := Assemble(report, table, Options{DecimalPlaces: 2})

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	assert.NoError(t, drawPassRateChart(pdf, report))
	assert.NoError(t, drawScoreDistributionChart(pdf, data))
	assert.NoError(t, drawPassFailChart(pdf, report))
	assert.NoError(t, drawScoreRangeChart(pdf, report))
	assert.NoError(t, drawDepartmentPieChart(pdf, report))
	assert.False(t, pdf.Err())
}

func TestChartRenderers_NoData(t *testing.T) {
	table := &domain.ScoreTable{}
	report := engine.NewAnalyzer().Analyze(table, domain.NewPassPolicy(40, nil))
	data := Assemble(report, table, Options{DecimalPlaces: 2})

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	assert.Error(t, drawPassRateChart(pdf, report))
	assert.Error(t, drawScoreDistributionChart(pdf, data))
	assert.Error(t, drawPassFailChart(pdf, report))
	assert.Error(t, drawScoreRangeChart(pdf, report))
	assert.Error(t, drawDepartmentPieChart(pdf, report))
}

// TestWritePDF_NoSubjects verifies charts degrade to a placeholder
// instead of aborting the document when there is nothing to draw.
func TestWritePDF_NoSubjects(t *testing.T) {
	table := &domain.ScoreTable{}
	report := engine.NewAnalyzer().Analyze(table, domain.NewPassPolicy(40, nil))
	data := Assemble(report, table, Options{DecimalPlaces: 2})

	var buf bytes.Buffer
	require.NoError(t, WritePDF(data, report, &buf))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
