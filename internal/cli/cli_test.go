package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("GOSTL_LOG_FILE", "")
	t.Setenv("GOSTL_LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// writeCSV writes a quarterly CSV starting at startYear with the given header.
func writeCSV(t *testing.T, dir, name, header string, startYear int, values []float64) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("date," + header + "\n")
	for i, v := range values {
		label := fmt.Sprintf("%dQ%d", startYear+i/4, i%4+1)
		if math.IsNaN(v) {
			b.WriteString(label + ",NA\n")
			continue
		}
		fmt.Fprintf(&b, "%s,%g\n", label, v)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func gdpValues(n int) []float64 {
	pattern := []float64{3, -1, -4, 2}
	values := make([]float64, n)
	for i := range values {
		values[i] = 100 + 0.5*float64(i) + pattern[i%4] + float64(i%5-2)/5
	}
	return values
}

func TestNumberMarshalsNaNAsNull(t *testing.T) {
	data, err := json.Marshal([]number{1.5, number(math.NaN()), number(math.Inf(1))})
	require.NoError(t, err)
	assert.Equal(t, "[1.5,null,null]", string(data))
}

func TestParseWindow(t *testing.T) {
	w, err := parseWindow("periodic")
	require.NoError(t, err)
	assert.Equal(t, 0, w)

	w, err = parseWindow("7")
	require.NoError(t, err)
	assert.Equal(t, 7, w)

	for _, bad := range []string{"6", "1", "weekly"} {
		_, err := parseWindow(bad)
		assert.Error(t, err, bad)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, Version)
}

func TestDecomposeCommand(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, "gdp.csv", "gdp", 2000, gdpValues(24))
	outPath := filepath.Join(dir, "gdp.json")

	stdout, _, err := execute(t, "decompose", csvPath, "--value-column", "gdp", "--output", outPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Seasonal strength")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var report struct {
		Period    int  `json:"period"`
		Periodic  bool `json:"periodic"`
		Converged bool `json:"converged"`
		Seasonal  struct {
			Name   string    `json:"name"`
			Dates  []string  `json:"dates"`
			Values []float64 `json:"values"`
		} `json:"seasonal"`
		Random struct {
			Name string `json:"name"`
		} `json:"random"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 4, report.Period)
	assert.True(t, report.Periodic)
	assert.True(t, report.Converged)
	assert.Equal(t, "gdp_seasonal", report.Seasonal.Name)
	assert.Len(t, report.Seasonal.Values, 24)
	assert.Equal(t, "2000-01-01", report.Seasonal.Dates[0])
	assert.Equal(t, "gdp_random", report.Random.Name)
}

func TestDecomposeCommandToStdout(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, "gdp.csv", "gdp", 2000, gdpValues(16))

	stdout, stderr, err := execute(t, "decompose", csvPath, "--value-column", "gdp", "--output", "-")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &report), "stdout must hold only the JSON report")
	assert.Contains(t, stderr, "Trend strength")
}

func TestDecomposeCommandErrors(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, "gdp.csv", "gdp", 2000, gdpValues(6))

	_, _, err := execute(t, "decompose", csvPath, "--value-column", "gdp", "--output", "-")
	assert.ErrorContains(t, err, "insufficient data")

	_, _, err = execute(t, "decompose", csvPath, "--value-column", "gdp", "--seasonal-window", "4")
	assert.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "gdp.csv", "gdp", 2000, gdpValues(40))

	oil := make([]float64, 44)
	for i := range oil {
		oil[i] = 60 + 3*float64((i*5)%11)
	}
	writeCSV(t, dir, "oil.csv", "brent", 1999, oil)

	rates := make([]float64, 40)
	for i := range rates {
		rates[i] = 2 + 0.1*float64((i*3)%8)
	}
	rates[17] = math.NaN()
	writeCSV(t, dir, "rates.csv", "rates", 2000, rates)

	run := `
target:
  file: gdp.csv
  value_column: gdp
drivers:
  - file: oil.csv
    value_column: brent
    name: oil
  - file: rates.csv
    value_column: rates
frequency: 4
predictors: all_other_numeric
output: report.json
`
	runPath := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(runPath, []byte(run), 0o644))
	t.Chdir(dir)

	stdout, _, err := execute(t, "run", runPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "gdp ~ oil + rates")
	assert.Contains(t, stdout, "(Intercept)")

	data, err := os.ReadFile(filepath.Join(dir, "report.json"))
	require.NoError(t, err)
	var report struct {
		RunID   string   `json:"run_id"`
		Primary string   `json:"primary"`
		Rows    int      `json:"rows"`
		Columns []string `json:"columns"`
		Model   struct {
			Predictors    []string `json:"predictors"`
			NObs          int      `json:"n_obs"`
			ExcludedRows  int      `json:"excluded_rows"`
			ExcludedDates []string `json:"excluded_dates"`
			Coefficients  []struct {
				Term string `json:"term"`
			} `json:"coefficients"`
		} `json:"model"`
	}
	require.NoError(t, json.Unmarshal(data, &report))

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "oil", report.Primary)
	assert.Equal(t, 44, report.Rows)
	assert.Equal(t, []string{"oil", "rates"}, report.Model.Predictors)
	assert.Equal(t, 39, report.Model.NObs)
	assert.Equal(t, 5, report.Model.ExcludedRows)
	assert.Contains(t, report.Model.ExcludedDates, "2004-04-01")
	assert.Len(t, report.Model.Coefficients, 3)
}

func TestRunCommandMissingFile(t *testing.T) {
	_, _, err := execute(t, "run", filepath.Join(t.TempDir(), "run.yaml"))
	assert.Error(t, err)
}
