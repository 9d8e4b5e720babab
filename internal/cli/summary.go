package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sartorproj/gostl/pipeline"
	"github.com/sartorproj/gostl/regression"
	"github.com/sartorproj/gostl/stl"
)

// Theme holds the color scheme for summary tables.
type Theme struct {
	Header lipgloss.Color
	Border lipgloss.Color
	Title  lipgloss.Color
	Warn   lipgloss.Color
}

var defaultTheme = Theme{
	Header: lipgloss.Color("#5FAFD7"), // light blue
	Border: lipgloss.Color("#6C6C6C"), // dim gray
	Title:  lipgloss.Color("#00D787"), // green
	Warn:   lipgloss.Color("#FF005F"), // red
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Title).Bold(true)
}

func (t Theme) warnStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Warn).Italic(true)
}

func (t Theme) newTable(headers ...string) *table.Table {
	header := lipgloss.NewStyle().Foreground(t.Header).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(t.Border)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}

func format(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return fmt.Sprintf("%.4f", v)
}

func formatP(p float64) string {
	switch {
	case math.IsNaN(p):
		return "NA"
	case p < 1e-4:
		return "<1e-4"
	}
	return fmt.Sprintf("%.4f", p)
}

// stars returns the conventional significance code of a p-value.
func stars(p float64) string {
	switch {
	case math.IsNaN(p):
		return ""
	case p < 0.001:
		return "***"
	case p < 0.01:
		return "**"
	case p < 0.05:
		return "*"
	case p < 0.1:
		return "."
	}
	return ""
}

func renderDecomposition(res *stl.Result, s stl.Strength) string {
	window := "periodic"
	if !res.Periodic {
		window = fmt.Sprint(res.Config.SeasonalWindow)
	}
	t := defaultTheme.newTable("Decomposition", "Value").Rows(
		[]string{"Series", res.Data.Name},
		[]string{"Observations", fmt.Sprint(res.Data.Len())},
		[]string{"Period", fmt.Sprint(res.Period)},
		[]string{"Seasonal window", window},
		[]string{"Trend window", fmt.Sprint(res.Config.TrendWindow)},
		[]string{"Robust", fmt.Sprint(res.Config.Robust)},
		[]string{"Iterations", fmt.Sprint(res.Iterations)},
		[]string{"Trend strength", format(s.Trend)},
		[]string{"Seasonal strength", format(s.Seasonal)},
	)

	out := t.String()
	if !res.Converged {
		out += "\n" + defaultTheme.warnStyle().Render("decomposition stopped before converging")
	}
	return out
}

func renderCoefficients(m *regression.Model) string {
	t := defaultTheme.newTable("Term", "Estimate", "Std. Error", "t value", "Pr(>|t|)", "")
	for _, c := range m.Coefficients() {
		t.Row(c.Term, format(c.Estimate), format(c.StdError), format(c.TValue), formatP(c.PValue), stars(c.PValue))
	}
	return t.String()
}

func renderFit(m *regression.Model) string {
	s := m.Summary()
	rows := [][]string{
		{"Observations", fmt.Sprint(s.NObs)},
		{"Excluded rows", fmt.Sprint(s.ExcludedRows)},
		{"R-squared", format(s.RSquared)},
		{"Adj. R-squared", format(s.AdjRSquared)},
		{"F-statistic", fmt.Sprintf("%s on %d and %d DF", format(s.FStatistic), s.DFModel, s.DFResidual)},
		{"F p-value", formatP(s.FPValue)},
		{"Residual std. error", format(s.ResidualStdError)},
		{"AIC / BIC", format(s.AIC) + " / " + format(s.BIC)},
		{"Durbin-Watson", format(s.DurbinWatson)},
	}
	if lb := s.LjungBox; lb != nil {
		rows = append(rows, []string{fmt.Sprintf("Ljung-Box (lag %d)", lb.Lags), fmt.Sprintf("Q=%s p=%s", format(lb.Statistic), formatP(lb.PValue))})
	}
	if len(s.Excluded) > 0 {
		rows = append(rows, []string{"Not used", strings.Join(s.Excluded, ", ")})
	}
	return defaultTheme.newTable("Fit", "Value").Rows(rows...).String()
}

func renderRun(out *pipeline.Output) string {
	var b strings.Builder
	b.WriteString(defaultTheme.titleStyle().Render(fmt.Sprintf("Run %s", out.RunID)))
	b.WriteString("\n")
	b.WriteString(renderDecomposition(out.Decomposition, out.Strength))
	b.WriteString("\n")
	b.WriteString(defaultTheme.titleStyle().Render(fmt.Sprintf("%s ~ %s", out.Model.Target, predictorsLabel(out.Model))))
	b.WriteString("\n")
	b.WriteString(renderCoefficients(out.Model))
	b.WriteString("\n")
	b.WriteString(renderFit(out.Model))
	if adf := out.ResidualADF; adf != nil && !adf.IsStationary {
		b.WriteString("\n")
		b.WriteString(defaultTheme.warnStyle().Render(fmt.Sprintf(
			"residuals look non-stationary (ADF %.3f, p=%s): the fit may be spurious", adf.Statistic, formatP(adf.PValue))))
	}
	return b.String()
}

func predictorsLabel(m *regression.Model) string {
	if len(m.Predictors) == 0 {
		return "1"
	}
	return strings.Join(m.Predictors, " + ")
}
