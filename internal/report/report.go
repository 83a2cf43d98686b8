// Package report renders scenario results for terminals and machines.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/gnolang/specobj/internal/scenario"
	"github.com/gnolang/specobj/internal/speclogic"
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	okStyle      = color.New(color.FgGreen, color.Bold)
	nameStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
)

// SetColor enables or disables colored output.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

// FormatResults renders every result followed by a one-line summary.
func FormatResults(results []scenario.Result) string {
	var builder strings.Builder
	failed := 0
	for _, res := range results {
		if res.Failed() {
			failed++
		}
		builder.WriteString(FormatResult(res))
	}
	builder.WriteString(formatSummary(len(results), failed))
	return builder.String()
}

// FormatResult renders one scenario result.
func FormatResult(res scenario.Result) string {
	var builder strings.Builder
	builder.WriteString(formatHeader(res))

	if res.Err != nil {
		builder.WriteString(lineStyle.Sprint("  | "))
		builder.WriteString(messageStyle.Sprintf("%s\n", res.Err))
	}
	for _, v := range res.Violations {
		builder.WriteString(formatViolation(v))
	}
	for _, m := range res.Mismatches {
		builder.WriteString(lineStyle.Sprintf("  | call %d ", m.Index))
		builder.WriteString(messageStyle.Sprintf("%s returned %s, expected %s\n",
			m.Method, speclogic.Lift(m.Got), speclogic.Lift(m.Want)))
	}
	builder.WriteString("\n")
	return builder.String()
}

func formatHeader(res scenario.Result) string {
	status := okStyle.Sprint("ok: ")
	if res.Failed() {
		status = errorStyle.Sprint("error: ")
	}
	header := status + nameStyle.Sprint(res.Name) + fmt.Sprintf(" (%d calls)\n", res.Calls)
	if res.Path != "" {
		header += lineStyle.Sprint(" --> ") + fileStyle.Sprint(res.Path) + "\n"
	}
	return header
}

func formatViolation(v *speclogic.ViolationError) string {
	var result strings.Builder

	call := speclogic.Call{Method: v.Method, Args: v.Args, Result: v.Result}
	result.WriteString(lineStyle.Sprintf("  | call %d ", v.Index))
	result.WriteString(formatCall(call))
	result.WriteString(messageStyle.Sprintf("  %s\n", v.Verdict))

	for _, line := range strings.Split(speclogic.Pretty(v.Residual), "\n") {
		result.WriteString(lineStyle.Sprint("  | "))
		result.WriteString(line + "\n")
	}
	return result.String()
}

func formatCall(c speclogic.Call) string {
	args := make([]string, len(c.Args))
	for i, arg := range c.Args {
		args[i] = speclogic.Lift(arg).String()
	}
	return fmt.Sprintf("%s(%s) -> %s", c.Method, strings.Join(args, ", "), speclogic.Lift(c.Result))
}

func formatSummary(total, failed int) string {
	if failed == 0 {
		return okStyle.Sprintf("%d scenarios, all behaviors hold\n", total)
	}
	return errorStyle.Sprintf("%d scenarios, %d failed\n", total, failed)
}

type jsonViolation struct {
	Index    int    `json:"index"`
	Method   string `json:"method"`
	Args     []any  `json:"args"`
	Result   any    `json:"result"`
	Verdict  string `json:"verdict"`
	Residual string `json:"residual"`
}

type jsonMismatch struct {
	Index  int    `json:"index"`
	Method string `json:"method"`
	Want   string `json:"want"`
	Got    string `json:"got"`
}

type jsonResult struct {
	Name       string          `json:"name"`
	Path       string          `json:"path,omitempty"`
	Calls      int             `json:"calls"`
	Failed     bool            `json:"failed"`
	Error      string          `json:"error,omitempty"`
	Violations []jsonViolation `json:"violations,omitempty"`
	Mismatches []jsonMismatch  `json:"mismatches,omitempty"`
}

// FormatJSON renders results as a JSON array.
func FormatJSON(results []scenario.Result) ([]byte, error) {
	out := make([]jsonResult, len(results))
	for i, res := range results {
		jr := jsonResult{
			Name:   res.Name,
			Path:   res.Path,
			Calls:  res.Calls,
			Failed: res.Failed(),
		}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		for _, v := range res.Violations {
			jr.Violations = append(jr.Violations, jsonViolation{
				Index:    v.Index,
				Method:   v.Method,
				Args:     v.Args,
				Result:   v.Result,
				Verdict:  v.Verdict.String(),
				Residual: v.Residual.String(),
			})
		}
		for _, m := range res.Mismatches {
			jr.Mismatches = append(jr.Mismatches, jsonMismatch{
				Index:  m.Index,
				Method: m.Method,
				Want:   speclogic.Lift(m.Want).String(),
				Got:    speclogic.Lift(m.Got).String(),
			})
		}
		out[i] = jr
	}
	return json.Marshal(out)
}
