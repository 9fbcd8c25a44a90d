// Package render serializes a scan result into its presentation formats.
// Rendering is lossless and computes nothing: every number shown comes from
// the result as scored.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentshield/agentshield/internal/engine"
)

// Format names the supported output encodings.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Formats lists the recognized format names.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatMarkdown}
}

var statusTagText = map[engine.Status]string{
	engine.Pass:     "[PASS]",
	engine.Warning:  "[WARN]",
	engine.Critical: "[CRIT]",
}

var statusTagMarkdown = map[engine.Status]string{
	engine.Pass:     "PASS",
	engine.Warning:  "WARN",
	engine.Critical: "CRIT",
}

// Render encodes the result in the named format.
func Render(res *engine.Result, format string) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(res)
	case FormatMarkdown:
		return renderMarkdown(res), nil
	case FormatText, "":
		return renderText(res), nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected one of %s)",
			format, strings.Join(Formats(), ", "))
	}
}

func renderJSON(res *engine.Result) (string, error) {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// findingsByCategory splits the flat finding list per category, preserving
// the result's ordering inside each group.
func findingsByCategory(res *engine.Result) map[engine.Category][]engine.Finding {
	groups := map[engine.Category][]engine.Finding{}
	for _, f := range res.Findings {
		groups[f.Category] = append(groups[f.Category], f)
	}
	return groups
}

func renderText(res *engine.Result) string {
	var b strings.Builder
	rule := strings.Repeat("=", 64)

	fmt.Fprintf(&b, "agent-shield scan  |  framework: %s\n", res.Framework)
	fmt.Fprintf(&b, "Project: %s\n", res.Project)
	b.WriteString(rule + "\n")

	groups := findingsByCategory(res)
	for _, cs := range res.Categories {
		fmt.Fprintf(&b, "\n  %s  (%s/%d)\n", cs.Category, trimFloat(cs.Awarded), cs.Max)
		for _, f := range groups[cs.Category] {
			fmt.Fprintf(&b, "    %s %s\n", statusTagText[f.Status], f.Title)
			fmt.Fprintf(&b, "           %s\n", f.Detail)
			for _, loc := range f.Evidence {
				fmt.Fprintf(&b, "           at %s\n", formatLocation(loc))
			}
			if f.Fix != "" {
				fmt.Fprintf(&b, "           Fix: %s\n", f.Fix)
			}
			if len(f.Citations) > 0 {
				fmt.Fprintf(&b, "           Ref: %s\n", strings.Join(f.Citations, ", "))
			}
		}
	}

	b.WriteString("\n" + rule + "\n")
	fmt.Fprintf(&b, "Score: %s/%d (%s%%)  |  rating: %s  |  passed: %d  warnings: %d  critical: %d\n",
		trimFloat(res.Score), res.MaxScore, trimFloat(res.Percent), res.Rating,
		res.Summary.Passed, res.Summary.Warnings, res.Summary.Critical)
	return b.String()
}

func renderMarkdown(res *engine.Result) string {
	var b strings.Builder

	b.WriteString("# agent-shield scan\n")
	fmt.Fprintf(&b, "**Framework:** %s  \n", res.Framework)
	fmt.Fprintf(&b, "**Project:** `%s`  \n", res.Project)
	fmt.Fprintf(&b, "**Score:** %s/%d (%s%%)  \n", trimFloat(res.Score), res.MaxScore, trimFloat(res.Percent))
	fmt.Fprintf(&b, "**Rating:** %s\n\n", res.Rating)

	groups := findingsByCategory(res)
	for _, cs := range res.Categories {
		fmt.Fprintf(&b, "## %s  (%s/%d)\n\n", cs.Category, trimFloat(cs.Awarded), cs.Max)
		b.WriteString("| Status | Finding | Detail |\n")
		b.WriteString("|--------|---------|--------|\n")
		for _, f := range groups[cs.Category] {
			detail := f.Detail
			if f.Fix != "" {
				detail += " **Fix:** " + f.Fix
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n",
				statusTagMarkdown[f.Status], escapePipes(f.Title), escapePipes(detail))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\n**Total: %s/%d (%s%%)** | passed: %d, warnings: %d, critical: %d\n",
		trimFloat(res.Score), res.MaxScore, trimFloat(res.Percent),
		res.Summary.Passed, res.Summary.Warnings, res.Summary.Critical)
	return b.String()
}

func formatLocation(loc engine.Location) string {
	if loc.Line > 0 {
		return fmt.Sprintf("%s:%d", loc.Path, loc.Line)
	}
	return loc.Path
}

// trimFloat renders whole numbers without a trailing ".0".
func trimFloat(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
