package rules

import (
	"fmt"
	"strings"

	"github.com/agentshield/agentshield/internal/engine"
	"github.com/agentshield/agentshield/internal/snapshot"
)

// minDocBytes separates a real document from a placeholder. A README that
// is a bare title line earns no documentation credit.
const minDocBytes = 64

var standardDocs = []string{"readme.md", "contributing.md", "changelog.md", "license"}

var governanceDocs = map[string]string{
	"model-card.md":        "Model card",
	"model_card.md":        "Model card",
	"system-card.md":       "System card",
	"data-sheet.md":        "Data sheet",
	"risk-assessment.md":   "Risk assessment",
	"risk_assessment.md":   "Risk assessment",
	"impact-assessment.md": "Impact assessment",
	"dpia.md":              "DPIA",
	"pia.md":               "PIA",
	"transparency.md":      "Transparency notice",
	"responsible-ai.md":    "Responsible AI policy",
}

var architectureDocs = []string{"architecture.md", "design.md", "adr", "docs"}

// docIndex maps lowercased basenames to sizes, for presence and triviality
// checks in one pass.
func docIndex(snap *snapshot.Snapshot) map[string]int64 {
	idx := map[string]int64{}
	for _, f := range snap.Files {
		name := strings.ToLower(f.Name())
		if cur, ok := idx[name]; !ok || f.Size > cur {
			idx[name] = f.Size
		}
	}
	return idx
}

func hasDoc(idx map[string]int64, name string) bool {
	if size, ok := idx[name]; ok && size >= minDocBytes {
		return true
	}
	// A license file may carry a .md or .txt suffix.
	if name == "license" {
		for _, alt := range []string{"license.md", "license.txt"} {
			if size, ok := idx[alt]; ok && size >= minDocBytes {
				return true
			}
		}
	}
	return false
}

func detectGovernanceDocs(snap *snapshot.Snapshot) engine.Signal {
	idx := docIndex(snap)
	var present []string
	for name, label := range governanceDocs {
		if hasDoc(idx, name) {
			present = append(present, label)
		}
	}
	if len(present) > 0 {
		return pass("Governance documentation found",
			fmt.Sprintf("Found: %s.", joinCapped(dedupe(present), 5)))
	}
	return fail("No governance documentation",
		"No model card, risk assessment, DPIA, or transparency notice found.")
}

func detectStandardDocs(snap *snapshot.Snapshot) engine.Signal {
	idx := docIndex(snap)
	var present, missing []string
	for _, name := range standardDocs {
		if hasDoc(idx, name) {
			present = append(present, name)
		} else {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return pass("All standard project docs present",
			fmt.Sprintf("Found: %s.", strings.Join(present, ", ")))
	}
	return fail(fmt.Sprintf("Missing standard docs: %s", strings.Join(missing, ", ")),
		fmt.Sprintf("Found %d/%d standard docs with real content.", len(present), len(standardDocs)))
}

func detectArchitectureDocs(snap *snapshot.Snapshot) engine.Signal {
	idx := docIndex(snap)
	var present []string
	for _, name := range architectureDocs {
		if hasDoc(idx, name) || snap.HasTopDir(name) {
			present = append(present, name)
		}
	}
	if len(present) > 0 {
		return pass("Architecture documentation found",
			fmt.Sprintf("Found: %s.", strings.Join(present, ", ")))
	}
	return fail("No architecture documentation",
		"No architecture.md, design.md, ADR directory, or docs/ found.")
}

func detectDocstringCoverage(snap *snapshot.Snapshot) engine.Signal {
	total := 0
	documented := 0
	eachText(snap, pyExts, func(f snapshot.File) {
		total++
		if strings.Contains(f.Content, `"""`) || strings.Contains(f.Content, "'''") {
			documented++
		}
	})
	if total == 0 {
		return pass("No Python files to evaluate",
			"No .py files found; docstring coverage does not apply.")
	}
	if float64(documented)/float64(total) >= 0.5 {
		return pass("Good docstring coverage",
			fmt.Sprintf("%d/%d Python files contain docstrings.", documented, total))
	}
	return fail("Low docstring coverage",
		fmt.Sprintf("Only %d/%d Python files contain docstrings.", documented, total))
}

func documentationRules() []engine.Rule {
	return []engine.Rule{
		{
			ID:       "DOC001",
			Category: engine.Documentation,
			Severity: engine.Critical,
			Weight:   6,
			Detect:   detectGovernanceDocs,
			Citations: []engine.Citation{
				{Framework: "EU AI Act", Article: "Art. 11"},
				{Framework: "EU AI Act", Article: "Art. 13"},
			},
			Fix: "Add a model card (model-card.md) and risk assessment (risk-assessment.md).",
		},
		{
			ID:       "DOC002",
			Category: engine.Documentation,
			Severity: engine.Warning,
			Weight:   4,
			Detect:   detectStandardDocs,
			Fix:      "Add the missing standard documents: README, CONTRIBUTING, CHANGELOG, LICENSE.",
		},
		{
			ID:       "DOC003",
			Category: engine.Documentation,
			Severity: engine.Warning,
			Weight:   3,
			Detect:   detectArchitectureDocs,
			Citations: []engine.Citation{
				{Framework: "EU AI Act", Article: "Art. 11"},
			},
			Fix: "Add architecture documentation describing system design and agent interaction patterns.",
		},
		{
			ID:       "DOC004",
			Category: engine.Documentation,
			Severity: engine.Warning,
			Weight:   2,
			Detect:   detectDocstringCoverage,
			Citations: []engine.Citation{
				{Framework: "EU AI Act", Article: "Art. 11"},
			},
			Fix: "Add module and function docstrings for auditability.",
		},
	}
}
