package rules

import (
	"fmt"
	"regexp"

	"github.com/agentshield/agentshield/internal/engine"
	"github.com/agentshield/agentshield/internal/snapshot"
)

var (
	bareExceptRe  = regexp.MustCompile(`(?m)^\s*except\s*:`)
	broadExceptRe = regexp.MustCompile(`except\s+Exception\s*:`)
)

var pyExts = map[string]bool{".py": true}

var fallbackPatterns = compileAll([]string{
	`(?i)fallback|graceful[_\-]?degrad`,
	`(?i)circuit[_\-]?breaker`,
	`(?i)retry|backoff|tenacity`,
	`(?i)timeout`,
})

var boundaryPatterns = compileAll([]string{
	`(?i)max[_\-]?(retries|attempts|iterations|steps|tokens|loops)`,
	`(?i)rate[_\-]?limit|throttle`,
	`(?i)input[_\-]?valid|validate[_\-]?input|sanitiz`,
})

var errorReportingPatterns = compileAll([]string{
	`(?i)sentry|bugsnag|rollbar|airbrake|datadog`,
	`(?i)error[_\-]?handler|exception[_\-]?handler`,
})

// detectBareExcepts flags Python handlers that swallow every exception.
// Projects without Python code pass vacuously.
func detectBareExcepts(snap *snapshot.Snapshot) engine.Signal {
	pyFiles := 0
	bareCount := 0
	broadCount := 0
	var locs []engine.Location
	eachText(snap, pyExts, func(f snapshot.File) {
		pyFiles++
		for _, idx := range bareExceptRe.FindAllStringIndex(f.Content, -1) {
			bareCount++
			locs = append(locs, engine.Location{Path: f.Path, Line: lineAt(f.Content, idx[0])})
		}
		broadCount += len(broadExceptRe.FindAllString(f.Content, -1))
	})

	if pyFiles == 0 {
		return pass("No Python files to evaluate",
			"No .py files found; bare exception handlers are a Python-specific hazard.")
	}
	if bareCount > 0 {
		if len(locs) > maxEvidence {
			locs = locs[:maxEvidence]
		}
		return fail(fmt.Sprintf("%d bare except clause(s)", bareCount),
			"Bare 'except:' silently swallows all errors including KeyboardInterrupt.",
			locs...)
	}
	detail := "No bare 'except:' found; errors are caught specifically."
	if broadCount > 3 {
		detail = fmt.Sprintf("No bare 'except:' found, but %d broad 'except Exception' clauses reduce observability.", broadCount)
	}
	return pass("No bare except clauses", detail)
}

func errorHandlingRules() []engine.Rule {
	return []engine.Rule{
		{
			ID:       "ERR001",
			Category: engine.ErrorHandling,
			Severity: engine.Critical,
			Weight:   4,
			Detect:   detectBareExcepts,
			Citations: []engine.Citation{
				{Framework: "EU AI Act", Article: "Art. 15"},
			},
			Fix: "Replace bare except with specific exception types.",
		},
		{
			ID:       "ERR002",
			Category: engine.ErrorHandling,
			Severity: engine.Warning,
			Weight:   4,
			Detect: presence(codeExts, fallbackPatterns,
				"Fallback / retry patterns detected", "Found circuit breaker, retry, backoff, or graceful degradation logic.",
				"No fallback / retry patterns", "No circuit breaker, retry, or graceful degradation patterns found."),
			Citations: []engine.Citation{
				{Framework: "EU AI Act", Article: "Art. 15"},
			},
			Fix: "Add retry with exponential backoff for external calls. Add a circuit breaker for downstream services.",
		},
		{
			ID:       "ERR003",
			Category: engine.ErrorHandling,
			Severity: engine.Warning,
			Weight:   4,
			Detect: presence(codeExts, boundaryPatterns,
				"Resource boundaries detected", "Found max retries, rate limits, input validation, or loop bounds.",
				"No resource boundaries detected", "No max iterations, rate limits, or input validation found."),
			Citations: []engine.Citation{
				{Framework: "EU AI Act", Article: "Art. 15"},
			},
			Fix: "Add explicit bounds on loops, retries, and token usage to prevent runaway agents.",
		},
		{
			ID:       "ERR004",
			Category: engine.ErrorHandling,
			Severity: engine.Warning,
			Weight:   3,
			Detect: presence(codeExts, errorReportingPatterns,
				"Error reporting integration detected", "Found Sentry, Datadog, or a centralised error handler.",
				"No error reporting integration", "No centralised error reporting service found."),
			Citations: []engine.Citation{
				{Framework: "EU AI Act", Article: "Art. 12"},
			},
			Fix: "Add an error reporting service (Sentry, Datadog) for production observability.",
		},
	}
}
