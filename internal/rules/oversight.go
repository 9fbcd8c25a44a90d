package rules

import "github.com/agentshield/agentshield/internal/engine"

var hitlPatterns = compileAll([]string{
	`(?i)human[_\-]?(in[_\-]?the[_\-]?loop|review|approval|confirm)`,
	`(?i)require[_\-]?approval|needs[_\-]?approval|pending[_\-]?approval`,
	`(?i)manual[_\-]?review|manual[_\-]?check`,
	`(?i)confirm.*before|approve.*before|review.*before`,
})

var escalationPatterns = compileAll([]string{
	`(?i)escalat(e|ion)|elevat(e|ion)`,
	`(?i)fallback[_\-]?to[_\-]?human|hand[_\-]?off|handoff`,
	`(?i)confidence[_\-]?(score|threshold|level).*(low|below|under)`,
	`(?i)risk[_\-]?(score|level|threshold)`,
})

var overridePatterns = compileAll([]string{
	`(?i)kill[_\-]?switch|emergency[_\-]?stop|abort`,
	`(?i)override|force[_\-]?stop|disable[_\-]?agent`,
	`(?i)rate[_\-]?limit|throttle|circuit[_\-]?break`,
	`(?i)max[_\-]?(retries|attempts|iterations|loops)`,
})

var externalActionGatePatterns = compileAll([]string{
	`(?i)(send|post|publish|deploy|delete|drop|execute).*confirm`,
	`(?i)dry[_\-]?run|sandbox|preview`,
	`(?i)allow[_\-]?list|whitelist|permitted[_\-]?actions`,
})

func oversightRules() []engine.Rule {
	return []engine.Rule{
		{
			ID:       "OVR001",
			Category: engine.HumanOversight,
			Severity: engine.Critical,
			Weight:   7,
			Detect: presence(codeAndYamlExts, hitlPatterns,
				"Human-in-the-loop pattern detected", "Found approval gate or human review requirement.",
				"No human-in-the-loop pattern detected", "No human approval, review, or confirmation gate found in agent logic."),
			Citations: []engine.Citation{
				{Framework: "EU AI Act", Article: "Art. 14"},
			},
			Fix: "Add a human approval gate before high-risk agent actions (external API calls, data writes, user-facing communications).",
		},
		{
			ID:       "OVR002",
			Category: engine.HumanOversight,
			Severity: engine.Warning,
			Weight:   5,
			Detect: presence(codeAndYamlExts, escalationPatterns,
				"Escalation logic detected", "Found confidence-based escalation, human handoff, or risk routing.",
				"No escalation logic detected", "No pattern for escalating uncertain or high-risk decisions to humans."),
			Citations: []engine.Citation{
				{Framework: "EU AI Act", Article: "Art. 14"},
			},
			Fix: "Add escalation logic: if confidence < threshold or risk > threshold, route to human.",
		},
		{
			ID:       "OVR003",
			Category: engine.HumanOversight,
			Severity: engine.Warning,
			Weight:   4,
			Detect: presence(codeAndYamlExts, overridePatterns,
				"Override / kill switch detected", "Found emergency stop, rate limiting, or loop bounds.",
				"No override mechanism detected", "No kill switch, circuit breaker, or emergency stop pattern found."),
			Citations: []engine.Citation{
				{Framework: "EU AI Act", Article: "Art. 14"},
			},
			Fix: "Add a kill switch or circuit breaker that halts agent execution on anomalous behavior.",
		},
		{
			ID:       "OVR004",
			Category: engine.HumanOversight,
			Severity: engine.Warning,
			Weight:   4,
			Detect: presence(codeAndYamlExts, externalActionGatePatterns,
				"External action gates detected", "Found confirmation gates, dry-run modes, or action allowlisting.",
				"No external action gates detected", "No confirmation step before destructive or external actions."),
			Citations: []engine.Citation{
				{Framework: "EU AI Act", Article: "Art. 14"},
				{Framework: "GDPR", Article: "Art. 22"},
			},
			Fix: "Add confirmation or dry-run mode for actions that affect external systems.",
		},
	}
}
