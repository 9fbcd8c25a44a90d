package rules

import (
	"fmt"

	"github.com/agentshield/agentshield/internal/engine"
	"github.com/agentshield/agentshield/internal/snapshot"
)

// Agent or model output feeding a conditional with no human checkpoint.
var llmConditionalPatterns = compileAll([]string{
	`if\s+(llm|gpt|claude|agent|model|ai)[_\.]?(response|output|result|answer|decision)\s*[=!<>]`,
	`if\s+(response|result|output)\s*==\s*["'](approve|yes|true|allow|accept)`,
	`if\s+(agent|bot|assistant)\.(decide|judge|evaluate|classify|determine)\s*\(`,
	`(response|result|output|decision)\s*=\s*(llm|gpt|claude|agent|model)\..+\n\s*if\s+(response|result|output|decision)`,
})

var autoFunctionPatterns = compileAll([]string{
	`(?i)def\s+auto[_\-]?approve`,
	`(?i)def\s+auto[_\-]?decide`,
	`(?i)def\s+auto[_\-]?execute`,
	`(?i)def\s+auto[_\-]?process`,
	`(?i)def\s+auto[_\-]?classify`,
	`(?i)def\s+auto[_\-]?route`,
	`(?i)def\s+auto[_\-]?assign`,
})

var humanReviewPatterns = compileAll([]string{
	`(?i)human[_\-]?review`,
	`(?i)human[_\-]?approval`,
	`(?i)human[_\-]?oversight`,
	`(?i)human[_\-]?intervention`,
	`(?i)manual[_\-]?review`,
	`(?i)require[_\-]?approval`,
	`(?i)pending[_\-]?review`,
	`(?i)approval[_\-]?gate`,
})

var directActionPatterns = compileAll([]string{
	`(?s)(llm|agent|model|gpt|claude|ai)[_\.]?(response|output|result).{0,80}(\.execute|\.run|\.send|\.write|\.delete|\.update|\.insert|\.post|\.put|\.patch)`,
	`(?s)(cursor|db|conn|session|collection)\.(execute|insert|update|delete|write)\(.{0,40}(response|output|result|answer)`,
	`(?s)(requests|httpx|aiohttp|fetch|axios)\.\w+\(.{0,60}(response|output|result)`,
	`(?s)(send_email|send_message|send_notification|publish)\(.{0,60}(response|output|result)`,
	`(?s)(open|write_text|write_bytes)\(.{0,60}(response|output|result)`,
	`(?s)(subprocess|os\.system|exec|eval)\(.{0,60}(response|output|result)`,
})

func detectLLMConditionals(snap *snapshot.Snapshot) engine.Signal {
	locs := matchLocations(snap, codeExts, llmConditionalPatterns)
	if len(locs) == 0 {
		return pass("No LLM output driving decisions directly",
			"No patterns found where model output feeds a conditional without human validation.")
	}
	return fail("LLM output used directly in decision conditional",
		fmt.Sprintf("Found %d instance(s) where LLM/agent output drives a decision without human validation.", len(locs)),
		locs...)
}

func detectUnreviewedAutoFunctions(snap *snapshot.Snapshot) engine.Signal {
	locs := matchLocations(snap, codeExts, autoFunctionPatterns)
	if len(locs) == 0 {
		return pass("No automated decision functions",
			"No auto-approve, auto-decide, or auto-execute function definitions found.")
	}
	if anyMatch(snap, codeExts, humanReviewPatterns) {
		return pass("Automated functions have human review companion",
			"Auto-* functions found alongside human review mechanisms.")
	}
	return fail("Automated decision function without human review companion",
		"Found auto-* functions with no corresponding human review mechanism.",
		locs...)
}

func detectDirectActionFlows(snap *snapshot.Snapshot) engine.Signal {
	locs := matchLocations(snap, codeExts, directActionPatterns)
	if len(locs) == 0 {
		return pass("No unreviewed agent-to-action flows",
			"No patterns found where agent output reaches a system action without a human checkpoint.")
	}
	return fail("Agent output flows directly to system action",
		fmt.Sprintf("Found %d instance(s) where agent output reaches a system action without human checkpoint.", len(locs)),
		locs...)
}

func art14Rules() []engine.Rule {
	cite := []engine.Citation{{Framework: "EU AI Act", Article: "Art. 14"}}
	return []engine.Rule{
		{
			ID:        "A14001",
			Category:  engine.Art14Oversight,
			Severity:  engine.Critical,
			Weight:    5,
			Detect:    detectLLMConditionals,
			Citations: cite,
			Fix:       "Add a human review step between LLM output and decision execution. Route uncertain or high-impact decisions to a human reviewer.",
		},
		{
			ID:        "A14002",
			Category:  engine.Art14Oversight,
			Severity:  engine.Critical,
			Weight:    4,
			Detect:    detectUnreviewedAutoFunctions,
			Citations: cite,
			Fix:       "Add a human_review or approval_gate function that can intercept or override automated decisions.",
		},
		{
			ID:        "A14003",
			Category:  engine.Art14Oversight,
			Severity:  engine.Critical,
			Weight:    6,
			Detect:    detectDirectActionFlows,
			Citations: cite,
			Fix:       "Insert an approval step or validation layer between agent output and system actions so a human can intervene or interrupt.",
		},
	}
}
