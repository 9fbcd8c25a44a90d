package rules

import (
	"fmt"

	"github.com/agentshield/agentshield/internal/engine"
	"github.com/agentshield/agentshield/internal/snapshot"
)

var ownerFieldPatterns = compileAll([]string{
	`(?i)["']?(owner|responsible[_\-]?party|contact|maintainer|accountable)["']?\s*[:=]`,
})

var multiAgentPatterns = compileAll([]string{
	`(?i)(agent|tool)[_\-]?chain`,
	`(?i)(multi[_\-]?agent|agent[_\-]?orchestrat|agent[_\-]?pipeline)`,
	`(?i)(run[_\-]?agent|call[_\-]?agent|invoke[_\-]?agent|spawn[_\-]?agent)`,
	`(?i)(crew|swarm|graph)\s*[\(\{=]`,
	`(?i)agent\s*\(\s*["']`,
	`(?i)tools?\s*=\s*\[.*(agent|tool)`,
})

var agentEscalationPatterns = compileAll([]string{
	`(?i)escalat(e|ion)`,
	`(?i)fallback[_\-]?handler`,
	`(?i)on[_\-]?(error|failure)[_\-]?(escalate|notify|alert)`,
	`(?i)human[_\-]?fallback`,
})

var silentErrorPatterns = compileAll([]string{
	`except\s*:\s*\n\s*pass`,
	`except\s+\w+.*:\s*\n\s*pass`,
	`except.*:\s*\n\s*logger?\.debug\(`,
	`(?i)except.*:\s*\n\s*#\s*(todo|ignore|skip)`,
})

var outputValidationPatterns = compileAll([]string{
	`(?i)(schema|pydantic|validate|validator|jsonschema)`,
	`(?i)(type[_\-]?check|isinstance|assert\s+isinstance)`,
	`(?i)(bounds[_\-]?check|range[_\-]?check|clamp|min\(.*max\()`,
	`(?i)(sanitize|escape|clean|strip[_\-]?tags)`,
	`(?i)(output[_\-]?valid|response[_\-]?valid|result[_\-]?valid)`,
})

var accountabilityTrailPatterns = compileAll([]string{
	`(?i)(timestamp|created[_\-]?at|logged[_\-]?at)`,
	`(?i)(agent[_\-]?id|actor[_\-]?id|user[_\-]?id)`,
	`(?i)(input[_\-]?hash|output[_\-]?hash|content[_\-]?hash)`,
	`(?i)(decision[_\-]?rationale|reasoning|justification|explanation)`,
	`(?i)(audit[_\-]?log|audit[_\-]?trail|audit[_\-]?record|audit[_\-]?entry)`,
})

func detectOwnerDeclaration(snap *snapshot.Snapshot) engine.Signal {
	if anyMatch(snap, configExts, ownerFieldPatterns) {
		return pass("Accountability owner declared in configuration",
			"Found owner or responsible_party field in configuration.")
	}
	return fail("No accountability owner in configuration",
		"No owner, responsible_party, or contact field found in any configuration file.")
}

func detectUnescalatedOrchestration(snap *snapshot.Snapshot) engine.Signal {
	if !anyMatch(snap, codeExts, multiAgentPatterns) {
		return pass("No multi-agent orchestration",
			"No agent chaining or orchestration patterns found.")
	}
	if anyMatch(snap, codeExts, agentEscalationPatterns) {
		return pass("Multi-agent orchestration has escalation path",
			"Agent orchestration found with escalation or fallback handler.")
	}
	return fail("Multi-agent orchestration without escalation path",
		"Multi-agent or tool-chaining patterns detected but no escalation handler or fallback to human found.")
}

func detectSilentAgentErrors(snap *snapshot.Snapshot) engine.Signal {
	locs := matchLocations(snap, codeExts, silentErrorPatterns)
	if len(locs) == 0 {
		return pass("No silent error handlers",
			"No error handlers that swallow failures without notification found.")
	}
	return fail("Silent error handling on agent decision paths",
		fmt.Sprintf("Found %d silent error handler(s); errors are swallowed without human notification.", len(locs)),
		locs...)
}

func detectOutputValidation(snap *snapshot.Snapshot) engine.Signal {
	if anyMatch(snap, codeExts, outputValidationPatterns) {
		return pass("Output validation detected",
			"Found schema validation, type checking, or sanitization patterns.")
	}
	return fail("No output validation detected",
		"No schema validation, type checking, or bounds checking found for agent outputs.")
}

func detectAccountabilityTrail(snap *snapshot.Snapshot) engine.Signal {
	files := 0
	eachText(snap, codeExts, func(f snapshot.File) {
		for _, re := range accountabilityTrailPatterns {
			if re.MatchString(f.Content) {
				files++
				return
			}
		}
	})
	if files > 0 {
		return pass("Audit trail patterns detected",
			fmt.Sprintf("Found audit-related fields in %d file(s).", files))
	}
	return fail("No audit trail for agent actions",
		"No audit logging with timestamp, agent_id, input/output hash, or decision rationale found.")
}

func art22Rules() []engine.Rule {
	cite := []engine.Citation{
		{Framework: "EU AI Act", Article: "Art. 22"},
		{Framework: "GDPR", Article: "Art. 5(2)"},
	}
	return []engine.Rule{
		{
			ID:        "A22001",
			Category:  engine.Art22Accountability,
			Severity:  engine.Critical,
			Weight:    3,
			Detect:    detectOwnerDeclaration,
			Citations: cite,
			Fix:       "Add an owner or responsible_party field to your agent/tool configuration specifying who is accountable for the system's decisions.",
		},
		{
			ID:        "A22002",
			Category:  engine.Art22Accountability,
			Severity:  engine.Critical,
			Weight:    4,
			Detect:    detectUnescalatedOrchestration,
			Citations: cite,
			Fix:       "Add an escalation handler or human fallback for agent chains. Define what happens when an agent in the pipeline fails or is uncertain.",
		},
		{
			ID:        "A22003",
			Category:  engine.Art22Accountability,
			Severity:  engine.Critical,
			Weight:    3,
			Detect:    detectSilentAgentErrors,
			Citations: cite,
			Fix:       "Replace silent error handlers with logging at warning/error level and add human notification for failures on agent decision paths.",
		},
		{
			ID:       "A22004",
			Category: engine.Art22Accountability,
			Severity: engine.Critical,
			Weight:   3,
			Detect:   detectOutputValidation,
			Citations: []engine.Citation{
				{Framework: "EU AI Act", Article: "Art. 22"},
			},
			Fix: "Add output validation (Pydantic, JSON Schema, or manual type/bounds checks) before agent output reaches external systems.",
		},
		{
			ID:        "A22005",
			Category:  engine.Art22Accountability,
			Severity:  engine.Warning,
			Weight:    2,
			Detect:    detectAccountabilityTrail,
			Citations: cite,
			Fix:       "Log agent actions with: timestamp, agent_id, input_hash, output_hash, and decision_rationale.",
		},
	}
}
