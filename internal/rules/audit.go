package rules

import (
	"regexp"

	"github.com/agentshield/agentshield/internal/engine"
)

var basicLoggingPatterns = compileAll([]string{
	`(?i)import\s+logging`,
	`(?i)from\s+logging\s+import`,
	`(?i)logger\.(info|warning|error|debug|critical)`,
	`(?i)console\.(log|warn|error|info)`,
})

var structuredLoggingPatterns = compileAll([]string{
	`(?i)structlog|structured.?log`,
	`(?i)winston|pino|bunyan`,
})

var auditTrailPatterns = compileAll([]string{
	`(?i)audit[_\-]?log|audit[_\-]?trail`,
	`(?i)decision[_\-]?log|agent[_\-]?log`,
})

var traceIDPatterns = compileAll([]string{
	`(?i)trace[_\-]?id|correlation[_\-]?id|request[_\-]?id`,
})

var observabilityPatterns = compileAll([]string{
	`(?i)langfuse|langsmith|agentops|phoenix`,
	`(?i)opentelemetry|otel`,
})

var ioLoggingPatterns = compileAll([]string{
	`(?i)log.*input|log.*prompt|log.*request`,
	`(?i)log.*output|log.*response|log.*result`,
	`(?i)log.*tool[_\-]?call|log.*function[_\-]?call`,
})

func auditRules() []engine.Rule {
	return []engine.Rule{
		{
			ID:       "AUD001",
			Category: engine.AuditLogging,
			Severity: engine.Critical,
			Weight:   3,
			Detect: presence(codeExts, append(append([]*regexp.Regexp{}, basicLoggingPatterns...), structuredLoggingPatterns...),
				"Logging detected", "Found logging framework or logger usage.",
				"No logging detected", "No logging framework or logger usage found in code."),
			Citations: []engine.Citation{
				{Framework: "EU AI Act", Article: "Art. 12"},
				{Framework: "EU AI Act", Article: "Art. 19"},
			},
			Fix: "Add structured logging (structlog for Python, pino for Node.js).",
		},
		{
			ID:       "AUD002",
			Category: engine.AuditLogging,
			Severity: engine.Warning,
			Weight:   3,
			Detect: presence(codeExts, structuredLoggingPatterns,
				"Structured logging detected", "Found structured logging library (structlog, winston, pino, or similar).",
				"No structured logging detected", "Log lines are free-form text; structured records are needed for audit queries."),
			Citations: []engine.Citation{
				{Framework: "EU AI Act", Article: "Art. 12"},
			},
			Fix: "Adopt a structured logging library so every record carries machine-readable fields.",
		},
		{
			ID:       "AUD003",
			Category: engine.AuditLogging,
			Severity: engine.Critical,
			Weight:   5,
			Detect: presence(codeExts, auditTrailPatterns,
				"Audit trail pattern detected", "Found audit log or decision logging patterns.",
				"No audit trail detected", "No structured audit trail or decision logging found for agent actions."),
			Citations: []engine.Citation{
				{Framework: "EU AI Act", Article: "Art. 12"},
				{Framework: "EU AI Act", Article: "Art. 18"},
			},
			Fix: "Add decision logging middleware that captures: input, reasoning, tool calls, output, timestamp, and session ID.",
		},
		{
			ID:       "AUD004",
			Category: engine.AuditLogging,
			Severity: engine.Warning,
			Weight:   4,
			Detect: presence(codeExts, traceIDPatterns,
				"Trace/correlation IDs detected", "Found trace_id, correlation_id, or request_id patterns.",
				"No trace IDs detected", "No correlation or trace ID patterns found. Agent actions cannot be linked across calls."),
			Citations: []engine.Citation{
				{Framework: "EU AI Act", Article: "Art. 12"},
			},
			Fix: "Add a unique trace_id to every agent invocation for end-to-end traceability.",
		},
		{
			ID:       "AUD005",
			Category: engine.AuditLogging,
			Severity: engine.Warning,
			Weight:   3,
			Detect: presence(codeExts, ioLoggingPatterns,
				"Input/output logging detected", "Found patterns for logging agent inputs and outputs.",
				"No input/output logging detected", "Agent prompts, responses, and tool calls are not captured."),
			Citations: []engine.Citation{
				{Framework: "EU AI Act", Article: "Art. 12"},
			},
			Fix: "Log agent inputs, outputs, and tool calls so every decision can be reconstructed.",
		},
		{
			ID:       "AUD006",
			Category: engine.AuditLogging,
			Severity: engine.Warning,
			Weight:   2,
			Detect: presence(codeExts, observabilityPatterns,
				"Observability platform integration detected", "Found integration with Langfuse, LangSmith, AgentOps, or OpenTelemetry.",
				"No observability platform integration", "No agent observability or tracing platform detected."),
			Citations: []engine.Citation{
				{Framework: "EU AI Act", Article: "Art. 12"},
			},
			Fix: "Integrate an observability platform (Langfuse, LangSmith, or OpenTelemetry) for production tracing.",
		},
	}
}
