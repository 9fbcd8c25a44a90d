package rules

import (
	"strings"

	"github.com/agentshield/agentshield/internal/engine"
	"github.com/agentshield/agentshield/internal/snapshot"
)

var classificationPatterns = compileAll([]string{
	`(?i)data[_\-]?classif(y|ication)`,
	`(?i)pii|personally[_\-]?identifiable`,
	`(?i)sensitive[_\-]?data|confidential`,
	`(?i)data[_\-]?category|data[_\-]?level|data[_\-]?tier`,
})

var privacyTechniquePatterns = compileAll([]string{
	`(?i)anonymiz(e|ation)|pseudonymiz(e|ation)`,
	`(?i)redact|mask|obfuscate`,
	`(?i)encrypt|AES|RSA|fernet`,
	`(?i)data[_\-]?retention|retention[_\-]?polic`,
	`(?i)right[_\-]?to[_\-]?erasure|right[_\-]?to[_\-]?forget|data[_\-]?deletion`,
})

var consentPatterns = compileAll([]string{
	`(?i)consent|opt[_\-]?(in|out)`,
	`(?i)gdpr|data[_\-]?protect`,
	`(?i)data[_\-]?processing[_\-]?agreement|dpa`,
})

var privacyDocFiles = map[string]bool{
	"privacy.md": true, "privacy-policy.md": true,
	"data-classification.md": true, "data_classification.md": true,
	"dpia.md": true, "pia.md": true,
}

func detectPrivacyDoc(snap *snapshot.Snapshot) engine.Signal {
	for _, f := range snap.Files {
		if privacyDocFiles[strings.ToLower(f.Name())] {
			return pass("Privacy documentation found",
				"Found a privacy policy, DPIA, or data classification document.")
		}
	}
	return fail("No privacy documentation found",
		"No privacy.md, dpia.md, or data-classification.md found.")
}

func dataClassificationRules() []engine.Rule {
	return []engine.Rule{
		{
			ID:       "DAT001",
			Category: engine.DataClassification,
			Severity: engine.Critical,
			Weight:   4,
			Detect: presence(codeAndYamlExts, classificationPatterns,
				"Data classification logic detected", "Found data classification, PII labelling, or sensitivity tagging in code.",
				"No data classification detected", "No PII labelling, data categorisation, or sensitivity tagging found."),
			Citations: []engine.Citation{
				{Framework: "EU AI Act", Article: "Art. 10"},
				{Framework: "GDPR", Article: "Art. 5"},
			},
			Fix: "Tag data fields with classification levels (public, internal, confidential, restricted).",
		},
		{
			ID:       "DAT002",
			Category: engine.DataClassification,
			Severity: engine.Warning,
			Weight:   4,
			Detect: presence(codeAndYamlExts, privacyTechniquePatterns,
				"Privacy-preserving techniques detected", "Found anonymisation, pseudonymisation, redaction, or encryption patterns.",
				"No privacy-preserving techniques detected", "No anonymisation, pseudonymisation, redaction, or encryption found."),
			Citations: []engine.Citation{
				{Framework: "GDPR", Article: "Art. 25"},
				{Framework: "GDPR", Article: "Art. 32"},
			},
			Fix: "Apply data minimisation: anonymise or pseudonymise PII before processing.",
		},
		{
			ID:       "DAT003",
			Category: engine.DataClassification,
			Severity: engine.Warning,
			Weight:   4,
			Detect:   detectPrivacyDoc,
			Citations: []engine.Citation{
				{Framework: "GDPR", Article: "Art. 35"},
				{Framework: "EU AI Act", Article: "Art. 9"},
			},
			Fix: "Add a DPIA or data classification document describing what data is collected, stored, and processed.",
		},
		{
			ID:       "DAT004",
			Category: engine.DataClassification,
			Severity: engine.Warning,
			Weight:   3,
			Detect: presence(codeAndYamlExts, consentPatterns,
				"Consent / data-protection patterns detected", "Found consent mechanism, opt-in/opt-out, or GDPR references.",
				"No consent mechanisms detected", "No consent, opt-in/opt-out, or GDPR references found in code."),
			Citations: []engine.Citation{
				{Framework: "GDPR", Article: "Art. 6"},
				{Framework: "GDPR", Article: "Art. 7"},
			},
			Fix: "Add explicit consent collection before processing personal data.",
		},
	}
}
