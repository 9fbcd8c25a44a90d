package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentshield/agentshield/internal/engine"
	"github.com/agentshield/agentshield/internal/snapshot"
)

func writeFixture(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
}

func scanFixture(t *testing.T, root, framework string, opts Options) *engine.Result {
	t.Helper()
	snap, err := snapshot.Collect(root, snapshot.Options{})
	require.NoError(t, err)
	catalog, err := Catalog(opts)
	require.NoError(t, err)
	reg, err := engine.NewRegistry(catalog)
	require.NoError(t, err)
	res, err := engine.Scan(snap, framework, reg, engine.Options{})
	require.NoError(t, err)
	return res
}

func findingFor(t *testing.T, res *engine.Result, ruleID string) engine.Finding {
	t.Helper()
	for _, f := range res.Findings {
		if f.RuleID == ruleID {
			return f
		}
	}
	t.Fatalf("no finding for rule %s", ruleID)
	return engine.Finding{}
}

func categoryScore(t *testing.T, res *engine.Result, cat engine.Category) engine.CategoryScore {
	t.Helper()
	for _, cs := range res.Categories {
		if cs.Category == cat {
			return cs
		}
	}
	t.Fatalf("no score for category %s", cat)
	return engine.CategoryScore{}
}

func TestCatalogPassesRegistryValidation(t *testing.T) {
	catalog, err := Catalog(Options{})
	require.NoError(t, err)
	require.Len(t, catalog, 30)

	_, err = engine.NewRegistry(catalog)
	require.NoError(t, err)
}

func TestCatalogRejectsInvalidExtraPattern(t *testing.T) {
	_, err := Catalog(Options{ExtraSecretPatterns: []string{"("}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "extra secret pattern")
}

func TestLeakyProject(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		".env": "OPENAI_API_KEY=sk-" + strings.Repeat("a1B2", 10) + "\n",
		"bad.py": "def run(task):\n" +
			"    try:\n" +
			"        do(task)\n" +
			"    except:\n" +
			"        pass\n",
	})

	res := scanFixture(t, root, "all", Options{})

	sec1 := findingFor(t, res, "SEC001")
	require.Equal(t, engine.Critical, sec1.Status)
	require.NotEmpty(t, sec1.Evidence)
	require.Equal(t, ".env", sec1.Evidence[0].Path)
	require.NotEmpty(t, sec1.Citations)
	require.NotEmpty(t, sec1.Fix)

	require.Equal(t, engine.Critical, findingFor(t, res, "SEC002").Status)
	require.Equal(t, engine.Warning, findingFor(t, res, "SEC004").Status)
	require.Equal(t, engine.Critical, findingFor(t, res, "ERR001").Status)
	require.Equal(t, engine.Critical, findingFor(t, res, "A22003").Status)
	require.Equal(t, engine.Critical, findingFor(t, res, "AUD001").Status)

	require.False(t, res.CIPass())
}

func TestEnvFileCoveredByIgnore(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		".env":       "MODE=dev\n",
		".gitignore": ".env\n__pycache__/\n",
	})

	res := scanFixture(t, root, "all", Options{})
	require.Equal(t, engine.Pass, findingFor(t, res, "SEC002").Status)
	require.Equal(t, engine.Pass, findingFor(t, res, "SEC004").Status)
}

func TestEnvTemplateNotScannedForSecrets(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		".env.example": "OPENAI_API_KEY=sk-" + strings.Repeat("x9Yz", 10) + "\n",
		".gitignore":   ".env\n",
	})

	res := scanFixture(t, root, "all", Options{})
	require.Equal(t, engine.Pass, findingFor(t, res, "SEC001").Status)
}

func TestExtraSecretPattern(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		"deploy.yaml": "cluster_key: corp-0123456789abcdef01234567\n",
		".gitignore":  ".env\n",
	})

	base := scanFixture(t, root, "all", Options{})
	require.Equal(t, engine.Pass, findingFor(t, base, "SEC001").Status)

	custom := scanFixture(t, root, "all", Options{
		ExtraSecretPatterns: []string{`corp-[0-9a-f]{24}`},
	})
	sec1 := findingFor(t, custom, "SEC001")
	require.Equal(t, engine.Critical, sec1.Status)
	require.Contains(t, sec1.Detail, "Custom pattern")
}

func TestGovernedProjectPassesGDPR(t *testing.T) {
	root := t.TempDir()
	filler := strings.Repeat("This project handles agent workloads responsibly. ", 3)
	writeFixture(t, root, map[string]string{
		".gitignore":      ".env\n__pycache__/\n",
		"README.md":       "# agent pipeline\n\n" + filler,
		"CONTRIBUTING.md": "# contributing\n\n" + filler,
		"CHANGELOG.md":    "# changelog\n\n" + filler,
		"LICENSE":         "MIT License\n\n" + filler,
		"privacy.md":      "# privacy\n\nWhat we collect and why.\n",
		"model-card.md":   "# model card\n\nIntended use and known limitations.\n" + filler,
		"docs/architecture.md": "# architecture\n\nComponents and data flow between them.\n" +
			filler,
		"pipeline.py": `"""Pipeline that redacts PII before any model call and logs every step."""
import logging
import os

import structlog

# spans exported through opentelemetry
logger = structlog.get_logger()


def handle(event, trace_id):
    if not event.consent:
        raise ValueError("missing consent")
    redacted = redact_pii(event.payload)
    endpoint = os.environ.get("MODEL_ENDPOINT")
    logger.info("audit_log", trace_id=trace_id, endpoint=endpoint)
    log_input(redacted)
    log_output(redacted)
    return redacted
`,
	})

	res := scanFixture(t, root, "gdpr", Options{})

	for _, f := range res.Findings {
		require.Equal(t, engine.Pass, f.Status, "rule %s: %s", f.RuleID, f.Title)
	}
	require.Equal(t, 65, res.MaxScore)
	require.Equal(t, 100.0, res.Percent)
	require.Equal(t, engine.RatingReady, res.Rating)
	require.True(t, res.CIPass())
}

func TestMissingTraceIDsEarnPartialCredit(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		"worker.py": `"""Worker."""
import logging

# structlog formatting, spans shipped via opentelemetry
logger = logging.getLogger(__name__)


def work(event):
    logger.info("audit_log event")
    log_input(event)
    log_output(event)
`,
	})

	res := scanFixture(t, root, "all", Options{})

	require.Equal(t, engine.Warning, findingFor(t, res, "AUD004").Status)
	for _, id := range []string{"AUD001", "AUD002", "AUD003", "AUD005", "AUD006"} {
		require.Equal(t, engine.Pass, findingFor(t, res, id).Status, "rule %s", id)
	}

	// 20-point pool minus half of AUD004's weight of 4.
	audit := categoryScore(t, res, engine.AuditLogging)
	require.Equal(t, 18.0, audit.Awarded)
	require.Equal(t, 20, audit.Max)
}

func TestAutomatedDecisionPaths(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		"auto.py": `def auto_approve(request):
    result = agent.run(request)
    if result == "approve":
        db.execute(result)
`,
	})

	res := scanFixture(t, root, "all", Options{})
	require.Equal(t, engine.Critical, findingFor(t, res, "A14001").Status)
	require.Equal(t, engine.Critical, findingFor(t, res, "A14002").Status)
	a14003 := findingFor(t, res, "A14003")
	require.Equal(t, engine.Critical, a14003.Status)
	require.NotEmpty(t, a14003.Evidence)
}

func TestAutoFunctionsWithHumanReviewPass(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		"auto.py": `def auto_classify(doc):
    label = model.predict(doc)
    return human_review(label)
`,
	})

	res := scanFixture(t, root, "all", Options{})
	require.Equal(t, engine.Pass, findingFor(t, res, "A14002").Status)
}

func TestOwnerDeclaration(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		"agents.yaml": "name: triage\nowner: compliance@example.com\n",
	})
	res := scanFixture(t, root, "all", Options{})
	require.Equal(t, engine.Pass, findingFor(t, res, "A22001").Status)

	bare := t.TempDir()
	writeFixture(t, bare, map[string]string{"main.py": "x = 1\n"})
	res = scanFixture(t, bare, "all", Options{})
	require.Equal(t, engine.Critical, findingFor(t, res, "A22001").Status)
}

func TestOrchestrationEscalation(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		"chain.py": "def build():\n    return agent_chain([fetch, summarize])\n",
	})
	res := scanFixture(t, root, "all", Options{})
	require.Equal(t, engine.Critical, findingFor(t, res, "A22002").Status)

	withEscalation := t.TempDir()
	writeFixture(t, withEscalation, map[string]string{
		"chain.py": "def build():\n" +
			"    return agent_chain([fetch, summarize], on_error=escalate_to_human)\n",
	})
	res = scanFixture(t, withEscalation, "all", Options{})
	require.Equal(t, engine.Pass, findingFor(t, res, "A22002").Status)
}

func TestNoPythonFilesPassVacuously(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		"index.ts": "export const run = () => console.log('ok')\n",
	})

	res := scanFixture(t, root, "all", Options{})
	err1 := findingFor(t, res, "ERR001")
	require.Equal(t, engine.Pass, err1.Status)
	require.Contains(t, err1.Title, "No Python files")
	require.Equal(t, engine.Pass, findingFor(t, res, "DOC004").Status)
}

func TestTrivialDocsEarnNoCredit(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		"README.md": "# x\n",
	})

	res := scanFixture(t, root, "all", Options{})
	doc2 := findingFor(t, res, "DOC002")
	require.Equal(t, engine.Warning, doc2.Status)
	require.Contains(t, doc2.Title, "readme.md")
}
