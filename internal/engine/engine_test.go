package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentshield/agentshield/internal/snapshot"
)

func staticDetector(failed bool) Detector {
	return func(*snapshot.Snapshot) Signal {
		if failed {
			return Signal{Failed: true, Title: "gap found", Detail: "missing control"}
		}
		return Signal{Title: "control present", Detail: "ok"}
	}
}

// secretsCatalog builds a minimal valid registry: three rules whose weights
// sum to the Secrets & Access pool.
func secretsCatalog(failCritical, failWarning bool) []Rule {
	return []Rule{
		{ID: "T001", Category: SecretsAccess, Severity: Critical, Weight: 5, Detect: staticDetector(failCritical)},
		{ID: "T002", Category: SecretsAccess, Severity: Warning, Weight: 5, Detect: staticDetector(failWarning)},
		{ID: "T003", Category: SecretsAccess, Severity: Warning, Weight: 5, Detect: staticDetector(false)},
	}
}

func TestSelectFramework(t *testing.T) {
	for _, name := range FrameworkNames() {
		fw, err := Select(name)
		require.NoError(t, err)
		require.Equal(t, name, fw.Name)
		require.NotEmpty(t, fw.Categories)
	}

	_, err := Select("soc2")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownFramework))
	require.Contains(t, err.Error(), "soc2")
}

func TestFrameworkCategorySelection(t *testing.T) {
	cases := []struct {
		name string
		want int
	}{
		{"all", 8},
		{"eu-ai-act", 5},
		{"gdpr", 4},
		{"owasp-llm", 4},
		{"nist-ai-rmf", 8},
	}
	for _, tc := range cases {
		fw, err := Select(tc.name)
		require.NoError(t, err)
		require.Len(t, fw.Categories, tc.want, "framework %s", tc.name)
	}
}

func TestNewRegistryRejectsBadCatalogs(t *testing.T) {
	good := secretsCatalog(false, false)

	cases := []struct {
		name   string
		mutate func([]Rule) []Rule
	}{
		{"empty id", func(rs []Rule) []Rule { rs[0].ID = ""; return rs }},
		{"duplicate id", func(rs []Rule) []Rule { rs[1].ID = rs[0].ID; return rs }},
		{"unknown category", func(rs []Rule) []Rule { rs[0].Category = Category(99); return rs }},
		{"pass severity", func(rs []Rule) []Rule { rs[0].Severity = Pass; return rs }},
		{"zero weight", func(rs []Rule) []Rule { rs[0].Weight = 0; return rs }},
		{"nil detector", func(rs []Rule) []Rule { rs[0].Detect = nil; return rs }},
		{"weight sum mismatch", func(rs []Rule) []Rule { rs[0].Weight = 4; return rs }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rules := tc.mutate(append([]Rule{}, good...))
			_, err := NewRegistry(rules)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInternalConsistency))
		})
	}

	_, err := NewRegistry(good)
	require.NoError(t, err)
}

func TestRatingBoundaries(t *testing.T) {
	cases := []struct {
		pct  float64
		want string
	}{
		{100, RatingReady},
		{80, RatingReady},
		{79.9, RatingPartial},
		{60, RatingPartial},
		{59.9, RatingExposed},
		{40, RatingExposed},
		{39.9, RatingCritical},
		{0, RatingCritical},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, RatingFor(tc.pct), "pct %v", tc.pct)
	}
}

func TestCIGate(t *testing.T) {
	require.True(t, (&Result{Percent: 70}).CIPass())
	require.True(t, (&Result{Percent: 100}).CIPass())
	require.False(t, (&Result{Percent: 69.9}).CIPass())
}

func TestWorst(t *testing.T) {
	require.Equal(t, Pass, Worst())
	require.Equal(t, Critical, Worst(Pass, Critical, Warning))
	require.Equal(t, Warning, Worst(Pass, Warning))
}

func TestScanScoring(t *testing.T) {
	reg, err := NewRegistry(secretsCatalog(true, true))
	require.NoError(t, err)
	snap := &snapshot.Snapshot{Root: "proj"}

	res, err := Scan(snap, "all", reg, Options{})
	require.NoError(t, err)

	// Critical forfeits 5, warning earns half of 5, pass earns 5.
	require.Equal(t, 7.5, res.Score)
	require.Equal(t, 15, res.MaxScore)
	require.Equal(t, 50.0, res.Percent)
	require.Equal(t, RatingExposed, res.Rating)
	require.False(t, res.CIPass())

	require.Len(t, res.Categories, 1)
	require.Equal(t, SecretsAccess, res.Categories[0].Category)
	require.Equal(t, 7.5, res.Categories[0].Awarded)
	require.Equal(t, 15, res.Categories[0].Max)

	require.Equal(t, Summary{Passed: 1, Warnings: 1, Critical: 1}, res.Summary)
}

func TestScanPartialCreditOption(t *testing.T) {
	reg, err := NewRegistry(secretsCatalog(false, true))
	require.NoError(t, err)
	snap := &snapshot.Snapshot{Root: "proj"}

	res, err := Scan(snap, "all", reg, Options{PartialCredit: 0.25})
	require.NoError(t, err)
	// 5 + 5*0.25 + 5 = 11.25, rounded to one decimal.
	require.Equal(t, 11.3, res.Score)
}

func TestScanFindingOrder(t *testing.T) {
	rules := []Rule{
		{ID: "T003", Category: SecretsAccess, Severity: Warning, Weight: 5, Detect: staticDetector(true)},
		{ID: "T001", Category: SecretsAccess, Severity: Critical, Weight: 5, Detect: staticDetector(true)},
		{ID: "T002", Category: SecretsAccess, Severity: Warning, Weight: 5, Detect: staticDetector(false)},
	}
	reg, err := NewRegistry(rules)
	require.NoError(t, err)

	res, err := Scan(&snapshot.Snapshot{Root: "proj"}, "all", reg, Options{})
	require.NoError(t, err)

	var ids []string
	for _, f := range res.Findings {
		ids = append(ids, f.RuleID)
	}
	require.Equal(t, []string{"T001", "T003", "T002"}, ids)
}

func TestScanDeterministic(t *testing.T) {
	reg, err := NewRegistry(secretsCatalog(true, false))
	require.NoError(t, err)
	snap := &snapshot.Snapshot{Root: "proj"}

	first, err := Scan(snap, "all", reg, Options{})
	require.NoError(t, err)
	second, err := Scan(snap, "all", reg, Options{})
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	require.Equal(t, string(a), string(b))
}

func TestScanUnknownFramework(t *testing.T) {
	reg, err := NewRegistry(secretsCatalog(false, false))
	require.NoError(t, err)

	_, err = Scan(&snapshot.Snapshot{Root: "proj"}, "hipaa", reg, Options{})
	require.True(t, errors.Is(err, ErrUnknownFramework))
}

func TestScanInvalidSelection(t *testing.T) {
	// The registry only scores Secrets & Access; eu-ai-act excludes it, so
	// the selection is empty.
	reg, err := NewRegistry(secretsCatalog(false, false))
	require.NoError(t, err)

	_, err = Scan(&snapshot.Snapshot{Root: "proj"}, "eu-ai-act", reg, Options{})
	require.True(t, errors.Is(err, ErrInvalidSelection))
}

func TestStatusJSON(t *testing.T) {
	data, err := json.Marshal(Critical)
	require.NoError(t, err)
	require.JSONEq(t, `"critical"`, string(data))

	var s Status
	require.NoError(t, json.Unmarshal([]byte(`"warning"`), &s))
	require.Equal(t, Warning, s)
}

func TestCategoryJSON(t *testing.T) {
	data, err := json.Marshal(Art22Accountability)
	require.NoError(t, err)
	require.JSONEq(t, `"Art. 22 Accountability"`, string(data))

	var c Category
	require.NoError(t, json.Unmarshal(data, &c))
	require.Equal(t, Art22Accountability, c)
}
