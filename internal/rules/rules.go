// Package rules holds the static governance rule catalog: pattern-based
// detectors over a project snapshot, grouped by scoring category. Detectors
// are pure functions of the snapshot and safe to run concurrently.
package rules

import (
	"path"
	"regexp"
	"strings"

	"github.com/agentshield/agentshield/internal/engine"
	"github.com/agentshield/agentshield/internal/snapshot"
)

// maxEvidence caps the evidence list per finding so one noisy file cannot
// flood a report.
const maxEvidence = 5

// codeExts covers the agent-code languages the detectors understand.
var codeExts = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
}

// configExts covers declarative agent and tool configuration.
var configExts = map[string]bool{
	".yaml": true, ".yml": true, ".toml": true, ".json": true,
}

// codeAndConfigExts is the union used by the secret scanner.
var codeAndConfigExts = union(codeExts, configExts)

// codeAndYamlExts is code plus YAML, for checks where oversight or data
// handling is often declared in pipeline config.
var codeAndYamlExts = union(codeExts, map[string]bool{".yaml": true, ".yml": true})

func union(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

func fileExt(f snapshot.File) string {
	return strings.ToLower(path.Ext(f.Path))
}

// eachText visits every readable text file whose extension is in exts.
func eachText(snap *snapshot.Snapshot, exts map[string]bool, visit func(f snapshot.File)) {
	for _, f := range snap.Files {
		if !f.Text || f.Unreadable || f.Oversize {
			continue
		}
		if !exts[fileExt(f)] {
			continue
		}
		visit(f)
	}
}

// anyMatch reports whether any file in exts matches any of the patterns.
func anyMatch(snap *snapshot.Snapshot, exts map[string]bool, patterns []*regexp.Regexp) bool {
	found := false
	eachText(snap, exts, func(f snapshot.File) {
		if found {
			return
		}
		for _, re := range patterns {
			if re.MatchString(f.Content) {
				found = true
				return
			}
		}
	})
	return found
}

// matchLocations collects file:line evidence for every pattern hit, capped
// at maxEvidence.
func matchLocations(snap *snapshot.Snapshot, exts map[string]bool, patterns []*regexp.Regexp) []engine.Location {
	var locs []engine.Location
	eachText(snap, exts, func(f snapshot.File) {
		for _, re := range patterns {
			for _, idx := range re.FindAllStringIndex(f.Content, -1) {
				locs = append(locs, engine.Location{
					Path: f.Path,
					Line: lineAt(f.Content, idx[0]),
				})
			}
		}
	})
	if len(locs) > maxEvidence {
		locs = locs[:maxEvidence]
	}
	return locs
}

// lineAt converts a byte offset into a 1-based line number.
func lineAt(content string, off int) int {
	if off > len(content) {
		off = len(content)
	}
	return strings.Count(content[:off], "\n") + 1
}

func compileAll(exprs []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// presence builds the common detector shape: pass when any pattern matches
// in the given file set, fail otherwise.
func presence(exts map[string]bool, patterns []*regexp.Regexp, passTitle, passDetail, failTitle, failDetail string) engine.Detector {
	return func(snap *snapshot.Snapshot) engine.Signal {
		if anyMatch(snap, exts, patterns) {
			return pass(passTitle, passDetail)
		}
		return fail(failTitle, failDetail)
	}
}

func pass(title, detail string) engine.Signal {
	return engine.Signal{Title: title, Detail: detail}
}

func fail(title, detail string, evidence ...engine.Location) engine.Signal {
	return engine.Signal{Failed: true, Title: title, Detail: detail, Evidence: evidence}
}

// joinCapped joins up to n items, appending an ellipsis marker when more
// were found.
func joinCapped(items []string, n int) string {
	if len(items) <= n {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:n], ", ") + ", ..."
}

// dedupe keeps first occurrences, preserving order.
func dedupe(items []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
