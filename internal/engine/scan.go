package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/agentshield/agentshield/internal/snapshot"
)

// DefaultPartialCredit is the fraction of a rule's weight awarded on a
// WARNING finding: a partial gap, not a total miss.
const DefaultPartialCredit = 0.5

// Options tune scoring. The zero value selects the defaults.
type Options struct {
	// PartialCredit is the weight fraction awarded for WARNING findings.
	// Must stay within (0, 1); zero selects DefaultPartialCredit.
	PartialCredit float64
}

func (o Options) partialCredit() float64 {
	if o.PartialCredit == 0 {
		return DefaultPartialCredit
	}
	return o.PartialCredit
}

// Scan runs the full pipeline: select rules, match, score, rate. One scan is
// a pure computation from (snapshot, framework) to Result; fatal conditions
// abort before any finding is produced.
func Scan(snap *snapshot.Snapshot, frameworkName string, reg *Registry, opts Options) (*Result, error) {
	fw, err := Select(frameworkName)
	if err != nil {
		return nil, err
	}

	included := fw.CategorySet()
	rules := reg.ForCategories(included)
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: framework %q", ErrInvalidSelection, frameworkName)
	}

	signals := evaluate(snap, rules)

	findings := make([]Finding, 0, len(rules))
	awarded := map[Category]float64{}
	present := map[Category]bool{}
	for _, rule := range rules {
		present[rule.Category] = true
	}
	partial := opts.partialCredit()

	for i, rule := range rules {
		sig := signals[i]
		status := Pass
		if sig.Failed {
			// The severity of a failed rule is fixed on the rule;
			// detectors only report the gap.
			status = rule.Severity
		}

		switch status {
		case Pass:
			awarded[rule.Category] += float64(rule.Weight)
		case Warning:
			awarded[rule.Category] += float64(rule.Weight) * partial
		case Critical:
			// no credit
		}

		f := Finding{
			RuleID:   rule.ID,
			Category: rule.Category,
			Status:   status,
			Title:    sig.Title,
			Detail:   sig.Detail,
			Evidence: sig.Evidence,
		}
		if status != Pass {
			for _, c := range rule.Citations {
				f.Citations = append(f.Citations, c.String())
			}
			f.Fix = rule.Fix
		}
		findings = append(findings, f)
	}

	var scores []CategoryScore
	var totalAwarded float64
	totalMax := 0
	for _, cat := range Categories() {
		if !included[cat] || !present[cat] {
			continue
		}
		pts := round1(awarded[cat])
		if pts < 0 || pts > float64(cat.Max()) {
			return nil, fmt.Errorf("%w: category %q awarded %.1f of max %d",
				ErrInternalConsistency, cat, pts, cat.Max())
		}
		scores = append(scores, CategoryScore{Category: cat, Awarded: pts, Max: cat.Max()})
		totalAwarded += pts
		totalMax += cat.Max()
	}
	if totalMax == 0 {
		return nil, fmt.Errorf("%w: framework %q", ErrInvalidSelection, frameworkName)
	}

	sortFindings(findings)

	pct := round1(100 * totalAwarded / float64(totalMax))
	res := &Result{
		Project:    snap.Root,
		Framework:  fw.Name,
		Categories: scores,
		Score:      round1(totalAwarded),
		MaxScore:   totalMax,
		Percent:    pct,
		Rating:     RatingFor(pct),
		Findings:   findings,
	}
	for _, f := range findings {
		switch f.Status {
		case Pass:
			res.Summary.Passed++
		case Warning:
			res.Summary.Warnings++
		case Critical:
			res.Summary.Critical++
		}
	}
	return res, nil
}

// evaluate runs every detector. Detectors are independent pure functions of
// the shared read-only snapshot, so they run concurrently; each result lands
// in its own slot and the caller reorders deterministically afterward.
func evaluate(snap *snapshot.Snapshot, rules []Rule) []Signal {
	signals := make([]Signal, len(rules))
	var wg sync.WaitGroup
	for i, rule := range rules {
		wg.Add(1)
		go func(i int, detect Detector) {
			defer wg.Done()
			signals[i] = detect(snap)
		}(i, rule.Detect)
	}
	wg.Wait()
	return signals
}

// sortFindings applies the ordering contract: CRITICAL first, then WARNING,
// then PASS; ties broken by category enumeration order, then rule id.
func sortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Status != findings[j].Status {
			return findings[i].Status > findings[j].Status
		}
		if findings[i].Category != findings[j].Category {
			return findings[i].Category < findings[j].Category
		}
		return findings[i].RuleID < findings[j].RuleID
	})
}
