package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentshield/agentshield/internal/engine"
	"github.com/agentshield/agentshield/internal/render"
	"github.com/agentshield/agentshield/internal/rules"
	"github.com/agentshield/agentshield/internal/snapshot"
	"github.com/agentshield/agentshield/internal/support"
)

// runScan executes one scan and returns the process exit code: 0 when the
// score clears the CI gate, 1 below it, 2 when the scan could not run.
func runScan(path, frameworkName, format string) int {
	res, err := scanProject(path, frameworkName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 2
	}

	out, err := render.Render(res, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 2
	}
	fmt.Println(out)

	if err := persistScan(path, res); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: could not persist scan artifacts: %v\n", err)
	}

	if res.CIPass() {
		return 0
	}
	return 1
}

// scanProject runs the pipeline against a directory using the resolved
// configuration.
func scanProject(path, frameworkName string) (*engine.Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	snap, err := snapshot.Collect(abs, snapshot.Options{
		MaxFileBytes: config.Scan.MaxFileBytes,
		SkipDirs:     config.Scan.SkipDirs,
	})
	if err != nil {
		return nil, err
	}

	catalog, err := rules.Catalog(rules.Options{
		ExtraSecretPatterns: config.Scan.ExtraSecretPatterns,
	})
	if err != nil {
		return nil, err
	}
	reg, err := engine.NewRegistry(catalog)
	if err != nil {
		return nil, err
	}

	return engine.Scan(snap, frameworkName, reg, engine.Options{
		PartialCredit: config.Scoring.PartialCredit,
	})
}

// persistScan writes report.json atomically and appends the audit line.
// Artifacts land under the output directory inside the scanned project.
func persistScan(path string, res *engine.Result) error {
	outDir := filepath.Join(path, config.Output.Dir)
	if err := support.WriteJSONAtomic(filepath.Join(outDir, "report.json"), res); err != nil {
		return err
	}
	return support.AppendAudit(outDir, support.AuditEntry{
		Project:   res.Project,
		Framework: res.Framework,
		Score:     res.Score,
		MaxScore:  res.MaxScore,
		Percent:   res.Percent,
		Rating:    res.Rating,
		Passed:    res.Summary.Passed,
		Warnings:  res.Summary.Warnings,
		Critical:  res.Summary.Critical,
	})
}
