package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/agentshield/agentshield/internal/engine"
	"github.com/agentshield/agentshield/internal/support"
)

// runWatch rescans root whenever files change, keeping a rotated history of
// reports. It blocks until the process is interrupted.
func runWatch(root, frameworkName string) int {
	return runWatchWithStop(root, frameworkName, nil)
}

func runWatchWithStop(root, frameworkName string, stop <-chan struct{}) int {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: watch init failed: %v\n", err)
		return 2
	}
	defer watcher.Close()

	if err := addWatchRecursive(watcher, root); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: watch failed: %v\n", err)
		return 2
	}

	outputMarker := string(filepath.Separator) + config.Output.Dir + string(filepath.Separator)

	var timer *time.Timer
	debounce := 300 * time.Millisecond
	trigger := func() {
		rescan(root, frameworkName)
		writeHistorySnapshot(root)
	}

	// First scan happens immediately so the watcher starts from a known state.
	trigger()

	for {
		select {
		case <-stop:
			return 0
		case ev := <-watcher.Events:
			// Our own report writes must not retrigger the scan.
			if strings.Contains(ev.Name, outputMarker) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, trigger)
		case err := <-watcher.Errors:
			fmt.Fprintf(os.Stderr, "ERROR: watch error: %v\n", err)
		}
	}
}

func rescan(root, frameworkName string) {
	res, err := scanProject(root, frameworkName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: rescan failed: %v\n", err)
		return
	}
	if err := persistScan(root, res); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: could not persist scan artifacts: %v\n", err)
		return
	}
	status := "FAIL"
	if res.CIPass() {
		status = "PASS"
	}
	fmt.Printf("[%s] %s  %.1f%%  %s\n",
		time.Now().UTC().Format("15:04:05"), status, res.Percent, res.Rating)
}

func addWatchRecursive(w *fsnotify.Watcher, root string) error {
	outputMarker := string(filepath.Separator) + config.Output.Dir
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if strings.Contains(path, outputMarker) {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
}

// writeHistorySnapshot copies the current report into the history directory
// under a ts_sha_status name, then rotates by age and count.
func writeHistorySnapshot(root string) {
	outDir := filepath.Join(root, config.Output.Dir)
	reportPath := filepath.Join(outDir, "report.json")
	data, err := os.ReadFile(reportPath)
	if err != nil {
		return
	}
	status := "FAIL"
	var rep engine.Result
	if err := json.Unmarshal(data, &rep); err == nil && rep.CIPass() {
		status = "PASS"
	}
	sha := gitShortSHA(root)
	ts := time.Now().UTC().Format("20060102_150405")
	name := fmt.Sprintf("%s_%s_%s.report.json", ts, sha, status)
	historyDir := filepath.Join(outDir, "history")
	_ = os.MkdirAll(historyDir, 0o755)
	_ = support.CopyFileAtomic(reportPath, filepath.Join(historyDir, name))
	rotateHistory(historyDir)
}

func rotateHistory(historyDir string) {
	entries, err := os.ReadDir(historyDir)
	if err != nil {
		return
	}
	type item struct {
		name string
		time time.Time
	}
	items := []item{}
	for _, e := range entries {
		name := e.Name()
		if len(name) < 15 {
			continue
		}
		t, err := time.Parse("20060102_150405", name[:15])
		if err != nil {
			continue
		}
		items = append(items, item{name: name, time: t})
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -config.History.KeepDays)
	for _, it := range items {
		if it.time.Before(cutoff) {
			_ = os.Remove(filepath.Join(historyDir, it.name))
		}
	}
	entries, _ = os.ReadDir(historyDir)
	if len(entries) <= config.History.MaxSnapshots {
		return
	}
	sort.Slice(items, func(i, j int) bool { return items[i].time.Before(items[j].time) })
	excess := len(entries) - config.History.MaxSnapshots
	for i := 0; i < excess && i < len(items); i++ {
		_ = os.Remove(filepath.Join(historyDir, items[i].name))
	}
}

func gitShortSHA(workspace string) string {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	cmd.Dir = workspace
	out, err := cmd.Output()
	if err != nil {
		return "nogit"
	}
	return strings.TrimSpace(string(out))
}
