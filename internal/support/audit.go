package support

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// AuditEntry is one line of the append-only scan trail. The report itself
// stays timestamp-free; wall-clock history lives here.
type AuditEntry struct {
	TimestampUtc string  `json:"timestampUtc"`
	ScanID       string  `json:"scanId"`
	Project      string  `json:"project"`
	Framework    string  `json:"framework"`
	Score        float64 `json:"score"`
	MaxScore     int     `json:"maxScore"`
	Percent      float64 `json:"pct"`
	Rating       string  `json:"rating"`
	Passed       int     `json:"passed"`
	Warnings     int     `json:"warnings"`
	Critical     int     `json:"critical"`
}

// AppendAudit records one scan as a JSONL line under outputDir/audit.log.
// Timestamp and scan id are assigned here so callers stay deterministic.
func AppendAudit(outputDir string, entry AuditEntry) error {
	entry.TimestampUtc = time.Now().UTC().Format(time.RFC3339)
	entry.ScanID = uuid.NewString()
	path := filepath.Join(outputDir, "audit.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}
