package engine

import (
	"encoding/json"
	"fmt"
)

// Status is a finding outcome. The numeric order doubles as the severity
// order used for tie-breaks: CRITICAL > WARNING > PASS.
type Status int

const (
	Pass Status = iota
	Warning
	Critical
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "pass":
		*s = Pass
	case "warning":
		*s = Warning
	case "critical":
		*s = Critical
	default:
		return fmt.Errorf("unknown status %q", name)
	}
	return nil
}

// Worst reduces a set of per-detector signals to the most severe outcome.
// Governance findings must never be optimistic under ambiguity.
func Worst(statuses ...Status) Status {
	worst := Pass
	for _, s := range statuses {
		if s > worst {
			worst = s
		}
	}
	return worst
}
