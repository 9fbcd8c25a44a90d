package engine

import (
	"encoding/json"
	"fmt"
)

// Category is one of the fixed governance dimensions. Enumeration order is
// the canonical category order used for finding tie-breaks and report layout.
type Category int

const (
	SecretsAccess Category = iota
	AuditLogging
	HumanOversight
	DataClassification
	ErrorHandling
	Documentation
	Art14Oversight
	Art22Accountability
)

// categoryMax declares the point pool per category. The per-rule weights in
// the catalog must sum to exactly these values; NewRegistry enforces that.
var categoryMax = map[Category]int{
	SecretsAccess:       15,
	AuditLogging:        20,
	HumanOversight:      20,
	DataClassification:  15,
	ErrorHandling:       15,
	Documentation:       15,
	Art14Oversight:      15,
	Art22Accountability: 15,
}

var categoryNames = map[Category]string{
	SecretsAccess:       "Secrets & Access",
	AuditLogging:        "Audit & Logging",
	HumanOversight:      "Human Oversight",
	DataClassification:  "Data Classification",
	ErrorHandling:       "Error Handling",
	Documentation:       "Documentation",
	Art14Oversight:      "Art. 14 Automated-Decision Oversight",
	Art22Accountability: "Art. 22 Accountability",
}

// Categories returns every category in enumeration order.
func Categories() []Category {
	return []Category{
		SecretsAccess,
		AuditLogging,
		HumanOversight,
		DataClassification,
		ErrorHandling,
		Documentation,
		Art14Oversight,
		Art22Accountability,
	}
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Max returns the category's declared point pool.
func (c Category) Max() int {
	return categoryMax[c]
}

func (c Category) valid() bool {
	_, ok := categoryMax[c]
	return ok
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for cat, n := range categoryNames {
		if n == name {
			*c = cat
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", name)
}
