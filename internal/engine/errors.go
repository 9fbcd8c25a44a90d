package engine

import "errors"

var (
	// ErrUnknownFramework is returned for framework names outside the
	// closed set. The scan is aborted; the engine never silently falls
	// back to "all".
	ErrUnknownFramework = errors.New("unknown framework")

	// ErrInvalidSelection is returned when a framework selection leaves
	// nothing to score (zero categories with rules in play).
	ErrInvalidSelection = errors.New("framework selects no scorable categories")

	// ErrInternalConsistency marks a defect in the rule catalog itself:
	// duplicate ids, unknown categories, weight sums that do not match a
	// category's declared maximum, or awarded points outside [0, max].
	// It is raised loudly, never silently clamped.
	ErrInternalConsistency = errors.New("rule catalog inconsistency")
)
