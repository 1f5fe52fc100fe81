package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when a result assertion fails. It carries the
// full stage trace so failures are debuggable without re-running.
type AssertionError struct {
	Expected string
	Actual   string
	Result   *Result
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "assertion failed\n")
	fmt.Fprintf(&b, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&b, "  Actual: %s\n", e.Actual)
	fmt.Fprintf(&b, "\nFull trace:\n%s", e.Result.RenderText())
	return b.String()
}

// Stage returns the stage with the given label.
func (r *Result) Stage(label string) (Stage, error) {
	for _, s := range r.Stages {
		if s.Label == label {
			return s, nil
		}
	}
	return Stage{}, &AssertionError{
		Expected: fmt.Sprintf("stage %q present", label),
		Actual:   fmt.Sprintf("%d stages, none matching", len(r.Stages)),
		Result:   r,
	}
}

// CheckRuleCount verifies the number of ground rules at a stage.
func (r *Result) CheckRuleCount(label string, want int) error {
	stage, err := r.Stage(label)
	if err != nil {
		return err
	}
	if len(stage.Rules) != want {
		return &AssertionError{
			Expected: fmt.Sprintf("%d ground rules at %q", want, label),
			Actual:   fmt.Sprintf("%d ground rules", len(stage.Rules)),
			Result:   r,
		}
	}
	return nil
}

// CheckContainsRule verifies a rendered rule is present at a stage.
func (r *Result) CheckContainsRule(label, rule string) error {
	stage, err := r.Stage(label)
	if err != nil {
		return err
	}
	for _, have := range stage.Rules {
		if have == rule {
			return nil
		}
	}
	return &AssertionError{
		Expected: fmt.Sprintf("rule %q at %q", rule, label),
		Actual:   "not present",
		Result:   r,
	}
}
