package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/groundworklabs/groundwork/internal/model"
)

// groundRuleJSON is the JSON rendering of one ground rule.
type groundRuleJSON struct {
	Pos          []string `json:"pos"`
	Neg          []string `json:"neg,omitempty"`
	Weight       float64  `json:"weight,omitempty"`
	Hard         bool     `json:"hard,omitempty"`
	Multiplicity int      `json:"multiplicity"`
}

// Render formats ground rules in insertion order as text or JSON.
func Render(format string, rules []*model.GroundRule, reg *model.Registry) (string, error) {
	switch format {
	case "text":
		var buf bytes.Buffer
		for _, r := range rules {
			if r.Hard {
				fmt.Fprintf(&buf, "hard: %s\n", r.String(reg))
			} else {
				fmt.Fprintf(&buf, "%g: %s\n", r.Weight, r.String(reg))
			}
		}
		fmt.Fprintf(&buf, "%d ground rules\n", len(rules))
		return buf.String(), nil

	case "json":
		out := make([]groundRuleJSON, len(rules))
		for i, r := range rules {
			item := groundRuleJSON{
				Weight:       r.Weight,
				Hard:         r.Hard,
				Multiplicity: r.Multiplicity(),
			}
			for _, a := range r.Pos {
				item.Pos = append(item.Pos, a.String(reg))
			}
			for _, a := range r.Neg {
				item.Neg = append(item.Neg, a.String(reg))
			}
			out[i] = item
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return "", fmt.Errorf("render json: %w", err)
		}
		return string(data) + "\n", nil

	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}
