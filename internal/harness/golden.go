package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertGolden compares the rendered result against the golden trace in
// testdata/<name>.golden. Run the tests with -update to refresh golden
// files after an intentional behavior change.
func AssertGolden(t *testing.T, result *Result) {
	t.Helper()
	g := goldie.New(t)
	g.Assert(t, result.Name, []byte(result.RenderText()))
}
