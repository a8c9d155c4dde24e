package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/tphakala/phagepairs/internal/sampling"
)

// PrintSummary writes the end-of-run report: rows per label, distinct hosts
// and the hosts that fell short of their requested negatives.
func PrintSummary(w io.Writer, s sampling.Summary) error {
	var b strings.Builder

	fmt.Fprintf(&b, "rows:       %s\n", humanize.Comma(int64(s.Rows)))
	fmt.Fprintf(&b, "  label=1:  %s\n", humanize.Comma(int64(s.Positives)))
	fmt.Fprintf(&b, "  label=0:  %s\n", humanize.Comma(int64(s.Negatives)))
	fmt.Fprintf(&b, "hosts:      %s\n", humanize.Comma(int64(s.Hosts)))
	if n := len(s.TruncatedHosts); n > 0 {
		fmt.Fprintf(&b, "truncated:  %s (%s)\n", humanize.Comma(int64(n)), strings.Join(s.TruncatedHosts, ", "))
	}
	if n := len(s.EmptyCandidateHosts); n > 0 {
		fmt.Fprintf(&b, "no negatives: %s (%s)\n", humanize.Comma(int64(n)), strings.Join(s.EmptyCandidateHosts, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
