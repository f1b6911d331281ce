package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/robinvdvleuten/mymoney/output"
)

// slowThreshold marks operations that are highlighted in reports.
const slowThreshold = 100 * time.Millisecond

// writeTree prints root and its descendants:
//
//	run 2024-01: 125ms
//	├─ rules.load: 2ms
//	├─ ingest checking: 85ms
//	└─ reconcile: 1ms
func writeTree(w io.Writer, root *timerNode, styles *output.Styles) {
	now := time.Now()
	_, _ = fmt.Fprintf(w, "%s: %s\n", styles.Keyword(root.name), formatDuration(root.duration(now)))

	for i, child := range root.children {
		writeNode(w, child, "", i == len(root.children)-1, styles, now)
	}
}

func writeNode(w io.Writer, node *timerNode, prefix string, last bool, styles *output.Styles, now time.Time) {
	branch, extension := "├─ ", "│  "
	if last {
		branch, extension = "└─ ", "   "
	}

	d := node.duration(now)
	timing := styles.Dim(formatDuration(d))
	if d >= slowThreshold {
		timing = styles.Warning(formatDuration(d))
	}
	_, _ = fmt.Fprintf(w, "%s%s: %s\n", styles.Dim(prefix+branch), node.name, timing)

	for i, child := range node.children {
		writeNode(w, child, prefix+extension, i == len(node.children)-1, styles, now)
	}
}

// formatDuration shows milliseconds below one second and seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
