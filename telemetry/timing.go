package telemetry

import (
	"io"
	"sync"
	"time"

	"github.com/robinvdvleuten/mymoney/output"
)

// TimingCollector builds a tree of timed operations.
type TimingCollector struct {
	mu    sync.Mutex
	roots []*timerNode
	now   func() time.Time
}

type timerNode struct {
	name     string
	start    time.Time
	end      time.Time
	children []*timerNode
}

// NewTimingCollector creates an empty collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{now: time.Now}
}

// Start begins a top-level timer.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{name: name, start: c.now()}
	c.roots = append(c.roots, node)

	return &timingTimer{collector: c, node: node}
}

// Report prints every top-level timer with its children. Nothing is written
// when no timer was started.
func (c *TimingCollector) Report(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	styles := output.NewStyles(w)
	for _, root := range c.roots {
		writeTree(w, root, styles)
	}
}

type timingTimer struct {
	collector *TimingCollector
	node      *timerNode
}

func (t *timingTimer) End() {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	if t.node.end.IsZero() {
		t.node.end = t.collector.now()
	}
}

func (t *timingTimer) Child(name string) Timer {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	node := &timerNode{name: name, start: t.collector.now()}
	t.node.children = append(t.node.children, node)

	return &timingTimer{collector: t.collector, node: node}
}

// duration of a node; timers that were never ended count up to now.
func (n *timerNode) duration(now time.Time) time.Duration {
	end := n.end
	if end.IsZero() {
		end = now
	}
	return end.Sub(n.start)
}
