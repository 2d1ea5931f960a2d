package canopy

import "time"

// debugStats holds per-step timing. Only populated when Scene.debug is true.
type debugStats struct {
	inputTime    time.Duration
	activityTime time.Duration
	boundsTime   time.Duration
	activities   int
	nodes        int
}

// debugLog reports step timing at debug level.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	Logger().Debug("scene step",
		"input", stats.inputTime,
		"activities", stats.activityTime,
		"bounds", stats.boundsTime,
		"total", stats.inputTime+stats.activityTime+stats.boundsTime,
		"scheduled", stats.activities,
		"nodes", stats.nodes)
}

const (
	debugMaxTreeDepth  = 32
	debugMaxChildCount = 1000
)

// debugCheckTree walks the tree from n, warns about nodes nested deeper than
// debugMaxTreeDepth or holding more than debugMaxChildCount children, and
// returns the number of nodes visited.
func debugCheckTree(n *Node, depth int) int {
	if depth == debugMaxTreeDepth+1 {
		Logger().Warn("tree depth exceeds threshold",
			"node", n.Name, "depth", depth, "threshold", debugMaxTreeDepth)
	}
	if len(n.children) > debugMaxChildCount {
		Logger().Warn("child count exceeds threshold",
			"node", n.Name, "children", len(n.children), "threshold", debugMaxChildCount)
	}
	count := 1
	for _, child := range n.children {
		count += debugCheckTree(child, depth+1)
	}
	return count
}
