package aggregate

import (
	"strings"

	"github.com/rewired-gh/vgdash/internal/models"
)

// DefaultHierarchy is used when no ordering is chosen.
var DefaultHierarchy = []models.Dimension{models.DimPublisher, models.DimGenre, models.DimPlatform}

// RootLabel names the hierarchy root.
const RootLabel = "Entire Market"

// Node is one path prefix of a hierarchy. Value is the summed metric over all
// records sharing the prefix.
type Node struct {
	ID       string           `json:"id"`
	Label    string           `json:"label"`
	Dim      models.Dimension `json:"dim"`
	Depth    int              `json:"depth"`
	Value    float64          `json:"value"`
	Children []*Node          `json:"children,omitempty"`

	childIndex map[string]*Node
}

// Hierarchy is a rollup keyed by an ordered list of dimensions.
type Hierarchy struct {
	Dims   []models.Dimension `json:"dims"`
	Metric models.Metric      `json:"metric"`
	Root   *Node              `json:"root"`
}

// PathRow is a flattened hierarchy node: the dimension values from the root
// down to the node and the node's value.
type PathRow struct {
	Path  []string `json:"path"`
	Value float64  `json:"value"`
}

// HierarchyPath builds the rollup of metric over dims. An empty dims falls
// back to DefaultHierarchy; repeated dimensions collapse to their first
// occurrence. Children keep encounter order.
func HierarchyPath(rows []models.Record, dims []models.Dimension, metric models.Metric) Hierarchy {
	dims = normalizeDims(dims)
	root := &Node{ID: RootLabel, Label: RootLabel}

	for _, r := range rows {
		v := metric.Value(r)
		root.Value += v
		node := root
		for depth, d := range dims {
			label := d.Value(r)
			child, ok := node.childIndex[label]
			if !ok {
				child = &Node{
					ID:    node.ID + "/" + idSegment.Replace(label),
					Label: label,
					Dim:   d,
					Depth: depth + 1,
				}
				if node.childIndex == nil {
					node.childIndex = make(map[string]*Node)
				}
				node.childIndex[label] = child
				node.Children = append(node.Children, child)
			}
			child.Value += v
			node = child
		}
	}

	return Hierarchy{Dims: dims, Metric: metric, Root: root}
}

// idSegment escapes the separator so a label containing "/" can never name a
// deeper path.
var idSegment = strings.NewReplacer("%", "%25", "/", "%2F")

func normalizeDims(dims []models.Dimension) []models.Dimension {
	if len(dims) == 0 {
		return append([]models.Dimension(nil), DefaultHierarchy...)
	}
	return dedupeDims(dims)
}

func dedupeDims(dims []models.Dimension) []models.Dimension {
	seen := make(map[models.Dimension]bool, len(dims))
	out := make([]models.Dimension, 0, len(dims))
	for _, d := range dims {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

// Rows flattens the hierarchy depth-first into one row per path prefix,
// excluding the root.
func (h Hierarchy) Rows() []PathRow {
	out := []PathRow{}
	var walk func(n *Node, path []string)
	walk = func(n *Node, path []string) {
		for _, c := range n.Children {
			p := append(append([]string(nil), path...), c.Label)
			out = append(out, PathRow{Path: p, Value: c.Value})
			walk(c, p)
		}
	}
	if h.Root != nil {
		walk(h.Root, nil)
	}
	return out
}

// Leaves returns only the full-depth rows.
func (h Hierarchy) Leaves() []PathRow {
	var out []PathRow
	for _, r := range h.Rows() {
		if len(r.Path) == len(h.Dims) {
			out = append(out, r)
		}
	}
	return out
}

// Describe renders the ordering as "Publisher -> Genre -> Platform".
func (h Hierarchy) Describe() string {
	names := make([]string, len(h.Dims))
	for i, d := range h.Dims {
		names[i] = d.Label()
	}
	return strings.Join(names, " -> ")
}
