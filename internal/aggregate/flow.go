package aggregate

import (
	"github.com/rewired-gh/vgdash/internal/models"
)

// FlowNode is one distinct value of one stage. IDs are namespaced by stage so
// a genre and a platform sharing a literal value stay separate nodes.
type FlowNode struct {
	ID    string           `json:"id"`
	Label string           `json:"label"`
	Stage models.Dimension `json:"stage"`
	Value float64          `json:"value"`
}

// FlowEdge is a weighted link between nodes of adjacent stages.
type FlowEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// Flow is a node/edge graph over consecutive dimension stages.
type Flow struct {
	Stages []models.Dimension `json:"stages"`
	Metric models.Metric      `json:"metric"`
	Nodes  []FlowNode         `json:"nodes"`
	Edges  []FlowEdge         `json:"edges"`
}

// NodeID namespaces a stage value.
func NodeID(stage models.Dimension, value string) string {
	return stage.String() + ":" + value
}

// FlowGraph builds one edge per adjacent-stage pair per observed combination,
// weighted by summed metric. Nodes are the distinct values of every stage in
// stage order, then encounter order. With fewer than two stages the graph has
// nodes but no edges. A stage listed twice keeps only its first position.
func FlowGraph(rows []models.Record, stages []models.Dimension, metric models.Metric) Flow {
	stages = dedupeDims(stages)
	out := Flow{
		Stages: append([]models.Dimension(nil), stages...),
		Metric: metric,
		Nodes:  []FlowNode{},
		Edges:  []FlowEdge{},
	}

	for _, stage := range stages {
		grouped := GroupSum(rows, []models.Dimension{stage}, metric)
		for _, r := range grouped.Rows {
			out.Nodes = append(out.Nodes, FlowNode{
				ID:    NodeID(stage, r.Key(0)),
				Label: r.Key(0),
				Stage: stage,
				Value: r.Value,
			})
		}
	}

	for i := 0; i+1 < len(stages); i++ {
		src, dst := stages[i], stages[i+1]
		grouped := GroupSum(rows, []models.Dimension{src, dst}, metric)
		for _, r := range grouped.Rows {
			out.Edges = append(out.Edges, FlowEdge{
				Source: NodeID(src, r.Key(0)),
				Target: NodeID(dst, r.Key(1)),
				Weight: r.Value,
			})
		}
	}
	return out
}

// Outflow sums edge weights leaving each node.
func (f Flow) Outflow() map[string]float64 {
	out := make(map[string]float64)
	for _, e := range f.Edges {
		out[e.Source] += e.Weight
	}
	return out
}

// Node returns the node with id.
func (f Flow) Node(id string) (FlowNode, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return FlowNode{}, false
}
