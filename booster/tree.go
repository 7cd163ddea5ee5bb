package booster

// Node is one node of a regression tree. Leaf values carry one entry per
// output dimension: a scalar for binary/regression trees, a k-vector for
// multiclass trees.
type Node struct {
	SplitFeature int
	Threshold    float64
	LeftChild    int
	RightChild   int
	IsLeaf       bool
	LeafValue    []float64
}

// Tree is a single boosting tree with vector leaves. Shrinkage is already
// applied to the stored leaf values.
type Tree struct {
	Nodes     []Node
	OutputDim int
}

// PredictRow walks the tree for one feature row and returns the leaf value.
func (t *Tree) PredictRow(row []float64) []float64 {
	nodeIdx := 0
	for {
		node := &t.Nodes[nodeIdx]
		if node.IsLeaf {
			return node.LeafValue
		}
		if row[node.SplitFeature] <= node.Threshold {
			nodeIdx = node.LeftChild
		} else {
			nodeIdx = node.RightChild
		}
	}
}

// NumLeaves returns the number of leaf nodes.
func (t *Tree) NumLeaves() int {
	count := 0
	for i := range t.Nodes {
		if t.Nodes[i].IsLeaf {
			count++
		}
	}
	return count
}
