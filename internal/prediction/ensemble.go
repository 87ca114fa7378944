package prediction

import (
	"fmt"
	"math"
)

// Node is one node of a regression tree. A node with Leaf set is terminal.
// Splits send x < Threshold left, x >= Threshold right and NaN to Missing.
type Node struct {
	ID        int      `json:"id"`
	Feature   int      `json:"feature"`
	Threshold float64  `json:"threshold"`
	Left      int      `json:"left"`
	Right     int      `json:"right"`
	Missing   *int     `json:"missing,omitempty"`
	Leaf      *float64 `json:"leaf,omitempty"`
	Cover     float64  `json:"cover"`
}

func (n *Node) isLeaf() bool {
	return n.Leaf != nil
}

// next returns the child selected by x
func (n *Node) next(x float64) int {
	if math.IsNaN(x) {
		if n.Missing != nil {
			return *n.Missing
		}
		return n.Left
	}
	if x < n.Threshold {
		return n.Left
	}
	return n.Right
}

// Tree is a regression tree stored as a node array rooted at index 0
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Ensemble is a gradient boosted sum of trees
type Ensemble struct {
	BaseScore float64 `json:"base_score"`
	Trees     []Tree  `json:"trees"`
}

// validate checks node ids, feature indexes and that every child comes after
// its parent, which rules out cycles
func (e *Ensemble) validate(width int) error {
	if len(e.Trees) == 0 {
		return fmt.Errorf("%w: ensemble has no trees", ErrInvalidArtifact)
	}
	for t, tree := range e.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("%w: tree %d is empty", ErrInvalidArtifact, t)
		}
		for i, n := range tree.Nodes {
			if n.ID != i {
				return fmt.Errorf("%w: tree %d node %d has id %d", ErrInvalidArtifact, t, i, n.ID)
			}
			if n.isLeaf() {
				continue
			}
			if n.Feature < 0 || n.Feature >= width {
				return fmt.Errorf("%w: tree %d node %d splits on feature %d of %d", ErrInvalidArtifact, t, i, n.Feature, width)
			}
			children := []int{n.Left, n.Right}
			if n.Missing != nil {
				children = append(children, *n.Missing)
			}
			for _, c := range children {
				if c <= i || c >= len(tree.Nodes) {
					return fmt.Errorf("%w: tree %d node %d has child %d", ErrInvalidArtifact, t, i, c)
				}
			}
		}
	}
	return nil
}

// path walks tree from the root to the leaf selected by features
func (tree *Tree) path(features []float64) []int {
	path := []int{0}
	i := 0
	for !tree.Nodes[i].isLeaf() {
		n := &tree.Nodes[i]
		i = n.next(features[n.Feature])
		path = append(path, i)
	}
	return path
}

// Predict returns BaseScore plus the leaf value of every tree
func (e *Ensemble) Predict(features []float64) float64 {
	sum := e.BaseScore
	for t := range e.Trees {
		tree := &e.Trees[t]
		path := tree.path(features)
		sum += *tree.Nodes[path[len(path)-1]].Leaf
	}
	return sum
}

// expectations returns the cover-weighted mean leaf value under every node
func (tree *Tree) expectations() ([]float64, error) {
	exp := make([]float64, len(tree.Nodes))
	// children always follow their parent, so a reverse sweep sees them first
	for i := len(tree.Nodes) - 1; i >= 0; i-- {
		n := &tree.Nodes[i]
		if n.isLeaf() {
			exp[i] = *n.Leaf
			continue
		}
		left, right := &tree.Nodes[n.Left], &tree.Nodes[n.Right]
		total := left.Cover + right.Cover
		if total <= 0 {
			return nil, fmt.Errorf("node %d has no cover statistics", i)
		}
		exp[i] = (left.Cover*exp[n.Left] + right.Cover*exp[n.Right]) / total
	}
	return exp, nil
}

// contributions attributes each tree's output to the features split on along
// the decision path. The result satisfies bias + sum(contribs) == Predict.
func (e *Ensemble) contributions(features []float64) (bias float64, contribs []float64, err error) {
	contribs = make([]float64, len(features))
	bias = e.BaseScore
	for t := range e.Trees {
		tree := &e.Trees[t]
		exp, err := tree.expectations()
		if err != nil {
			return 0, nil, fmt.Errorf("tree %d: %w", t, err)
		}
		bias += exp[0]
		path := tree.path(features)
		for k := 1; k < len(path); k++ {
			parent := &tree.Nodes[path[k-1]]
			contribs[parent.Feature] += exp[path[k]] - exp[path[k-1]]
		}
	}
	return bias, contribs, nil
}
