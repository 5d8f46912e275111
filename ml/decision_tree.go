package ml

import (
	"errors"
	"fmt"
)

// DecisionTree walks an exported tree whose leaves hold per-class sample
// counts (or weights).
type DecisionTree struct {
	classes []int
	nodes   []TreeNode
}

type TreeNode struct {
	FeatureIdx int       `json:"feature_idx"`
	Threshold  float64   `json:"threshold"`
	LeftChild  int       `json:"left_child"`
	RightChild int       `json:"right_child"`
	IsLeaf     bool      `json:"is_leaf"`
	Value      []float64 `json:"value"`
}

func NewDecisionTree(classes []int, nodes []TreeNode) (*DecisionTree, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptyArtifact
	}
	width := 0
	for i, node := range nodes {
		if !node.IsLeaf {
			if node.LeftChild < 0 || node.LeftChild >= len(nodes) || node.RightChild < 0 || node.RightChild >= len(nodes) {
				return nil, fmt.Errorf("node %d: child index out of range", i)
			}
			continue
		}
		if width == 0 {
			width = len(node.Value)
		}
		if len(node.Value) == 0 || len(node.Value) != width {
			return nil, fmt.Errorf("%w: leaf %d has %d class values", ErrDimensionMismatch, i, len(node.Value))
		}
	}
	if width == 0 {
		return nil, errors.New("tree has no leaves")
	}
	if len(classes) == 0 {
		classes = make([]int, width)
		for i := range classes {
			classes[i] = i
		}
	}
	if len(classes) != width {
		return nil, fmt.Errorf("%w: %d classes for %d leaf values", ErrDimensionMismatch, len(classes), width)
	}
	return &DecisionTree{classes: append([]int(nil), classes...), nodes: nodes}, nil
}

func (dt *DecisionTree) Predict(features []float64) (int, error) {
	proba, err := dt.PredictProba(features)
	if err != nil {
		return 0, err
	}
	return dt.classes[argmax(proba)], nil
}

func (dt *DecisionTree) PredictProba(features []float64) ([]float64, error) {
	leaf, err := dt.leaf(features)
	if err != nil {
		return nil, err
	}
	return normalize(leaf.Value), nil
}

func (dt *DecisionTree) leaf(features []float64) (TreeNode, error) {
	idx := 0
	for steps := 0; steps <= len(dt.nodes); steps++ {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return TreeNode{}, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
	return TreeNode{}, errors.New("invalid tree state")
}
