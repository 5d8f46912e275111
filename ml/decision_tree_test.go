package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree(t *testing.T) *DecisionTree {
	t.Helper()
	nodes := []TreeNode{
		{FeatureIdx: 0, Threshold: 0.5, LeftChild: 1, RightChild: 2},
		{IsLeaf: true, Value: []float64{8, 2, 0}},
		{FeatureIdx: 1, Threshold: 0, LeftChild: 3, RightChild: 4},
		{IsLeaf: true, Value: []float64{0, 5, 5}},
		{IsLeaf: true, Value: []float64{1, 0, 9}},
	}
	tree, err := NewDecisionTree([]int{0, 1, 2}, nodes)
	require.NoError(t, err)
	return tree
}

func TestDecisionTreePredict(t *testing.T) {
	tree := testTree(t)

	label, err := tree.Predict([]float64{0.1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, label)

	label, err = tree.Predict([]float64{0.9, 1})
	require.NoError(t, err)
	assert.Equal(t, 2, label)
}

func TestDecisionTreePredictProba(t *testing.T) {
	tree := testTree(t)

	proba, err := tree.PredictProba([]float64{0.1, 0})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.8, 0.2, 0}, proba, 1e-9)
}

func TestDecisionTreeRejectsBadNodes(t *testing.T) {
	_, err := NewDecisionTree(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyArtifact)

	_, err = NewDecisionTree(nil, []TreeNode{{FeatureIdx: 0, LeftChild: 1, RightChild: 7}})
	assert.Error(t, err)

	_, err = NewDecisionTree([]int{0, 1}, []TreeNode{{IsLeaf: true, Value: []float64{1, 2, 3}}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestDecisionTreeFeatureOutOfRange(t *testing.T) {
	tree := testTree(t)
	_, err := tree.Predict([]float64{0.9})
	assert.Error(t, err)
}
