package forecast

import (
	"math/rand"
	"sort"
)

// minGain is the smallest SSE reduction worth a split.
const minGain = 1e-12

type treeParams struct {
	maxDepth    int // 0 = unlimited
	minLeaf     int
	maxFeatures int // 0 = all
}

type treeNode struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
	leaf      bool
}

// regressionTree is a CART tree grown on squared error.
type regressionTree struct {
	nodes []treeNode
}

func (t *regressionTree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.leaf {
			return n.value
		}
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

type treeBuilder struct {
	x      [][]float64
	y      []float64
	params treeParams
	rng    *rand.Rand
	nodes  []treeNode
	feats  []int
}

// growTree fits a tree on the rows listed in idx. idx is reordered in place.
func growTree(x [][]float64, y []float64, idx []int, p treeParams, rng *rand.Rand) *regressionTree {
	nf := 0
	if len(x) > 0 {
		nf = len(x[0])
	}
	feats := make([]int, nf)
	for i := range feats {
		feats[i] = i
	}
	b := &treeBuilder{x: x, y: y, params: p, rng: rng, feats: feats}
	b.grow(idx, 0)
	return &regressionTree{nodes: b.nodes}
}

func (b *treeBuilder) grow(idx []int, depth int) int {
	id := len(b.nodes)
	b.nodes = append(b.nodes, treeNode{})

	sum, sumSq := 0.0, 0.0
	for _, i := range idx {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	n := float64(len(idx))
	mean := sum / n
	parentSSE := sumSq - sum*sum/n

	if len(idx) < 2*b.params.minLeaf ||
		(b.params.maxDepth > 0 && depth >= b.params.maxDepth) ||
		allEqual(b.y, idx) {
		b.nodes[id] = treeNode{leaf: true, value: mean}
		return id
	}

	feature, threshold, sse, ok := b.bestSplit(idx)
	if !ok || parentSSE-sse <= minGain {
		b.nodes[id] = treeNode{leaf: true, value: mean}
		return id
	}

	mid := partition(idx, func(i int) bool { return b.x[i][feature] <= threshold })
	if mid == 0 || mid == len(idx) {
		b.nodes[id] = treeNode{leaf: true, value: mean}
		return id
	}
	left := b.grow(idx[:mid], depth+1)
	right := b.grow(idx[mid:], depth+1)
	b.nodes[id] = treeNode{feature: feature, threshold: threshold, left: left, right: right}
	return id
}

// bestSplit scans candidate features for the threshold with the lowest
// summed child SSE. Thresholds are midpoints between distinct values.
func (b *treeBuilder) bestSplit(idx []int) (int, float64, float64, bool) {
	candidates := b.feats
	if m := b.params.maxFeatures; m > 0 && m < len(b.feats) {
		b.rng.Shuffle(len(b.feats), func(i, j int) { b.feats[i], b.feats[j] = b.feats[j], b.feats[i] })
		candidates = append([]int(nil), b.feats[:m]...)
		sort.Ints(candidates)
	}

	bestFeature, bestThreshold := -1, 0.0
	bestSSE := 0.0
	order := make([]int, len(idx))
	minLeaf := b.params.minLeaf
	n := len(idx)

	for _, f := range candidates {
		copy(order, idx)
		sort.SliceStable(order, func(i, j int) bool { return b.x[order[i]][f] < b.x[order[j]][f] })

		totalSum, totalSq := 0.0, 0.0
		for _, i := range order {
			totalSum += b.y[i]
			totalSq += b.y[i] * b.y[i]
		}

		leftSum := 0.0
		for k := 0; k < n-1; k++ {
			leftSum += b.y[order[k]]
			nl := k + 1
			nr := n - nl
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			xv, xn := b.x[order[k]][f], b.x[order[k+1]][f]
			if xv == xn {
				continue
			}
			rightSum := totalSum - leftSum
			sse := totalSq - leftSum*leftSum/float64(nl) - rightSum*rightSum/float64(nr)
			if bestFeature < 0 || sse < bestSSE {
				bestFeature = f
				bestThreshold = xv + (xn-xv)/2
				if bestThreshold >= xn {
					bestThreshold = xv
				}
				bestSSE = sse
			}
		}
	}
	return bestFeature, bestThreshold, bestSSE, bestFeature >= 0
}

func allEqual(y []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if y[i] != y[idx[0]] {
			return false
		}
	}
	return true
}

// partition moves rows matching keep to the front and returns their count.
func partition(idx []int, keep func(int) bool) int {
	mid := 0
	for i := range idx {
		if keep(idx[i]) {
			idx[mid], idx[i] = idx[i], idx[mid]
			mid++
		}
	}
	return mid
}
