package debruijn

import "slices"

// EulerCircuit draws a random Eulerian circuit that traverses every edge of
// the graph exactly fold times. The result is a node index walk of length
// fold*k^(n+1)+1 whose first and last entries coincide.
//
// The draw follows Hierholzer's scheme with randomized choices: grow a
// closed sub-circuit from a random pending node, splice it into the circuit
// at a random occurrence of that node, repeat until no edge capacity is
// left. Choices are uniform over the distinct options at each step, which
// does not make the draw uniform over all Eulerian circuits.
func (g *Graph) EulerCircuit(fold int) ([]int, error) {
	if fold < 1 {
		return nil, ErrInvalidFold
	}

	capacity := make([][]int, len(g.adj))
	for i, row := range g.adj {
		fr := make([]int, len(row))
		for j, c := range row {
			fr[j] = c * fold
		}
		capacity[i] = fr
	}

	remaining := g.edges * fold
	circuit := []int{g.rng.IntN(len(g.words))}
	for remaining > 0 {
		p, err := g.pendingNode(circuit, capacity)
		if err != nil {
			return nil, err
		}
		sub, err := g.subCircuit(p, capacity)
		if err != nil {
			return nil, err
		}
		remaining -= len(sub) - 1
		circuit = slices.Insert(circuit, g.spliceAt(circuit, p), sub[1:]...)
	}
	return circuit, nil
}

// pendingNode picks uniformly among the distinct circuit nodes that still
// have outgoing capacity. The circuit always touches such a node while any
// capacity remains, because the graph is connected and degree-balanced.
func (g *Graph) pendingNode(circuit []int, capacity [][]int) (int, error) {
	seen := make([]bool, len(g.words))
	for _, node := range circuit {
		seen[node] = true
	}
	var candidates []int
	for node, in := range seen {
		if in && rowSum(capacity[node]) > 0 {
			candidates = append(candidates, node)
		}
	}
	if len(candidates) == 0 {
		return 0, ErrCorruptGraph
	}
	return candidates[g.rng.IntN(len(candidates))], nil
}

// subCircuit walks randomly from start, consuming one unit of capacity per
// step, until the walk returns to start. Degree balance guarantees the walk
// can only halt there, so the result is a closed sub-circuit.
func (g *Graph) subCircuit(start int, capacity [][]int) ([]int, error) {
	sub := []int{start}
	for {
		at := sub[len(sub)-1]
		next, err := g.randomStep(capacity[at])
		if err != nil {
			return nil, err
		}
		capacity[at][next]--
		sub = append(sub, next)
		if next == start {
			return sub, nil
		}
	}
}

// randomStep picks uniformly among the distinct successors with capacity
// left. Parallel edge copies do not weight the choice.
func (g *Graph) randomStep(row []int) (int, error) {
	var candidates []int
	for node, c := range row {
		if c > 0 {
			candidates = append(candidates, node)
		}
	}
	if len(candidates) == 0 {
		return 0, ErrCorruptGraph
	}
	return candidates[g.rng.IntN(len(candidates))], nil
}

// spliceAt returns the circuit index just after a uniformly chosen
// occurrence of node, the position at which a sub-circuit rooted at node is
// inserted.
func (g *Graph) spliceAt(circuit []int, node int) int {
	var occurrences []int
	for i, n := range circuit {
		if n == node {
			occurrences = append(occurrences, i)
		}
	}
	return occurrences[g.rng.IntN(len(occurrences))] + 1
}

func rowSum(row []int) int {
	sum := 0
	for _, c := range row {
		sum += c
	}
	return sum
}
