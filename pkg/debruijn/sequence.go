package debruijn

// Sequence draws a random generalized de Bruijn sequence of length
// fold*k^(n+1). Read cyclically, the sequence contains every word of
// length n+1 exactly fold times.
func (g *Graph) Sequence(fold int) ([]int, error) {
	circuit, err := g.EulerCircuit(fold)
	if err != nil {
		return nil, err
	}
	return g.Decode(circuit), nil
}

// Decode collapses an Eulerian circuit into its symbol sequence by taking
// the last symbol of every node except the final one, which closes the
// cycle and repeats the start.
func (g *Graph) Decode(circuit []int) []int {
	if len(circuit) == 0 {
		return nil
	}
	seq := make([]int, 0, len(circuit)-1)
	for _, node := range circuit[:len(circuit)-1] {
		word := g.words[node]
		seq = append(seq, word[len(word)-1])
	}
	return seq
}

// Text draws a sequence and renders it with Format, one printable character
// per symbol. It fails with ErrAlphabetTooLarge before consuming any
// randomness when the alphabet exceeds the printable table, so seeded
// graphs stay reproducible across the failure.
func (g *Graph) Text(fold int) (string, error) {
	if g.k > MaxPrintableAlphabet {
		return "", ErrAlphabetTooLarge
	}
	seq, err := g.Sequence(fold)
	if err != nil {
		return "", err
	}
	return Format(seq)
}
