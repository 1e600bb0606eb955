package debruijn_test

import (
	"fmt"

	"github.com/seqlab/counterseq/pkg/debruijn"
)

func ExampleWords() {
	words, _ := debruijn.Words(2, 2)
	for _, w := range words {
		fmt.Println(w)
	}
	// Output:
	// [0 0]
	// [0 1]
	// [1 0]
	// [1 1]
}

func ExampleFormat() {
	txt, _ := debruijn.Format([]int{0, 1, 10, 36})
	fmt.Println(txt)
	// Output: 01aA
}

func ExampleNew() {
	g, _ := debruijn.New(2, 2, debruijn.WithSeed(7))
	fmt.Println(g.NodeCount(), g.EdgeCount())
	// Output: 4 8
}

func ExampleGraph_Sequence() {
	g, _ := debruijn.New(2, 2, debruijn.WithSeed(7))

	// A 2-fold draw walks every edge twice: 2 * 2^3 symbols.
	seq, _ := g.Sequence(2)
	fmt.Println(len(seq))
	// Output: 16
}
