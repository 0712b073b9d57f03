package integrators_test

import (
	"fmt"
	"testing"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/grid"
	"github.com/san-kum/mdsim/internal/integrators"
	"github.com/san-kum/mdsim/internal/lattice"
	"github.com/san-kum/mdsim/internal/physics"
)

func benchSubstrate(b *testing.B, threads int) (*grid.Grid, *integrators.Langevin) {
	b.Helper()
	params := dynamo.DefaultParameters()
	params.Threads = threads

	ps, err := lattice.NewGenerator(params, physics.Tungsten).Substrate(4)
	if err != nil {
		b.Fatal(err)
	}
	g, err := grid.New(params)
	if err != nil {
		b.Fatal(err)
	}
	if err := g.AddParticles(ps); err != nil {
		b.Fatal(err)
	}
	integ, err := integrators.NewLangevin(g, params)
	if err != nil {
		b.Fatal(err)
	}
	return g, integ
}

func BenchmarkLangevinStep(b *testing.B) {
	for _, threads := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("threads=%d", threads), func(b *testing.B) {
			g, integ := benchSubstrate(b, threads)
			defer g.Close()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := integ.NextStep(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRedistribute(b *testing.B) {
	g, _ := benchSubstrate(b, 4)
	defer g.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := g.RedistributeParticles(); err != nil {
			b.Fatal(err)
		}
	}
}
