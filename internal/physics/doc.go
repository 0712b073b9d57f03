// Package physics provides particles and the pairwise force laws acting
// between them.
//
// Each material is a [Species] variant carrying its mass, crystal lattice
// and a [ForceLaw]:
//
//   - [Tungsten]: Morse potential (Girifalco-Weizer parameters), BCC lattice
//   - [Argon]: Lennard-Jones 12-6 potential, FCC lattice
//
// A ForceLaw maps a scalar separation to a signed force per unit mass of the
// interacting partner. Positive values repel. Separations beyond the cutoff
// contribute zero and separations inside the core radius fail with
// [dynamo.ErrCoreOverlap].
//
//	p := physics.NewParticle(physics.Tungsten, pos, vel)
//	f, err := p.ForceFrom(other)
package physics
