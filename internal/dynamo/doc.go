// Package dynamo provides the core value types shared by the molecular
// dynamics engine.
//
// The package defines:
//
//   - [Vector3]: 3-component vector used for positions, velocities and forces
//   - [Dims]: integer triple used for grid resolution and cell indices
//   - [Parameters]: immutable run configuration (domain, grid, integration)
//   - sentinel errors shared by the grid, integrator and host loop
//
// # Units
//
// Lengths are in nanometres, time in picoseconds, mass in atomic mass units
// and temperature in kelvin. Forces are therefore in amu·nm/ps² and
// [BoltzmannConstant] is expressed in amu·nm²/(ps²·K).
//
// # Example
//
//	params := dynamo.DefaultParameters()
//	g, _ := grid.New(params)
//	integ, _ := integrators.NewLangevin(g, params)
//	err := integ.NextStep()
package dynamo
