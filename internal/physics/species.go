package physics

import (
	"fmt"
	"strings"
)

// eV in amu·nm²/ps².
const electronVolt = 96.48533212

type LatticeKind uint8

const (
	BCC LatticeKind = iota
	FCC
)

// Lattice describes the equilibrium crystal of a species.
type Lattice struct {
	Kind     LatticeKind
	Constant float64 // nm
}

// Basis returns the fractional coordinates of the atoms in one cubic unit cell.
func (l Lattice) Basis() [][3]float64 {
	switch l.Kind {
	case FCC:
		return [][3]float64{{0, 0, 0}, {0.5, 0.5, 0}, {0.5, 0, 0.5}, {0, 0.5, 0.5}}
	default:
		return [][3]float64{{0, 0, 0}, {0.5, 0.5, 0.5}}
	}
}

// Species is the closed set of materials. New materials are new constants
// with entries in the table below.
type Species uint8

const (
	Tungsten Species = iota + 1
	Argon
)

type speciesInfo struct {
	name    string
	mass    float64
	lattice Lattice
	law     ForceLaw
}

const (
	tungstenMass = 183.84
	argonMass    = 39.948
)

var species = map[Species]speciesInfo{
	Tungsten: {
		name:    "tungsten",
		mass:    tungstenMass,
		lattice: Lattice{Kind: BCC, Constant: 0.3165},
		law: Morse{
			Depth:         0.9906 * electronVolt,
			Alpha:         14.116,
			Equilibrium:   0.3032,
			ReferenceMass: tungstenMass,
			Cut:           0.55,
			Core:          0.1,
		},
	},
	Argon: {
		name:    "argon",
		mass:    argonMass,
		lattice: Lattice{Kind: FCC, Constant: 0.5256},
		law: LennardJones{
			Epsilon:       0.996,
			Sigma:         0.3405,
			ReferenceMass: argonMass,
			Cut:           0.85,
			Core:          0.2,
		},
	},
}

func (s Species) info() speciesInfo {
	info, ok := species[s]
	if !ok {
		panic(fmt.Sprintf("physics: unknown species %d", s))
	}
	return info
}

func (s Species) String() string {
	if info, ok := species[s]; ok {
		return info.name
	}
	return fmt.Sprintf("species(%d)", uint8(s))
}

func (s Species) Mass() float64    { return s.info().mass }
func (s Species) Lattice() Lattice { return s.info().lattice }
func (s Species) Law() ForceLaw    { return s.info().law }

// ParseSpecies resolves a species by name, case-insensitively.
func ParseSpecies(name string) (Species, error) {
	for s, info := range species {
		if strings.EqualFold(info.name, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown species: %s", name)
}

// SpeciesNames lists the known species in declaration order.
func SpeciesNames() []string {
	return []string{Tungsten.String(), Argon.String()}
}
