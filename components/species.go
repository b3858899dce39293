package components

// Species identifies which typed collection an entity belongs to.
// Every entity carries exactly one species-specific component; the enum
// exists so behavior and transformation logic can switch on a closed tag
// instead of inspecting runtime types.
type Species uint8

const (
	SpeciesFry Species = iota
	SpeciesTrueFry1
	SpeciesTrueFry2
	SpeciesRegularKrill
	SpeciesPaleKrill
	SpeciesMomKrill
	SpeciesTuna
	SpeciesGiantSquid
	SpeciesFishEgg
	SpeciesSperm
	SpeciesFertilizedEgg
	SpeciesDetritus
	SpeciesCount // sentinel, keep last
)

// String returns the species name used in config, logging and telemetry.
func (s Species) String() string {
	switch s {
	case SpeciesFry:
		return "fry"
	case SpeciesTrueFry1:
		return "truefry1"
	case SpeciesTrueFry2:
		return "truefry2"
	case SpeciesRegularKrill:
		return "krill"
	case SpeciesPaleKrill:
		return "pale_krill"
	case SpeciesMomKrill:
		return "mom_krill"
	case SpeciesTuna:
		return "tuna"
	case SpeciesGiantSquid:
		return "giant_squid"
	case SpeciesFishEgg:
		return "fish_egg"
	case SpeciesSperm:
		return "sperm"
	case SpeciesFertilizedEgg:
		return "fertilized_egg"
	case SpeciesDetritus:
		return "detritus"
	}
	return "unknown"
}

// SpeciesByName maps config/CLI species names back to the enum.
var SpeciesByName = func() map[string]Species {
	m := make(map[string]Species, int(SpeciesCount))
	for s := Species(0); s < SpeciesCount; s++ {
		m[s.String()] = s
	}
	return m
}()

// SpeciesMask is a bit set of species, used to filter spatial queries.
type SpeciesMask uint16

// Bit returns the mask bit for a single species.
func (s Species) Bit() SpeciesMask {
	return 1 << s
}

// MaskOf builds a mask from a list of species.
func MaskOf(species ...Species) SpeciesMask {
	var m SpeciesMask
	for _, s := range species {
		m |= s.Bit()
	}
	return m
}

// MaskAll matches every species.
const MaskAll = SpeciesMask(1<<SpeciesCount) - 1

// Has reports whether the mask contains the species.
func (m SpeciesMask) Has(s Species) bool {
	return m&s.Bit() != 0
}

// IsKrill reports whether the species is any krill variant.
func (s Species) IsKrill() bool {
	return s == SpeciesRegularKrill || s == SpeciesPaleKrill || s == SpeciesMomKrill
}

// IsSchooling reports whether the species participates in flocking.
func (s Species) IsSchooling() bool {
	switch s {
	case SpeciesFry, SpeciesTrueFry1, SpeciesTrueFry2,
		SpeciesRegularKrill, SpeciesPaleKrill, SpeciesMomKrill:
		return true
	}
	return false
}
