package vextract

// PrecedenceLevel orders the sources an extractor can be registered from.
// Lower values take precedence: a descriptor registered at a higher level
// fully shadows one registered for the same position at a lower level.
type PrecedenceLevel int

const (
	// LevelValidator holds per-validator registrations.
	LevelValidator PrecedenceLevel = iota
	// LevelFactory holds per-factory registrations.
	LevelFactory
	// LevelConfigured holds the externally configured extractor list.
	LevelConfigured
	// LevelDiscovered holds service-discovered extractors.
	LevelDiscovered
	// LevelBuiltin holds the built-in extractors.
	LevelBuiltin
)

// NumLevels is the number of precedence levels.
const NumLevels = int(LevelBuiltin) + 1

// Valid reports whether l is a known precedence level.
func (l PrecedenceLevel) Valid() bool {
	return l >= LevelValidator && l <= LevelBuiltin
}

func (l PrecedenceLevel) String() string {
	switch l {
	case LevelValidator:
		return "validator"
	case LevelFactory:
		return "factory"
	case LevelConfigured:
		return "configured"
	case LevelDiscovered:
		return "discovered"
	case LevelBuiltin:
		return "builtin"
	default:
		return "unknown"
	}
}
