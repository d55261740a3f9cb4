package config

// Convention selects the coordinate and scale convention of the output.
const (
	ConventionModern = iota
	ConventionLegacy
)

type Convention int

func (c Convention) String() string {
	switch c {
	case ConventionLegacy:
		return "legacy"
	case ConventionModern:
		return "modern"
	default:
		return "unknown"
	}
}
