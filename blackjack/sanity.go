package blackjack

// SanityTier buckets the sanity percentage. Tier effects are permanent
// class traits, separate from status effects.
type SanityTier byte

const (
	SanityHigh    SanityTier = 0 // 76-100%
	SanityMedium  SanityTier = 1 // 51-75%
	SanityLow     SanityTier = 2 // 26-50%
	SanityVeryLow SanityTier = 3 // 1-25%
	SanityZero    SanityTier = 4 // 0%
)

var sanityTierNames = map[SanityTier]string{
	SanityHigh:    "high",
	SanityMedium:  "medium",
	SanityLow:     "low",
	SanityVeryLow: "verylow",
	SanityZero:    "zero",
}

func (t SanityTier) String() string {
	if name, ok := sanityTierNames[t]; ok {
		return name
	}
	return "unknown"
}

func sanityTierFor(sanity, maxSanity int) SanityTier {
	if maxSanity <= 0 || sanity <= 0 {
		return SanityZero
	}
	percent := sanity * 100 / maxSanity
	switch {
	case percent >= 76:
		return SanityHigh
	case percent >= 51:
		return SanityMedium
	case percent >= 26:
		return SanityLow
	default:
		return SanityVeryLow
	}
}

// BetOptions are the three preset bet amounts offered each round, with
// per-option availability.
type BetOptions struct {
	Amounts [3]int // MIN, MED, MAX
	Enabled [3]bool
}

// SanityBetOptions applies the class's cumulative sanity-tier modifiers
// to the base bet presets. Currently only the Degenerate has mechanical
// thresholds; other classes keep the base options.
func SanityBetOptions(class Class, tier SanityTier, min, med, max int) BetOptions {
	opts := BetOptions{
		Amounts: [3]int{min, med, max},
		Enabled: [3]bool{true, true, true},
	}
	if class != ClassDegenerate {
		return opts
	}
	if tier >= SanityMedium {
		opts.Enabled[0] = false
	}
	if tier >= SanityLow {
		opts.Amounts[2] *= 2
	}
	if tier >= SanityVeryLow {
		opts.Enabled[1] = false
	}
	if tier >= SanityZero {
		opts.Amounts[2] *= 2
	}
	return opts
}

// SanityTierDescription returns the UI text for a class's tier effect.
func SanityTierDescription(class Class, tier SanityTier) string {
	if tier == SanityHigh {
		return "No effect"
	}
	switch class {
	case ClassDegenerate:
		switch tier {
		case SanityMedium:
			return "Minimum bet disabled"
		case SanityLow:
			return "Maximum bet doubled"
		case SanityVeryLow:
			return "Medium bet disabled"
		case SanityZero:
			return "Maximum bet doubled again"
		}
	case ClassDealer:
		return "The house stirs"
	case ClassDetective:
		return "The pattern blurs"
	case ClassDreamer:
		return "The table dissolves"
	}
	return "No effect"
}
