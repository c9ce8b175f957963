package parry

// Effect is a side effect requested by the machine.
type Effect int

const (
	EffectShowAndPunchSound Effect = iota
	EffectParrySound
	EffectHitSound
	EffectHideWindow
)

func (e Effect) String() string {
	switch e {
	case EffectShowAndPunchSound:
		return "show+punch"
	case EffectParrySound:
		return "parry"
	case EffectHitSound:
		return "hit"
	case EffectHideWindow:
		return "hide"
	default:
		return "unknown"
	}
}
