package models

// Practice preference option values. The premium-only values unlock
// with the subscription; free accounts keep the defaults.
const (
	SoundTempleBell = "TEMPLE_BELL"
	SoundWoodenMala = "WOODEN_MALA"
	SoundRainFall   = "RAIN_FALL"
	SoundSilence    = "SILENCE"

	AmbianceDeepOm       = "DEEP_OM"
	AmbianceMorningBirds = "MORNING_BIRDS"
	AmbianceForestWind   = "FOREST_WIND"
	AmbianceRainFall     = "RAIN_FALL"
	AmbianceOff          = "OFF"

	HapticSoft   = "SOFT"
	HapticMedium = "MEDIUM"
	HapticStrong = "STRONG"
	HapticOff    = "OFF"
)

// PracticePreferences holds a user's practice-experience options
type PracticePreferences struct {
	UserID         string
	Sound          string
	AmbianceSound  string
	HapticStrength string
	LowLightMode   bool
	ZenMode        bool
}

// DefaultPracticePreferences returns the free-tier defaults
func DefaultPracticePreferences(userID string) PracticePreferences {
	return PracticePreferences{
		UserID:         userID,
		Sound:          SoundTempleBell,
		AmbianceSound:  AmbianceOff,
		HapticStrength: HapticMedium,
	}
}

// RequiresPremium reports whether any selected option is premium-only.
// Ambient soundscapes, strong haptics, low-light and zen mode are all
// part of the paid tier.
func (p *PracticePreferences) RequiresPremium() bool {
	if p.AmbianceSound != AmbianceOff {
		return true
	}
	if p.HapticStrength == HapticStrong {
		return true
	}
	return p.LowLightMode || p.ZenMode
}
