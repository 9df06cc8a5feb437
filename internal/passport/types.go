package passport

import "strings"

// Passport is one configured Git identity record.
type Passport struct {
	// Index is the ordinal assigned at load time; listings and selection
	// dialogs address passports by this value.
	Index int
	// Name is the user.name value the passport carries.
	Name string
	// Email is the user.email value the passport carries.
	Email string
	// Service is an optional substring matched against the remote URL.
	Service string
}

// HasService reports whether the passport carries a service pattern usable
// for remote matching.
func (record Passport) HasService() bool {
	return len(strings.TrimSpace(record.Service)) > 0
}

// GeneralSettings captures the general section of the passport configuration.
type GeneralSettings struct {
	// EnableHook toggles automatic resolution when the command runs without
	// mode flags.
	EnableHook bool
	// SleepDuration is the pause in seconds after an identity announcement.
	SleepDuration float64
	// Quiet suppresses the identity announcement after an automatic change.
	Quiet bool
	// FallbackPassportIndex names the passport applied when the repository
	// has no remote URL. It is meaningful only when
	// FallbackPassportDesignated is true.
	FallbackPassportIndex int
	// FallbackPassportDesignated reports whether the configuration names an
	// explicit fallback passport.
	FallbackPassportDesignated bool
}

// FallbackPassport returns the passport applied when no remote URL is
// configured: the designated one when the configuration names it, otherwise
// the last configured passport. The boolean result reports availability.
func (settings GeneralSettings) FallbackPassport(passports []Passport) (Passport, bool) {
	if len(passports) == 0 {
		return Passport{}, false
	}
	if settings.FallbackPassportDesignated {
		for _, candidate := range passports {
			if candidate.Index == settings.FallbackPassportIndex {
				return candidate, true
			}
		}
		return Passport{}, false
	}
	return passports[len(passports)-1], true
}

// Identity is the user.name and user.email pair recorded in a repository's
// local Git configuration.
type Identity struct {
	Name  string
	Email string
}

// IsComplete reports whether both identity fields carry values.
func (identity Identity) IsComplete() bool {
	return len(identity.Name) > 0 && len(identity.Email) > 0
}

// MatchesPassport reports whether the identity equals the passport on both
// the name and the email. A partially matching identity counts as different.
func (identity Identity) MatchesPassport(record Passport) bool {
	return identity.Name == record.Name && identity.Email == record.Email
}
