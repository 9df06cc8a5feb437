package passport

import "strings"

// MatchPassport returns the first configured passport whose service pattern
// is a case-insensitive substring of the remote URL. Passports without a
// service pattern never match. The boolean result reports whether a match
// was found.
func MatchPassport(remoteURL string, passports []Passport) (Passport, bool) {
	loweredRemoteURL := strings.ToLower(remoteURL)
	for _, candidate := range passports {
		if !candidate.HasService() {
			continue
		}
		servicePattern := strings.ToLower(strings.TrimSpace(candidate.Service))
		if strings.Contains(loweredRemoteURL, servicePattern) {
			return candidate, true
		}
	}
	return Passport{}, false
}
