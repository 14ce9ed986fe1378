package cwb

import "strings"

// minMatchLen keeps short names like "kai" from matching "waikiki"
const minMatchLen = 4

var oahuLocations = []string{
	"oahu", "honolulu", "waikiki", "ala moana", "hanauma", "kailua",
	"kaneohe", "north shore", "waimea", "haleiwa", "waianae", "makaha",
	"ko olina", "diamond head", "hawaii kai", "waimanalo", "lanikai",
	"sandy beach", "makapuu",
}

func isOahuLocation(text string) bool {
	return containsAny(strings.ToLower(text), oahuLocations)
}

// extractLocation returns the first known Oahu place named in text, title-cased
func extractLocation(text string) string {
	lower := strings.ToLower(text)
	for _, loc := range oahuLocations {
		if strings.Contains(lower, loc) {
			words := strings.Fields(loc)
			for i, w := range words {
				words[i] = strings.ToUpper(w[:1]) + w[1:]
			}
			return strings.Join(words, " ")
		}
	}
	return ""
}

// FilterOahu keeps advisories whose island, beach or reason points at Oahu
func FilterOahu(advisories []Advisory) []Advisory {
	var oahu []Advisory
	for _, a := range advisories {
		if strings.EqualFold(a.Island, "oahu") || isOahuLocation(a.Beach) || isOahuLocation(a.Reason) {
			oahu = append(oahu, a)
		}
	}
	return oahu
}

// Match finds the advisory that applies to a site name. Beach names match
// exactly or by containment in either direction once both are at least four
// characters; a site name of four or more characters also matches when the
// reason text mentions it.
func Match(advisories []Advisory, siteName string) (*Advisory, bool) {
	site := strings.ToLower(strings.TrimSpace(siteName))
	if site == "" {
		return nil, false
	}

	for i := range advisories {
		beach := strings.ToLower(strings.TrimSpace(advisories[i].Beach))
		reason := strings.ToLower(advisories[i].Reason)

		if len(site) >= minMatchLen && len(beach) >= minMatchLen {
			if site == beach || strings.Contains(beach, site) || strings.Contains(site, beach) {
				return &advisories[i], true
			}
		} else if site == beach {
			return &advisories[i], true
		}

		if len(site) >= minMatchLen && strings.Contains(reason, site) {
			return &advisories[i], true
		}
	}
	return nil, false
}
