package insights

import "strings"

var crisisKeywords = []string{
	"suicide",
	"kill myself",
	"end my life",
	"want to die",
	"hurt myself",
	"self-harm",
	"cut myself",
	"end it all",
	"don't want to live",
}

// DetectCrisis reports whether text mentions self-harm.
func DetectCrisis(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range crisisKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
