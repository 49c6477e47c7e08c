package agentflow

import (
	"strings"

	"github.com/PabloGalante/serene/internal/app/insights"
)

// Intent is the conversation phase a message is routed to.
type Intent string

const (
	IntentGeneral Intent = "general"
	IntentCBT     Intent = "cbt"
	IntentCrisis  Intent = "crisis"
)

var cbtTriggers = []string{"anxious", "depressed", "stuck", "overwhelmed", "hopeless"}

var cbtExits = []string{"stop", "exit"}

// Route picks the intent for message given the intent of the previous
// model reply. Crisis always wins; a CBT exchange continues until the user
// asks to stop.
func Route(message string, previous Intent) Intent {
	if insights.DetectCrisis(message) {
		return IntentCrisis
	}

	lower := strings.ToLower(message)
	if previous == IntentCBT {
		if containsAny(lower, cbtExits) {
			return IntentGeneral
		}
		return IntentCBT
	}
	if containsAny(lower, cbtTriggers) {
		return IntentCBT
	}
	return IntentGeneral
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
