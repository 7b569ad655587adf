package pipeline

import (
	"errors"
	"strings"

	"tgvidbot/internal/domain"
)

// botCheckPhrase shows up in extraction errors when the source site demands
// human verification, which on a server almost always means the host's IP
// reputation, not the link itself.
const botCheckPhrase = "confirm you're not a bot"

// failureRule maps raw error text onto a failure reason.
type failureRule struct {
	match  func(errText string) bool
	reason domain.FailureReason
}

// textRules run in order against the lowercased error text; the first match
// wins. The bot-check rule must stay ahead of any broader fetch handling so
// its distinct user message survives.
var textRules = []failureRule{
	{match: contains(botCheckPhrase), reason: domain.ReasonBotCheck},
}

func contains(phrase string) func(string) bool {
	return func(errText string) bool {
		return strings.Contains(errText, phrase)
	}
}

// classify maps a stage failure onto the reason shown to the user. Text
// rules are consulted first, then the error's type decides.
func classify(err error) domain.FailureReason {
	errText := strings.ToLower(err.Error())
	for _, rule := range textRules {
		if rule.match(errText) {
			return rule.reason
		}
	}

	var (
		transcodeErr *domain.TranscodeError
		sizeErr      *domain.SizeExceededError
	)
	switch {
	case errors.As(err, &transcodeErr):
		return domain.ReasonTranscode
	case errors.As(err, &sizeErr):
		return domain.ReasonTooLarge
	default:
		return domain.ReasonFetch
	}
}
