package fetch

import "strings"

// Class is the terminal classification of a primary extraction error.
type Class int

// Error classes, in check order. The first match governs: a message
// matching an unavailable indicator short-circuits before the timeout and
// blocked checks even if it also carries a blocking keyword.
const (
	ClassOther Class = iota
	ClassUnavailable
	ClassTimeout
	ClassBlocked
)

// String returns the class name for logging.
func (c Class) String() string {
	switch c {
	case ClassUnavailable:
		return "unavailable"
	case ClassTimeout:
		return "timeout"
	case ClassBlocked:
		return "blocked"
	default:
		return "other"
	}
}

// unavailableIndicators mark a video as definitively gone: no retry, no
// cookie rotation, the video is still marked processed.
var unavailableIndicators = []string{
	"video unavailable",
	"this video is no longer available",
	"copyright claim",
	"copyright",
	"unavailable",
	"private video",
	"this video is private",
	"video is private",
	"not available",
	"blocked in your country",
}

var timeoutIndicators = []string{
	"timeout",
	"timed out",
	"connection timed out",
	"socket timeout",
}

// Classify maps an extraction error to its class by substring matching
// over the lowercased message. isBlocked supplies the rotation manager's
// blocking heuristic.
func Classify(err error, isBlocked func(error) bool) Class {
	if err == nil {
		return ClassOther
	}

	msg := strings.ToLower(err.Error())

	for _, indicator := range unavailableIndicators {
		if strings.Contains(msg, indicator) {
			return ClassUnavailable
		}
	}

	for _, indicator := range timeoutIndicators {
		if strings.Contains(msg, indicator) {
			return ClassTimeout
		}
	}

	if isBlocked != nil && isBlocked(err) {
		return ClassBlocked
	}

	return ClassOther
}
