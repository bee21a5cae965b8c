package broker

import "github.com/google/uuid"

// Every neighborhood gets its own subject under the MESSAGES stream. Messages
// without a neighborhood go to the global subject.
const (
	StreamName    = "MESSAGES"
	subjectPrefix = StreamName + ".neighborhood."
	SubjectGlobal = subjectPrefix + "global"
	SubjectAll    = subjectPrefix + ">"
)

// SubjectFor returns the subject a message scoped to hood is published on.
func SubjectFor(hood *uuid.UUID) string {
	if hood == nil {
		return SubjectGlobal
	}
	return subjectPrefix + hood.String()
}
