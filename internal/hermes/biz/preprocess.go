package biz

import (
	"regexp"
	"strings"
)

// acronymPattern matches a bare uppercase Greek token of three or more
// letters, e.g. "ΣΔΑΜ". Such questions force the no-answer guardrail when
// retrieval comes back empty.
var acronymPattern = regexp.MustCompile(`^[Α-Ω]{3,}$`)

// preprocessed is the normalized form of a question plus routing hints.
type preprocessed struct {
	question      string
	forceNoAnswer bool
}

// preprocess trims the question and flags bare acronyms. The flag only
// affects the empty-hits branch of planning; it never suppresses a rag
// result that has hits.
func preprocess(question string) preprocessed {
	q := strings.TrimSpace(question)
	return preprocessed{
		question:      q,
		forceNoAnswer: acronymPattern.MatchString(q),
	}
}
