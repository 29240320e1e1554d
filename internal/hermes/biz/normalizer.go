package biz

import (
	"strings"

	"github.com/kart-io/hermes/internal/pkg/rag/textutil"
)

// DedupeSentences removes duplicate adjacent-or-later sentences from
// generated text, keeping the first occurrence of each in original order.
// Chat models occasionally repeat a sentence verbatim; this suppresses the
// artifact. Fixed guardrail strings are never passed through here.
func DedupeSentences(text string) string {
	sentences := textutil.SplitSentences(text)
	if len(sentences) < 2 {
		return strings.TrimSpace(text)
	}

	seen := make(map[string]struct{}, len(sentences))
	kept := make([]string, 0, len(sentences))
	for _, s := range sentences {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, strings.TrimSpace(s))
	}
	return strings.Join(kept, " ")
}
