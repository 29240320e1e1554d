package biz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreprocessAcronym(t *testing.T) {
	tests := []struct {
		question string
		force    bool
	}{
		{"ΣΔΑΜ", true},
		{"  ΣΔΑΜ  ", true},
		{"ΑΒ", false},
		{"σδαμ", false},
		{"ΣΔΑΜ τι είναι", false},
		{"Ποιες είναι οι διαδικασίες αδείας;", false},
	}

	for _, tt := range tests {
		pre := preprocess(tt.question)
		assert.Equal(t, tt.force, pre.forceNoAnswer, "question %q", tt.question)
		assert.Equal(t, strings.TrimSpace(tt.question), pre.question)
	}
}

func TestBuildAnswerPrompt(t *testing.T) {
	prompt := buildAnswerPrompt("Ποια είναι η διαδικασία;", []string{"πρώτο", "δεύτερο"})
	assert.Contains(t, prompt, "πρώτο"+contextSeparator+"δεύτερο")
	assert.Contains(t, prompt, "Ερώτηση: Ποια είναι η διαδικασία;")
	assert.Contains(t, prompt, "ΜΟΝΟ την απάντηση")

	ungrounded := buildAnswerPrompt("Ποια είναι η διαδικασία;", nil)
	assert.NotContains(t, ungrounded, "Κείμενο:")
	assert.Contains(t, ungrounded, "Ερώτηση: Ποια είναι η διαδικασία;")
}

func TestBuildChatPromptCarriesLabel(t *testing.T) {
	prompt := buildChatPrompt("Γεια σου", LabelNoRAG)
	assert.Contains(t, prompt, "Κατηγορία αιτήματος: NO_RAG.")
	assert.Contains(t, prompt, "Ερώτηση: Γεια σου")
}

func TestBuildClassifyPromptListsLabels(t *testing.T) {
	prompt := buildClassifyPrompt("Πόση άδεια δικαιούμαι;")
	for _, label := range []string{LabelNeedRAG, LabelNoRAG, LabelOutOfScope, LabelUnsafe} {
		assert.Contains(t, prompt, label)
	}
	assert.Contains(t, prompt, "Query: Πόση άδεια δικαιούμαι;")
}
