package splitter_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/hermes/internal/pkg/rag/splitter"
	splitteropts "github.com/kart-io/hermes/pkg/options/splitter"
)

func newSplitter(chunkSize, overlap int) *splitter.TitleSplitter {
	opts := splitteropts.NewOptions()
	opts.ChunkSize = chunkSize
	opts.ChunkOverlap = overlap
	return splitter.New(opts)
}

func TestSplitTextByHeadings(t *testing.T) {
	s := newSplitter(200, 0)

	text := "ΤΙΤΛΟΣ Α\nΓενικές διατάξεις για την υπηρεσία.\nΤΙΤΛΟΣ Β\nΔιατάξεις για τις άδειες προσωπικού."
	chunks := s.SplitText(text)

	require.Len(t, chunks, 2)
	assert.True(t, strings.HasPrefix(chunks[0], "ΤΙΤΛΟΣ Α"))
	assert.True(t, strings.HasPrefix(chunks[1], "ΤΙΤΛΟΣ Β"))
	assert.Contains(t, chunks[0], "Γενικές διατάξεις")
	assert.Contains(t, chunks[1], "άδειες")
}

func TestSplitTextKeepsTextBeforeFirstHeading(t *testing.T) {
	s := newSplitter(200, 0)

	text := "Εισαγωγικές διατάξεις πριν τον πρώτο τίτλο.\nΤΙΤΛΟΣ Α\nΚύριο σώμα."
	chunks := s.SplitText(text)

	require.Len(t, chunks, 2)
	assert.Contains(t, chunks[0], "Εισαγωγικές διατάξεις")
	assert.True(t, strings.HasPrefix(chunks[1], "ΤΙΤΛΟΣ Α"))

	// Whitespace-only front matter is not a section.
	chunks = s.SplitText("\n\nΤΙΤΛΟΣ Α\nΚύριο σώμα.")
	require.Len(t, chunks, 1)
	assert.True(t, strings.HasPrefix(chunks[0], "ΤΙΤΛΟΣ Α"))
}

func TestSplitTextWithoutHeadings(t *testing.T) {
	s := newSplitter(200, 0)

	text := "Κείμενο χωρίς επικεφαλίδες τίτλων."
	assert.Equal(t, []string{text}, s.SplitText(text))
}

func TestSplitTextOversizedSection(t *testing.T) {
	s := newSplitter(40, 10)

	para := strings.Repeat("α", 30)
	text := para + "\n\n" + para + "\n\n" + para

	chunks := s.SplitText(text)
	require.Greater(t, len(chunks), 1)
	// Merged chunks may carry an overlap tail on top of the target size.
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 40+10+2)
	}
	joined := strings.Join(chunks, "\n")
	assert.Contains(t, joined, para)
}

func TestSplitTextFallsBackToFixedChunks(t *testing.T) {
	s := newSplitter(10, 2)

	// No separator occurs, so the rune-window fallback applies.
	text := strings.Repeat("β", 25)
	chunks := s.SplitText(text)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 10)
	}
}

func TestSplitDocumentsCopiesMetadata(t *testing.T) {
	s := newSplitter(20, 0)

	texts := []string{"πρώτο κομμάτι κειμένου που ξεπερνά το όριο μεγέθους", "δεύτερο"}
	metas := []map[string]any{{"source": "a.txt"}, {"source": "b.txt"}}

	chunks := s.SplitDocuments(texts, metas)
	require.Greater(t, len(chunks), 2)

	seen := map[string]bool{}
	for _, c := range chunks {
		seen[c.Metadata["source"].(string)] = true
	}
	assert.True(t, seen["a.txt"])
	assert.True(t, seen["b.txt"])

	// Metadata maps are copies, not shared references.
	chunks[0].Metadata["source"] = "mutated"
	assert.Equal(t, "a.txt", metas[0]["source"])
}

func TestSplitDocumentsWithoutMetadata(t *testing.T) {
	s := newSplitter(100, 0)

	chunks := s.SplitDocuments([]string{"κείμενο"}, nil)
	require.Len(t, chunks, 1)
	assert.Equal(t, "κείμενο", chunks[0].Text)
	assert.NotNil(t, chunks[0].Metadata)
}
