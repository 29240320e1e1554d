// Package splitter chunks regulation text for indexing.
package splitter

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kart-io/hermes/internal/pkg/rag/textutil"
	splitteropts "github.com/kart-io/hermes/pkg/options/splitter"
)

// headingRe marks the start of a ΤΙΤΛΟΣ section heading.
var headingRe = regexp.MustCompile(`ΤΙΤΛΟΣ\s`)

// Chunk is one piece of a split document.
type Chunk struct {
	Text     string
	Metadata map[string]any
}

// TitleSplitter splits regulation text along ΤΙΤΛΟΣ section headings,
// falling back to recursive separator-based splitting for oversized sections.
type TitleSplitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// New creates a TitleSplitter from options.
func New(opts *splitteropts.Options) *TitleSplitter {
	if opts == nil {
		opts = splitteropts.NewOptions()
	}
	return &TitleSplitter{
		chunkSize:    opts.ChunkSize,
		chunkOverlap: opts.ChunkOverlap,
		separators:   opts.Separators,
	}
}

// SplitText splits text into chunks. Sections shorter than the chunk size
// stay intact regardless of separators.
func (s *TitleSplitter) SplitText(text string) []string {
	sections := s.sections(text)

	var chunks []string
	for _, section := range sections {
		if utf8.RuneCountInString(section) <= s.chunkSize {
			chunks = append(chunks, section)
			continue
		}
		chunks = append(chunks, s.splitRecursive(section, s.separators)...)
	}
	return chunks
}

// SplitDocuments splits each document text, copying its metadata onto every
// resulting chunk.
func (s *TitleSplitter) SplitDocuments(texts []string, metas []map[string]any) []Chunk {
	var chunks []Chunk
	for i, text := range texts {
		var meta map[string]any
		if i < len(metas) {
			meta = metas[i]
		}
		for _, piece := range s.SplitText(text) {
			copied := make(map[string]any, len(meta))
			for k, v := range meta {
				copied[k] = v
			}
			chunks = append(chunks, Chunk{Text: piece, Metadata: copied})
		}
	}
	return chunks
}

// sections extracts ΤΙΤΛΟΣ-delimited sections, each running from one heading
// to the next. Text before the first heading is its own section when
// non-blank. Text without headings is one section.
func (s *TitleSplitter) sections(text string) []string {
	locs := headingRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	sections := make([]string, 0, len(locs)+1)
	if preamble := text[:locs[0][0]]; strings.TrimSpace(preamble) != "" {
		sections = append(sections, preamble)
	}
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		sections = append(sections, text[loc[0]:end])
	}
	return sections
}

// splitRecursive splits text on the first separator that produces pieces,
// recursing into pieces that still exceed the chunk size. Pieces are merged
// back up to the chunk size with overlap.
func (s *TitleSplitter) splitRecursive(text string, separators []string) []string {
	if utf8.RuneCountInString(text) <= s.chunkSize {
		return []string{text}
	}
	if len(separators) == 0 {
		return textutil.SplitIntoChunks(text, s.chunkSize, s.chunkOverlap)
	}

	sep := separators[0]
	parts := strings.Split(text, sep)
	if len(parts) == 1 {
		return s.splitRecursive(text, separators[1:])
	}

	var pieces []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) > s.chunkSize {
			pieces = append(pieces, s.splitRecursive(part, separators[1:])...)
		} else {
			pieces = append(pieces, part)
		}
	}
	return s.merge(pieces, sep)
}

// merge joins adjacent pieces while staying within the chunk size, carrying
// an overlap tail between consecutive chunks.
func (s *TitleSplitter) merge(pieces []string, sep string) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunk := current.String()
		chunks = append(chunks, chunk)
		current.Reset()

		if s.chunkOverlap > 0 {
			runes := []rune(chunk)
			if len(runes) > s.chunkOverlap {
				runes = runes[len(runes)-s.chunkOverlap:]
			}
			current.WriteString(string(runes))
		}
	}

	for _, piece := range pieces {
		candidate := utf8.RuneCountInString(piece)
		if current.Len() > 0 {
			candidate += utf8.RuneCountInString(current.String()) + utf8.RuneCountInString(sep)
		}
		if candidate > s.chunkSize && current.Len() > 0 {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(piece)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
