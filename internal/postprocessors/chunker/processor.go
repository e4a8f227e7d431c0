// Package chunker provides a paragraph-packing text segmenter.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure Processor implements the Segmenter interface.
var _ driven.Segmenter = (*Processor)(nil)

// DefaultChunkSize is the default target number of characters per chunk.
const DefaultChunkSize = domain.DefaultTargetSize

// LongParagraphFactor is the multiple of the chunk size above which a
// paragraph is broken into sentences before packing.
const LongParagraphFactor = 1.5

const (
	paragraphSeparator = "\n\n"
	sentenceSeparator  = " "
	sentenceEnd        = ". "
)

// Processor packs paragraphs into chunks bounded by a target character size.
// The bound is soft: a paragraph or sentence longer than the target becomes
// a chunk of its own and is never cut at this stage.
type Processor struct {
	chunkSize int
	newID     func() string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithIDGenerator overrides the chunk identifier generator.
func WithIDGenerator(fn func() string) Option {
	return func(p *Processor) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		newID:     uuid.NewString,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// TargetSize returns the target chunk size in characters.
func (p *Processor) TargetSize() int {
	return p.chunkSize
}

// Segment splits text on blank lines and packs the paragraphs into chunks.
// Paragraphs longer than LongParagraphFactor times the chunk size are split
// into sentences, which are packed with the same rule.
func (p *Processor) Segment(text, source string) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		// Empty content produces no chunks
		return nil
	}

	acc := &accumulator{limit: p.chunkSize}
	longThreshold := LongParagraphFactor * float64(p.chunkSize)

	for _, paragraph := range strings.Split(text, paragraphSeparator) {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}

		if float64(utf8.RuneCountInString(paragraph)) > longThreshold {
			for i, sentence := range splitSentences(paragraph) {
				// The first sentence still starts a new paragraph.
				sep := sentenceSeparator
				if i == 0 {
					sep = paragraphSeparator
				}
				acc.add(sentence, sep)
			}
			continue
		}

		acc.add(paragraph, paragraphSeparator)
	}
	acc.flush()

	chunks := make([]domain.Chunk, 0, len(acc.done))
	for _, t := range acc.done {
		chunks = append(chunks, domain.Chunk{
			ID:       p.newID(),
			Text:     t,
			Metadata: domain.ChunkMetadata{Source: source},
		})
	}

	return chunks
}

// splitSentences breaks a paragraph after every ". " and on line breaks.
func splitSentences(paragraph string) []string {
	lines := strings.Split(strings.ReplaceAll(paragraph, sentenceEnd, ".\n"), "\n")

	sentences := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			sentences = append(sentences, line)
		}
	}
	return sentences
}

// accumulator collects pieces until adding the next would exceed limit.
type accumulator struct {
	limit int
	buf   strings.Builder
	size  int // runes in buf
	done  []string
}

// add appends piece joined by sep, flushing first if the result would
// exceed the limit. An empty accumulator always takes the piece.
func (a *accumulator) add(piece, sep string) {
	pieceLen := utf8.RuneCountInString(piece)

	if a.size > 0 && a.size+utf8.RuneCountInString(sep)+pieceLen > a.limit {
		a.flush()
	}

	if a.size > 0 {
		a.buf.WriteString(sep)
		a.size += utf8.RuneCountInString(sep)
	}
	a.buf.WriteString(piece)
	a.size += pieceLen
}

// flush emits the trimmed buffer as a completed chunk.
func (a *accumulator) flush() {
	if t := strings.TrimSpace(a.buf.String()); t != "" {
		a.done = append(a.done, t)
	}
	a.buf.Reset()
	a.size = 0
}
