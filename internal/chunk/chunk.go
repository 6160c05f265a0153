package chunk

import (
	"fmt"
	"iter"

	"github.com/google/uuid"

	"github.com/docintel/docintel/internal/common"
)

// Chunk is one contiguous window of a document's normalized text.
// OverlapWithPrev is the number of leading runes shared with the previous
// chunk; stripping it from every chunk after the first reconstructs the
// original text exactly.
type Chunk struct {
	DocumentID      uuid.UUID
	SequenceIndex   int
	Text            string
	OverlapWithPrev int
}

// Splitter produces fixed-size overlapping chunks.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter validates the chunking parameters. Overlap must be strictly
// smaller than size or the window never advances.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, common.NewAppError("CHUNK_ERROR", fmt.Sprintf("chunk size must be positive, got %d", size), common.ErrInvalidInput)
	}
	if overlap < 0 {
		return nil, common.NewAppError("CHUNK_ERROR", fmt.Sprintf("chunk overlap must be non-negative, got %d", overlap), common.ErrInvalidInput)
	}
	if overlap >= size {
		return nil, common.NewAppError("CHUNK_ERROR", fmt.Sprintf("chunk overlap %d must be smaller than size %d", overlap, size), common.ErrInvalidInput)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Split returns a lazy, restartable sequence of chunks over text. Offsets are
// rune-based so multi-byte text never splits mid-character. An empty text
// yields no chunks.
func (s *Splitter) Split(documentID uuid.UUID, text string) iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		runes := []rune(text)
		if len(runes) == 0 {
			return
		}
		step := s.size - s.overlap
		index := 0
		for start := 0; start < len(runes); start += step {
			end := start + s.size
			if end > len(runes) {
				end = len(runes)
			}
			overlap := 0
			if index > 0 {
				overlap = s.overlap
				if overlap > end-start {
					overlap = end - start
				}
			}
			c := Chunk{
				DocumentID:      documentID,
				SequenceIndex:   index,
				Text:            string(runes[start:end]),
				OverlapWithPrev: overlap,
			}
			if !yield(c) {
				return
			}
			index++
			if end == len(runes) {
				return
			}
		}
	}
}

// Reassemble joins chunks back into the original text by dropping each
// chunk's leading overlap.
func Reassemble(chunks []Chunk) string {
	var out []rune
	for _, c := range chunks {
		runes := []rune(c.Text)
		if c.OverlapWithPrev > len(runes) {
			continue
		}
		out = append(out, runes[c.OverlapWithPrev:]...)
	}
	return string(out)
}
