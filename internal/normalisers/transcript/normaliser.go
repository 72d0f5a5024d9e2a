package transcript

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/text/unicode/norm"

	"github.com/ivrit-ai/explore/internal/core/domain"
	"github.com/ivrit-ai/explore/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Normaliser handles whisper-style transcript documents.
type Normaliser struct{}

// New creates a new transcript normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// segment is one raw transcript segment. Unknown fields are ignored.
type segment struct {
	Text  string  `json:"text"`
	Start seconds `json:"start"`
}

// document is the object form of a transcript.
type document struct {
	Segments *[]segment `json:"segments"`
}

// seconds accepts a JSON number, a numeric string, or null.
type seconds float64

// UnmarshalJSON implements json.Unmarshaler.
func (s *seconds) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(str))
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("start time %s is not numeric", data)
	}
	*s = seconds(v)
	return nil
}

// Normalise converts a raw document to full text, offsets and times.
func (n *Normaliser) Normalise(_ context.Context, raw []byte) (*domain.NormalisedTranscript, error) {
	segments, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: document has no segments", domain.ErrIndexBuild)
	}

	texts := make([]string, len(segments))
	offsets := make([]int, len(segments))
	times := make([]float64, len(segments))

	cursor := 0
	for i, seg := range segments {
		text := norm.NFC.String(seg.Text)
		offsets[i] = cursor
		times[i] = float64(seg.Start)
		texts[i] = text
		// Advance past the text and the joining space.
		cursor += utf8.RuneCountInString(text) + 1
	}

	return &domain.NormalisedTranscript{
		FullText: strings.Join(texts, " "),
		Offsets:  offsets,
		Times:    times,
	}, nil
}

// decode accepts exactly the two recognised shapes and nothing else.
func decode(raw []byte) ([]segment, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrIndexBuild)
	}

	switch trimmed[0] {
	case '[':
		var segments []segment
		if err := json.Unmarshal(trimmed, &segments); err != nil {
			return nil, fmt.Errorf("%w: decode segment list: %v", domain.ErrIndexBuild, err)
		}
		return segments, nil
	case '{':
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("%w: decode document: %v", domain.ErrIndexBuild, err)
		}
		if doc.Segments == nil {
			return nil, fmt.Errorf("%w: unrecognised structure: object has no segments list", domain.ErrIndexBuild)
		}
		return *doc.Segments, nil
	default:
		return nil, fmt.Errorf("%w: unrecognised structure", domain.ErrIndexBuild)
	}
}
