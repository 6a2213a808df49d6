package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// AnswerKind tags the shape of a submitted answer value.
type AnswerKind int

const (
	// AnswerOther covers objects, booleans, null and mixed arrays.
	AnswerOther AnswerKind = iota
	AnswerNumber
	AnswerIndexList
	AnswerText
)

func (k AnswerKind) String() string {
	switch k {
	case AnswerNumber:
		return "number"
	case AnswerIndexList:
		return "index-list"
	case AnswerText:
		return "text"
	default:
		return "other"
	}
}

// AnswerValue is a decoded answer. Only the field matching Kind is set; Raw
// always holds the submitted JSON.
type AnswerValue struct {
	Kind    AnswerKind
	Number  json.Number
	Indices []int
	Text    string
	Raw     json.RawMessage
}

// DecodeAnswer classifies one raw JSON answer. It never fails: anything that
// is not a number, a list of integers or a string decodes as AnswerOther.
func DecodeAnswer(raw json.RawMessage) AnswerValue {
	v := AnswerValue{Kind: AnswerOther, Raw: raw}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return v
	}

	switch c := trimmed[0]; {
	case c == '"':
		var s string
		if json.Unmarshal(trimmed, &s) == nil {
			v.Kind = AnswerText
			v.Text = s
		}
	case c == '-' || (c >= '0' && c <= '9'):
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		var n json.Number
		if dec.Decode(&n) == nil {
			v.Kind = AnswerNumber
			v.Number = n
		}
	case c == '[':
		var items []json.Number
		if json.Unmarshal(trimmed, &items) != nil {
			return v
		}
		indices := make([]int, 0, len(items))
		for _, item := range items {
			i, err := strconv.Atoi(item.String())
			if err != nil {
				return v
			}
			indices = append(indices, i)
		}
		v.Kind = AnswerIndexList
		v.Indices = indices
	}
	return v
}

// DecodeAnswers classifies every value of a submission.
func DecodeAnswers(raw map[string]json.RawMessage) map[string]AnswerValue {
	out := make(map[string]AnswerValue, len(raw))
	for key, value := range raw {
		out[key] = DecodeAnswer(value)
	}
	return out
}

// Contribution is the amount this value adds to an assessment score. Numbers
// add their integer value (fractions truncated toward zero), strings add the
// integer they spell after trimming whitespace, everything else adds 0.
// Values outside the int range are clamped to its bounds.
func (v AnswerValue) Contribution() int {
	switch v.Kind {
	case AnswerNumber:
		if i, err := strconv.ParseInt(v.Number.String(), 10, 0); err == nil || errors.Is(err, strconv.ErrRange) {
			return int(i)
		}
		f, err := v.Number.Float64()
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0
		}
		switch {
		case math.IsNaN(f):
			return 0
		case f >= math.MaxInt:
			return math.MaxInt
		case f <= math.MinInt:
			return math.MinInt
		}
		return int(f)
	case AnswerText:
		if i, err := strconv.ParseInt(strings.TrimSpace(v.Text), 10, 0); err == nil || errors.Is(err, strconv.ErrRange) {
			return int(i)
		}
	}
	return 0
}

// CellText renders the value for a tabular export. Unusable values render
// as the empty string.
func (v AnswerValue) CellText() string {
	switch v.Kind {
	case AnswerNumber:
		return v.Number.String()
	case AnswerText:
		return v.Text
	case AnswerIndexList:
		parts := make([]string, len(v.Indices))
		for i, idx := range v.Indices {
			parts[i] = strconv.Itoa(idx)
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// Accepts reports whether v is a well-formed answer for q: a valid option
// index for SingleChoice, any number for Scale, distinct valid option indices
// for MultipleChoice and a string for Text.
func (q Question) Accepts(v AnswerValue) bool {
	switch q.Type {
	case SingleChoice:
		if v.Kind != AnswerNumber {
			return false
		}
		i, err := strconv.Atoi(v.Number.String())
		return err == nil && i >= 0 && i < len(q.Options)
	case Scale:
		return v.Kind == AnswerNumber
	case MultipleChoice:
		if v.Kind != AnswerIndexList {
			return false
		}
		seen := make(map[int]struct{}, len(v.Indices))
		for _, i := range v.Indices {
			if i < 0 || i >= len(q.Options) {
				return false
			}
			if _, dup := seen[i]; dup {
				return false
			}
			seen[i] = struct{}{}
		}
		return true
	case Text:
		return v.Kind == AnswerText
	}
	return false
}
