package codec

import (
	"fmt"

	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
)

type wireStructuredTerms struct {
	Kind                 valueobject.TermsKind `json:"kind"`
	RevisionLimits       string                `json:"revisionLimits"`
	IntellectualProperty string                `json:"intellectualProperty"`
	Confidentiality      string                `json:"confidentiality"`
	Termination          string                `json:"termination"`
	Liability            string                `json:"liability"`
	GoverningLaw         string                `json:"governingLaw"`
}

type wireFreeText struct {
	Kind valueobject.TermsKind `json:"kind"`
	Text string                `json:"text"`
}

var structuredTermsKeys = [][]string{
	{"revisionLimits", "revision_limits", "revisions"},
	{"intellectualProperty", "intellectual_property", "ip"},
	{"confidentiality"},
	{"termination"},
	{"liability"},
	{"governingLaw", "governing_law"},
}

// DecodeTermsStrict читает объект как структурированные условия, строку на
// любом слое как форматированный текст, текст без JSON как старый HTML.
func DecodeTermsStrict(raw any) (valueobject.Terms, error) {
	switch v := raw.(type) {
	case valueobject.Terms:
		return v, nil
	case valueobject.StructuredTerms:
		return valueobject.StructuredTermsOf(v), nil
	}

	in := newInput(raw)
	if in.empty() {
		return valueobject.StructuredTermsOf(valueobject.StructuredTerms{}), nil
	}
	if in.isText && in.depth() == 0 {
		return valueobject.FreeTextTerms(in.text), nil
	}

	value := in.value()
	if m, ok := asObject(value); ok {
		return termsFromObject(m)
	}
	if _, ok := asList(value); ok {
		return valueobject.Terms{}, fmt.Errorf("%w: условия не могут быть массивом", ErrShapeMismatch)
	}
	for i := len(in.layers) - 1; i >= 1; i-- {
		if s, ok := in.layers[i].(string); ok {
			return valueobject.FreeTextTerms(s), nil
		}
	}
	if in.isText {
		return valueobject.FreeTextTerms(in.text), nil
	}
	return valueobject.Terms{}, fmt.Errorf("%w: ожидались условия, получено %T", ErrShapeMismatch, value)
}

func termsFromObject(m map[string]any) (valueobject.Terms, error) {
	if rawKind, ok := pick(m, "kind"); ok {
		s, err := asString(rawKind)
		if err != nil {
			return valueobject.Terms{}, err
		}
		switch valueobject.TermsKind(s) {
		case valueobject.TermsStructured:
			return structuredTermsFrom(m)
		case valueobject.TermsFreeText:
			text, err := stringField(m, "text", "content", "html")
			if err != nil {
				return valueobject.Terms{}, err
			}
			return valueobject.FreeTextTerms(text), nil
		}
		return valueobject.Terms{}, fmt.Errorf("%w: вид условий %q", ErrInvalidValue, s)
	}

	if hasAny(m, "text", "content", "html") && !hasStructuredTerms(m) {
		text, err := stringField(m, "text", "content", "html")
		if err != nil {
			return valueobject.Terms{}, err
		}
		return valueobject.FreeTextTerms(text), nil
	}
	return structuredTermsFrom(m)
}

func hasStructuredTerms(m map[string]any) bool {
	for _, keys := range structuredTermsKeys {
		if hasAny(m, keys...) {
			return true
		}
	}
	return false
}

func structuredTermsFrom(m map[string]any) (valueobject.Terms, error) {
	values := make([]string, len(structuredTermsKeys))
	for i, keys := range structuredTermsKeys {
		s, err := stringField(m, keys...)
		if err != nil {
			return valueobject.Terms{}, err
		}
		values[i] = s
	}
	return valueobject.StructuredTermsOf(valueobject.StructuredTerms{
		RevisionLimits:       values[0],
		IntellectualProperty: values[1],
		Confidentiality:      values[2],
		Termination:          values[3],
		Liability:            values[4],
		GoverningLaw:         values[5],
	}), nil
}

func EncodeTerms(t valueobject.Terms) (string, error) {
	if text, ok := t.FreeText(); ok {
		return marshal(wireFreeText{Kind: valueobject.TermsFreeText, Text: text})
	}
	s, _ := t.Structured()
	return marshal(wireStructuredTerms{
		Kind:                 valueobject.TermsStructured,
		RevisionLimits:       s.RevisionLimits,
		IntellectualProperty: s.IntellectualProperty,
		Confidentiality:      s.Confidentiality,
		Termination:          s.Termination,
		Liability:            s.Liability,
		GoverningLaw:         s.GoverningLaw,
	})
}
