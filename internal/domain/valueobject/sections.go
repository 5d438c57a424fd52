package valueobject

import (
	"errors"
	"fmt"
	"strings"
)

type Timeline struct {
	Start Date
	End   Date
}

var ErrTimelineOrder = errors.New("дата начала не может быть позже даты окончания")

// Validate проверяет порядок дат, если обе заданы.
func (t Timeline) Validate() error {
	if !t.Start.IsZero() && !t.End.IsZero() && t.End.Before(t.Start) {
		return ErrTimelineOrder
	}
	return nil
}

func (t Timeline) Equal(other Timeline) bool {
	return t.Start.Equal(other.Start) && t.End.Equal(other.End)
}

type PaymentMilestone struct {
	Milestone string
	Amount    float64
	DueDate   Date
}

func ValidatePaymentSchedule(schedule []PaymentMilestone) error {
	for i, m := range schedule {
		if err := ValidateAmount(m.Amount); err != nil {
			return fmt.Errorf("этап %d: %w", i+1, err)
		}
	}
	return nil
}

type TermsKind string

const (
	TermsStructured TermsKind = "structured"
	TermsFreeText   TermsKind = "free_text"
)

type StructuredTerms struct {
	RevisionLimits       string
	IntellectualProperty string
	Confidentiality      string
	Termination          string
	Liability            string
	GoverningLaw         string
}

// Terms хранит условия: набор именованных пунктов либо форматированный текст.
// Нулевое значение означает пустые структурированные условия.
type Terms struct {
	kind       TermsKind
	structured StructuredTerms
	text       string
}

func StructuredTermsOf(s StructuredTerms) Terms {
	return Terms{kind: TermsStructured, structured: s}
}

func FreeTextTerms(text string) Terms {
	return Terms{kind: TermsFreeText, text: text}
}

func (t Terms) Kind() TermsKind {
	if t.kind == "" {
		return TermsStructured
	}
	return t.kind
}

func (t Terms) Structured() (StructuredTerms, bool) {
	if t.Kind() != TermsStructured {
		return StructuredTerms{}, false
	}
	return t.structured, true
}

func (t Terms) FreeText() (string, bool) {
	if t.Kind() != TermsFreeText {
		return "", false
	}
	return t.text, true
}

func (t Terms) Equal(other Terms) bool {
	return t.Kind() == other.Kind() && t.structured == other.structured && t.text == other.text
}

type ResponsibilitiesKind string

const (
	ResponsibilitiesStructured ResponsibilitiesKind = "structured"
	ResponsibilitiesList       ResponsibilitiesKind = "list"
)

type StructuredResponsibilities struct {
	Assets         string
	Feedback       string
	PointOfContact string
}

// Responsibilities хранит обязанности клиента: три именованных поля либо список.
type Responsibilities struct {
	kind       ResponsibilitiesKind
	structured StructuredResponsibilities
	items      []string
}

func StructuredResponsibilitiesOf(s StructuredResponsibilities) Responsibilities {
	return Responsibilities{kind: ResponsibilitiesStructured, structured: s}
}

func ResponsibilitiesListOf(items []string) Responsibilities {
	cp := make([]string, len(items))
	copy(cp, items)
	return Responsibilities{kind: ResponsibilitiesList, items: cp}
}

func (r Responsibilities) Kind() ResponsibilitiesKind {
	if r.kind == "" {
		return ResponsibilitiesStructured
	}
	return r.kind
}

func (r Responsibilities) Structured() (StructuredResponsibilities, bool) {
	if r.Kind() != ResponsibilitiesStructured {
		return StructuredResponsibilities{}, false
	}
	return r.structured, true
}

// Items возвращает копию списка; для структурированного вида nil.
func (r Responsibilities) Items() []string {
	if r.Kind() != ResponsibilitiesList {
		return nil
	}
	cp := make([]string, len(r.items))
	copy(cp, r.items)
	return cp
}

func (r Responsibilities) Equal(other Responsibilities) bool {
	if r.Kind() != other.Kind() || r.structured != other.structured {
		return false
	}
	if len(r.items) != len(other.items) {
		return false
	}
	for i := range r.items {
		if r.items[i] != other.items[i] {
			return false
		}
	}
	return true
}

// Signature: пустая строка означает отсутствие подписи.
type Signature struct {
	Provider string
	Client   string
}

func (s Signature) IsSignedByClient() bool {
	return strings.TrimSpace(s.Client) != ""
}
