package codec

import (
	"fmt"

	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
)

type wireStructuredResponsibilities struct {
	Kind           valueobject.ResponsibilitiesKind `json:"kind"`
	Assets         string                           `json:"assets"`
	Feedback       string                           `json:"feedback"`
	PointOfContact string                           `json:"pointOfContact"`
}

type wireResponsibilitiesList struct {
	Kind  valueobject.ResponsibilitiesKind `json:"kind"`
	Items []string                         `json:"items"`
}

func DecodeResponsibilitiesStrict(raw any) (valueobject.Responsibilities, error) {
	switch v := raw.(type) {
	case valueobject.Responsibilities:
		return v, nil
	case valueobject.StructuredResponsibilities:
		return valueobject.StructuredResponsibilitiesOf(v), nil
	case []string:
		return valueobject.ResponsibilitiesListOf(v), nil
	}

	in := newInput(raw)
	if in.empty() {
		return valueobject.StructuredResponsibilitiesOf(valueobject.StructuredResponsibilities{}), nil
	}
	// Одна строка текста становится списком из одного пункта.
	if in.isText && in.depth() == 0 {
		return valueobject.ResponsibilitiesListOf([]string{in.text}), nil
	}

	value := in.value()
	if list, ok := asList(value); ok {
		items, err := asStringList(list)
		if err != nil {
			return valueobject.Responsibilities{}, err
		}
		return valueobject.ResponsibilitiesListOf(items), nil
	}
	if m, ok := asObject(value); ok {
		return responsibilitiesFromObject(m)
	}
	s, err := asString(value)
	if err != nil {
		return valueobject.Responsibilities{}, err
	}
	return valueobject.ResponsibilitiesListOf([]string{s}), nil
}

func responsibilitiesFromObject(m map[string]any) (valueobject.Responsibilities, error) {
	asItems := hasAny(m, "items") && !hasAny(m, "assets", "feedback", "pointOfContact", "point_of_contact")
	if rawKind, ok := pick(m, "kind"); ok {
		s, err := asString(rawKind)
		if err != nil {
			return valueobject.Responsibilities{}, err
		}
		switch valueobject.ResponsibilitiesKind(s) {
		case valueobject.ResponsibilitiesList:
			asItems = true
		case valueobject.ResponsibilitiesStructured:
			asItems = false
		default:
			return valueobject.Responsibilities{}, fmt.Errorf("%w: вид обязанностей %q", ErrInvalidValue, s)
		}
	}

	if asItems {
		v, _ := pick(m, "items")
		if v == nil {
			return valueobject.ResponsibilitiesListOf(nil), nil
		}
		items, err := asStringList(v)
		if err != nil {
			return valueobject.Responsibilities{}, err
		}
		return valueobject.ResponsibilitiesListOf(items), nil
	}

	assets, err := stringField(m, "assets")
	if err != nil {
		return valueobject.Responsibilities{}, err
	}
	feedback, err := stringField(m, "feedback")
	if err != nil {
		return valueobject.Responsibilities{}, err
	}
	contact, err := stringField(m, "pointOfContact", "point_of_contact", "contact")
	if err != nil {
		return valueobject.Responsibilities{}, err
	}
	return valueobject.StructuredResponsibilitiesOf(valueobject.StructuredResponsibilities{
		Assets:         assets,
		Feedback:       feedback,
		PointOfContact: contact,
	}), nil
}

func EncodeResponsibilities(r valueobject.Responsibilities) (string, error) {
	if s, ok := r.Structured(); ok {
		return marshal(wireStructuredResponsibilities{
			Kind:           valueobject.ResponsibilitiesStructured,
			Assets:         s.Assets,
			Feedback:       s.Feedback,
			PointOfContact: s.PointOfContact,
		})
	}
	items := r.Items()
	if items == nil {
		items = []string{}
	}
	return marshal(wireResponsibilitiesList{Kind: valueobject.ResponsibilitiesList, Items: items})
}
