package projection

import (
	"encoding/json"
	"io"

	"github.com/ignatzorin/proposal-backend/internal/codec"
	"github.com/ignatzorin/proposal-backend/internal/domain/document"
)

const TemplateJSON = "json"

// JSONTemplate отдаёт проекцию клиентскому приложению. Секции кодируются
// тем же кодеком, что и при записи, поэтому формат совпадает с API.
type JSONTemplate struct{}

func NewJSONTemplate() JSONTemplate {
	return JSONTemplate{}
}

func (JSONTemplate) Name() string {
	return TemplateJSON
}

func (JSONTemplate) ContentType() string {
	return "application/json; charset=utf-8"
}

type jsonProjection struct {
	Proposal  ProposalView                      `json:"proposal"`
	Document  map[codec.Section]json.RawMessage `json:"document"`
	Signature SignatureState                    `json:"signature"`
}

func (JSONTemplate) Render(w io.Writer, p Projection) error {
	sections, err := encodeReader(p.Document)
	if err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(jsonProjection{
		Proposal:  p.Proposal,
		Document:  sections,
		Signature: p.Signature,
	})
}

func encodeReader(doc document.Reader) (map[codec.Section]json.RawMessage, error) {
	values := map[codec.Section]any{
		codec.SectionScopeOfWork:            doc.ScopeOfWork(),
		codec.SectionDeliverables:           doc.Deliverables(),
		codec.SectionTimeline:               doc.Timeline(),
		codec.SectionPricing:                doc.Pricing(),
		codec.SectionPaymentSchedule:        doc.PaymentSchedule(),
		codec.SectionTermsAndConditions:     doc.TermsAndConditions(),
		codec.SectionClientResponsibilities: doc.ClientResponsibilities(),
		codec.SectionSignature:              doc.Signature(),
	}
	out := make(map[codec.Section]json.RawMessage, len(values))
	for section, value := range values {
		encoded, err := codec.Encode(section, value)
		if err != nil {
			return nil, err
		}
		out[section] = json.RawMessage(encoded)
	}
	return out, nil
}
