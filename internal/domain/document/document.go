// Package document содержит каноническую модель документа предложения.
//
// Document хранит по одному значению на секцию, всегда в канонической форме.
// Сырой формат хранения сюда не попадает: чтение идёт через codec.Decode,
// изменения через типизированные сеттеры с проверкой.
package document

import (
	"strings"

	"github.com/ignatzorin/proposal-backend/internal/codec"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// Reader даёт доступ к документу только на чтение. Шаблоны получают Reader,
// а не Document, и не могут изменить содержимое.
type Reader interface {
	ScopeOfWork() string
	Deliverables() []string
	Timeline() valueobject.Timeline
	Pricing() valueobject.Pricing
	PaymentSchedule() []valueobject.PaymentMilestone
	TermsAndConditions() valueobject.Terms
	ClientResponsibilities() valueobject.Responsibilities
	Signature() valueobject.Signature
}

type Document struct {
	scopeOfWork      string
	deliverables     []string
	timeline         valueobject.Timeline
	pricing          valueobject.Pricing
	paymentSchedule  []valueobject.PaymentMilestone
	terms            valueobject.Terms
	responsibilities valueobject.Responsibilities
	signature        valueobject.Signature
}

var _ Reader = (*Document)(nil)

// New возвращает документ, в котором все секции имеют значения по умолчанию.
func New() *Document {
	return &Document{
		deliverables:     []string{},
		pricing:          valueobject.LineItemsPricing(nil),
		paymentSchedule:  []valueobject.PaymentMilestone{},
		terms:            valueobject.StructuredTermsOf(valueobject.StructuredTerms{}),
		responsibilities: valueobject.StructuredResponsibilitiesOf(valueobject.StructuredResponsibilities{}),
	}
}

func (d *Document) ScopeOfWork() string {
	return d.scopeOfWork
}

func (d *Document) Deliverables() []string {
	out := make([]string, len(d.deliverables))
	copy(out, d.deliverables)
	return out
}

func (d *Document) Timeline() valueobject.Timeline {
	return d.timeline
}

func (d *Document) Pricing() valueobject.Pricing {
	return d.pricing
}

func (d *Document) PaymentSchedule() []valueobject.PaymentMilestone {
	out := make([]valueobject.PaymentMilestone, len(d.paymentSchedule))
	copy(out, d.paymentSchedule)
	return out
}

func (d *Document) TermsAndConditions() valueobject.Terms {
	return d.terms
}

func (d *Document) ClientResponsibilities() valueobject.Responsibilities {
	return d.responsibilities
}

func (d *Document) Signature() valueobject.Signature {
	return d.signature
}

func (d *Document) SetScopeOfWork(scope string) {
	d.scopeOfWork = scope
}

func (d *Document) SetDeliverables(items []string) error {
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			return apperror.Validation(codec.SectionDeliverables.String(), "пункт результата не может быть пустым")
		}
	}
	d.deliverables = make([]string, len(items))
	copy(d.deliverables, items)
	return nil
}

func (d *Document) SetTimeline(t valueobject.Timeline) error {
	if err := t.Validate(); err != nil {
		return apperror.Validation(codec.SectionTimeline.String(), err.Error())
	}
	d.timeline = t
	return nil
}

func (d *Document) SetPricing(p valueobject.Pricing) error {
	if err := p.Validate(); err != nil {
		return apperror.Validation(codec.SectionPricing.String(), err.Error())
	}
	// Пересборка отвязывает документ от среза, переданного вызывающим.
	if fee, ok := p.FlatFee(); ok {
		d.pricing = valueobject.FlatFeePricing(fee)
	} else {
		d.pricing = valueobject.LineItemsPricing(p.LineItems())
	}
	return nil
}

func (d *Document) SetPaymentSchedule(schedule []valueobject.PaymentMilestone) error {
	if err := valueobject.ValidatePaymentSchedule(schedule); err != nil {
		return apperror.Validation(codec.SectionPaymentSchedule.String(), err.Error())
	}
	d.paymentSchedule = make([]valueobject.PaymentMilestone, len(schedule))
	copy(d.paymentSchedule, schedule)
	return nil
}

func (d *Document) SetTermsAndConditions(t valueobject.Terms) {
	d.terms = t
}

func (d *Document) SetClientResponsibilities(r valueobject.Responsibilities) error {
	for _, item := range r.Items() {
		if strings.TrimSpace(item) == "" {
			return apperror.Validation(codec.SectionClientResponsibilities.String(), "пункт обязанностей не может быть пустым")
		}
	}
	d.responsibilities = r
	return nil
}

func (d *Document) SetSignature(s valueobject.Signature) {
	d.signature = s
}

// SetProviderSignature меняет только подпись исполнителя.
func (d *Document) SetProviderSignature(name string) {
	d.signature.Provider = name
}

// SetClientSignature вызывается только из захвата подписи клиента.
func (d *Document) SetClientSignature(name string) {
	d.signature.Client = name
}

// SetSection принимает секцию в формате хранения или в виде уже разобранного
// JSON. В отличие от чтения, нераспознанное значение отклоняется.
func (d *Document) SetSection(section codec.Section, raw any) error {
	value, err := codec.DecodeStrict(section, raw)
	if err != nil {
		return apperror.Validation(section.String(), err.Error())
	}
	switch section {
	case codec.SectionScopeOfWork:
		d.SetScopeOfWork(value.(string))
	case codec.SectionDeliverables:
		return d.SetDeliverables(value.([]string))
	case codec.SectionTimeline:
		return d.SetTimeline(value.(valueobject.Timeline))
	case codec.SectionPricing:
		return d.SetPricing(value.(valueobject.Pricing))
	case codec.SectionPaymentSchedule:
		return d.SetPaymentSchedule(value.([]valueobject.PaymentMilestone))
	case codec.SectionTermsAndConditions:
		d.SetTermsAndConditions(value.(valueobject.Terms))
	case codec.SectionClientResponsibilities:
		return d.SetClientResponsibilities(value.(valueobject.Responsibilities))
	case codec.SectionSignature:
		d.SetSignature(value.(valueobject.Signature))
	}
	return nil
}

// Get возвращает значение секции, как его вернул бы соответствующий геттер.
func (d *Document) Get(section codec.Section) any {
	switch section {
	case codec.SectionScopeOfWork:
		return d.ScopeOfWork()
	case codec.SectionDeliverables:
		return d.Deliverables()
	case codec.SectionTimeline:
		return d.Timeline()
	case codec.SectionPricing:
		return d.Pricing()
	case codec.SectionPaymentSchedule:
		return d.PaymentSchedule()
	case codec.SectionTermsAndConditions:
		return d.TermsAndConditions()
	case codec.SectionClientResponsibilities:
		return d.ClientResponsibilities()
	case codec.SectionSignature:
		return d.Signature()
	}
	return nil
}

// FromFields собирает документ из строки хранилища. Ключами служат имена секций
// (они же имена колонок). Чтение терпимое: повреждённая секция получает
// значение по умолчанию, остальные читаются как есть.
func FromFields(fields map[string]string) *Document {
	d := New()
	for _, section := range codec.Sections {
		raw, ok := fields[section.String()]
		if !ok {
			continue
		}
		d.load(section, codec.Decode(section, raw))
	}
	return d
}

// load кладёт уже разобранное значение без проверок сеттеров: старые записи
// (например, с перепутанными датами) должны открываться.
func (d *Document) load(section codec.Section, value any) {
	switch section {
	case codec.SectionScopeOfWork:
		d.scopeOfWork = value.(string)
	case codec.SectionDeliverables:
		d.deliverables = value.([]string)
	case codec.SectionTimeline:
		d.timeline = value.(valueobject.Timeline)
	case codec.SectionPricing:
		d.pricing = value.(valueobject.Pricing)
	case codec.SectionPaymentSchedule:
		d.paymentSchedule = value.([]valueobject.PaymentMilestone)
	case codec.SectionTermsAndConditions:
		d.terms = value.(valueobject.Terms)
	case codec.SectionClientResponsibilities:
		d.responsibilities = value.(valueobject.Responsibilities)
	case codec.SectionSignature:
		d.signature = value.(valueobject.Signature)
	}
}

// Fields кодирует каждую секцию ровно в один слой JSON.
func (d *Document) Fields() (map[string]string, error) {
	fields := make(map[string]string, len(codec.Sections))
	for _, section := range codec.Sections {
		encoded, err := codec.Encode(section, d.Get(section))
		if err != nil {
			return nil, apperror.Validation(section.String(), err.Error())
		}
		fields[section.String()] = encoded
	}
	return fields, nil
}

// Clone возвращает независимую копию: изменения копии не видны в оригинале.
func (d *Document) Clone() *Document {
	cp := *d
	cp.deliverables = d.Deliverables()
	cp.paymentSchedule = d.PaymentSchedule()
	if fee, ok := d.pricing.FlatFee(); ok {
		cp.pricing = valueobject.FlatFeePricing(fee)
	} else {
		cp.pricing = valueobject.LineItemsPricing(d.pricing.LineItems())
	}
	if items := d.responsibilities.Items(); items != nil {
		cp.responsibilities = valueobject.ResponsibilitiesListOf(items)
	}
	return &cp
}

func (d *Document) Equal(other *Document) bool {
	if other == nil {
		return false
	}
	if d.scopeOfWork != other.scopeOfWork || d.signature != other.signature {
		return false
	}
	if !d.timeline.Equal(other.timeline) || !d.pricing.Equal(other.pricing) {
		return false
	}
	if !d.terms.Equal(other.terms) || !d.responsibilities.Equal(other.responsibilities) {
		return false
	}
	if len(d.deliverables) != len(other.deliverables) || len(d.paymentSchedule) != len(other.paymentSchedule) {
		return false
	}
	for i := range d.deliverables {
		if d.deliverables[i] != other.deliverables[i] {
			return false
		}
	}
	for i := range d.paymentSchedule {
		a, b := d.paymentSchedule[i], other.paymentSchedule[i]
		if a.Milestone != b.Milestone || a.Amount != b.Amount || !a.DueDate.Equal(b.DueDate) {
			return false
		}
	}
	return true
}
