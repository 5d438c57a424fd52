package projection

import (
	"fmt"

	"github.com/ignatzorin/proposal-backend/internal/domain/document"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
)

// labeled: именованный пункт условий или обязанностей.
type labeled struct {
	Label string
	Value string
}

type milestoneView struct {
	Milestone string
	Amount    string
	DueDate   string
}

type lineItemView struct {
	Item   string
	Amount string
}

// documentView содержит документ, подготовленный для текстовых шаблонов.
// Пустые пункты отбрасываются.
type documentView struct {
	ScopeOfWork      string
	Deliverables     []string
	Start            string
	End              string
	FlatFee          bool
	FeeAmount        string
	FeeType          string
	LineItems        []lineItemView
	Total            string
	Schedule         []milestoneView
	TermsText        string
	Terms            []labeled
	Responsibilities []labeled
	ResponsibleItems []string
	Signature        valueobject.Signature
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

func newDocumentView(doc document.Reader) documentView {
	timeline := doc.Timeline()
	view := documentView{
		ScopeOfWork:  doc.ScopeOfWork(),
		Deliverables: doc.Deliverables(),
		Start:        timeline.Start.String(),
		End:          timeline.End.String(),
		Signature:    doc.Signature(),
	}

	pricing := doc.Pricing()
	if fee, ok := pricing.FlatFee(); ok {
		view.FlatFee = true
		view.FeeAmount = formatAmount(fee.Amount) + " " + string(fee.Currency)
		view.FeeType = string(fee.Type)
	}
	for _, item := range pricing.LineItems() {
		view.LineItems = append(view.LineItems, lineItemView{Item: item.Item, Amount: formatAmount(item.Amount)})
	}
	view.Total = formatAmount(pricing.Total())

	for _, m := range doc.PaymentSchedule() {
		view.Schedule = append(view.Schedule, milestoneView{
			Milestone: m.Milestone,
			Amount:    formatAmount(m.Amount),
			DueDate:   m.DueDate.String(),
		})
	}

	terms := doc.TermsAndConditions()
	if text, ok := terms.FreeText(); ok {
		view.TermsText = text
	} else if s, ok := terms.Structured(); ok {
		view.Terms = nonEmpty(
			labeled{"Количество правок", s.RevisionLimits},
			labeled{"Интеллектуальная собственность", s.IntellectualProperty},
			labeled{"Конфиденциальность", s.Confidentiality},
			labeled{"Расторжение", s.Termination},
			labeled{"Ответственность", s.Liability},
			labeled{"Применимое право", s.GoverningLaw},
		)
	}

	resp := doc.ClientResponsibilities()
	if s, ok := resp.Structured(); ok {
		view.Responsibilities = nonEmpty(
			labeled{"Материалы", s.Assets},
			labeled{"Обратная связь", s.Feedback},
			labeled{"Контактное лицо", s.PointOfContact},
		)
	} else {
		view.ResponsibleItems = resp.Items()
	}
	return view
}

func nonEmpty(items ...labeled) []labeled {
	var out []labeled
	for _, item := range items {
		if item.Value != "" {
			out = append(out, item)
		}
	}
	return out
}
