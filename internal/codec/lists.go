package codec

import (
	"fmt"

	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
)

func DecodeDeliverablesStrict(raw any) ([]string, error) {
	if list, ok := raw.([]string); ok {
		out := make([]string, len(list))
		copy(out, list)
		return out, nil
	}

	in := newInput(raw)
	if in.empty() {
		return []string{}, nil
	}
	v, err := in.structured()
	if err != nil {
		return nil, err
	}
	return asStringList(v)
}

func EncodeDeliverables(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	return marshal(items)
}

type wireMilestone struct {
	Milestone string  `json:"milestone"`
	Amount    float64 `json:"amount"`
	DueDate   string  `json:"dueDate"`
}

func DecodePaymentScheduleStrict(raw any) ([]valueobject.PaymentMilestone, error) {
	if schedule, ok := raw.([]valueobject.PaymentMilestone); ok {
		out := make([]valueobject.PaymentMilestone, len(schedule))
		copy(out, schedule)
		if err := valueobject.ValidatePaymentSchedule(out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return out, nil
	}

	in := newInput(raw)
	if in.empty() {
		return []valueobject.PaymentMilestone{}, nil
	}
	v, err := in.structured()
	if err != nil {
		return nil, err
	}
	list, ok := asList(v)
	if !ok {
		return nil, fmt.Errorf("%w: ожидался массив этапов, получено %T", ErrShapeMismatch, v)
	}

	out := make([]valueobject.PaymentMilestone, 0, len(list))
	for i, item := range list {
		m, ok := asObject(item)
		if !ok {
			return nil, fmt.Errorf("этап %d: %w: ожидался объект", i, ErrShapeMismatch)
		}
		name, err := stringField(m, "milestone", "name", "title")
		if err != nil {
			return nil, fmt.Errorf("этап %d: %w", i, err)
		}
		amount, err := amountField(m, "amount")
		if err != nil {
			return nil, fmt.Errorf("этап %d: %w", i, err)
		}
		due, err := dateField(m, "dueDate", "due_date", "date")
		if err != nil {
			return nil, fmt.Errorf("этап %d: %w", i, err)
		}
		out = append(out, valueobject.PaymentMilestone{Milestone: name, Amount: amount, DueDate: due})
	}
	return out, nil
}

func EncodePaymentSchedule(schedule []valueobject.PaymentMilestone) (string, error) {
	if err := valueobject.ValidatePaymentSchedule(schedule); err != nil {
		return "", err
	}
	wire := make([]wireMilestone, len(schedule))
	for i, m := range schedule {
		wire[i] = wireMilestone{Milestone: m.Milestone, Amount: m.Amount, DueDate: m.DueDate.String()}
	}
	return marshal(wire)
}
