package codec

import (
	"fmt"

	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
)

type wireTimeline struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DecodeTimelineStrict не проверяет порядок дат: старые записи с перепутанными
// датами должны открываться, проверка делается при изменении.
func DecodeTimelineStrict(raw any) (valueobject.Timeline, error) {
	if t, ok := raw.(valueobject.Timeline); ok {
		return t, nil
	}

	in := newInput(raw)
	if in.empty() {
		return valueobject.Timeline{}, nil
	}
	v, err := in.structured()
	if err != nil {
		return valueobject.Timeline{}, err
	}
	m, ok := asObject(v)
	if !ok {
		return valueobject.Timeline{}, fmt.Errorf("%w: ожидался объект сроков, получено %T", ErrShapeMismatch, v)
	}
	start, err := dateField(m, "start", "startDate", "start_date")
	if err != nil {
		return valueobject.Timeline{}, err
	}
	end, err := dateField(m, "end", "endDate", "end_date")
	if err != nil {
		return valueobject.Timeline{}, err
	}
	return valueobject.Timeline{Start: start, End: end}, nil
}

func EncodeTimeline(t valueobject.Timeline) (string, error) {
	return marshal(wireTimeline{Start: t.Start.String(), End: t.End.String()})
}
