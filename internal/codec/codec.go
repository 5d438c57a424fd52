package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
)

var ErrUnknownSection = errors.New("неизвестная секция")

// DecodeStrict разбирает секцию и возвращает ошибку вместо значения по
// умолчанию. Используется на пути записи, где мусор нужно отклонить.
func DecodeStrict(section Section, raw any) (any, error) {
	var (
		v   any
		err error
	)
	switch section {
	case SectionScopeOfWork:
		v, err = DecodeScopeOfWorkStrict(raw)
	case SectionDeliverables:
		v, err = DecodeDeliverablesStrict(raw)
	case SectionTimeline:
		v, err = DecodeTimelineStrict(raw)
	case SectionPricing:
		v, err = DecodePricingStrict(raw)
	case SectionPaymentSchedule:
		v, err = DecodePaymentScheduleStrict(raw)
	case SectionTermsAndConditions:
		v, err = DecodeTermsStrict(raw)
	case SectionClientResponsibilities:
		v, err = DecodeResponsibilitiesStrict(raw)
	case SectionSignature:
		v, err = DecodeSignatureStrict(raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", section, err)
	}
	return v, nil
}

// Decode читает секцию терпимо: при любой ошибке аномалия фиксируется, а секция
// получает значение по умолчанию. Никогда не паникует.
func Decode(section Section, raw any) any {
	v, err := DecodeStrict(section, raw)
	if err != nil {
		reportAnomaly(section, raw, err)
		return Default(section)
	}
	noteLegacy(section, raw)
	return v
}

// Default возвращает значение секции, когда в хранилище ничего нет.
func Default(section Section) any {
	switch section {
	case SectionScopeOfWork:
		return ""
	case SectionDeliverables:
		return []string{}
	case SectionTimeline:
		return valueobject.Timeline{}
	case SectionPricing:
		return valueobject.LineItemsPricing(nil)
	case SectionPaymentSchedule:
		return []valueobject.PaymentMilestone{}
	case SectionTermsAndConditions:
		return valueobject.StructuredTermsOf(valueobject.StructuredTerms{})
	case SectionClientResponsibilities:
		return valueobject.StructuredResponsibilitiesOf(valueobject.StructuredResponsibilities{})
	case SectionSignature:
		return valueobject.Signature{}
	}
	return nil
}

// Encode кодирует каноническое значение секции ровно в один слой JSON.
func Encode(section Section, value any) (string, error) {
	mismatch := func() (string, error) {
		return "", fmt.Errorf("%s: %w: значение типа %T", section, ErrShapeMismatch, value)
	}
	switch section {
	case SectionScopeOfWork:
		v, ok := value.(string)
		if !ok {
			return mismatch()
		}
		return EncodeScopeOfWork(v)
	case SectionDeliverables:
		v, ok := value.([]string)
		if !ok {
			return mismatch()
		}
		return EncodeDeliverables(v)
	case SectionTimeline:
		v, ok := value.(valueobject.Timeline)
		if !ok {
			return mismatch()
		}
		return EncodeTimeline(v)
	case SectionPricing:
		v, ok := value.(valueobject.Pricing)
		if !ok {
			return mismatch()
		}
		return EncodePricing(v)
	case SectionPaymentSchedule:
		v, ok := value.([]valueobject.PaymentMilestone)
		if !ok {
			return mismatch()
		}
		return EncodePaymentSchedule(v)
	case SectionTermsAndConditions:
		v, ok := value.(valueobject.Terms)
		if !ok {
			return mismatch()
		}
		return EncodeTerms(v)
	case SectionClientResponsibilities:
		v, ok := value.(valueobject.Responsibilities)
		if !ok {
			return mismatch()
		}
		return EncodeResponsibilities(v)
	case SectionSignature:
		v, ok := value.(valueobject.Signature)
		if !ok {
			return mismatch()
		}
		return EncodeSignature(v)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSection, section)
}

// Inspect определяет, в каком виде секция лежит в хранилище.
func Inspect(section Section, raw any) Encoding {
	in := newInput(raw)
	if in.empty() {
		return EncodingEmpty
	}
	if !in.isText {
		return EncodingDecoded
	}
	v, err := DecodeStrict(section, raw)
	if err != nil {
		return EncodingInvalid
	}
	canonical, err := Encode(section, v)
	if err != nil {
		return EncodingInvalid
	}
	if canonical == in.text {
		return EncodingCanonical
	}
	if section != SectionScopeOfWork && in.depth() >= 2 {
		return EncodingDoubleEncoded
	}
	return EncodingLegacy
}

// Verify проверяет текст перед записью: ровно один слой JSON в канонической
// форме секции. При любом отклонении запись не выполняется.
func Verify(section Section, encoded string) error {
	in := textInput(encoded)
	if in.depth() == 0 {
		return fmt.Errorf("%s: %w", section, ErrNotJSON)
	}
	_, isString := in.layers[1].(string)
	if section == SectionScopeOfWork && !isString {
		return fmt.Errorf("%s: %w: ожидалась JSON-строка", section, ErrShapeMismatch)
	}
	if section != SectionScopeOfWork && isString {
		return fmt.Errorf("%s: значение закодировано дважды", section)
	}
	v, err := DecodeStrict(section, encoded)
	if err != nil {
		return err
	}
	canonical, err := Encode(section, v)
	if err != nil {
		return err
	}
	if canonical != strings.TrimSpace(encoded) {
		return fmt.Errorf("%s: значение не в канонической форме", section)
	}
	return nil
}

func DecodeScopeOfWork(raw any) string {
	return Decode(SectionScopeOfWork, raw).(string)
}

func DecodeDeliverables(raw any) []string {
	return Decode(SectionDeliverables, raw).([]string)
}

func DecodeTimeline(raw any) valueobject.Timeline {
	return Decode(SectionTimeline, raw).(valueobject.Timeline)
}

func DecodePricing(raw any) valueobject.Pricing {
	return Decode(SectionPricing, raw).(valueobject.Pricing)
}

func DecodePaymentSchedule(raw any) []valueobject.PaymentMilestone {
	return Decode(SectionPaymentSchedule, raw).([]valueobject.PaymentMilestone)
}

func DecodeTerms(raw any) valueobject.Terms {
	return Decode(SectionTermsAndConditions, raw).(valueobject.Terms)
}

func DecodeResponsibilities(raw any) valueobject.Responsibilities {
	return Decode(SectionClientResponsibilities, raw).(valueobject.Responsibilities)
}

func DecodeSignature(raw any) valueobject.Signature {
	return Decode(SectionSignature, raw).(valueobject.Signature)
}
