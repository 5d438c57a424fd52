// Package codec переводит секции документа предложения между форматом хранения
// (JSON-текст, иногда закодированный дважды, иногда уже разобранный) и
// каноническими значениями из valueobject.
//
// Чтение терпимо к устаревшим форматам и никогда не возвращает ошибку: при сбое
// аномалия логируется и подставляется значение по умолчанию. Запись всегда даёт
// ровно один слой JSON с явным тегом для размеченных объединений.
package codec

import (
	"fmt"
	"strings"
)

type Section string

const (
	SectionScopeOfWork            Section = "scope_of_work"
	SectionDeliverables           Section = "deliverables"
	SectionTimeline               Section = "timeline"
	SectionPricing                Section = "pricing"
	SectionPaymentSchedule        Section = "payment_schedule"
	SectionTermsAndConditions     Section = "terms_and_conditions"
	SectionClientResponsibilities Section = "client_responsibilities"
	SectionSignature              Section = "signature"
)

// Sections в фиксированном порядке; от него зависит хэш содержимого.
var Sections = []Section{
	SectionScopeOfWork,
	SectionDeliverables,
	SectionTimeline,
	SectionPricing,
	SectionPaymentSchedule,
	SectionTermsAndConditions,
	SectionClientResponsibilities,
	SectionSignature,
}

var sectionAliases = map[string]Section{
	"scopeofwork":            SectionScopeOfWork,
	"deliverables":           SectionDeliverables,
	"timeline":               SectionTimeline,
	"pricing":                SectionPricing,
	"paymentschedule":        SectionPaymentSchedule,
	"termsandconditions":     SectionTermsAndConditions,
	"terms":                  SectionTermsAndConditions,
	"clientresponsibilities": SectionClientResponsibilities,
	"signature":              SectionSignature,
}

// ParseSection принимает имя в snake_case или camelCase.
func ParseSection(name string) (Section, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", ""))
	if s, ok := sectionAliases[key]; ok {
		return s, nil
	}
	return "", fmt.Errorf("codec: неизвестная секция %q", name)
}

func (s Section) String() string {
	return string(s)
}

// Encoding описывает, в каком виде секция лежит в хранилище.
type Encoding string

const (
	EncodingEmpty         Encoding = "empty"
	EncodingCanonical     Encoding = "canonical"
	EncodingLegacy        Encoding = "legacy"
	EncodingDoubleEncoded Encoding = "double_encoded"
	EncodingDecoded       Encoding = "decoded"
	EncodingInvalid       Encoding = "invalid"
)

// NeedsRewrite сообщает, что запись в таком виде должна быть переписана миграцией.
func (e Encoding) NeedsRewrite() bool {
	return e == EncodingLegacy || e == EncodingDoubleEncoded
}
