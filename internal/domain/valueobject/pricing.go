package valueobject

import (
	"errors"
	"fmt"
)

type PricingKind string

const (
	PricingLineItems PricingKind = "line_items"
	PricingFlatFee   PricingKind = "flat_fee"
)

type LineItem struct {
	Item   string
	Amount float64
}

type FlatFee struct {
	Amount   float64
	Currency Currency
	Type     FeeType
}

// Pricing хранит размеченное объединение: список позиций либо фиксированная ставка.
// Нулевое значение означает пустой список позиций.
type Pricing struct {
	kind  PricingKind
	items []LineItem
	flat  FlatFee
}

func LineItemsPricing(items []LineItem) Pricing {
	cp := make([]LineItem, len(items))
	copy(cp, items)
	return Pricing{kind: PricingLineItems, items: cp}
}

// FlatFeePricing подставляет USD и fixed вместо пустых значений.
func FlatFeePricing(fee FlatFee) Pricing {
	if fee.Currency == "" {
		fee.Currency = DefaultCurrency
	}
	if fee.Type == "" {
		fee.Type = DefaultFeeType
	}
	return Pricing{kind: PricingFlatFee, flat: fee}
}

func (p Pricing) Kind() PricingKind {
	if p.kind == "" {
		return PricingLineItems
	}
	return p.kind
}

// LineItems возвращает копию позиций; для фиксированной ставки nil.
func (p Pricing) LineItems() []LineItem {
	if p.Kind() != PricingLineItems {
		return nil
	}
	cp := make([]LineItem, len(p.items))
	copy(cp, p.items)
	return cp
}

func (p Pricing) FlatFee() (FlatFee, bool) {
	if p.Kind() != PricingFlatFee {
		return FlatFee{}, false
	}
	return p.flat, true
}

// Total возвращает сумму позиций или размер ставки.
func (p Pricing) Total() float64 {
	if fee, ok := p.FlatFee(); ok {
		return fee.Amount
	}
	var total float64
	for _, item := range p.items {
		total += item.Amount
	}
	return total
}

func (p Pricing) Validate() error {
	if fee, ok := p.FlatFee(); ok {
		if err := ValidateAmount(fee.Amount); err != nil {
			return err
		}
		if !fee.Currency.IsValid() {
			return fmt.Errorf("неподдерживаемая валюта %q", fee.Currency)
		}
		if !fee.Type.IsValid() {
			return fmt.Errorf("неподдерживаемый тип оплаты %q", fee.Type)
		}
		return nil
	}
	for i, item := range p.items {
		if err := ValidateAmount(item.Amount); err != nil {
			return fmt.Errorf("позиция %d: %w", i+1, err)
		}
	}
	return nil
}

func (p Pricing) Equal(other Pricing) bool {
	if p.Kind() != other.Kind() {
		return false
	}
	if p.Kind() == PricingFlatFee {
		return p.flat == other.flat
	}
	if len(p.items) != len(other.items) {
		return false
	}
	for i := range p.items {
		if p.items[i] != other.items[i] {
			return false
		}
	}
	return true
}

var ErrUnknownPricingKind = errors.New("неизвестный вид цены")

func ParsePricingKind(v string) (PricingKind, error) {
	switch k := PricingKind(v); k {
	case PricingLineItems, PricingFlatFee:
		return k, nil
	}
	return "", ErrUnknownPricingKind
}
