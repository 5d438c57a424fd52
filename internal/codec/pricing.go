package codec

import (
	"fmt"

	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
)

type wireLineItem struct {
	Item   string  `json:"item"`
	Amount float64 `json:"amount"`
}

type wireLineItems struct {
	Kind  valueobject.PricingKind `json:"kind"`
	Items []wireLineItem          `json:"items"`
}

type wireFlatFee struct {
	Kind     valueobject.PricingKind `json:"kind"`
	Amount   float64                 `json:"amount"`
	Currency valueobject.Currency    `json:"currency"`
	Type     valueobject.FeeType     `json:"type"`
}

// DecodePricingStrict понимает три формы хранения:
//   - {"kind": ...}: каноническая, с явным тегом;
//   - массив позиций или объект с "items": список позиций;
//   - объект с "amount": фиксированная ставка, валюта и тип по умолчанию.
func DecodePricingStrict(raw any) (valueobject.Pricing, error) {
	var p valueobject.Pricing
	switch v := raw.(type) {
	case valueobject.Pricing:
		p = v
	case []valueobject.LineItem:
		p = valueobject.LineItemsPricing(v)
	case valueobject.FlatFee:
		p = valueobject.FlatFeePricing(v)
	default:
		in := newInput(raw)
		if in.empty() {
			return valueobject.LineItemsPricing(nil), nil
		}
		value, err := in.structured()
		if err != nil {
			return valueobject.Pricing{}, err
		}
		p, err = pricingFromValue(value)
		if err != nil {
			return valueobject.Pricing{}, err
		}
	}
	if err := p.Validate(); err != nil {
		return valueobject.Pricing{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return p, nil
}

func pricingFromValue(v any) (valueobject.Pricing, error) {
	if list, ok := asList(v); ok {
		return lineItemsFrom(list)
	}
	m, ok := asObject(v)
	if !ok {
		return valueobject.Pricing{}, fmt.Errorf("%w: ожидался объект цены, получено %T", ErrShapeMismatch, v)
	}

	if rawKind, ok := pick(m, "kind"); ok {
		s, err := asString(rawKind)
		if err != nil {
			return valueobject.Pricing{}, err
		}
		kind, err := valueobject.ParsePricingKind(s)
		if err != nil {
			return valueobject.Pricing{}, fmt.Errorf("%w: вид цены %q", ErrInvalidValue, s)
		}
		if kind == valueobject.PricingFlatFee {
			return flatFeeFrom(m)
		}
		return lineItemsField(m)
	}

	switch {
	case hasAny(m, "items", "lineItems", "line_items"):
		return lineItemsField(m)
	case hasAny(m, "item"):
		// Одиночная позиция без обёртки.
		return lineItemsFrom([]any{m})
	case hasAny(m, "amount"):
		return flatFeeFrom(m)
	}
	return valueobject.Pricing{}, fmt.Errorf("%w: объект цены без позиций и суммы", ErrShapeMismatch)
}

func lineItemsField(m map[string]any) (valueobject.Pricing, error) {
	v, _ := pick(m, "items", "lineItems", "line_items")
	if v == nil {
		return valueobject.LineItemsPricing(nil), nil
	}
	list, ok := asList(v)
	if !ok {
		return valueobject.Pricing{}, fmt.Errorf("%w: поле items должно быть массивом", ErrShapeMismatch)
	}
	return lineItemsFrom(list)
}

func lineItemsFrom(list []any) (valueobject.Pricing, error) {
	items := make([]valueobject.LineItem, 0, len(list))
	for i, raw := range list {
		m, ok := asObject(raw)
		if !ok {
			return valueobject.Pricing{}, fmt.Errorf("позиция %d: %w: ожидался объект", i, ErrShapeMismatch)
		}
		name, err := stringField(m, "item", "name", "description")
		if err != nil {
			return valueobject.Pricing{}, fmt.Errorf("позиция %d: %w", i, err)
		}
		amount, err := amountField(m, "amount", "price")
		if err != nil {
			return valueobject.Pricing{}, fmt.Errorf("позиция %d: %w", i, err)
		}
		items = append(items, valueobject.LineItem{Item: name, Amount: amount})
	}
	return valueobject.LineItemsPricing(items), nil
}

func flatFeeFrom(m map[string]any) (valueobject.Pricing, error) {
	amount, err := amountField(m, "amount")
	if err != nil {
		return valueobject.Pricing{}, err
	}
	currencyName, err := stringField(m, "currency")
	if err != nil {
		return valueobject.Pricing{}, err
	}
	currency, err := valueobject.ParseCurrency(currencyName)
	if err != nil {
		return valueobject.Pricing{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	typeName, err := stringField(m, "type", "feeType", "fee_type", "pricingType")
	if err != nil {
		return valueobject.Pricing{}, err
	}
	feeType, err := valueobject.ParseFeeType(typeName)
	if err != nil {
		return valueobject.Pricing{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return valueobject.FlatFeePricing(valueobject.FlatFee{Amount: amount, Currency: currency, Type: feeType}), nil
}

// EncodePricing всегда пишет тег kind, даже для списка позиций.
func EncodePricing(p valueobject.Pricing) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	if fee, ok := p.FlatFee(); ok {
		return marshal(wireFlatFee{
			Kind:     valueobject.PricingFlatFee,
			Amount:   fee.Amount,
			Currency: fee.Currency,
			Type:     fee.Type,
		})
	}
	items := p.LineItems()
	wire := wireLineItems{Kind: valueobject.PricingLineItems, Items: make([]wireLineItem, len(items))}
	for i, item := range items {
		wire.Items[i] = wireLineItem{Item: item.Item, Amount: item.Amount}
	}
	return marshal(wire)
}
