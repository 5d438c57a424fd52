package valueobject

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// DefaultCurrency подставляется, если валюта не указана.
const DefaultCurrency = CurrencyUSD

func (c Currency) IsValid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP:
		return true
	}
	return false
}

// ParseCurrency принимает код валюты в любом регистре; пустая строка даёт USD.
func ParseCurrency(v string) (Currency, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return DefaultCurrency, nil
	}
	c := Currency(strings.ToUpper(v))
	if !c.IsValid() {
		return "", fmt.Errorf("неподдерживаемая валюта %q", v)
	}
	return c, nil
}

type FeeType string

const (
	FeeTypeFixed   FeeType = "fixed"
	FeeTypeHourly  FeeType = "hourly"
	FeeTypeMonthly FeeType = "monthly"
)

const DefaultFeeType = FeeTypeFixed

func (t FeeType) IsValid() bool {
	switch t {
	case FeeTypeFixed, FeeTypeHourly, FeeTypeMonthly:
		return true
	}
	return false
}

func ParseFeeType(v string) (FeeType, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return DefaultFeeType, nil
	}
	t := FeeType(strings.ToLower(v))
	if !t.IsValid() {
		return "", fmt.Errorf("неподдерживаемый тип оплаты %q", v)
	}
	return t, nil
}

var (
	ErrNegativeAmount = errors.New("сумма не может быть отрицательной")
	ErrInvalidAmount  = errors.New("сумма должна быть конечным числом")
)

// ValidateAmount проверяет денежную сумму: конечное число не меньше нуля.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ErrInvalidAmount
	}
	if amount < 0 {
		return ErrNegativeAmount
	}
	return nil
}
