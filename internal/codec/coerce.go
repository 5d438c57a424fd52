package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
)

// pick возвращает первое найденное значение среди вариантов написания ключа.
func pick(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func hasAny(m map[string]any, keys ...string) bool {
	_, ok := pick(m, keys...)
	return ok
}

func asObject(v any) (map[string]any, bool) {
	switch o := v.(type) {
	case map[string]any:
		return o, true
	case map[string]string:
		out := make(map[string]any, len(o))
		for k, s := range o {
			out[k] = s
		}
		return out, true
	}
	return nil, false
}

func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}

// asString приводит скаляр к строке; для объектов и массивов возвращает ошибку формы.
func asString(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	case json.Number:
		return s.String(), nil
	case int:
		return strconv.Itoa(s), nil
	case bool:
		return strconv.FormatBool(s), nil
	}
	return "", fmt.Errorf("%w: ожидалась строка, получено %T", ErrShapeMismatch, v)
}

func stringField(m map[string]any, keys ...string) (string, error) {
	v, _ := pick(m, keys...)
	s, err := asString(v)
	if err != nil {
		return "", fmt.Errorf("поле %s: %w", keys[0], err)
	}
	return s, nil
}

// asAmount принимает число или числовую строку ("1500", "1 500", "1500.50").
func asAmount(v any) (float64, error) {
	var amount float64
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		amount = n
	case int:
		amount = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: сумма %q", ErrInvalidValue, n)
		}
		amount = f
	case string:
		cleaned := strings.NewReplacer(" ", "", "\u00a0", "").Replace(strings.TrimSpace(n))
		if cleaned == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: сумма %q", ErrInvalidValue, n)
		}
		amount = f
	default:
		return 0, fmt.Errorf("%w: ожидалась сумма, получено %T", ErrShapeMismatch, v)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, fmt.Errorf("%w: сумма %v", ErrInvalidValue, amount)
	}
	return amount, nil
}

func amountField(m map[string]any, keys ...string) (float64, error) {
	v, _ := pick(m, keys...)
	amount, err := asAmount(v)
	if err != nil {
		return 0, fmt.Errorf("поле %s: %w", keys[0], err)
	}
	return amount, nil
}

func dateField(m map[string]any, keys ...string) (valueobject.Date, error) {
	v, _ := pick(m, keys...)
	s, err := asString(v)
	if err != nil {
		return valueobject.Date{}, fmt.Errorf("поле %s: %w", keys[0], err)
	}
	d, err := valueobject.ParseDate(s)
	if err != nil {
		return valueobject.Date{}, fmt.Errorf("поле %s: %w: %v", keys[0], ErrInvalidValue, err)
	}
	return d, nil
}

func asStringList(v any) ([]string, error) {
	list, ok := asList(v)
	if !ok {
		return nil, fmt.Errorf("%w: ожидался массив, получено %T", ErrShapeMismatch, v)
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, err := asString(item)
		if err != nil {
			return nil, fmt.Errorf("элемент %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// marshal кодирует ровно один слой JSON без экранирования HTML.
func marshal(v any) (string, error) {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}
