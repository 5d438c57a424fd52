package codec

import (
	"encoding/json"
	"errors"
	"strings"
)

// maxLayers ограничивает, сколько слоёв JSON снимается с текста: канонический слой
// и ещё один, оставшийся от старой ошибки двойного кодирования.
const maxLayers = 2

var (
	ErrNotJSON       = errors.New("значение не является JSON")
	ErrShapeMismatch = errors.New("форма значения не соответствует секции")
	ErrInvalidValue  = errors.New("недопустимое значение")
)

// input хранит сырое значение секции после снятия слоёв кодирования.
type input struct {
	text   string // исходный текст; пусто для уже разобранных значений
	isText bool
	layers []any // layers[0] содержит сам текст
}

// depth возвращает число снятых слоёв JSON.
func (in input) depth() int {
	return len(in.layers) - 1
}

// value возвращает самый глубокий успешно разобранный слой.
func (in input) value() any {
	return in.layers[len(in.layers)-1]
}

// empty: null, пустая строка или значение отсутствует.
func (in input) empty() bool {
	if in.isText {
		if in.text == "" {
			return true
		}
		if in.depth() >= 1 {
			switch v := in.layers[1].(type) {
			case nil:
				return true
			case string:
				return strings.TrimSpace(v) == ""
			}
		}
		return false
	}
	switch v := in.value().(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

func newInput(raw any) input {
	switch v := raw.(type) {
	case nil:
		return input{layers: []any{nil}}
	case string:
		return textInput(v)
	case []byte:
		return textInput(string(v))
	case json.RawMessage:
		return textInput(string(v))
	default:
		return input{layers: []any{raw}}
	}
}

func textInput(s string) input {
	s = strings.TrimSpace(s)
	in := input{text: s, isText: true, layers: []any{s}}
	if s == "" {
		return in
	}

	cur := s
	for i := 0; i < maxLayers; i++ {
		var v any
		if err := json.Unmarshal([]byte(cur), &v); err != nil {
			break
		}
		in.layers = append(in.layers, v)
		next, ok := v.(string)
		if !ok {
			break
		}
		cur = strings.TrimSpace(next)
	}
	return in
}

// structured возвращает разобранный объект или массив секции, требуя хотя бы
// один слой JSON для текстового ввода.
func (in input) structured() (any, error) {
	if in.isText && in.depth() == 0 {
		return nil, ErrNotJSON
	}
	return in.value(), nil
}
