package codec

import "fmt"

// DecodeScopeOfWorkStrict разбирает описание работ (HTML-фрагмент).
// Снимается только один слой JSON: строка внутри строки неотличима от
// текста в кавычках, а обратимость кодирования важнее.
func DecodeScopeOfWorkStrict(raw any) (string, error) {
	in := newInput(raw)
	if in.empty() {
		return "", nil
	}
	if !in.isText {
		return "", fmt.Errorf("%w: ожидался текст, получено %T", ErrShapeMismatch, raw)
	}
	if in.depth() >= 1 {
		if s, ok := in.layers[1].(string); ok {
			return s, nil
		}
	}
	// Старые записи хранили HTML без кодирования.
	return in.text, nil
}

func EncodeScopeOfWork(scope string) (string, error) {
	return marshal(scope)
}
