package codec

import (
	"fmt"

	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
)

type wireSignature struct {
	Provider string `json:"provider"`
	Client   string `json:"client"`
}

func DecodeSignatureStrict(raw any) (valueobject.Signature, error) {
	if s, ok := raw.(valueobject.Signature); ok {
		return s, nil
	}

	in := newInput(raw)
	if in.empty() {
		return valueobject.Signature{}, nil
	}
	v, err := in.structured()
	if err != nil {
		return valueobject.Signature{}, err
	}
	m, ok := asObject(v)
	if !ok {
		return valueobject.Signature{}, fmt.Errorf("%w: ожидался объект подписей, получено %T", ErrShapeMismatch, v)
	}
	provider, err := stringField(m, "provider", "providerSignature", "provider_signature")
	if err != nil {
		return valueobject.Signature{}, err
	}
	client, err := stringField(m, "client", "clientSignature", "client_signature")
	if err != nil {
		return valueobject.Signature{}, err
	}
	return valueobject.Signature{Provider: provider, Client: client}, nil
}

func EncodeSignature(s valueobject.Signature) (string, error) {
	return marshal(wireSignature{Provider: s.Provider, Client: s.Client})
}
