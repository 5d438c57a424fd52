package document

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"github.com/ignatzorin/proposal-backend/internal/codec"
)

// ContentHash считает blake2b-256 от канонического кодирования секций в
// фиксированном порядке. Одинаковое содержимое даёт одинаковый хэш
// независимо от того, в каком формате документ был прочитан.
func (d *Document) ContentHash() (string, error) {
	fields, err := d.Fields()
	if err != nil {
		return "", err
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	for _, section := range codec.Sections {
		h.Write([]byte(section))
		h.Write([]byte{0})
		h.Write([]byte(fields[section.String()]))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
