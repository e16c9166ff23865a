package pipeline

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

const spirvMagic = 0x07230203

var ErrInvalidBytecode = errors.New("invalid SPIR-V bytecode")

// Bytecode reinterprets compiled shader bytes as SPIR-V words. The driver is
// never handed a blob whose length or magic number is wrong.
func Bytecode(b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, errors.Wrapf(ErrInvalidBytecode, "length %d is not a positive multiple of 4", len(b))
	}

	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}

	if words[0] != spirvMagic {
		return nil, errors.Wrapf(ErrInvalidBytecode, "magic %#08x", words[0])
	}
	return words, nil
}
