package rooms

import (
	"crypto/rand"
	"math/big"
)

// Game codes are short lowercase hex strings, easy to read out loud and to
// type into a join box.
const alphabet = "0123456789abcdef"

const codeLength = 6

func GenerateCode() (string, error) {
	code := make([]byte, codeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		code[i] = alphabet[n.Int64()]
	}
	return string(code), nil
}
