package utils

import (
	"crypto/rand"
	"math/big"
)

const stateAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// StateTokenLen anti-forgery token 长度
const StateTokenLen = 32

// NewStateToken 32 位大写字母+数字
func NewStateToken() (string, error) {
	b := make([]byte, StateTokenLen)
	max := big.NewInt(int64(len(stateAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = stateAlphabet[n.Int64()]
	}
	return string(b), nil
}
