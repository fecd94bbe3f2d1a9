package helpers

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// GenOTPCode returns a random verification code in 000000-999999,
// zero-padded to six digits. Uses crypto/rand; the modulo bias over
// 2^32 is negligible for a short-lived code.
func GenOTPCode() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", binary.BigEndian.Uint32(b[:])%1000000), nil
}
