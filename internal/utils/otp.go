package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const backupCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

var otpRange = big.NewInt(900000)

// GenerateOTP: шестизначный код, равномерно в [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpRange)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// GenerateBackupCodes: count кодов длины length из алфавита base32.
func GenerateBackupCodes(count, length int) ([]string, error) {
	alphabetLen := big.NewInt(int64(len(backupCodeAlphabet)))
	codes := make([]string, 0, count)
	for i := 0; i < count; i++ {
		buf := make([]byte, length)
		for j := range buf {
			n, err := rand.Int(rand.Reader, alphabetLen)
			if err != nil {
				return nil, err
			}
			buf[j] = backupCodeAlphabet[n.Int64()]
		}
		codes = append(codes, string(buf))
	}
	return codes, nil
}
