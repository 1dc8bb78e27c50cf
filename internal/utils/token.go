package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// SessionTokenBytes is the entropy of a session token before hex encoding.
const SessionTokenBytes = 24

// GenerateSessionToken returns 48 hex characters from crypto/rand.
func GenerateSessionToken() (string, error) {
	return randomHex(SessionTokenBytes)
}

// GenerateBlobName builds a stored file name of the form <unix-ms>-<16 hex><ext>.
func GenerateBlobName(now time.Time, ext string) (string, error) {
	suffix, err := randomHex(8)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), suffix, ext), nil
}

// FormatTicketNo renders PREFIX-YYYYMMDD-NNNNNN from the creation date and row id.
func FormatTicketNo(prefix string, createdAt time.Time, id uint64) string {
	return fmt.Sprintf("%s-%s-%06d", prefix, createdAt.Local().Format("20060102"), id)
}

func randomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
