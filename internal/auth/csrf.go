package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// CSRFFieldName is the form field every mutating request must carry.
const CSRFFieldName = "csrf_token"

const csrfTokenBytes = 32

// IssueCSRFToken returns the session's token, creating and saving one on
// first use. The token is stable until the session is destroyed.
func IssueCSRFToken(sess Session) (string, error) {
	if token, ok := sess.Get(SessionKeyCSRF).(string); ok && token != "" {
		return token, nil
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}
	sess.Set(SessionKeyCSRF, token)
	if err := sess.Save(); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return token, nil
}

// VerifyCSRFToken compares in constant time. It fails closed when either
// side is empty.
func VerifyCSRFToken(sess Session, submitted string) bool {
	stored, _ := sess.Get(SessionKeyCSRF).(string)
	if stored == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}

func generateToken() (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
