package session

import (
	"encoding/json"
	"errors"
)

// ErrSessionCorrupt is returned when a stored session blob cannot be decoded.
var ErrSessionCorrupt = errors.New("session blob corrupt")

// Encode serializes a session to its stored JSON form.
func Encode(sess *Session) ([]byte, error) {
	if sess == nil {
		return nil, errors.New("nil session")
	}
	if sess.SessionID == "" || sess.UserID == "" || sess.DeviceID == "" {
		return nil, errors.New("session missing required identifiers")
	}
	return json.Marshal(sess)
}

// Decode parses a stored session blob. Blobs that unmarshal but lack the
// required identifiers are treated as corrupt, not as empty sessions.
func Decode(data []byte) (*Session, error) {
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Join(ErrSessionCorrupt, err)
	}
	if sess.SessionID == "" || sess.UserID == "" || sess.DeviceID == "" {
		return nil, ErrSessionCorrupt
	}
	return &sess, nil
}
