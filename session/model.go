package session

// Session is the unit of session state persisted in Redis.
//
// SessionID, UserID, DeviceID, and CreatedAt are immutable after creation.
// RefreshToken is mutated on every successful rotation and never leaves the
// session core.
type Session struct {
	SessionID    string `json:"sessionId"`
	UserID       string `json:"userId"`
	DeviceID     string `json:"deviceId"`
	RefreshToken string `json:"refreshToken"`
	CreatedAt    int64  `json:"createdAt"`
}
