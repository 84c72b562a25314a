package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	goSession "github.com/MrEthical07/goSession"
)

// Handler adapts an engine to HTTP.
type Handler struct {
	engine *goSession.Engine
}

// NewHandler wraps the given engine.
func NewHandler(engine *goSession.Engine) *Handler {
	return &Handler{engine: engine}
}

// Routes returns the full route set.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", h.register)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /refresh", h.refresh)
	mux.HandleFunc("POST /logout", h.logout)
	mux.HandleFunc("POST /logout/all", h.logoutAll)
	return mux
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	DeviceID string `json:"deviceId"`
}

type refreshRequest struct {
	SessionID string `json:"sid"`
	DeviceID  string `json:"deviceId"`
	Timestamp string `json:"timestamp"`
	Signature string `json:"signature"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Status    int    `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.engine.Register(r.Context(), goSession.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.engine.Login(r.Context(), req.Username, req.Password, req.DeviceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// Headers are authoritative for the device proof; body fields are a
	// fallback for clients that cannot set custom headers.
	deviceID := headerOr(r, "X-Device-Id", req.DeviceID)
	timestamp := headerOr(r, "X-Timestamp", req.Timestamp)
	signature := headerOr(r, "X-Signature", req.Signature)

	resp, err := h.engine.Refresh(r.Context(), req.SessionID, deviceID, timestamp, signature)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("X-Session-Id")
	if err := h.engine.Logout(r.Context(), sessionID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) logoutAll(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if err := h.engine.LogoutAll(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func headerOr(r *http.Request, name, fallback string) string {
	if v := r.Header.Get(name); v != "" {
		return v
	}
	return fallback
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, goSession.ErrInvalidRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := goSession.StatusForError(err)
	writeJSON(w, status, errorResponse{
		Error:     errorCode(err),
		Message:   errorMessage(err),
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, goSession.ErrInvalidRequest):
		return "INVALID_REQUEST"
	case errors.Is(err, goSession.ErrInvalidCredentials):
		return "INVALID_CREDENTIALS"
	case errors.Is(err, goSession.ErrUserExists):
		return "USER_EXISTS"
	case errors.Is(err, goSession.ErrSessionNotFound):
		return "SESSION_NOT_FOUND"
	case errors.Is(err, goSession.ErrDeviceSignatureInvalid):
		return "INVALID_DEVICE_SIGNATURE"
	case errors.Is(err, goSession.ErrTimestampStale):
		return "TIMESTAMP_EXPIRED"
	case errors.Is(err, goSession.ErrRotationConflict):
		return "ROTATION_CONFLICT"
	case errors.Is(err, goSession.ErrDeviceMismatch):
		return "DEVICE_MISMATCH"
	case errors.Is(err, goSession.ErrUpstream):
		return "UPSTREAM_FAILURE"
	default:
		return "INTERNAL_ERROR"
	}
}

// errorMessage keeps client-facing text fixed per code; internal detail
// never crosses the wire.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, goSession.ErrInvalidRequest):
		return "missing or malformed request fields"
	case errors.Is(err, goSession.ErrInvalidCredentials):
		return "invalid credentials"
	case errors.Is(err, goSession.ErrUserExists):
		return "user already exists"
	case errors.Is(err, goSession.ErrSessionNotFound):
		return "session not found"
	case errors.Is(err, goSession.ErrDeviceSignatureInvalid):
		return "invalid device signature"
	case errors.Is(err, goSession.ErrTimestampStale):
		return "request timestamp expired"
	case errors.Is(err, goSession.ErrRotationConflict):
		return "refresh superseded by a concurrent rotation"
	case errors.Is(err, goSession.ErrDeviceMismatch):
		return "device mismatch"
	case errors.Is(err, goSession.ErrUpstream):
		return "identity provider unavailable"
	default:
		return "internal error"
	}
}
