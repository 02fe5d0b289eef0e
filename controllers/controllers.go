package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	apperrors "kindling_server/pkg/errors"
)

// CallerHeader carries the authenticated caller id, set by the upstream
// auth layer. This service trusts it and only enforces participant checks.
const CallerHeader = "X-User-Id"

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// writeError maps the service error taxonomy onto HTTP statuses. Creation
// races never reach here: they are resolved inside the services and look
// like plain successes to clients.
func writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)

	status := http.StatusInternalServerError
	switch code {
	case apperrors.CodeInvalidArgument:
		status = http.StatusBadRequest
	case apperrors.CodePermissionDenied:
		status = http.StatusForbidden
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeAlreadyExists:
		status = http.StatusConflict
	case apperrors.CodeUnavailable:
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}

	writeJSON(w, status, map[string]string{
		"code":  string(code),
		"error": err.Error(),
	})
}

// callerID extracts the authenticated caller, rejecting the request when
// the upstream auth layer did not supply one.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := r.Header.Get(CallerHeader)
	if caller == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"code":  string(apperrors.CodePermissionDenied),
			"error": "missing " + CallerHeader + " header",
		})
		return "", false
	}
	return caller, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, apperrors.InvalidArg("invalid request body"))
		return false
	}
	return true
}
