package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/minibank/internal/adapter/http/dto"
	"github.com/iho/minibank/internal/adapter/http/middleware"
	"github.com/iho/minibank/internal/domain"
)

const maxBodyBytes = 1 << 20

var statusByCode = map[string]int{
	domain.CodeNotFound:           http.StatusNotFound,
	domain.CodeInsufficientFunds:  http.StatusUnprocessableEntity,
	domain.CodeInvalidAmount:      http.StatusBadRequest,
	domain.CodeInvalidRequest:     http.StatusBadRequest,
	domain.CodeUnauthorized:       http.StatusUnauthorized,
	domain.CodeForbidden:          http.StatusForbidden,
	domain.CodeConflict:           http.StatusConflict,
	domain.CodeAlreadyExists:      http.StatusConflict,
	domain.CodePreconditionFailed: http.StatusConflict,
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   http.StatusText(status),
		Code:    code,
		Message: message,
	})
}

// mapDomainError maps domain errors to a caller-visible code and HTTP status.
func mapDomainError(err error) (string, int) {
	code := domain.ErrorCode(err)
	if status, ok := statusByCode[code]; ok {
		return code, status
	}
	return domain.CodeInternal, http.StatusInternalServerError
}

// writeDomainError writes err using the domain taxonomy. Internal errors are
// logged and replaced with a generic message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	code, status := mapDomainError(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		writeError(w, status, code, "internal server error")
		return
	}
	writeError(w, status, code, err.Error())
}

// decodeJSON decodes a bounded request body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "request body is empty")
		case errors.As(err, &maxErr):
			writeError(w, http.StatusRequestEntityTooLarge, domain.CodeInvalidRequest, "request body too large")
		default:
			writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, fmt.Sprintf("invalid request body: %v", err))
		}
		return false
	}
	return true
}

// principalFrom returns the authenticated caller, writing a 401 when absent.
func principalFrom(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, domain.CodeUnauthorized, domain.ErrUnauthorized.Error())
	}
	return principal, ok
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// pagination reads limit and offset and normalises them the way the stores do.
func pagination(r *http.Request) (int, int) {
	limit, offset, _ := domain.ValidatePagination(parseIntQuery(r, "limit", 0), parseIntQuery(r, "offset", 0))
	return limit, offset
}
