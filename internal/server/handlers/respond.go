package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/iudanet/blogauth/internal/auth"
	"github.com/iudanet/blogauth/internal/posts"
	"github.com/iudanet/blogauth/pkg/api"
)

// maxBodyBytes limits JSON request bodies
const maxBodyBytes = 1 << 20

// sendJSON writes data as a JSON response
func sendJSON(logger *slog.Logger, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// SendError writes an api.ErrorResponse. Exported for middleware.
func SendError(logger *slog.Logger, w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	sendJSON(logger, w, resp, statusCode)
}

// decodeJSON reads a size-limited JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

// errorStatus maps service errors onto an HTTP status and a client-safe
// message. Unknown errors become a generic 500.
func errorStatus(err error) (int, string) {
	var verr *posts.ValidationError

	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid username or password"
	case errors.Is(err, posts.ErrForbidden):
		return http.StatusForbidden, "Forbidden: You do not have permission to modify this post"
	case errors.Is(err, posts.ErrNotFound):
		return http.StatusNotFound, "Post not found"
	case errors.Is(err, posts.ErrPasswordRequired):
		return http.StatusUnauthorized, "Password required"
	case errors.Is(err, posts.ErrSlugTaken):
		return http.StatusConflict, "Slug already taken"
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// sendServiceError logs server-side failures and writes the mapped response
func sendServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error, action string) {
	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "failed to "+action, slog.Any("error", err))
	} else {
		logger.WarnContext(r.Context(), action+" rejected",
			slog.Int("status", status),
			slog.Any("error", err))
	}
	SendError(logger, w, message, status)
}
