package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/aretw0/uiengineer/pkg/schema"
)

type errorBody struct {
	Error  string  `json:"error"`
	Issues []issue `json:"issues,omitempty"`
}

type issue struct {
	Path   string `json:"path"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

func issuesOf(err error) []issue {
	var out []issue
	for _, v := range schema.Issues(err) {
		out = append(out, issue{Path: v.Path, Code: v.Code, Reason: v.Reason})
	}
	return out
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAppID), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAppNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSchemaViolation), errors.Is(err, domain.ErrOrchestrator):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		// The client is gone; there is nobody to answer.
		s.logger.Debug("request canceled", "path", r.URL.Path)
		return
	}

	status := statusFor(err)
	switch {
	case errors.Is(err, domain.ErrUnknownVariant):
		s.logger.Error("lowering bug", "path", r.URL.Path, "err", err)
	case status >= http.StatusInternalServerError:
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "err", err)
	default:
		s.logger.Warn("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}

	writeJSON(w, status, errorBody{Error: err.Error(), Issues: issuesOf(err)})
}
