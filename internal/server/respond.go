package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/seqlab/counterseq/pkg/debruijn"
	apperrors "github.com/seqlab/counterseq/pkg/errors"
	"github.com/seqlab/counterseq/pkg/sequencer"
	"github.com/seqlab/counterseq/pkg/store"
)

// maxBodyBytes caps request bodies. Designs and assignment requests are
// small; anything near a megabyte is a client error.
const maxBodyBytes = 1 << 20

// errorEnvelope is the JSON shape of every error response.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondJSON writes v as a JSON response with the given status.
func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "err", err)
	}
}

// respondError maps err to an HTTP status and writes the error envelope.
// Internal errors are logged server-side and reported to the client
// without detail.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := classifyError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	s.respondJSON(w, status, errorEnvelope{Error: errorBody{Code: string(code), Message: msg}})
}

// classifyError resolves an error to (status, code, message). Structured
// errors carry their own code; core sentinel errors are translated here.
func classifyError(err error) (int, apperrors.Code, string) {
	if code := apperrors.GetCode(err); code != "" {
		return statusForCode(code), code, apperrors.UserMessage(err)
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, apperrors.ErrCodeNotFound, "study not found"
	case errors.Is(err, debruijn.ErrAlphabetTooLarge):
		return http.StatusUnprocessableEntity, apperrors.ErrCodeAlphabetTooLarge, err.Error()
	case errors.Is(err, sequencer.ErrInvalidDesign),
		errors.Is(err, sequencer.ErrWindowTooSmall),
		errors.Is(err, sequencer.ErrNoFactors),
		errors.Is(err, sequencer.ErrEmptyFactor),
		errors.Is(err, sequencer.ErrInvalidAppend):
		return http.StatusBadRequest, apperrors.ErrCodeInvalidDesign, err.Error()
	case errors.Is(err, debruijn.ErrInvalidAlphabet),
		errors.Is(err, debruijn.ErrInvalidOrder),
		errors.Is(err, debruijn.ErrInvalidFold),
		errors.Is(err, debruijn.ErrInvalidArgument):
		return http.StatusBadRequest, apperrors.ErrCodeInvalidArgument, err.Error()
	}
	return http.StatusInternalServerError, apperrors.ErrCodeInternal, "internal error"
}

func statusForCode(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeInvalidArgument, apperrors.ErrCodeInvalidDesign:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeAlphabetTooLarge:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON request body into v, capped at maxBodyBytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidArgument, err, "invalid request body: %v", err)
	}
	return nil
}
