package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hyperengineering/nextbest/internal/catalog"
	"github.com/hyperengineering/nextbest/internal/games"
	"github.com/hyperengineering/nextbest/internal/rank"
	"github.com/hyperengineering/nextbest/internal/store"
	"github.com/hyperengineering/nextbest/internal/validation"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

type problemType struct {
	typeURI string
	title   string
}

// problemTypes maps HTTP status codes to RFC 7807 type URIs and titles.
var problemTypes = map[int]problemType{
	http.StatusBadRequest:          {typeURI: "https://nextbest.app/errors/bad-request", title: "Bad Request"},
	http.StatusUnauthorized:        {typeURI: "https://nextbest.app/errors/unauthorized", title: "Unauthorized"},
	http.StatusNotFound:            {typeURI: "https://nextbest.app/errors/not-found", title: "Not Found"},
	http.StatusConflict:            {typeURI: "https://nextbest.app/errors/conflict", title: "Conflict"},
	http.StatusUnprocessableEntity: {typeURI: "https://nextbest.app/errors/validation-error", title: "Validation Error"},
	http.StatusTooManyRequests:     {typeURI: "https://nextbest.app/errors/rate-limit", title: "Too Many Requests"},
	http.StatusInternalServerError: {typeURI: "https://nextbest.app/errors/internal-error", title: "Internal Server Error"},
	http.StatusServiceUnavailable:  {typeURI: "https://nextbest.app/errors/service-unavailable", title: "Service Unavailable"},
}

func lookupProblemType(status int) problemType {
	if pt, ok := problemTypes[status]; ok {
		return pt
	}
	return problemType{
		typeURI: "https://nextbest.app/errors/unknown",
		title:   http.StatusText(status),
	}
}

// WriteProblem writes an RFC 7807 Problem Details response.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	pt := lookupProblemType(status)
	writeProblemBody(w, status, Problem{
		Type:     pt.typeURI,
		Title:    pt.title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	})
}

// ProblemWithErrors extends Problem with validation error details.
type ProblemWithErrors struct {
	Problem
	Errors []validation.ValidationError `json:"errors,omitempty"`
}

// WriteProblemWithErrors writes a 422 Problem Details response with field errors.
func WriteProblemWithErrors(w http.ResponseWriter, r *http.Request, detail string, errs []validation.ValidationError) {
	pt := problemTypes[http.StatusUnprocessableEntity]
	writeProblemBody(w, http.StatusUnprocessableEntity, ProblemWithErrors{
		Problem: Problem{
			Type:     pt.typeURI,
			Title:    pt.title,
			Status:   http.StatusUnprocessableEntity,
			Detail:   detail,
			Instance: r.URL.Path,
		},
		Errors: errs,
	})
}

func writeProblemBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}

// MapError converts domain errors to Problem Details responses.
func MapError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *catalog.InvalidCatalogError
	switch {
	case errors.Is(err, rank.ErrNoCandidates):
		WriteProblem(w, r, http.StatusNotFound, "No items match the current preferences")
	case errors.Is(err, games.ErrDeckNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Deck not found")
	case errors.Is(err, catalog.ErrItemNotFound), errors.Is(err, store.ErrNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
	case errors.Is(err, games.ErrDeckExhausted):
		WriteProblem(w, r, http.StatusConflict, "Deck has no cards left")
	case errors.Is(err, games.ErrInvalidDirection):
		WriteProblem(w, r, http.StatusBadRequest, "Direction must be like or skip")
	case errors.As(err, &invalid):
		WriteProblemWithErrors(w, r, "Catalog contains invalid entries", invalid.Errors)
	case errors.Is(err, store.ErrClosed):
		WriteProblem(w, r, http.StatusServiceUnavailable, "Storage unavailable")
	default:
		// Never expose internal error details to client
		slog.Error("unhandled error", "path", r.URL.Path, "error", err)
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}
