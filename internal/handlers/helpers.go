package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dylanbaghel/devcamper-api/internal/httpx"

	"github.com/go-chi/chi/v5"
)

// idParam parses a numeric path parameter. A malformed id behaves like a
// missing resource, matching the API's 404 contract.
func idParam(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, httpx.NotFound("Resource not found with this id")
	}
	return uint(id), nil
}

func decodeJSON(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return httpx.BadRequest("Invalid request body")
	}
	return nil
}
