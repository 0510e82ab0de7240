package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/handler/http/response"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads r's body into dst and writes a 400 when it cannot.
// An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		slog.Debug("Request decode error", "path", r.URL.Path, "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

func tenantFrom(w http.ResponseWriter, r *http.Request) (tenant.Context, bool) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
	}
	return tc, ok
}

// pagination reads page and limit; services clamp out of range values.
func pagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}

func queryString(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

func queryEnum[S ~string](r *http.Request, key string) *S {
	if v := r.URL.Query().Get(key); v != "" {
		s := S(v)
		return &s
	}
	return nil
}

func queryInt(r *http.Request, key string) (int, bool) {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	return n, err == nil
}

// queryTime accepts RFC3339 or a plain date. ok is false only for a present, malformed value.
func queryTime(r *http.Request, key string) (t *time.Time, ok bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if parsed, err := time.Parse(layout, v); err == nil {
			return &parsed, true
		}
	}
	return nil, false
}

func badQuery(w http.ResponseWriter, key, message string) {
	response.BadRequest(w, "Invalid query parameter", map[string]string{key: message})
}
