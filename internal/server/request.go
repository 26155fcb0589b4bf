package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/rewired-gh/vgdash/internal/dashboard"
	"github.com/rewired-gh/vgdash/internal/models"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

// RequestID tags each request with an id, reusing the caller's when present.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom returns the id set by RequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Query parameters understood by the dashboard endpoints.
const (
	ParamGenre   = "genre"
	ParamYearMin = "year_min"
	ParamYearMax = "year_max"
	ParamYears   = "years"
	ParamOrder   = "order"
	// ParamApplied marks a submitted sidebar form, so that no genre
	// parameter means "nothing selected" rather than "use the defaults".
	ParamApplied = "applied"
)

// ParseRequest turns query parameters into a dashboard request. Anything
// the query leaves out falls back to def.
func ParseRequest(q url.Values, def models.FilterSpec) (dashboard.Request, error) {
	spec := models.FilterSpec{YearMin: def.YearMin, YearMax: def.YearMax}

	genres := splitList(q[ParamGenre])
	switch {
	case len(genres) > 0:
		spec.Genres = genres
	case q.Has(ParamApplied):
		spec.Genres = nil
	default:
		spec.Genres = append([]string(nil), def.Genres...)
	}

	if s := strings.TrimSpace(q.Get(ParamYears)); s != "" {
		lo, hi, err := models.ParseYearRange(s)
		if err != nil {
			return dashboard.Request{}, badRequest{err}
		}
		spec.YearMin, spec.YearMax = lo, hi
	}
	if err := parseYear(q, ParamYearMin, &spec.YearMin); err != nil {
		return dashboard.Request{}, err
	}
	if err := parseYear(q, ParamYearMax, &spec.YearMax); err != nil {
		return dashboard.Request{}, err
	}

	var order []models.Dimension
	if names := splitList(q[ParamOrder]); len(names) > 0 {
		dims, err := models.ParseDimensions(names)
		if err != nil {
			return dashboard.Request{}, badRequest{err}
		}
		order = dims
	}

	return dashboard.Request{Spec: spec, Order: order}, nil
}

func parseYear(q url.Values, key string, dst *int) error {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return badRequest{fmt.Errorf("invalid %s %q", key, s)}
	}
	*dst = v
	return nil
}

// splitList accepts both repeated parameters and comma-separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Query encodes a request back into query parameters.
func Query(req dashboard.Request) url.Values {
	q := url.Values{}
	q.Set(ParamApplied, "1")
	for _, g := range req.Spec.Genres {
		q.Add(ParamGenre, g)
	}
	q.Set(ParamYearMin, strconv.Itoa(req.Spec.YearMin))
	q.Set(ParamYearMax, strconv.Itoa(req.Spec.YearMax))
	for _, d := range req.Order {
		q.Add(ParamOrder, d.String())
	}
	return q
}
