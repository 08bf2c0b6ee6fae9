// Package query translates list-endpoint query strings into gorm queries:
// comparison filters, field selection, sorting and pagination, mirroring the
// API's `field[op]=value` grammar.
package query

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/dylanbaghel/devcamper-api/internal/httpx"

	"gorm.io/gorm"
)

// Op is a comparison operator recognized in `field[op]=value` parameters.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Filter is one predicate against a named field. Values holds a single
// element except for OpIn, where the raw value is split on commas.
type Filter struct {
	Field  string
	Op     Op
	Values []string
}

// Params is the parsed form of a list request's query string.
type Params struct {
	Filters []Filter
	Select  []string
	Sort    []string
	Page    int
	Limit   int
}

// Pagination is the response block accompanying every paginated list.
type Pagination struct {
	CurrentPage    int   `json:"currentPage"`
	TotalDocuments int64 `json:"totalDocuments"`
	TotalPages     int   `json:"totalPages"`
	Prev           *int  `json:"prev,omitempty"`
	Next           *int  `json:"next,omitempty"`
}

var reserved = map[string]bool{"select": true, "sort": true, "limit": true, "page": true}

var opKey = regexp.MustCompile(`^([A-Za-z0-9_]+)\[(gt|gte|lt|lte|in)\]$`)

// Parse extracts filters, selection, sort and paging from raw query values.
// Malformed page/limit integers fall back to their defaults.
func Parse(values url.Values) Params {
	p := Params{Page: DefaultPage, Limit: DefaultLimit}

	if v := values.Get("select"); v != "" {
		p.Select = splitClean(v)
	}
	if v := values.Get("sort"); v != "" {
		p.Sort = splitClean(v)
	}
	if n, err := strconv.Atoi(values.Get("page")); err == nil && n >= 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(values.Get("limit")); err == nil && n >= 1 {
		p.Limit = n
	}

	for key, vals := range values {
		if reserved[key] || len(vals) == 0 {
			continue
		}
		if m := opKey.FindStringSubmatch(key); m != nil {
			f := Filter{Field: m[1], Op: Op(m[2])}
			if f.Op == OpIn {
				f.Values = splitClean(vals[0])
			} else {
				f.Values = []string{vals[0]}
			}
			p.Filters = append(p.Filters, f)
			continue
		}
		p.Filters = append(p.Filters, Filter{Field: key, Op: OpEq, Values: []string{vals[0]}})
	}
	return p
}

// Run applies params against db scoped to model, writes the matching rows
// into out and returns the pagination block. The total reflects the
// filtered count so totalPages always agrees with the returned rows.
func Run(db *gorm.DB, s Schema, p Params, model any, out any) (*Pagination, error) {
	q := db.Model(model)

	for _, f := range p.Filters {
		col, ok := s.Column(f.Field)
		if !ok {
			return nil, httpx.BadRequest("Invalid parameters for querying")
		}
		switch f.Op {
		case OpEq:
			q = q.Where(col+" = ?", coerce(f.Values[0]))
		case OpGt:
			q = q.Where(col+" > ?", coerce(f.Values[0]))
		case OpGte:
			q = q.Where(col+" >= ?", coerce(f.Values[0]))
		case OpLt:
			q = q.Where(col+" < ?", coerce(f.Values[0]))
		case OpLte:
			q = q.Where(col+" <= ?", coerce(f.Values[0]))
		case OpIn:
			if s.IsSet(f.Field) {
				cond, args := setContains(col, f.Values)
				q = q.Where(cond, args...)
			} else {
				q = q.Where(col+" IN ?", coerceAll(f.Values))
			}
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	if len(p.Select) > 0 {
		cols := make([]string, 0, len(p.Select))
		for _, field := range p.Select {
			col, ok := s.Column(field)
			if !ok {
				return nil, httpx.BadRequest("Invalid parameters for querying")
			}
			cols = append(cols, col)
		}
		q = q.Select(cols)
	}

	if len(p.Sort) > 0 {
		for _, field := range p.Sort {
			desc := strings.HasPrefix(field, "-")
			name := strings.TrimPrefix(field, "-")
			col, ok := s.Column(name)
			if !ok {
				return nil, httpx.BadRequest("Invalid parameters for querying")
			}
			if desc {
				q = q.Order(col + " desc")
			} else {
				q = q.Order(col + " asc")
			}
		}
	} else {
		q = q.Order("created_at desc")
	}

	offset := (p.Page - 1) * p.Limit
	if err := q.Offset(offset).Limit(p.Limit).Find(out).Error; err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(p.Limit)))
	pg := &Pagination{CurrentPage: p.Page, TotalDocuments: total, TotalPages: totalPages}
	if totalPages > 1 && p.Page > 1 {
		prev := p.Page - 1
		pg.Prev = &prev
	}
	if p.Page < totalPages {
		next := p.Page + 1
		pg.Next = &next
	}
	return pg, nil
}

// setContains builds the predicate for an `in` filter over a comma-joined
// set column: the row matches when its set contains any requested value.
// Wrapping both sides in commas keeps "Business" from matching inside a
// longer entry.
func setContains(col string, vals []string) (string, []any) {
	clauses := make([]string, len(vals))
	args := make([]any, len(vals))
	for i, v := range vals {
		clauses[i] = "(',' || " + col + " || ',') LIKE ?"
		args[i] = "%," + v + ",%"
	}
	return strings.Join(clauses, " OR "), args
}

func splitClean(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// coerce converts a raw query value into the type the database should
// compare with: number, bool, or string.
func coerce(v string) any {
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}

func coerceAll(vals []string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = coerce(v)
	}
	return out
}
