// Package query turns untrusted list parameters into a bounded patient
// query plan.
package query

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	defaultSortKey = "createdAt"
)

// sortKeys maps public sortBy values to storage keys.
var sortKeys = map[string]string{
	"firstName":   "firstName",
	"lastName":    "lastName",
	"email":       "email",
	"dateOfBirth": "dateOfBirth",
	"createdAt":   "createdAt",
	"updatedAt":   "updatedAt",
}

// searchFields are matched with OR by a search term.
var searchFields = []string{"firstName", "lastName", "email", "phone"}

// ListParams is the raw query string input.
type ListParams struct {
	Page      string `form:"page"`
	Limit     string `form:"limit"`
	Search    string `form:"search"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

// SortFieldError is returned for a sortBy outside the allow-list.
type SortFieldError struct {
	Field string
}

func (e *SortFieldError) Error() string {
	return fmt.Sprintf("sortBy must be one of: %s", strings.Join(SortFields(), ", "))
}

// SortFields lists the accepted sortBy values.
func SortFields() []string {
	fields := make([]string, 0, len(sortKeys))
	for k := range sortKeys {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

type Plan struct {
	Page    int64
	Limit   int64
	Skip    int64
	Search  string
	SortKey string
	// SortOrder is 1 for ascending, -1 for descending.
	SortOrder int
}

// Build validates p and derives the plan.
func Build(p ListParams) (Plan, error) {
	page := parsePositive(p.Page, DefaultPage)
	limit := parsePositive(p.Limit, DefaultLimit)
	if limit > MaxLimit {
		limit = MaxLimit
	}

	sortKey := defaultSortKey
	if p.SortBy != "" {
		key, ok := sortKeys[p.SortBy]
		if !ok {
			return Plan{}, &SortFieldError{Field: p.SortBy}
		}
		sortKey = key
	}

	order := -1
	if p.SortOrder == "asc" {
		order = 1
	}

	return Plan{
		Page:      page,
		Limit:     limit,
		Skip:      (page - 1) * limit,
		Search:    strings.TrimSpace(p.Search),
		SortKey:   sortKey,
		SortOrder: order,
	}, nil
}

// parsePositive returns fallback for anything that is not an integer >= 1.
func parsePositive(s string, fallback int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 1 {
		return fallback
	}
	// keeps (page-1)*limit inside int64
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return n
}

// Filter is the document filter for the plan. An empty search matches all.
func (p Plan) Filter() bson.M {
	if p.Search == "" {
		return bson.M{}
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(p.Search), Options: "i"}
	or := make(bson.A, 0, len(searchFields))
	for _, f := range searchFields {
		or = append(or, bson.M{f: pattern})
	}
	return bson.M{"$or": or}
}

// Sort orders by the plan key with _id as tiebreaker.
func (p Plan) Sort() bson.D {
	return bson.D{
		{Key: p.SortKey, Value: p.SortOrder},
		{Key: "_id", Value: p.SortOrder},
	}
}

// TotalPages is ceil(total/limit).
func (p Plan) TotalPages(total int64) int64 {
	if p.Limit <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// Matches reports whether any searchable field contains the search term,
// ignoring case. It mirrors Filter for the in-memory test repositories and
// is not used on the MongoDB path.
func (p Plan) Matches(fields map[string]string) bool {
	if p.Search == "" {
		return true
	}
	needle := strings.ToLower(p.Search)
	for _, f := range searchFields {
		if strings.Contains(strings.ToLower(fields[f]), needle) {
			return true
		}
	}
	return false
}
