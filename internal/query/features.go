// Package query turns raw request query parameters into a typed filter
// expression plus sort/projection/pagination options for MongoDB finds.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpNe  Op = "ne"
)

// Condition is one parsed filter term, e.g. price[gte]=500 becomes
// {Field: "price", Op: OpGte, Value: int64(500)}.
type Condition struct {
	Field string
	Op    Op
	Value interface{}
}

type SortField struct {
	Field string
	Desc  bool
}

type Features struct {
	Conditions []Condition
	Sort       []SortField
	Fields     []string
	Page       int
	Limit      int
}

const (
	DefaultPage  = 1
	DefaultLimit = 100
)

var reserved = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

var operators = map[string]Op{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
	"ne":  OpNe,
}

// Parse reads url values in the `field=v` / `field[op]=v` convention.
// Unknown operators fall back to equality on the raw key, which matches
// what the store would reject or ignore anyway.
func Parse(values url.Values) Features {
	f := Features{Page: DefaultPage, Limit: DefaultLimit}

	for key, vals := range values {
		if len(vals) == 0 || reserved[key] {
			continue
		}
		for _, raw := range vals {
			field, op := splitKey(key)
			f.Conditions = append(f.Conditions, Condition{
				Field: field,
				Op:    op,
				Value: coerce(raw),
			})
		}
	}

	if s := values.Get("sort"); s != "" {
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if strings.HasPrefix(part, "-") {
				f.Sort = append(f.Sort, SortField{Field: part[1:], Desc: true})
			} else {
				f.Sort = append(f.Sort, SortField{Field: part})
			}
		}
	}

	if s := values.Get("fields"); s != "" {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				f.Fields = append(f.Fields, part)
			}
		}
	}

	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		f.Page = page
	}
	if limit, err := strconv.Atoi(values.Get("limit")); err == nil && limit > 0 {
		f.Limit = limit
	}

	return f
}

func splitKey(key string) (string, Op) {
	open := strings.Index(key, "[")
	if open > 0 && strings.HasSuffix(key, "]") {
		field := key[:open]
		if op, ok := operators[key[open+1:len(key)-1]]; ok {
			return field, op
		}
	}
	return key, OpEq
}

// coerce maps a raw query value onto the type the store should compare
// with: int, then float, then bool, else string.
func coerce(raw string) interface{} {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if fl, err := strconv.ParseFloat(raw, 64); err == nil {
		return fl
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// Filter renders the parsed conditions as a MongoDB filter document.
// Range operators on the same field merge into one operator document.
func (f Features) Filter() bson.M {
	filter := bson.M{}
	for _, c := range f.Conditions {
		if c.Op == OpEq {
			filter[c.Field] = c.Value
			continue
		}
		ops, ok := filter[c.Field].(bson.M)
		if !ok {
			ops = bson.M{}
			filter[c.Field] = ops
		}
		ops["$"+string(c.Op)] = c.Value
	}
	return filter
}

// Options renders sort, projection and pagination as find options.
func (f Features) Options() *options.FindOptions {
	opts := options.Find()

	if len(f.Sort) > 0 {
		sort := bson.D{}
		for _, s := range f.Sort {
			dir := 1
			if s.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: s.Field, Value: dir})
		}
		opts.SetSort(sort)
	}

	if len(f.Fields) > 0 {
		proj := bson.M{}
		for _, field := range f.Fields {
			if strings.HasPrefix(field, "-") {
				proj[field[1:]] = 0
			} else {
				proj[field] = 1
			}
		}
		opts.SetProjection(proj)
	}

	opts.SetSkip(int64((f.Page - 1) * f.Limit))
	opts.SetLimit(int64(f.Limit))

	return opts
}
