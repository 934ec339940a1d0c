package dto

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

type FilterOperator string

const (
	FilterOperatorEq        FilterOperator = "eq"
	FilterOperatorLike      FilterOperator = "like"
	FilterOperatorIn        FilterOperator = "in"
	FilterOperatorNotEq     FilterOperator = "not_eq"
	FilterOperatorLessEq    FilterOperator = "less_eq"
	FilterOperatorGreaterEq FilterOperator = "greater_eq"
	FilterIsNotNull         FilterOperator = "is_not_null"
	FilterIsNull            FilterOperator = "is_null"
)

const (
	FilterGroupOperatorAnd = "AND"
	FilterGroupOperatorOr  = "OR"
)

var comparisons = map[FilterOperator]string{
	FilterOperatorEq:        "=",
	FilterOperatorNotEq:     "!=",
	FilterOperatorLessEq:    "<=",
	FilterOperatorGreaterEq: ">=",
}

// Filter is a single predicate on one column. ArgName overrides the bind name, Field is used otherwise.
type Filter struct {
	ArgName  string
	Field    string
	Value    any
	Operator FilterOperator `validate:"required,oneof=eq like in not_eq less_eq greater_eq is_null is_not_null"`
	Table    string
}

// binder hands out bind names that are unique within one WHERE clause.
type binder struct {
	args map[string]any
	used map[string]int
}

func newBinder() *binder {
	return &binder{args: map[string]any{}, used: map[string]int{}}
}

func (b *binder) bind(name string, value any) string {
	n := b.used[name]
	b.used[name] = n + 1

	if n > 0 {
		name = name + "_" + strconv.Itoa(n)
	}

	b.args[name] = value

	return ":" + name
}

func (f *Filter) GetWhereClause() (string, map[string]any) {
	b := newBinder()

	return f.clause(b), b.args
}

func (f *Filter) column() string {
	if f.Table == "" {
		return f.Field
	}

	return f.Table + "." + f.Field
}

func (f *Filter) argName() string {
	if f.ArgName != "" {
		return f.ArgName
	}

	return f.Field
}

func (f *Filter) clause(b *binder) string {
	column := f.column()

	if sign, ok := comparisons[f.Operator]; ok {
		return fmt.Sprintf("%s %s %s", column, sign, b.bind(f.argName(), f.Value))
	}

	switch f.Operator {
	case FilterOperatorLike:
		return fmt.Sprintf("LOWER(%s) LIKE LOWER(%s)", column, b.bind(f.argName(), fmt.Sprintf("%%%v%%", f.Value)))
	case FilterOperatorIn:
		return f.inClause(b, column)
	case FilterIsNotNull:
		return column + " IS NOT NULL"
	case FilterIsNull:
		return column + " IS NULL"
	default:
		return ""
	}
}

// inClause expands a slice into one bind per element. An empty slice matches nothing.
func (f *Filter) inClause(b *binder, column string) string {
	val := reflect.ValueOf(f.Value)
	if val.Kind() != reflect.Slice && val.Kind() != reflect.Array {
		return fmt.Sprintf("%s = %s", column, b.bind(f.argName(), f.Value))
	}

	if val.Len() == 0 {
		return "FALSE"
	}

	named := make([]string, val.Len())
	for idx := range val.Len() {
		named[idx] = b.bind(fmt.Sprintf("%s_%d", f.argName(), idx), val.Index(idx).Interface())
	}

	return fmt.Sprintf("%s IN (%s)", column, strings.Join(named, ", "))
}

// FilterGroup joins Filter and nested FilterGroup values with Operator, AND when empty.
type FilterGroup struct {
	Filters  []any
	Operator string
}

func (f *FilterGroup) GetWhereClause() (string, map[string]any) {
	b := newBinder()

	return f.clause(b), b.args
}

func (f *FilterGroup) clause(b *binder) string {
	parts := make([]string, 0, len(f.Filters))

	for _, item := range f.Filters {
		var where string

		switch entry := item.(type) {
		case Filter:
			where = entry.clause(b)
		case FilterGroup:
			where = entry.clause(b)
		}

		if where != "" {
			parts = append(parts, where)
		}
	}

	if len(parts) == 0 {
		return ""
	}

	operator := f.Operator
	if operator == "" {
		operator = FilterGroupOperatorAnd
	}

	return "(" + strings.Join(parts, " "+operator+" ") + ")"
}
