package dto

import (
	"net/url"
	"strconv"
	"strings"

	"deskhub/shared/constant"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

// MaxLimit caps the page size a listing can ask for.
const MaxLimit = 100

type QueryParams struct {
	Page    int    `json:"page"     validate:"omitempty"`
	Limit   int    `json:"limit"    validate:"omitempty"`
	SortBy  string `json:"sort_by"  validate:"omitempty"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=ASC DESC"`
}

// ParseQueryParams reads paging and sorting from a listing query. Missing or malformed
// page and limit fall back to the defaults, limit is capped at MaxLimit and an unknown
// direction is dropped. SortBy is checked later against the columns of the listed table.
func ParseQueryParams(query url.Values) QueryParams {
	params := QueryParams{
		Page:   positive(query.Get(constant.RequestParamPage), constant.DefaultValuePage),
		Limit:  min(positive(query.Get(constant.RequestParamLimit), constant.DefaultValueLimit), MaxLimit),
		SortBy: strings.TrimSpace(query.Get(constant.RequestParamSortBy)),
	}

	switch dir := strings.ToUpper(query.Get(constant.RequestParamSortDir)); dir {
	case SortDirAsc, SortDirDesc:
		params.SortDir = dir
	}

	return params
}

// Offset is the number of rows skipped before the current page.
func (q QueryParams) Offset() int {
	if q.Page <= 1 {
		return 0
	}

	return (q.Page - 1) * q.Limit
}

func positive(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}

	return n
}
