// Package pagination turns page/pageSize requests into bounded
// offset/limit windows and the metadata envelope returned with each page.
//
// Inputs are never rejected: anything non-positive or non-numeric falls
// back to the policy defaults, and page sizes are capped at MaxPageSize.
package pagination

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Window is the slice of a result set a page covers.
type Window struct {
	Offset int
	Limit  int
}

// Envelope describes a page relative to the whole result set.
type Envelope struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	PageCount  int   `json:"pageCount"`
	TotalCount int64 `json:"totalCount"`
}

// Policy holds the defaults applied to incoming page requests.
type Policy struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Default is the policy used by the package-level helpers.
var Default = Policy{DefaultPageSize: DefaultPageSize, MaxPageSize: MaxPageSize}

// Normalize coerces page and pageSize into their valid ranges.
func (p Policy) Normalize(page, pageSize int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	def := p.DefaultPageSize
	if def < 1 {
		def = DefaultPageSize
	}
	if pageSize < 1 {
		pageSize = def
	}
	if p.MaxPageSize > 0 && pageSize > p.MaxPageSize {
		pageSize = p.MaxPageSize
	}
	// Keeps (page-1)*pageSize from overflowing into a negative offset.
	if maxPage := math.MaxInt / pageSize; page > maxPage {
		page = maxPage
	}
	return page, pageSize
}

// ComputeWindow returns offset = (page-1)*pageSize and limit = pageSize
// after normalization.
func (p Policy) ComputeWindow(page, pageSize int) Window {
	page, pageSize = p.Normalize(page, pageSize)
	return Window{Offset: (page - 1) * pageSize, Limit: pageSize}
}

// BuildEnvelope returns the metadata for one page of totalCount items.
func (p Policy) BuildEnvelope(totalCount int64, page, pageSize int) Envelope {
	page, pageSize = p.Normalize(page, pageSize)
	if totalCount < 0 {
		totalCount = 0
	}
	return Envelope{
		Page:       page,
		PageSize:   pageSize,
		PageCount:  int((totalCount + int64(pageSize) - 1) / int64(pageSize)),
		TotalCount: totalCount,
	}
}

// ComputeWindow applies the Default policy.
func ComputeWindow(page, pageSize int) Window {
	return Default.ComputeWindow(page, pageSize)
}

// BuildEnvelope applies the Default policy.
func BuildEnvelope(totalCount int64, page, pageSize int) Envelope {
	return Default.BuildEnvelope(totalCount, page, pageSize)
}

// ParseInt reads a query value, returning 0 when it is absent or not a
// number so Normalize substitutes the default.
func ParseInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
