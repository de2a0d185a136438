// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for API list endpoints.
//
// # Overview
//
// Listings use a fixed page size; only the page number comes from the client.
// Any page that is not a positive integer falls back to the first page; pages
// beyond [MaxPage] are clamped so the offset always fits in an int.
package pagination

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the fixed number of items per page.
	DefaultLimit = 25
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
	// MaxPage is the largest page whose offset is representable.
	MaxPage = math.MaxInt / DefaultLimit
)

// Params holds the parsed page and the fixed limit.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the number of items to skip derived from [Page] and [Limit].
func (p Params) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta constructs pagination metadata for a response.
//
// It automatically calculates the TotalPages based on the total count and limit.
func NewMeta(params Params, total int) Meta {
	totalPages := 0
	if params.Limit > 0 {
		totalPages = (total + params.Limit - 1) / params.Limit
	}

	return Meta{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Parse normalizes a raw page value.
//
// # Clamping
//
// Empty, non-numeric, zero or negative values all become [DefaultPage].
// Positive values above [MaxPage], including ones too large for an int, become [MaxPage].
func Parse(rawPage string) Params {
	raw := strings.TrimSpace(rawPage)
	page, err := strconv.Atoi(raw)

	switch {
	case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-"):
		page = MaxPage
	case err != nil || page < 1:
		page = DefaultPage
	case page > MaxPage:
		page = MaxPage
	}

	return Params{Page: page, Limit: DefaultLimit}
}
