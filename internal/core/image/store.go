// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"context"

	"github.com/taibuivan/yomira-image/internal/platform/apperr"
)

// errStaleImage is returned by [Repository.UpdateTags] when another request
// changed the image after it was read.
var errStaleImage = apperr.Conflict("The image was modified by another request, please retry")

// Repository persists image metadata. Lookups of a missing id return
// dberr.ErrNotFound.
type Repository interface {
	// Find returns matching images, one page at a time when filter.Page.Limit is positive.
	Find(context context.Context, filter QueryFilter) ([]*Image, error)
	Count(context context.Context, filter QueryFilter) (int, error)
	FindOne(context context.Context, id string) (*Image, error)

	// FindFirst returns the oldest matching image.
	FindFirst(context context.Context, filter QueryFilter) (*Image, error)

	// Distinct returns the sorted distinct values of field among matching images.
	Distinct(context context.Context, field Field, filter QueryFilter) ([]string, error)

	Save(context context.Context, img *Image) error

	// UpdateTags replaces the tags of img if its stored version still equals
	// img.Version, then bumps the version. A stale version is a CONFLICT.
	UpdateTags(context context.Context, img *Image, tags []Tag) error

	Remove(context context.Context, id string) error
}
