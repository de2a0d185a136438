// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/taibuivan/yomira-image/internal/platform/sec"
	"github.com/taibuivan/yomira-image/pkg/pagination"
	"github.com/taibuivan/yomira-image/pkg/query"
)

// # Filter modes

// NSFWMode is the nsfw tri-state.
type NSFWMode int

const (
	// NSFWExclude keeps only safe images.
	NSFWExclude NSFWMode = iota
	// NSFWAny applies no nsfw restriction.
	NSFWAny
	// NSFWOnly keeps only nsfw images.
	NSFWOnly
)

// HiddenMode selects images by their hidden flag and owner.
type HiddenMode int

const (
	// HiddenVisibleTo keeps public images and hidden images owned by the viewer.
	HiddenVisibleTo HiddenMode = iota
	// HiddenPublicOnly keeps public images.
	HiddenPublicOnly
	// HiddenOwnOnly keeps hidden images owned by the viewer.
	HiddenOwnOnly
	// HiddenOnly keeps every hidden image regardless of owner.
	HiddenOnly
	// HiddenAny applies no hidden restriction.
	HiddenAny
)

// # Filter

// QueryFilter is the canonical predicate every repository driver translates.
// The zero value matches public safe images.
type QueryFilter struct {
	// BaseType is an exact match when non-empty.
	BaseType string

	// Tags keeps images carrying at least one of these names on a tag visible to Viewer.
	Tags []string

	NSFW   NSFWMode
	Hidden HiddenMode

	// FileTypes keeps images whose fileType is any of these.
	FileTypes []string

	// Account is an exact owner match when non-empty.
	Account string

	// Viewer is the requesting account id used by visibility conditions.
	Viewer string

	// Page is applied by Find when Limit is positive.
	Page pagination.Params
}

// Field names a column for [Repository.Distinct].
type Field string

const (
	DistinctID       Field = FieldID
	DistinctBaseType Field = FieldBaseType

	// DistinctTagName lists tag names visible to the filter's Viewer.
	DistinctTagName Field = FieldTags + "." + FieldTagName
)

// # Request parameters

// BrowseParams are the raw query parameters of browse and list endpoints.
type BrowseParams struct {
	Type     string
	Tags     string
	NSFW     string
	Hidden   string
	FileType string
	Page     string
}

// ParseBrowseParams reads [BrowseParams] from a URL query.
func ParseBrowseParams(values url.Values) BrowseParams {
	return BrowseParams{
		Type:     values.Get("type"),
		Tags:     values.Get("tags"),
		NSFW:     values.Get("nsfw"),
		Hidden:   values.Get("hidden"),
		FileType: values.Get("filetype"),
		Page:     values.Get("page"),
	}
}

// BuildBrowseFilter translates params for the types, tags and random endpoints.
//
// nsfw defaults to excluding nsfw images. An absent or unknown hidden value
// keeps what viewer may see; "true" keeps the viewer's own hidden images and
// "false" keeps public ones.
func BuildBrowseFilter(params BrowseParams, viewer *sec.Account) QueryFilter {
	filter := baseFilter(params, viewer)

	switch params.NSFW {
	case "true":
		filter.NSFW = NSFWAny
	case "only":
		filter.NSFW = NSFWOnly
	default:
		filter.NSFW = NSFWExclude
	}

	switch params.Hidden {
	case "true":
		filter.Hidden = HiddenOwnOnly
	case "false":
		filter.Hidden = HiddenPublicOnly
	default:
		filter.Hidden = HiddenVisibleTo
	}

	return filter
}

// BuildListFilter translates params for listings. The caller has already
// authorized target; an empty target lists every account.
//
// Listings only narrow on request: absent nsfw and hidden values apply no
// restriction, and hidden=true keeps hidden images of any owner.
func BuildListFilter(params BrowseParams, viewer *sec.Account, target string) QueryFilter {
	filter := baseFilter(params, viewer)
	filter.Tags = nil
	filter.Account = target

	switch params.NSFW {
	case "false":
		filter.NSFW = NSFWExclude
	case "only":
		filter.NSFW = NSFWOnly
	default:
		filter.NSFW = NSFWAny
	}

	switch params.Hidden {
	case "true":
		filter.Hidden = HiddenOnly
	case "false":
		filter.Hidden = HiddenPublicOnly
	default:
		filter.Hidden = HiddenAny
	}

	return filter
}

func baseFilter(params BrowseParams, viewer *sec.Account) QueryFilter {
	return QueryFilter{
		BaseType:  params.Type,
		Tags:      query.StringSlice(params.Tags),
		FileTypes: fileTypeClass(params.FileType),
		Viewer:    sec.AccountID(viewer),
		Page:      pagination.Parse(params.Page),
	}
}

// fileTypeClass maps a requested file type to the stored values it matches.
// Unknown values yield no constraint.
func fileTypeClass(fileType string) []string {
	switch fileType {
	case "jpg", "jpeg":
		return []string{"jpeg", "jpg"}
	case "png", "gif":
		return []string{fileType}
	default:
		return nil
	}
}

// # Evaluation

// Matches evaluates the filter against an in-memory image. Pagination is ignored.
func (filter QueryFilter) Matches(img *Image) bool {
	if filter.BaseType != "" && img.BaseType != filter.BaseType {
		return false
	}
	if filter.Account != "" && img.Account != filter.Account {
		return false
	}
	if len(filter.FileTypes) > 0 && !slices.Contains(filter.FileTypes, img.FileType) {
		return false
	}

	switch filter.NSFW {
	case NSFWExclude:
		if img.NSFW {
			return false
		}
	case NSFWOnly:
		if !img.NSFW {
			return false
		}
	}

	if !filter.hiddenMatches(img) {
		return false
	}

	if len(filter.Tags) > 0 {
		return slices.ContainsFunc(img.Tags, filter.TagMatches)
	}
	return true
}

func (filter QueryFilter) hiddenMatches(img *Image) bool {
	switch filter.Hidden {
	case HiddenVisibleTo:
		return !img.Hidden || filter.ownedByViewer(img.Account)
	case HiddenPublicOnly:
		return !img.Hidden
	case HiddenOwnOnly:
		return img.Hidden && filter.ownedByViewer(img.Account)
	case HiddenOnly:
		return img.Hidden
	default:
		return true
	}
}

// TagMatches reports whether tag satisfies the tag condition: its name is
// requested and it is visible to the viewer.
func (filter QueryFilter) TagMatches(tag Tag) bool {
	return slices.Contains(filter.Tags, tag.Name) && filter.TagVisible(tag)
}

// TagVisible reports whether the viewer may see tag.
func (filter QueryFilter) TagVisible(tag Tag) bool {
	return !tag.Hidden || filter.ownedByViewer(tag.User)
}

func (filter QueryFilter) ownedByViewer(owner string) bool {
	return filter.Viewer != "" && owner == filter.Viewer
}

// CacheKey is a stable textual form of the filter, used as a cache key.
func (filter QueryFilter) CacheKey() string {
	var builder strings.Builder

	write := func(key, value string) {
		builder.WriteString(key)
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(value))
		builder.WriteByte(';')
	}

	write("type", filter.BaseType)
	write("tags", strings.Join(filter.Tags, ","))
	write("nsfw", strconv.Itoa(int(filter.NSFW)))
	write("hidden", strconv.Itoa(int(filter.Hidden)))
	write("filetype", strings.Join(filter.FileTypes, ","))
	write("account", filter.Account)
	write("viewer", filter.Viewer)

	return builder.String()
}
