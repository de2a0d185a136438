// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"mime"
	"slices"
	"strings"

	"github.com/taibuivan/yomira-image/internal/platform/apperr"
)

// AllowedMimeTypes is the upload whitelist.
var AllowedMimeTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
}

// CheckMimeType returns the bare media type of contentType, or an
// UNSUPPORTED_MIME_TYPE error when it is not whitelisted.
//
// Parameters such as "; charset=binary" are dropped before the check.
func CheckMimeType(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(contentType)
	}
	mediaType = strings.ToLower(mediaType)

	if !slices.Contains(AllowedMimeTypes, mediaType) {
		return "", apperr.UnsupportedMimeType(contentType)
	}
	return mediaType, nil
}
