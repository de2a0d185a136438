// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storage defines the contract between the image service and the
file storage backends.

Backends store raw image bytes under a generated object id and know how to
build the public URL of a stored file. The image service never touches a
filesystem or bucket directly.

Drivers:

  - local: files on disk, optionally served by this process.
  - s3: any S3-compatible bucket fronted by a CDN.
*/
package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by [Backend.GetFile] and [Backend.RemoveFile] when the file does not exist.
var ErrNotFound = errors.New("storage: file not found")

// Object describes a freshly stored file.
type Object struct {
	// ID is the generated object id, also used as the image id.
	ID string

	// Extension is derived from the mime subtype ("image/png" -> "png").
	Extension string

	// URL is the canonical public URL of the file.
	URL string
}

// Descriptor identifies a stored file for removal.
type Descriptor struct {
	ID       string
	FileType string
}

// FileName returns "<id>.<filetype>".
func (d Descriptor) FileName() string {
	return FileName(d.ID, d.FileType)
}

// Backend is implemented by every storage driver.
type Backend interface {
	// Upload stores data and returns the generated object.
	Upload(ctx context.Context, data []byte, mimeType string) (Object, error)

	// GetFile returns nil if the file exists, or [ErrNotFound].
	GetFile(ctx context.Context, url, filename string) error

	// RemoveFile deletes a stored file. It returns [ErrNotFound] if the file is already gone.
	RemoveFile(ctx context.Context, descriptor Descriptor) error

	// URL builds the public URL for a stored file.
	URL(id, extension string) string

	// Name is the driver name used in logs.
	Name() string
}

// Extension returns the mime subtype, which doubles as the file extension.
func Extension(mimeType string) string {
	_, subtype, found := strings.Cut(mimeType, "/")
	if !found {
		return mimeType
	}
	return subtype
}

// FileName returns "<id>.<extension>".
func FileName(id, extension string) string {
	return id + "." + extension
}

// # Public URLs

// URLBuilder turns an object id and extension into a public URL.
//
// When a CDN is configured and files are not served locally the URL is
// "<cdn>/<prefix>/<id>.<ext>". Otherwise it points at this process:
// "<base>/<servePath>/<id>.<ext>".
type URLBuilder struct {
	CDNURL     string
	PathPrefix string
	ServeLocal bool
	BaseURL    string
	ServePath  string
}

// Build returns the public URL of id.extension.
func (b URLBuilder) Build(id, extension string) string {
	file := FileName(id, extension)

	if b.CDNURL != "" && !b.ServeLocal {
		return withSlash(b.CDNURL) + prefixPath(b.PathPrefix) + file
	}

	return strings.TrimSuffix(b.BaseURL, "/") + withSlash(b.ServePath) + file
}

func withSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

func prefixPath(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
