// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package image implements hosting and tagging of uploaded images.

It owns the Image and Tag model together with the rules that decide which
images and tags a caller may see or change:

  - Visibility: hidden images and tags are private to their owner.
  - Queries: request parameters become a [QueryFilter] that every
    [Repository] driver translates into its own query language.
  - Tag reconciliation: submitted tags are merged into an image's tag list
    with case-insensitive deduplication.

Files are kept by a [storage.Backend]; this package only stores metadata.
*/
package image

import (
	"time"

	"github.com/taibuivan/yomira-image/internal/core/storage"
)

// Tag is a label attached to an image. Names are compared case-insensitively
// but stored as submitted.
type Tag struct {
	Name   string `json:"name"   bson:"name"`
	Hidden bool   `json:"hidden" bson:"hidden"`
	User   string `json:"user"   bson:"user"`
}

// Image is the metadata record of one stored file.
type Image struct {
	ID        string    `json:"id"               bson:"id"`
	Source    *string   `json:"source,omitempty" bson:"source,omitempty"`
	Tags      []Tag     `json:"tags"             bson:"tags"`
	BaseType  string    `json:"baseType"         bson:"baseType"`
	FileType  string    `json:"fileType"         bson:"fileType"`
	MimeType  string    `json:"mimeType"         bson:"mimeType"`
	NSFW      bool      `json:"nsfw"             bson:"nsfw"`
	Hidden    bool      `json:"hidden"           bson:"hidden"`
	Account   string    `json:"account"          bson:"account"`
	Version   int       `json:"-"                bson:"version"`
	CreatedAt time.Time `json:"createdAt"        bson:"createdAt"`
}

// Descriptor identifies the backing file of img.
func (img *Image) Descriptor() storage.Descriptor {
	return storage.Descriptor{ID: img.ID, FileType: img.FileType}
}

// FileName returns "<id>.<fileType>".
func (img *Image) FileName() string {
	return storage.FileName(img.ID, img.FileType)
}

// ImageView is an image as returned to a client, with its public URL.
type ImageView struct {
	*Image

	// Type mirrors BaseType for older clients.
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Preview is one representative image of a base type.
type Preview struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	FileType string `json:"fileType"`
	BaseType string `json:"baseType"`
	Type     string `json:"type"`
}

// TypesResult is the result of [Service.Types].
type TypesResult struct {
	Types   []string  `json:"types"`
	Preview []Preview `json:"preview"`
}

// TagsResult is the result of [Service.AddTags].
type TagsResult struct {
	Image *ImageView      `json:"image"`
	Tags  ReconcileResult `json:"tags"`
}

// Document field names shared by the repositories.
const (
	FieldID        = "id"
	FieldSource    = "source"
	FieldTags      = "tags"
	FieldBaseType  = "baseType"
	FieldFileType  = "fileType"
	FieldMimeType  = "mimeType"
	FieldNSFW      = "nsfw"
	FieldHidden    = "hidden"
	FieldAccount   = "account"
	FieldVersion   = "version"
	FieldCreatedAt = "createdAt"

	FieldTagName   = "name"
	FieldTagHidden = "hidden"
	FieldTagUser   = "user"
)
