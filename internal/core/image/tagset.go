// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"bytes"
	"encoding/json"
	"strings"

	"golang.org/x/text/cases"

	"github.com/taibuivan/yomira-image/internal/platform/apperr"
)

// Messages reported by tag reconciliation.
const (
	SkipReasonNoContent = "Tag without content"

	msgMalformedTags = "Expected tags to contain array of strings or array of tag objects"
)

// # Submitted tags

// TagInput is one submitted tag. On the wire it is either a bare string or
// an object {"name": string, "hidden": bool}.
type TagInput struct {
	Name string

	// Hidden is the declared visibility; nil means public.
	Hidden *bool

	// malformed marks entries that are neither a string nor an object with a string name.
	malformed bool
}

// UnmarshalJSON accepts both wire shapes. Unknown shapes decode without
// error and are rejected later by [Reconcile] with a validation error.
func (input *TagInput) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*input = TagInput{malformed: true}
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*input = TagInput{Name: name}
		return nil
	}

	var object struct {
		Name   *string `json:"name"`
		Hidden *bool   `json:"hidden"`
	}
	if err := json.Unmarshal(data, &object); err != nil || object.Name == nil {
		*input = TagInput{malformed: true}
		return nil
	}

	*input = TagInput{Name: *object.Name, Hidden: object.Hidden}
	return nil
}

// Content returns the trimmed name and whether anything is left.
func (input TagInput) Content() (string, bool) {
	if input.malformed {
		return "", false
	}
	content := strings.TrimSpace(input.Name)
	return content, content != ""
}

// # Reconciliation

// ReconcileResult is the outcome of merging submitted tags into an image.
type ReconcileResult struct {
	AddedTags   []Tag    `json:"addedTags"`
	SkippedTags []string `json:"skippedTags"`
}

// Reconcile merges submitted tags against existing ones.
//
// Each entry is trimmed. Contentless entries are skipped with
// [SkipReasonNoContent]. Entries whose name already exists, in existing or
// earlier in submitted, are skipped under their submitted name. Every other
// entry becomes a new Tag owned by accountID. A malformed entry fails the
// whole call with a validation error.
//
// The caller appends AddedTags to the image; existing is never modified.
func Reconcile(submitted []TagInput, existing []Tag, accountID string) (ReconcileResult, error) {
	result := ReconcileResult{
		AddedTags:   make([]Tag, 0, len(submitted)),
		SkippedTags: make([]string, 0),
	}

	seen := make(map[string]struct{}, len(existing)+len(submitted))
	for _, tag := range existing {
		seen[normalizeTagName(tag.Name)] = struct{}{}
	}

	for _, input := range submitted {
		if input.malformed {
			return ReconcileResult{}, apperr.ValidationError(msgMalformedTags)
		}

		content, ok := input.Content()
		if !ok {
			result.SkippedTags = append(result.SkippedTags, SkipReasonNoContent)
			continue
		}

		key := normalizeTagName(content)
		if _, exists := seen[key]; exists {
			result.SkippedTags = append(result.SkippedTags, content)
			continue
		}
		seen[key] = struct{}{}

		result.AddedTags = append(result.AddedTags, Tag{
			Name:   content,
			Hidden: input.Hidden != nil && *input.Hidden,
			User:   accountID,
		})
	}

	return result, nil
}

// RemoveTags returns existing without the tags named in removals.
// Entries with no content are ignored. The result is never nil.
func RemoveTags(existing []Tag, removals []TagInput) []Tag {
	drop := make(map[string]struct{}, len(removals))
	for _, input := range removals {
		if content, ok := input.Content(); ok {
			drop[normalizeTagName(content)] = struct{}{}
		}
	}

	kept := make([]Tag, 0, len(existing))
	for _, tag := range existing {
		if _, removed := drop[normalizeTagName(tag.Name)]; !removed {
			kept = append(kept, tag)
		}
	}
	return kept
}

// normalizeTagName is the identity key of a tag name. A Caser is stateful,
// so one is created per call.
func normalizeTagName(name string) string {
	return cases.Fold().String(name)
}
