// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/yomira-image/internal/platform/apperr"
	"github.com/taibuivan/yomira-image/internal/platform/dberr"
)

// MemoryRepository keeps images in process memory. It backs tests and the
// "memory" database driver; contents are lost on restart.
type MemoryRepository struct {
	mu     sync.RWMutex
	images map[string]*Image
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{images: make(map[string]*Image)}
}

func (repository *MemoryRepository) Find(context context.Context, filter QueryFilter) ([]*Image, error) {
	matches := repository.matching(filter)

	if filter.Page.Limit > 0 {
		start := min(max(filter.Page.Offset(), 0), len(matches))
		end := min(start+filter.Page.Limit, len(matches))
		matches = matches[start:end]
	}
	return matches, nil
}

func (repository *MemoryRepository) Count(context context.Context, filter QueryFilter) (int, error) {
	return len(repository.matching(filter)), nil
}

func (repository *MemoryRepository) FindOne(context context.Context, id string) (*Image, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	img, ok := repository.images[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return cloneImage(img), nil
}

func (repository *MemoryRepository) FindFirst(context context.Context, filter QueryFilter) (*Image, error) {
	matches := repository.matching(filter)
	if len(matches) == 0 {
		return nil, dberr.ErrNotFound
	}
	return matches[0], nil
}

func (repository *MemoryRepository) Distinct(context context.Context, field Field, filter QueryFilter) ([]string, error) {
	seen := make(map[string]struct{})
	values := make([]string, 0)

	collect := func(value string) {
		if _, ok := seen[value]; !ok {
			seen[value] = struct{}{}
			values = append(values, value)
		}
	}

	for _, img := range repository.matching(filter) {
		switch field {
		case DistinctID:
			collect(img.ID)
		case DistinctBaseType:
			collect(img.BaseType)
		case DistinctTagName:
			for _, tag := range img.Tags {
				if filter.TagVisible(tag) {
					collect(tag.Name)
				}
			}
		default:
			return nil, fmt.Errorf("image: unsupported distinct field %q", field)
		}
	}

	sort.Strings(values)
	return values, nil
}

func (repository *MemoryRepository) Save(context context.Context, img *Image) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, exists := repository.images[img.ID]; exists {
		return apperr.Conflict("An image with this id already exists")
	}

	if img.Version == 0 {
		img.Version = 1
	}
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now().UTC()
	}
	if img.Tags == nil {
		img.Tags = []Tag{}
	}

	repository.images[img.ID] = cloneImage(img)
	return nil
}

func (repository *MemoryRepository) UpdateTags(context context.Context, img *Image, tags []Tag) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, ok := repository.images[img.ID]
	if !ok {
		return dberr.ErrNotFound
	}
	if stored.Version != img.Version {
		return errStaleImage
	}

	stored.Tags = slices.Clone(tags)
	stored.Version++

	img.Tags = tags
	img.Version = stored.Version
	return nil
}

func (repository *MemoryRepository) Remove(context context.Context, id string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.images[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(repository.images, id)
	return nil
}

// matching returns copies of every image the filter matches, oldest first.
func (repository *MemoryRepository) matching(filter QueryFilter) []*Image {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	matches := make([]*Image, 0)
	for _, img := range repository.images {
		if filter.Matches(img) {
			matches = append(matches, cloneImage(img))
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.Before(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})
	return matches
}

func cloneImage(img *Image) *Image {
	clone := *img
	clone.Tags = slices.Clone(img.Tags)
	if img.Source != nil {
		source := *img.Source
		clone.Source = &source
	}
	return &clone
}
