// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/taibuivan/yomira-image/internal/core/storage"
	"github.com/taibuivan/yomira-image/internal/platform/apperr"
	"github.com/taibuivan/yomira-image/internal/platform/dberr"
	"github.com/taibuivan/yomira-image/internal/platform/sec"
	"github.com/taibuivan/yomira-image/internal/platform/validate"
	"github.com/taibuivan/yomira-image/pkg/pagination"
	"github.com/taibuivan/yomira-image/pkg/pointer"
	"github.com/taibuivan/yomira-image/pkg/query"
	"github.com/taibuivan/yomira-image/pkg/slice"
)

// Client-facing messages.
const (
	msgNoFileOrURL  = "You have to either pass a file or a url"
	msgNoBaseType   = "You have to pass the basetype of the file"
	msgNoTypeOrTags = "Missing parameters, add either type or tags"
	msgNoID         = "Missing parameters, you need to add an id"
	msgNoTags       = "No tags were supplied"
	msgNothingAdded = "Tags existed already or had no content"
	msgPrivateImage = "This image is private"
)

const (
	fieldFile = "file"
	fieldURL  = "url"

	maxBaseTypeLen = 100
	maxSourceLen   = 2048
)

// Listing cache key prefixes.
const (
	cacheKeyTypes    = "types:"
	cacheKeyPreviews = "types+preview:"
	cacheKeyTags     = "tags:"
)

// Settings toggles optional service behavior.
type Settings struct {
	// AnonymousRead lets read operations run for requests without an account.
	AnonymousRead bool
}

// Service implements the image operations. Every operation checks the
// caller's scopes before touching storage or the repository.
type Service struct {
	repo     Repository
	storage  storage.Backend
	fetcher  Fetcher
	cache    ListingCache
	gate     *sec.Gate
	logger   *slog.Logger
	settings Settings
}

// NewService creates a new [Service]. A nil cache disables listing caching.
func NewService(repo Repository, backend storage.Backend, fetcher Fetcher, cache ListingCache, gate *sec.Gate, logger *slog.Logger, settings Settings) *Service {
	if cache == nil {
		cache = NopCache{}
	}

	return &Service{
		repo:     repo,
		storage:  backend,
		fetcher:  fetcher,
		cache:    cache,
		gate:     gate,
		logger:   logger,
		settings: settings,
	}
}

// # Upload

// UploadInput is an upload request. Exactly one of File or URL is used,
// File taking precedence.
type UploadInput struct {
	File     []byte
	FileMime string
	HasFile  bool

	URL      string
	BaseType string

	// Tags is a comma-separated list of tag names.
	Tags   string
	Hidden bool
	NSFW   bool
	Source string
}

// Upload stores a new image owned by account.
//
// Private uploads need upload_image or upload_image_private; public uploads
// need upload_image. If the metadata cannot be saved the stored file is removed.
func (service *Service) Upload(context context.Context, account *sec.Account, input UploadInput) (*ImageView, error) {
	if err := service.gate.Require(account, sec.ScopeUploadImage, sec.ScopeUploadImagePrivate); err != nil {
		return nil, err
	}
	if !input.Hidden {
		if err := service.gate.Require(account, sec.ScopeUploadImage); err != nil {
			return nil, err
		}
	}

	if !input.HasFile && input.URL == "" {
		return nil, validate.RequiredError(fieldFile, msgNoFileOrURL)
	}
	if strings.TrimSpace(input.BaseType) == "" {
		return nil, validate.RequiredError(FieldBaseType, msgNoBaseType)
	}

	validator := &validate.Validator{}
	validator.MaxLen(FieldBaseType, input.BaseType, maxBaseTypeLen).MaxLen(FieldSource, input.Source, maxSourceLen)
	if !input.HasFile {
		validator.URL(fieldURL, input.URL)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	data, mimeType, err := service.readUpload(context, input)
	if err != nil {
		return nil, err
	}

	object, err := service.storage.Upload(context, data, mimeType)
	if err != nil {
		return nil, apperr.Storage(err)
	}

	accountID := sec.AccountID(account)
	img := &Image{
		ID:       object.ID,
		Source:   pointer.NonEmpty(strings.TrimSpace(input.Source)),
		Tags:     uploadTags(input.Tags, input.Hidden, accountID),
		BaseType: input.BaseType,
		FileType: object.Extension,
		MimeType: mimeType,
		NSFW:     input.NSFW,
		Hidden:   input.Hidden,
		Account:  accountID,
	}

	if err := service.repo.Save(context, img); err != nil {
		if removeErr := service.storage.RemoveFile(context, img.Descriptor()); removeErr != nil {
			service.logger.Error("orphan_file_cleanup_failed",
				slog.String("image_id", img.ID),
				slog.Any("error", removeErr),
			)
		}
		return nil, err
	}

	service.invalidateListings(context)
	service.logger.Info("image_uploaded",
		slog.String("image_id", img.ID),
		slog.String("account_id", accountID),
		slog.String("base_type", img.BaseType),
		slog.Bool("hidden", img.Hidden),
		slog.Int("bytes", len(data)),
	)

	return service.view(img, account), nil
}

func (service *Service) readUpload(context context.Context, input UploadInput) ([]byte, string, error) {
	if input.HasFile {
		mimeType, err := CheckMimeType(input.FileMime)
		if err != nil {
			return nil, "", err
		}
		return input.File, mimeType, nil
	}

	return service.fetcher.Fetch(context, input.URL)
}

// uploadTags turns the comma-separated upload tags into tags sharing the image's visibility.
func uploadTags(raw string, hidden bool, accountID string) []Tag {
	inputs := slice.Map(query.StringSlice(raw), func(name string) TagInput {
		return TagInput{Name: name, Hidden: &hidden}
	})

	// Upload entries are always well-formed strings.
	result, _ := Reconcile(inputs, nil, accountID)
	return result.AddedTags
}

// # Reads

// Types lists the distinct base types visible under params. With preview
// it also returns the oldest image of each type.
func (service *Service) Types(context context.Context, account *sec.Account, params BrowseParams, preview bool) (*TypesResult, error) {
	if err := service.requireRead(account); err != nil {
		return nil, err
	}

	filter := BuildBrowseFilter(BrowseParams{NSFW: params.NSFW, Hidden: params.Hidden}, account)

	cacheKey := cacheKeyTypes + filter.CacheKey()
	if preview {
		cacheKey = cacheKeyPreviews + filter.CacheKey()
	}

	result := &TypesResult{}
	slot, found := service.cacheGet(context, cacheKey, result)
	if found {
		return result, nil
	}

	types, err := service.repo.Distinct(context, DistinctBaseType, filter)
	if err != nil {
		return nil, err
	}

	result = &TypesResult{Types: types, Preview: make([]Preview, 0)}
	if preview {
		for _, baseType := range types {
			typed := filter
			typed.BaseType = baseType

			img, err := service.repo.FindFirst(context, typed)
			if errors.Is(err, dberr.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}

			result.Preview = append(result.Preview, Preview{
				ID:       img.ID,
				URL:      service.storage.URL(img.ID, img.FileType),
				FileType: img.FileType,
				BaseType: baseType,
				Type:     baseType,
			})
		}
	}

	service.cacheSet(context, slot, result)
	return result, nil
}

// Tags lists the distinct tag names account may see on images visible under params.
func (service *Service) Tags(context context.Context, account *sec.Account, params BrowseParams) ([]string, error) {
	if err := service.requireRead(account); err != nil {
		return nil, err
	}

	filter := BuildBrowseFilter(BrowseParams{NSFW: params.NSFW, Hidden: params.Hidden}, account)
	cacheKey := cacheKeyTags + filter.CacheKey()

	var tags []string
	slot, found := service.cacheGet(context, cacheKey, &tags)
	if found {
		return tags, nil
	}

	tags, err := service.repo.Distinct(context, DistinctTagName, filter)
	if err != nil {
		return nil, err
	}

	service.cacheSet(context, slot, tags)
	return tags, nil
}

// Random returns a uniformly chosen image matching params. A type or at
// least one tag is required.
func (service *Service) Random(context context.Context, account *sec.Account, params BrowseParams) (*ImageView, error) {
	if err := service.requireRead(account); err != nil {
		return nil, err
	}

	filter := BuildBrowseFilter(params, account)
	if filter.BaseType == "" && len(filter.Tags) == 0 {
		return nil, apperr.ValidationError(msgNoTypeOrTags)
	}

	ids, err := service.repo.Distinct(context, DistinctID, filter)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apperr.NoMatch()
	}

	img, err := service.repo.FindOne(context, ids[rand.IntN(len(ids))])
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.NoMatch()
	}
	if err != nil {
		return nil, err
	}

	return service.view(img, account), nil
}

// Info returns one image after checking that its file still exists.
func (service *Service) Info(context context.Context, account *sec.Account, id string) (*ImageView, error) {
	if err := service.requireRead(account); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, validate.RequiredError(FieldID, msgNoID)
	}

	img, err := service.repo.FindOne(context, id)
	if err != nil {
		return nil, err
	}
	if !IsVisible(img, account) {
		return nil, apperr.Forbidden(msgPrivateImage)
	}

	view := service.view(img, account)
	if err := service.storage.GetFile(context, view.URL, img.FileName()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.FileMissing(err)
		}
		return nil, apperr.Storage(err)
	}

	return view, nil
}

// # Tag mutations

// AddTags merges tags into the image's tag list.
func (service *Service) AddTags(context context.Context, account *sec.Account, id string, tags []TagInput) (*TagsResult, error) {
	if err := service.gate.Require(account, sec.ScopeImageTags); err != nil {
		return nil, err
	}
	if err := (&validate.Validator{}).Custom(FieldTags, len(tags) == 0, msgNoTags).Err(); err != nil {
		return nil, err
	}

	img, err := service.findMutable(context, account, id)
	if err != nil {
		return nil, err
	}

	result, err := Reconcile(tags, img.Tags, sec.AccountID(account))
	if err != nil {
		return nil, err
	}
	if len(result.AddedTags) == 0 {
		return nil, apperr.ValidationError(msgNothingAdded)
	}

	merged := append(slices.Clone(img.Tags), result.AddedTags...)
	if err := service.repo.UpdateTags(context, img, merged); err != nil {
		return nil, err
	}

	service.invalidateListings(context)
	service.logger.Info("tags_added",
		slog.String("image_id", img.ID),
		slog.String("account_id", sec.AccountID(account)),
		slog.Int("added", len(result.AddedTags)),
		slog.Int("skipped", len(result.SkippedTags)),
	)

	return &TagsResult{Image: service.view(img, account), Tags: result}, nil
}

// RemoveTags drops the named tags from the image, comparing names case-insensitively.
func (service *Service) RemoveTags(context context.Context, account *sec.Account, id string, tags []TagInput) (*ImageView, error) {
	if err := service.gate.Require(account, sec.ScopeImageTagsDelete); err != nil {
		return nil, err
	}
	if err := (&validate.Validator{}).Custom(FieldTags, len(tags) == 0, msgNoTags).Err(); err != nil {
		return nil, err
	}

	img, err := service.findMutable(context, account, id)
	if err != nil {
		return nil, err
	}

	kept := RemoveTags(img.Tags, tags)
	removed := len(img.Tags) - len(kept)

	if removed > 0 {
		if err := service.repo.UpdateTags(context, img, kept); err != nil {
			return nil, err
		}
		service.invalidateListings(context)
	}

	service.logger.Info("tags_removed",
		slog.String("image_id", img.ID),
		slog.String("account_id", sec.AccountID(account)),
		slog.Int("removed", removed),
	)

	return service.view(img, account), nil
}

func (service *Service) findMutable(context context.Context, account *sec.Account, id string) (*Image, error) {
	img, err := service.repo.FindOne(context, id)
	if err != nil {
		return nil, err
	}
	if !IsVisible(img, account) {
		return nil, apperr.Forbidden(msgPrivateImage)
	}
	return img, nil
}

// # Delete

// Delete removes an image and its file. Owners holding image_delete_private
// may delete their own hidden images; anything else needs image_delete.
// A file that is already gone does not block removal of the record.
func (service *Service) Delete(context context.Context, account *sec.Account, id string) (*ImageView, error) {
	if err := service.gate.Require(account, sec.ScopeImageDelete, sec.ScopeImageDeletePrivate); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, validate.RequiredError(FieldID, msgNoID)
	}

	img, err := service.repo.FindOne(context, id)
	if err != nil {
		return nil, err
	}

	if !img.Hidden || !account.Owns(img.Account) {
		if err := service.gate.Require(account, sec.ScopeImageDelete); err != nil {
			return nil, err
		}
	}

	if err := service.storage.RemoveFile(context, img.Descriptor()); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.Storage(err)
		}
		service.logger.Warn("image_file_already_missing",
			slog.String("image_id", img.ID),
			slog.String("driver", service.storage.Name()),
		)
	}

	if err := service.repo.Remove(context, img.ID); err != nil {
		return nil, err
	}

	service.invalidateListings(context)
	service.logger.Warn("image_deleted",
		slog.String("image_id", img.ID),
		slog.String("account_id", sec.AccountID(account)),
	)

	return service.view(img, account), nil
}

// # Listings

// ListResult is one page of a listing.
type ListResult struct {
	Images []*ImageView
	Meta   pagination.Meta
}

// ListAll lists the images of every account. It requires image_list_all.
func (service *Service) ListAll(context context.Context, account *sec.Account, params BrowseParams) (*ListResult, error) {
	if err := service.gate.Require(account, sec.ScopeImageListAll); err != nil {
		return nil, err
	}
	return service.list(context, account, BuildListFilter(params, account, ""))
}

// ListAccount lists the images of target. Callers may list their own images
// with image_list; other accounts need image_list_all.
func (service *Service) ListAccount(context context.Context, account *sec.Account, target string, params BrowseParams) (*ListResult, error) {
	if err := service.gate.Require(account, sec.ScopeImageList, sec.ScopeImageListAll); err != nil {
		return nil, err
	}
	if !account.Owns(target) {
		if err := service.gate.Require(account, sec.ScopeImageListAll); err != nil {
			return nil, err
		}
	}
	if target == "" {
		return nil, validate.RequiredError(FieldID, msgNoID)
	}

	return service.list(context, account, BuildListFilter(params, account, target))
}

func (service *Service) list(context context.Context, account *sec.Account, filter QueryFilter) (*ListResult, error) {
	total, err := service.repo.Count(context, filter)
	if err != nil {
		return nil, err
	}

	images, err := service.repo.Find(context, filter)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Images: slice.Map(images, func(img *Image) *ImageView { return service.view(img, account) }),
		Meta:   pagination.NewMeta(filter.Page, total),
	}, nil
}

// # Helpers

// requireRead checks image_data, unless anonymous reads are enabled and the request has no account.
func (service *Service) requireRead(account *sec.Account) error {
	if account == nil && service.settings.AnonymousRead {
		return nil
	}
	return service.gate.Require(account, sec.ScopeImageData)
}

// view strips the tags account may not see and attaches the public URL.
func (service *Service) view(img *Image, account *sec.Account) *ImageView {
	img.Tags = FilterTags(img, account)
	return &ImageView{
		Image: img,
		Type:  img.BaseType,
		URL:   service.storage.URL(img.ID, img.FileType),
	}
}

func (service *Service) invalidateListings(context context.Context) {
	if err := service.cache.Invalidate(context); err != nil {
		service.logger.Warn("listing_cache_invalidate_failed", slog.Any("error", err))
	}
}

// cacheGet returns the slot a fresh result must be written to. An empty slot
// means the lookup failed and nothing should be written.
func (service *Service) cacheGet(context context.Context, key string, target any) (string, bool) {
	slot, found, err := service.cache.Get(context, key, target)
	if err != nil {
		service.logger.Warn("listing_cache_get_failed", slog.String("key", key), slog.Any("error", err))
		return "", false
	}
	return slot, found
}

func (service *Service) cacheSet(context context.Context, slot string, value any) {
	if slot == "" {
		return
	}
	if err := service.cache.Set(context, slot, value); err != nil {
		service.logger.Warn("listing_cache_set_failed", slog.String("slot", slot), slog.Any("error", err))
	}
}
