// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-image/internal/core/image"
	"github.com/taibuivan/yomira-image/internal/core/storage"
	"github.com/taibuivan/yomira-image/internal/platform/apperr"
	"github.com/taibuivan/yomira-image/internal/platform/sec"
)

// # Fakes

type fakeStorage struct {
	mu    sync.Mutex
	files map[string][]byte
	seq   int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: map[string][]byte{}}
}

func (s *fakeStorage) Upload(_ context.Context, data []byte, mimeType string) (storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	id := fmt.Sprintf("img%d", s.seq)
	ext := storage.Extension(mimeType)
	s.files[storage.FileName(id, ext)] = data
	return storage.Object{ID: id, Extension: ext, URL: s.URL(id, ext)}, nil
}

func (s *fakeStorage) GetFile(_ context.Context, _ string, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[filename]; !ok {
		return storage.ErrNotFound
	}
	return nil
}

func (s *fakeStorage) RemoveFile(_ context.Context, descriptor storage.Descriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[descriptor.FileName()]; !ok {
		return storage.ErrNotFound
	}
	delete(s.files, descriptor.FileName())
	return nil
}

func (s *fakeStorage) URL(id, extension string) string {
	return "https://cdn.test/" + storage.FileName(id, extension)
}

func (s *fakeStorage) Name() string { return "fake" }

func (s *fakeStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

type fakeFetcher struct {
	data     []byte
	mimeType string
	err      error
	calls    []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) ([]byte, string, error) {
	f.calls = append(f.calls, rawURL)
	return f.data, f.mimeType, f.err
}

// memoryCache round-trips values through JSON like a real cache would and
// qualifies keys with a generation bumped by Invalidate.
type memoryCache struct {
	entries       map[string][]byte
	generation    int
	invalidations int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string, target any) (string, bool, error) {
	slot := fmt.Sprintf("%d:%s", c.generation, key)
	payload, ok := c.entries[slot]
	if !ok {
		return slot, false, nil
	}
	return slot, true, json.Unmarshal(payload, target)
}

func (c *memoryCache) Set(_ context.Context, slot string, value any) error {
	payload, err := json.Marshal(value)
	c.entries[slot] = payload
	return err
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.invalidations++
	c.generation++
	return nil
}

// racingRepository stores an extra image and invalidates the cache right
// after computing a distinct listing, like an upload landing mid-request.
type racingRepository struct {
	*image.MemoryRepository
	cache *memoryCache
	late  *image.Image
}

func (repository *racingRepository) Distinct(ctx context.Context, field image.Field, filter image.QueryFilter) ([]string, error) {
	values, err := repository.MemoryRepository.Distinct(ctx, field, filter)
	if err != nil || repository.late == nil {
		return values, err
	}

	if err := repository.MemoryRepository.Save(ctx, repository.late); err != nil {
		return nil, err
	}
	repository.late = nil
	return values, repository.cache.Invalidate(ctx)
}

// failingSaveRepository rejects every Save.
type failingSaveRepository struct {
	*image.MemoryRepository
}

func (failingSaveRepository) Save(context.Context, *image.Image) error {
	return errors.New("disk full")
}

type fixture struct {
	service *image.Service
	repo    *image.MemoryRepository
	storage *fakeStorage
	fetcher *fakeFetcher
	cache   *memoryCache
}

func newFixture(t *testing.T, settings image.Settings) *fixture {
	t.Helper()

	f := &fixture{
		repo:    image.NewMemoryRepository(),
		storage: newFakeStorage(),
		fetcher: &fakeFetcher{},
		cache:   newMemoryCache(),
	}
	f.service = image.NewService(f.repo, f.storage, f.fetcher, f.cache, sec.NewGate("yomira-image-test"),
		slog.New(slog.NewJSONHandler(io.Discard, nil)), settings)
	return f
}

func (f *fixture) upload(t *testing.T, account *sec.Account, input image.UploadInput) *image.ImageView {
	t.Helper()

	if !input.HasFile && input.URL == "" {
		input.File, input.FileMime, input.HasFile = []byte("jpeg"), "image/jpeg", true
	}
	if input.BaseType == "" {
		input.BaseType = "background"
	}

	view, err := f.service.Upload(context.Background(), account, input)
	require.NoError(t, err)
	return view
}

func assertPermissionDenied(t *testing.T, err error, scopes ...string) {
	t.Helper()

	appError := apperr.As(err)
	require.NotNil(t, appError, "expected an AppError, got %v", err)
	assert.Equal(t, "PERMISSION_DENIED", appError.Code)
	assert.Equal(t, scopes, appError.Scopes)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()

	appError := apperr.As(err)
	require.NotNil(t, appError, "expected an AppError, got %v", err)
	assert.Equal(t, code, appError.Code)
}

// # Upload

/*
TestService_Upload stores a public jpeg with comma-separated tags.
*/
func TestService_Upload(t *testing.T) {
	f := newFixture(t, image.Settings{})
	a := viewer("A", sec.ScopeUploadImage)

	view, err := f.service.Upload(context.Background(), a, image.UploadInput{
		File:     []byte("jpeg-bytes"),
		FileMime: "image/jpeg",
		HasFile:  true,
		BaseType: "background",
		Tags:     "Sky, Blue",
		Source:   "https://example.com/post/1",
	})
	require.NoError(t, err)

	assert.False(t, view.Hidden)
	assert.Equal(t, []image.Tag{
		{Name: "Sky", Hidden: false, User: "A"},
		{Name: "Blue", Hidden: false, User: "A"},
	}, view.Tags)
	assert.Equal(t, "background", view.BaseType)
	assert.Equal(t, "background", view.Type)
	assert.Equal(t, "jpeg", view.FileType)
	assert.Equal(t, "image/jpeg", view.MimeType)
	assert.Equal(t, "A", view.Account)
	assert.Equal(t, "https://cdn.test/"+view.ID+".jpeg", view.URL)
	require.NotNil(t, view.Source)
	assert.Equal(t, "https://example.com/post/1", *view.Source)

	stored, err := f.repo.FindOne(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, view.Tags, stored.Tags)
	assert.Equal(t, 1, f.storage.count())
	assert.Equal(t, 1, f.cache.invalidations)
}

func TestService_Upload_Permissions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, image.Settings{})
	input := image.UploadInput{File: []byte("x"), FileMime: "image/png", HasFile: true, BaseType: "bg"}

	_, err := f.service.Upload(ctx, viewer("B"), input)
	assertPermissionDenied(t, err, "upload_image", "upload_image_private")

	_, err = f.service.Upload(ctx, nil, input)
	assertPermissionDenied(t, err, "upload_image", "upload_image_private")

	privateOnly := viewer("P", sec.ScopeUploadImagePrivate)
	_, err = f.service.Upload(ctx, privateOnly, input)
	assertPermissionDenied(t, err, "upload_image")

	input.Hidden = true
	input.Tags = "mine"
	view, err := f.service.Upload(ctx, privateOnly, input)
	require.NoError(t, err)
	assert.True(t, view.Hidden)
	assert.Equal(t, []image.Tag{{Name: "mine", Hidden: true, User: "P"}}, view.Tags)
}

func TestService_Upload_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, image.Settings{})
	a := viewer("A", sec.ScopeUploadImage)

	tests := []struct {
		name    string
		input   image.UploadInput
		code    string
		message string
	}{
		{"no_file_or_url", image.UploadInput{BaseType: "bg"}, "VALIDATION_ERROR", "You have to either pass a file or a url"},
		{"no_base_type", image.UploadInput{URL: "https://x.test/a.png"}, "VALIDATION_ERROR", "You have to pass the basetype of the file"},
		{"invalid_url", image.UploadInput{URL: "ftp://x.test/a.png", BaseType: "bg"}, "VALIDATION_ERROR", "Must be a valid http(s) URL"},
		{"unsupported_mime", image.UploadInput{File: []byte("x"), FileMime: "image/webp", HasFile: true, BaseType: "bg"}, "UNSUPPORTED_MIME_TYPE", `The mimetype "image/webp" is not supported`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Upload(ctx, a, tt.input)

			assertCode(t, err, tt.code)
			assert.Equal(t, tt.message, err.Error())
		})
	}

	assert.Zero(t, f.storage.count())
	assert.Empty(t, f.fetcher.calls)
}

func TestService_Upload_FromURL(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, image.Settings{})
	a := viewer("A", sec.ScopeUploadImage)

	f.fetcher.data, f.fetcher.mimeType = []byte("gif-bytes"), "image/gif"
	view := f.upload(t, a, image.UploadInput{URL: "https://x.test/a.gif"})

	assert.Equal(t, []string{"https://x.test/a.gif"}, f.fetcher.calls)
	assert.Equal(t, "gif", view.FileType)

	f.fetcher.err = apperr.UpstreamFetch("https://x.test/b.gif", errors.New("timeout"))
	_, err := f.service.Upload(ctx, a, image.UploadInput{URL: "https://x.test/b.gif", BaseType: "bg"})
	assertCode(t, err, "UPSTREAM_FETCH_ERROR")
	assert.Equal(t, 1, f.storage.count())
}

func TestService_Upload_SaveFailureRemovesFile(t *testing.T) {
	backend := newFakeStorage()
	service := image.NewService(failingSaveRepository{image.NewMemoryRepository()}, backend, &fakeFetcher{}, nil,
		sec.NewGate("ns"), slog.New(slog.NewJSONHandler(io.Discard, nil)), image.Settings{})

	_, err := service.Upload(context.Background(), sec.SuperUser("admin"), image.UploadInput{
		File: []byte("x"), FileMime: "image/png", HasFile: true, BaseType: "bg",
	})

	require.Error(t, err)
	assert.Zero(t, backend.count())
}

// # Reads

/*
TestService_Info checks the order of scope, visibility and file checks.
*/
func TestService_Info(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, image.Settings{})
	a := viewer("A", sec.ScopeUploadImage, sec.ScopeImageData)

	private := f.upload(t, a, image.UploadInput{Hidden: true})
	public := f.upload(t, a, image.UploadInput{})

	_, err := f.service.Info(ctx, viewer("B"), private.ID)
	assertPermissionDenied(t, err, "image_data")

	reader := viewer("B", sec.ScopeImageData)
	_, err = f.service.Info(ctx, reader, private.ID)
	assertCode(t, err, "FORBIDDEN")
	assert.Equal(t, "This image is private", err.Error())

	view, err := f.service.Info(ctx, a, private.ID)
	require.NoError(t, err)
	assert.Equal(t, private.ID, view.ID)

	view, err = f.service.Info(ctx, reader, public.ID)
	require.NoError(t, err)
	assert.Equal(t, public.URL, view.URL)

	_, err = f.service.Info(ctx, reader, "unknown")
	assertCode(t, err, "NOT_FOUND")

	_, err = f.service.Info(ctx, reader, "")
	assertCode(t, err, "VALIDATION_ERROR")

	require.NoError(t, f.storage.RemoveFile(ctx, storage.Descriptor{ID: public.ID, FileType: public.FileType}))
	_, err = f.service.Info(ctx, reader, public.ID)
	assertCode(t, err, "FILE_MISSING")
}

func TestService_Info_FiltersHiddenTags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, image.Settings{})
	a := sec.SuperUser("A")

	img := f.upload(t, a, image.UploadInput{Tags: "public"})
	_, err := f.service.AddTags(ctx, a, img.ID, []image.TagInput{{Name: "private", Hidden: boolPtr(true)}})
	require.NoError(t, err)

	view, err := f.service.Info(ctx, viewer("B", sec.ScopeImageData), img.ID)
	require.NoError(t, err)
	assert.Equal(t, []image.Tag{{Name: "public", User: "A"}}, view.Tags)

	view, err = f.service.Info(ctx, a, img.ID)
	require.NoError(t, err)
	assert.Len(t, view.Tags, 2)
}

func TestService_AnonymousRead(t *testing.T) {
	ctx := context.Background()

	closed := newFixture(t, image.Settings{})
	_, err := closed.service.Types(ctx, nil, image.BrowseParams{}, false)
	assertPermissionDenied(t, err, "image_data")

	open := newFixture(t, image.Settings{AnonymousRead: true})
	owner := sec.SuperUser("A")
	public := open.upload(t, owner, image.UploadInput{BaseType: "bg"})
	private := open.upload(t, owner, image.UploadInput{BaseType: "secret", Hidden: true})

	result, err := open.service.Types(ctx, nil, image.BrowseParams{}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"bg"}, result.Types)

	_, err = open.service.Info(ctx, nil, public.ID)
	require.NoError(t, err)

	_, err = open.service.Info(ctx, nil, private.ID)
	assertCode(t, err, "FORBIDDEN")

	_, err = open.service.Info(ctx, viewer("B"), public.ID)
	assertPermissionDenied(t, err, "image_data")
}

func TestService_Random(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, image.Settings{})
	a := sec.SuperUser("A")

	_, err := f.service.Random(ctx, a, image.BrowseParams{})
	assertCode(t, err, "VALIDATION_ERROR")
	assert.Equal(t, "Missing parameters, add either type or tags", err.Error())

	_, err = f.service.Random(ctx, a, image.BrowseParams{Type: "bg"})
	assertCode(t, err, "NOT_FOUND")
	assert.Equal(t, "No image found for your query", err.Error())

	bg := f.upload(t, a, image.UploadInput{BaseType: "bg", Tags: "sky"})
	f.upload(t, a, image.UploadInput{BaseType: "bg", NSFW: true})
	f.upload(t, a, image.UploadInput{BaseType: "other", Tags: "sky"})

	for range 10 {
		view, err := f.service.Random(ctx, a, image.BrowseParams{Type: "bg"})
		require.NoError(t, err)
		assert.Equal(t, bg.ID, view.ID)
	}

	seen := map[string]bool{}
	for range 50 {
		view, err := f.service.Random(ctx, a, image.BrowseParams{Tags: "sky"})
		require.NoError(t, err)
		seen[view.BaseType] = true
	}
	assert.Len(t, seen, 2)
}

/*
TestService_TypesAndTags covers the listings, previews and their cache.
*/
func TestService_TypesAndTags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, image.Settings{})
	a := sec.SuperUser("A")
	b := viewer("B", sec.ScopeImageData)

	first := f.upload(t, a, image.UploadInput{BaseType: "bg", Tags: "sky"})
	f.upload(t, a, image.UploadInput{BaseType: "bg"})
	f.upload(t, a, image.UploadInput{BaseType: "hidden-type", Hidden: true, Tags: "own"})
	f.upload(t, a, image.UploadInput{BaseType: "lewd", NSFW: true})

	result, err := f.service.Types(ctx, b, image.BrowseParams{}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"bg"}, result.Types)
	assert.Empty(t, result.Preview)

	result, err = f.service.Types(ctx, b, image.BrowseParams{}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"bg"}, result.Types)
	require.Len(t, result.Preview, 1)
	assert.Equal(t, image.Preview{ID: first.ID, URL: first.URL, FileType: "jpeg", BaseType: "bg", Type: "bg"}, result.Preview[0])

	result, err = f.service.Types(ctx, a, image.BrowseParams{NSFW: "true"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"bg", "hidden-type", "lewd"}, result.Types)
	assert.Empty(t, result.Preview)

	tags, err := f.service.Tags(ctx, b, image.BrowseParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"sky"}, tags)

	tags, err = f.service.Tags(ctx, a, image.BrowseParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"own", "sky"}, tags)

	// Repository writes that bypass the service are hidden by the cache.
	require.NoError(t, f.repo.Save(ctx, &image.Image{ID: "direct", BaseType: "zzz", FileType: "png", Account: "A"}))
	result, err = f.service.Types(ctx, b, image.BrowseParams{}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"bg"}, result.Types)

	f.upload(t, a, image.UploadInput{BaseType: "new"})
	result, err = f.service.Types(ctx, b, image.BrowseParams{}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"bg", "new", "zzz"}, result.Types)
}

/*
TestService_TypesInvalidatedMidRequest verifies that a listing computed before
an invalidation is not served afterwards.
*/
func TestService_TypesInvalidatedMidRequest(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	repo := &racingRepository{
		MemoryRepository: image.NewMemoryRepository(),
		cache:            cache,
		late:             &image.Image{ID: "late", BaseType: "late", FileType: "png", Account: "A"},
	}
	require.NoError(t, repo.MemoryRepository.Save(ctx, &image.Image{ID: "early", BaseType: "bg", FileType: "png", Account: "A"}))

	service := image.NewService(repo, newFakeStorage(), &fakeFetcher{}, cache, sec.NewGate("yomira-image-test"),
		slog.New(slog.NewJSONHandler(io.Discard, nil)), image.Settings{})
	account := viewer("B", sec.ScopeImageData)

	result, err := service.Types(ctx, account, image.BrowseParams{}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"bg"}, result.Types)
	assert.Equal(t, 1, cache.invalidations)

	result, err = service.Types(ctx, account, image.BrowseParams{}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"bg", "late"}, result.Types)
}

// # Tag mutations

/*
TestService_AddTags merges tags case-insensitively against existing ones.
*/
func TestService_AddTags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, image.Settings{})
	a := viewer("A", sec.ScopeUploadImage, sec.ScopeImageTags)

	img := f.upload(t, a, image.UploadInput{Tags: "sky"})

	result, err := f.service.AddTags(ctx, a, img.ID, []image.TagInput{{Name: "Sky"}, {Name: "sky"}, {Name: "Cloud"}})
	require.NoError(t, err)

	assert.Equal(t, []image.Tag{{Name: "Cloud", Hidden: false, User: "A"}}, result.Tags.AddedTags)
	assert.Equal(t, []string{"Sky", "sky"}, result.Tags.SkippedTags)
	assert.Equal(t, []image.Tag{{Name: "sky", User: "A"}, {Name: "Cloud", User: "A"}}, result.Image.Tags)

	stored, err := f.repo.FindOne(ctx, img.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
	assert.Len(t, stored.Tags, 2)

	_, err = f.service.AddTags(ctx, a, img.ID, []image.TagInput{{Name: "CLOUD"}, {Name: " "}})
	assertCode(t, err, "VALIDATION_ERROR")
	assert.Equal(t, "Tags existed already or had no content", err.Error())

	_, err = f.service.AddTags(ctx, a, img.ID, nil)
	assert.Equal(t, "No tags were supplied", err.Error())

	_, err = f.service.AddTags(ctx, viewer("B", sec.ScopeImageData), img.ID, []image.TagInput{{Name: "x"}})
	assertPermissionDenied(t, err, "image_tags")

	_, err = f.service.AddTags(ctx, a, "unknown", []image.TagInput{{Name: "x"}})
	assertCode(t, err, "NOT_FOUND")
}

func TestService_AddTags_PrivateImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, image.Settings{})
	img := f.upload(t, sec.SuperUser("A"), image.UploadInput{Hidden: true})

	_, err := f.service.AddTags(ctx, viewer("B", sec.ScopeImageTags), img.ID, []image.TagInput{{Name: "x"}})
	assertCode(t, err, "FORBIDDEN")
}

func TestService_RemoveTags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, image.Settings{})
	a := sec.SuperUser("A")
	img := f.upload(t, a, image.UploadInput{Tags: "Sky, Blue, Cloud"})

	view, err := f.service.RemoveTags(ctx, a, img.ID, []image.TagInput{{Name: "sky"}, {Name: "CLOUD"}})
	require.NoError(t, err)
	assert.Equal(t, []image.Tag{{Name: "Blue", User: "A"}}, view.Tags)

	_, err = f.service.RemoveTags(ctx, viewer("B", sec.ScopeImageTags), img.ID, []image.TagInput{{Name: "Blue"}})
	assertPermissionDenied(t, err, "image_tags_delete")

	_, err = f.service.RemoveTags(ctx, a, img.ID, []image.TagInput{})
	assertCode(t, err, "VALIDATION_ERROR")
}

// # Delete

/*
TestService_Delete covers the two-step delete permission.
*/
func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, image.Settings{})
	owner := viewer("A", sec.ScopeUploadImage, sec.ScopeImageDeletePrivate)

	private := f.upload(t, owner, image.UploadInput{Hidden: true})
	public := f.upload(t, owner, image.UploadInput{})
	others := f.upload(t, sec.SuperUser("C"), image.UploadInput{Hidden: true})

	_, err := f.service.Delete(ctx, viewer("B"), public.ID)
	assertPermissionDenied(t, err, "image_delete", "image_delete_private")

	_, err = f.service.Delete(ctx, owner, public.ID)
	assertPermissionDenied(t, err, "image_delete")

	_, err = f.service.Delete(ctx, owner, others.ID)
	assertPermissionDenied(t, err, "image_delete")

	view, err := f.service.Delete(ctx, owner, private.ID)
	require.NoError(t, err)
	assert.Equal(t, private.ID, view.ID)
	_, err = f.repo.FindOne(ctx, private.ID)
	assertCode(t, err, "NOT_FOUND")

	// A missing file does not block removal of the record.
	deleter := viewer("D", sec.ScopeImageDelete)
	require.NoError(t, f.storage.RemoveFile(ctx, storage.Descriptor{ID: public.ID, FileType: public.FileType}))
	_, err = f.service.Delete(ctx, deleter, public.ID)
	require.NoError(t, err)

	_, err = f.service.Delete(ctx, deleter, public.ID)
	assertCode(t, err, "NOT_FOUND")
	assert.Equal(t, 1, f.storage.count())
}

// # Listings

func TestService_Listings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, image.Settings{})
	a := viewer("A", sec.ScopeUploadImage, sec.ScopeImageList)

	for i := range 27 {
		f.upload(t, a, image.UploadInput{Hidden: i%9 == 0, NSFW: i%2 == 0})
	}
	f.upload(t, sec.SuperUser("B"), image.UploadInput{})

	_, err := f.service.ListAll(ctx, a, image.BrowseParams{})
	assertPermissionDenied(t, err, "image_list_all")

	_, err = f.service.ListAccount(ctx, a, "B", image.BrowseParams{})
	assertPermissionDenied(t, err, "image_list_all")

	_, err = f.service.ListAccount(ctx, viewer("A"), "A", image.BrowseParams{})
	assertPermissionDenied(t, err, "image_list", "image_list_all")

	own, err := f.service.ListAccount(ctx, a, "A", image.BrowseParams{Page: "2"})
	require.NoError(t, err)
	assert.Len(t, own.Images, 2)
	assert.Equal(t, 27, own.Meta.Total)
	assert.Equal(t, 2, own.Meta.Page)
	assert.Equal(t, 25, own.Meta.Limit)

	hidden, err := f.service.ListAccount(ctx, a, "A", image.BrowseParams{Hidden: "true"})
	require.NoError(t, err)
	assert.Equal(t, 3, hidden.Meta.Total)

	admin := sec.SuperUser("root")
	all, err := f.service.ListAll(ctx, admin, image.BrowseParams{NSFW: "false"})
	require.NoError(t, err)
	assert.Equal(t, 14, all.Meta.Total)
}

func boolPtr(value bool) *bool {
	return &value
}
