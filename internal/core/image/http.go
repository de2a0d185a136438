// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-image/internal/platform/apperr"
	"github.com/taibuivan/yomira-image/internal/platform/constants"
	"github.com/taibuivan/yomira-image/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-image/internal/platform/request"
	"github.com/taibuivan/yomira-image/internal/platform/respond"
	"github.com/taibuivan/yomira-image/pkg/convert"
)

// multipartOverhead is the room left for form fields next to the file in a multipart body.
const multipartOverhead = 1 << 20

// HandlerSettings configures the HTTP layer.
type HandlerSettings struct {
	// MaxUploadBytes bounds uploaded files.
	MaxUploadBytes int64

	// AnonymousRead mounts the read routes without [middleware.RequireAuth].
	AnonymousRead bool
}

type Handler struct {
	service  *Service
	settings HandlerSettings
}

func NewHandler(service *Service, settings HandlerSettings) *Handler {
	return &Handler{service: service, settings: settings}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Reads
	router.Group(func(readRoute chi.Router) {
		if !handler.settings.AnonymousRead {
			readRoute.Use(middleware.RequireAuth)
		}

		readRoute.Get("/types", handler.types)
		readRoute.Get("/tags", handler.tags)
		readRoute.Get("/random", handler.random)
		readRoute.Get("/info", handler.info)
		readRoute.Get("/info/{id}", handler.info)
	})

	// Mutations and listings
	router.Group(func(authRoute chi.Router) {
		authRoute.Use(middleware.RequireAuth)

		authRoute.Post("/upload", handler.upload)
		authRoute.Post("/info/{id}/tags", handler.addTags)
		authRoute.Delete("/info/{id}/tags", handler.removeTags)
		authRoute.Delete("/info/{id}", handler.deleteImage)
		authRoute.Get("/list", handler.listAll)
		authRoute.Get("/list/{account}", handler.listAccount)
	})
}

// # Upload

/*
POST /upload.

Description: Stores a new image from a multipart file or a remote URL.

Request:
  - multipart/form-data: file, baseType, tags, hidden, nsfw, source
  - application/json or form: url, baseType, tags, hidden, nsfw, source

Response:
  - 201: ImageView: Stored image
  - 400: VALIDATION_ERROR/UNSUPPORTED_MIME_TYPE/UPSTREAM_FETCH_ERROR
  - 403: PERMISSION_DENIED: Missing upload scope
*/
func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
	input, err := handler.decodeUpload(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.Upload(request.Context(), requestutil.Account(request), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, view)
}

// uploadBody is the JSON form of an upload.
type uploadBody struct {
	URL      string   `json:"url"`
	BaseType string   `json:"baseType"`
	Tags     string   `json:"tags"`
	Hidden   flexBool `json:"hidden"`
	NSFW     flexBool `json:"nsfw"`
	Source   string   `json:"source"`
}

func (handler *Handler) decodeUpload(writer http.ResponseWriter, request *http.Request) (UploadInput, error) {
	mediaType, _, _ := mime.ParseMediaType(request.Header.Get(constants.HeaderContentType))

	switch mediaType {
	case "application/json":
		var body uploadBody
		if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
			return UploadInput{}, err
		}
		return UploadInput{
			URL:      strings.TrimSpace(body.URL),
			BaseType: body.BaseType,
			Tags:     body.Tags,
			Hidden:   bool(body.Hidden),
			NSFW:     bool(body.NSFW),
			Source:   body.Source,
		}, nil

	case "multipart/form-data":
		request.Body = http.MaxBytesReader(writer, request.Body, handler.settings.MaxUploadBytes+multipartOverhead)
		if err := request.ParseMultipartForm(constants.MultipartMemory); err != nil {
			return UploadInput{}, handler.bodyError(err)
		}

		input := formUpload(request)
		file, header, err := request.FormFile(fieldFile)
		if errors.Is(err, http.ErrMissingFile) {
			return input, nil
		}
		if err != nil {
			return UploadInput{}, handler.bodyError(err)
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, handler.settings.MaxUploadBytes+1))
		if err != nil {
			return UploadInput{}, handler.bodyError(err)
		}
		if int64(len(data)) > handler.settings.MaxUploadBytes {
			return UploadInput{}, handler.tooLarge()
		}

		input.File = data
		input.HasFile = true
		input.FileMime = header.Header.Get(constants.HeaderContentType)
		if input.FileMime == "" {
			input.FileMime = http.DetectContentType(data)
		}
		return input, nil

	default:
		request.Body = http.MaxBytesReader(writer, request.Body, multipartOverhead)
		if err := request.ParseForm(); err != nil {
			return UploadInput{}, handler.bodyError(err)
		}
		return formUpload(request), nil
	}
}

func formUpload(request *http.Request) UploadInput {
	return UploadInput{
		URL:      strings.TrimSpace(request.FormValue("url")),
		BaseType: request.FormValue(FieldBaseType),
		Tags:     request.FormValue(FieldTags),
		Hidden:   convert.IsTrue(request.FormValue(FieldHidden)),
		NSFW:     convert.IsTrue(request.FormValue(FieldNSFW)),
		Source:   request.FormValue(FieldSource),
	}
}

func (handler *Handler) bodyError(err error) error {
	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		return handler.tooLarge()
	}
	return apperr.ValidationError("The upload body could not be read")
}

func (handler *Handler) tooLarge() error {
	return apperr.ValidationError(fmt.Sprintf("The file exceeds the upload limit of %d bytes", handler.settings.MaxUploadBytes))
}

// flexBool decodes true, false, "true" and "false". Any other value is false.
type flexBool bool

func (value *flexBool) UnmarshalJSON(data []byte) error {
	var parsed bool
	if err := json.Unmarshal(data, &parsed); err == nil {
		*value = flexBool(parsed)
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*value = flexBool(convert.IsTrue(text))
		return nil
	}

	*value = false
	return nil
}

// # Reads

/*
GET /types.

Description: Lists the distinct base types, optionally with one preview image each.

Request:
  - hidden, nsfw: string (tri-state filters)
  - preview: any non-empty value enables previews

Response:
  - 200: TypesResult
  - 403: PERMISSION_DENIED: Missing image_data
*/
func (handler *Handler) types(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	preview := query.Get("preview") != ""

	result, err := handler.service.Types(request.Context(), requestutil.Account(request), ParseBrowseParams(query), preview)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

// TagListing is the response of GET /tags.
type TagListing struct {
	Tags []string `json:"tags"`
}

/*
GET /tags.

Description: Lists the distinct tag names the caller may see.

Response:
  - 200: TagListing
  - 403: PERMISSION_DENIED: Missing image_data
*/
func (handler *Handler) tags(writer http.ResponseWriter, request *http.Request) {
	tags, err := handler.service.Tags(request.Context(), requestutil.Account(request), ParseBrowseParams(request.URL.Query()))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, TagListing{Tags: tags})
}

/*
GET /random.

Request:
  - type, tags: at least one is required
  - nsfw, hidden, filetype: optional filters

Response:
  - 200: ImageView
  - 400: VALIDATION_ERROR: Neither type nor tags
  - 404: NOT_FOUND: Nothing matched
*/
func (handler *Handler) random(writer http.ResponseWriter, request *http.Request) {
	view, err := handler.service.Random(request.Context(), requestutil.Account(request), ParseBrowseParams(request.URL.Query()))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

/*
GET /info/{id}.

Response:
  - 200: ImageView
  - 403: FORBIDDEN: Private image of another account
  - 404: NOT_FOUND / FILE_MISSING
*/
func (handler *Handler) info(writer http.ResponseWriter, request *http.Request) {
	view, err := handler.service.Info(request.Context(), requestutil.Account(request), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

// # Tag mutations

// tagsBody is the request body of the tag endpoints.
type tagsBody struct {
	Tags []TagInput `json:"tags"`
}

func decodeTags(writer http.ResponseWriter, request *http.Request) ([]TagInput, error) {
	var body tagsBody
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		return nil, err
	}
	return body.Tags, nil
}

/*
POST /info/{id}/tags.

Request:
  - body: {"tags": [string | {"name": string, "hidden": bool}]}

Response:
  - 200: TagsResult: Updated image plus added and skipped tags
  - 400: VALIDATION_ERROR: No tags, malformed tags or nothing new
  - 409: CONFLICT: Concurrent modification
*/
func (handler *Handler) addTags(writer http.ResponseWriter, request *http.Request) {
	tags, err := decodeTags(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.AddTags(request.Context(), requestutil.Account(request), requestutil.Param(request, "id"), tags)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
DELETE /info/{id}/tags.

Request:
  - body: {"tags": [string | {"name": string}]}

Response:
  - 200: ImageView: Image with the remaining tags
*/
func (handler *Handler) removeTags(writer http.ResponseWriter, request *http.Request) {
	tags, err := decodeTags(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.RemoveTags(request.Context(), requestutil.Account(request), requestutil.Param(request, "id"), tags)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

/*
DELETE /info/{id}.

Response:
  - 200: ImageView: The removed image
  - 403: PERMISSION_DENIED: Missing image_delete or image_delete_private
*/
func (handler *Handler) deleteImage(writer http.ResponseWriter, request *http.Request) {
	view, err := handler.service.Delete(request.Context(), requestutil.Account(request), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

// # Listings

/*
GET /list.

Request:
  - page, type, nsfw, hidden, filetype

Response:
  - 200: []ImageView with pagination meta
  - 403: PERMISSION_DENIED: Missing image_list_all
*/
func (handler *Handler) listAll(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.ListAll(request.Context(), requestutil.Account(request), ParseBrowseParams(request.URL.Query()))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, result.Images, result.Meta)
}

/*
GET /list/{account}.

Response:
  - 200: []ImageView with pagination meta
  - 403: PERMISSION_DENIED: Missing image_list or image_list_all
*/
func (handler *Handler) listAccount(writer http.ResponseWriter, request *http.Request) {
	target := requestutil.Param(request, "account")

	result, err := handler.service.ListAccount(request.Context(), requestutil.Account(request), target, ParseBrowseParams(request.URL.Query()))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, result.Images, result.Meta)
}
