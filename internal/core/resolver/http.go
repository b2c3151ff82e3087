// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package resolver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/espy/internal/platform/apperr"
	"github.com/taibuivan/espy/internal/platform/middleware"
	requestutil "github.com/taibuivan/espy/internal/platform/request"
	"github.com/taibuivan/espy/internal/platform/respond"
	"github.com/taibuivan/espy/internal/platform/validate"
	"github.com/taibuivan/espy/internal/provider/igdb"
	"github.com/taibuivan/espy/pkg/convert"
	"github.com/taibuivan/espy/pkg/pagination"
	"github.com/taibuivan/espy/pkg/query"
)

// # Request Payloads

type idRequest struct {
	ID uint64 `json:"id"`
}

type searchRequest struct {
	Title        string `json:"title"`
	BaseGameOnly bool   `json:"base_game_only"`
}

// decodeID reads an {"id": n} body.
func decodeID(request *http.Request) (uint64, error) {
	var payload idRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		return 0, err
	}
	if payload.ID == 0 {
		return 0, validate.RequiredError("id", "A positive catalog id is required")
	}
	return payload.ID, nil
}

// # Handler Implementation

// Handler exposes entries, digests and search over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the resolver endpoints.
//
// # Routing Strategy
//
//   - Reads: stored entries, digests and title search.
//   - Resolves: write entries and require an operator.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/games/{id}", handler.getEntry)
	router.Get("/games/{id}/digest", handler.getDigest)
	router.Get("/games/{id}/stores", handler.listStores)
	router.Get("/digests", handler.listDigests)
	router.Get("/search", handler.search)

	router.Post("/resolver/digest", handler.postDigest)
	router.Post("/resolver/search", handler.postSearch)

	router.Group(func(operator chi.Router) {
		operator.Use(middleware.RequireOperator)

		operator.Post("/games/{id}/resolve", handler.resolve)
		operator.Post("/resolver/retrieve", handler.postRetrieve)
		operator.Post("/resolver/resolve", handler.postResolve)
	})

	return router
}

func (handler *Handler) getEntry(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Uint64(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.service.Entry(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entry)
}

func (handler *Handler) getDigest(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Uint64(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	digest, err := handler.service.Digest(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, digest)
}

func (handler *Handler) listStores(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Uint64(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	mappings, err := handler.service.StoreMappings(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, mappings)
}

func (handler *Handler) listDigests(writer http.ResponseWriter, request *http.Request) {
	ids := query.Uint64Slice(request.URL.Query().Get("ids"))

	digests, err := handler.service.Digests(request.Context(), ids)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, digests)
}

func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	title := request.URL.Query().Get("title")
	if title == "" {
		respond.Error(writer, request, apperr.InvalidArgument("title is required"))
		return
	}

	params := pagination.FromRequest(request)
	entries, err := handler.service.Search(request.Context(), title, convert.ToBool(request.URL.Query().Get("base_game_only")))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, pagination.Slice(entries, params), pagination.NewMeta(params.Page, params.Limit, len(entries)))
}

func (handler *Handler) resolve(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Uint64(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.service.Retrieve(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entry)
}

// # Resolver Endpoints

func (handler *Handler) postDigest(writer http.ResponseWriter, request *http.Request) {
	id, err := decodeID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	digest, err := handler.service.Digest(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, digest)
}

func (handler *Handler) postSearch(writer http.ResponseWriter, request *http.Request) {
	var payload searchRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("title", payload.Title).MaxLen("title", payload.Title, 200)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entries, err := handler.service.Search(request.Context(), payload.Title, payload.BaseGameOnly)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entries)
}

func (handler *Handler) postRetrieve(writer http.ResponseWriter, request *http.Request) {
	id, err := decodeID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.service.Retrieve(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entry)
}

func (handler *Handler) postResolve(writer http.ResponseWriter, request *http.Request) {
	var source igdb.Game
	if err := requestutil.DecodeJSON(request, &source); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if source.ID == 0 {
		respond.Error(writer, request, validate.RequiredError("id", "A positive catalog id is required"))
		return
	}

	entry, err := handler.service.Resolve(request.Context(), source)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, entry)
}
