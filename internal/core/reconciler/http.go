// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reconciler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/espy/internal/core/game"
	"github.com/taibuivan/espy/internal/platform/middleware"
	requestutil "github.com/taibuivan/espy/internal/platform/request"
	"github.com/taibuivan/espy/internal/platform/respond"
	"github.com/taibuivan/espy/internal/platform/validate"
)

// MaxSyncRecords caps the records of one sync request.
const MaxSyncRecords = 500

type syncRequest struct {
	Records []game.StoreEntry `json:"records"`
}

// validateRecord checks a record carries something to match on.
func validateRecord(validator *validate.Validator, field string, record game.StoreEntry) {
	validator.Required(field+".storefront_name", record.StorefrontName)
	validator.Custom(field+".title", record.ID == "" && record.Title == "", "A storefront id or a title is required")
	validator.MaxLen(field+".title", record.Title, 200)
}

// Handler exposes reconciliation over HTTP. Every route writes mappings and
// entries, so all of them require an operator.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the reconciler endpoints, mounted under /reconciler.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(operator chi.Router) {
		operator.Use(middleware.RequireOperator)

		operator.Post("/reconcile", handler.reconcile)
		operator.Post("/sync", handler.sync)
		operator.Post("/steam/{accountID}", handler.syncLibrary)
	})

	return router
}

func (handler *Handler) reconcile(writer http.ResponseWriter, request *http.Request) {
	var record game.StoreEntry
	if err := requestutil.DecodeJSON(request, &record); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validateRecord(validator, "record", record)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entries, err := handler.service.Reconcile(request.Context(), record)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if entries == nil {
		entries = []game.Entry{}
	}
	respond.OK(writer, entries)
}

func (handler *Handler) sync(writer http.ResponseWriter, request *http.Request) {
	var payload syncRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Custom("records", len(payload.Records) == 0, "At least one record is required")
	validator.Custom("records", len(payload.Records) > MaxSyncRecords, fmt.Sprintf("At most %d records per request", MaxSyncRecords))
	for i, record := range payload.Records {
		validateRecord(validator, fmt.Sprintf("records[%d]", i), record)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.service.Sync(request.Context(), payload.Records))
}

func (handler *Handler) syncLibrary(writer http.ResponseWriter, request *http.Request) {
	accountID := requestutil.Param(request, "accountID")
	if accountID == "" {
		respond.Error(writer, request, validate.RequiredError("accountID", "A storefront account id is required"))
		return
	}

	reports, err := handler.service.SyncLibrary(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, reports)
}
