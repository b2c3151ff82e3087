// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/espy/internal/platform/apperr"
	"github.com/taibuivan/espy/internal/platform/ctxutil"
	"github.com/taibuivan/espy/internal/platform/sec"
	"github.com/taibuivan/espy/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Uint64 retrieves a named URL parameter holding a numeric catalog id.

Returns:
  - uint64: The parsed id
  - error: apperr.InvalidArgument if the parameter is not a positive integer
*/
func Uint64(request *http.Request, name string) (uint64, error) {
	value, err := strconv.ParseUint(chi.URLParam(request, name), 10, 64)
	if err != nil || value == 0 {
		return 0, apperr.InvalidArgument(fmt.Sprintf("'%s' must be a positive integer", name))
	}
	return value, nil
}

/*
Operator extracts the authenticated operator claims from the request context.

Returns nil if the request carries no operator credential.
*/
func Operator(request *http.Request) *sec.OperatorClaims {
	return ctxutil.GetOperator(request.Context())
}
