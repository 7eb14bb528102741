package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
	"github.com/aussiebroadwan/tenancy/pkg/tenancysdk"
)

// kinds maps each service error kind to its response. Order matters only
// for ErrMFARequired, which is also Unauthenticated.
var kinds = []struct {
	kind error
	base *tenancysdk.APIError
}{
	{service.ErrMFARequired, tenancysdk.ErrMFARequired},
	{service.ErrUnauthenticated, tenancysdk.ErrUnauthenticated},
	{service.ErrForbidden, tenancysdk.ErrForbidden},
	{service.ErrNotFound, tenancysdk.ErrNotFound},
	{service.ErrConflict, tenancysdk.ErrConflict},
	{service.ErrInvalidState, tenancysdk.ErrInvalidState},
}

// writeError translates a service error. Unknown errors are logged and
// reported as server_error without their message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		apiErr := *tenancysdk.ErrValidation
		for _, f := range verr.Fields {
			apiErr.Details = append(apiErr.Details, tenancysdk.FieldError{Field: f.Field, Message: f.Message})
		}
		apiErr.WriteError(w)
		return
	}

	for _, k := range kinds {
		if errors.Is(err, k.kind) {
			tenancysdk.NewAPIError(k.base.StatusCode, k.base.Code, err.Error()).WriteError(w)
			return
		}
	}

	slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
	tenancysdk.ErrServerError.WriteError(w)
}

// writeBadRequest reports an undecodable body.
func writeBadRequest(w http.ResponseWriter, err error) {
	tenancysdk.NewAPIError(http.StatusBadRequest, tenancysdk.ErrorCodeInvalidRequest, err.Error()).WriteError(w)
}
