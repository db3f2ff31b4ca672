package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/zeptools/gw-livedocx/apis/livedocx"
	"github.com/zeptools/gw-livedocx/apis/livedocx/soap"
	"github.com/zeptools/gw-livedocx/archive"
	"github.com/zeptools/gw-livedocx/requests"
	"github.com/zeptools/gw-livedocx/responses"
)

// writeError maps domain and transport errors to HTTP statuses.
// Remote login failures are the gateway's own credentials, hence 502
func (g *Gateway) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		fault   *soap.Fault
		httpErr *soap.HTTPError
	)
	switch {
	case errors.Is(err, requests.ErrBodyTooLarge):
		responses.WriteErrorJSON(w, http.StatusRequestEntityTooLarge, responses.CodeValidation, err.Error())
	case errors.Is(err, requests.ErrUnsupportedMediaType):
		responses.WriteErrorJSON(w, http.StatusUnsupportedMediaType, responses.CodeValidation, err.Error())
	case errors.Is(err, requests.ErrInvalidJSON),
		errors.Is(err, livedocx.ErrValidation),
		errors.Is(err, livedocx.ErrType),
		errors.Is(err, archive.ErrInvalidID):
		responses.WriteErrorJSON(w, http.StatusBadRequest, responses.CodeValidation, err.Error())
	case errors.Is(err, livedocx.ErrNotFound):
		responses.WriteErrorJSON(w, http.StatusNotFound, responses.CodeTemplateAbsent, err.Error())
	case errors.Is(err, livedocx.ErrAuthentication):
		g.Logger.Errorw("livedocx login rejected", "path", r.URL.Path, "error", err)
		responses.WriteErrorJSON(w, http.StatusBadGateway, responses.CodeRemoteAuth, "remote service rejected the gateway credentials")
	case errors.As(err, &fault), errors.As(err, &httpErr):
		g.Logger.Warnw("livedocx call failed", "path", r.URL.Path, "error", err)
		responses.WriteErrorJSON(w, http.StatusBadGateway, responses.CodeRemoteFailure, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		responses.WriteErrorJSON(w, http.StatusGatewayTimeout, responses.CodeRemoteFailure, "remote service timed out")
	case errors.Is(err, context.Canceled):
		// client went away. nothing to write to
	default:
		g.Logger.Errorw("request failed", "path", r.URL.Path, "error", err)
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "internal server error")
	}
}
