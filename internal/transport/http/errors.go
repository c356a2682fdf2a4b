package httptransport

import (
	"errors"
	"net/http"

	"meme-hunter/internal/app/relay"
	"meme-hunter/internal/program"

	"github.com/rs/zerolog/log"
)

// MapError turns a service error into a status and a stable error code.
func MapError(err error) (int, string) {
	if errors.Is(err, relay.ErrInvalidRequest) {
		return http.StatusBadRequest, relay.ErrInvalidRequest.Error()
	}
	if errors.Is(err, program.ErrInvalidSessionDuration) {
		return http.StatusBadRequest, err.Error()
	}
	var status int
	switch program.KindOf(err) {
	case program.KindAuthorization:
		status = http.StatusForbidden
	case program.KindValidityWindow:
		status = http.StatusGone
	case program.KindInputDomain:
		status = http.StatusBadRequest
	case program.KindResourceSufficiency:
		status = http.StatusConflict
	case program.KindArithmetic:
		return http.StatusInternalServerError, rootCode(err)
	case program.KindStateConsistency:
		status = http.StatusUnprocessableEntity
	case program.KindNotFound:
		status = http.StatusNotFound
	default:
		return http.StatusInternalServerError, "internal_error"
	}
	return status, rootCode(err)
}

// rootCode returns the innermost sentinel's text.
func rootCode(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := MapError(err)
	if status == http.StatusInternalServerError {
		metricHTTPInternalErrors.Add(1)
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	WriteHTTPError(w, status, code)
}
