package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/floracart/storefront/internal/apperr"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindNotFound:            http.StatusNotFound,
	apperr.KindValidation:          http.StatusBadRequest,
	apperr.KindOutOfStock:          http.StatusConflict,
	apperr.KindEmptyCart:           http.StatusBadRequest,
	apperr.KindInvalidTransition:   http.StatusConflict,
	apperr.KindNotCancellable:      http.StatusConflict,
	apperr.KindPaymentVerification: http.StatusBadRequest,
	apperr.KindConflict:            http.StatusConflict,
	apperr.KindForbidden:           http.StatusForbidden,
}

// writeError maps the error's kind to a status code. Plain errors are
// internal: logged in full, surfaced as a generic message unless
// exposeDetail is on.
func writeError(w http.ResponseWriter, r *http.Request, err error, exposeDetail bool) {
	var e *apperr.Error
	if errors.As(err, &e) {
		code, ok := kindStatus[e.Kind]
		if !ok {
			code = http.StatusInternalServerError
		}
		writeJSON(w, code, map[string]string{"error": string(e.Kind), "message": e.Message})
		return
	}

	log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	msg := "internal server error"
	if exposeDetail {
		msg = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": string(apperr.KindInternal), "message": msg,
	})
}

// decodeBestEffort tolerates an empty or absent body.
func decodeBestEffort(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	}
	return err
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": string(apperr.KindValidation), "message": "invalid json",
		})
		return false
	}
	return true
}
