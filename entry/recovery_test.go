package entry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Recovery(t *testing.T) {
	t.Run("panics are converted to 500 responses", func(t *testing.T) {
		h := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("oh no")
		}))
		res := httptest.NewRecorder()
		assert.NotPanics(t, func() {
			h.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/", nil))
		})
		assert.Equal(t, http.StatusInternalServerError, res.Code)
	})

	t.Run("handlers that don't panic are unaffected", func(t *testing.T) {
		h := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		res := httptest.NewRecorder()
		h.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusNoContent, res.Code)
	})

	t.Run("aborted handlers still abort", func(t *testing.T) {
		h := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		}))
		assert.Panics(t, func() {
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
		})
	})
}
