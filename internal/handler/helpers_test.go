package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/olatunbossun/craftcart/internal/apierror"
	"github.com/olatunbossun/craftcart/internal/middleware"
)

func errorTestRouter(err error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		respondError(c, err)
	})
	return r
}

func TestRespondError_InternalErrorWritesSingleBody(t *testing.T) {
	r := errorTestRouter(errors.New("connection reset by peer"))

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// One envelope only, even with the error middleware in the chain.
	assert.JSONEq(t, `{"detail":"Internal server error"}`, w.Body.String())
}

func TestRespondError_NotFoundAndForbiddenStatuses(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apierror.NotFound("sale"), http.StatusNotFound},
		{"forbidden", apierror.Forbidden("not yours"), http.StatusForbidden},
		{"validation", apierror.NewValidation("discount_percentage", "must be between 0 and 100"), http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := errorTestRouter(tc.err)

			req := httptest.NewRequest(http.MethodGet, "/boom", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
		})
	}
}
