package jwt_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/todoapi/pkg/jwt"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	svc, err := jwt.New(secret)
	require.NoError(t, err)
	valid, err := svc.Issue("user-42")
	require.NoError(t, err)

	newHandler := func(called *bool) http.Handler {
		return jwt.Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*called = true
			id, ok := jwt.UserIDFromContext(r.Context())
			assert.True(t, ok)
			token, ok := jwt.TokenFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, valid, token)
			_, _ = w.Write([]byte(id))
		}))
	}

	t.Run("valid token", func(t *testing.T) {
		t.Parallel()
		var called bool
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+valid)
		rec := httptest.NewRecorder()

		newHandler(&called).ServeHTTP(rec, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-42", rec.Body.String())
	})

	rejected := map[string]string{
		"missing header":   "",
		"wrong scheme":     "Basic " + valid,
		"empty bearer":     "Bearer ",
		"malformed token":  "Bearer abc.def.ghi",
		"trailing garbage": "Bearer " + valid + "x",
	}
	for name, header := range rejected {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var called bool
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()

			newHandler(&called).ServeHTTP(rec, req)

			assert.False(t, called, "downstream handler must not run")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "unauthorized", body["code"])
		})
	}

	t.Run("custom unauthorized handler", func(t *testing.T) {
		t.Parallel()
		var gotErr error
		h := jwt.Middleware(svc, jwt.WithUnauthorizedHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			gotErr = err
			w.WriteHeader(http.StatusTeapot)
		}))(http.NotFoundHandler())

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.ErrorIs(t, gotErr, jwt.ErrMissingToken)
	})
}

func TestBearerTokenExtractor(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer abc")
	token, err := jwt.BearerTokenExtractor(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	req.Header.Set("Authorization", "Token abc")
	_, err = jwt.BearerTokenExtractor(req)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}
