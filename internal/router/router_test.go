package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// Registered paths answer 401 from the auth middleware when no token is sent;
// unknown paths answer 404. That difference is enough to pin the route table.
func TestRouteRegistration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter()

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPost, "/api/v1/integrations/startup-radar/sync", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/integrations/startup-radar/status", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/integrations/startup-radar/audit/1", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/integrations/startup-radar/sync/status", http.StatusNotFound},
		{http.MethodGet, "/api/v1/companies", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/search", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/users", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, "%s %s", tc.method, tc.path)
	}
}
