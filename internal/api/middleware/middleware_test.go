package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestOriginAllowed(t *testing.T) {
	assert.True(t, OriginAllowed(nil, "https://evil.example"))
	assert.True(t, OriginAllowed([]string{"https://app.ringside.io"}, ""))
	assert.True(t, OriginAllowed([]string{"https://app.ringside.io"}, "https://app.ringside.io"))
	assert.False(t, OriginAllowed([]string{"https://app.ringside.io"}, "https://evil.example"))
	assert.True(t, OriginAllowed([]string{"*"}, "https://evil.example"))
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.ringside.io"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://app.ringside.io")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.ringside.io", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.ringside.io")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRedactBody(t *testing.T) {
	assert.JSONEq(t,
		`{"email":"a@b.c","password":"***"}`,
		redactBody([]byte(`{"email":"a@b.c","password":"hunter2"}`)))
	assert.JSONEq(t,
		`{"code":200,"data":{"token":"***"}}`,
		redactBody([]byte(`{"code":200,"data":{"token":"eyJ"}}`)))
	assert.Equal(t, `{"content":"hi"}`, redactBody([]byte(`{"content":"hi"}`)))
	assert.Equal(t, "not json", redactBody([]byte("not json")))
	assert.Equal(t, "", redactBody(nil))
}

func TestRedactQuery(t *testing.T) {
	q := url.Values{"token": {"eyJ"}, "page": {"2"}}
	assert.Equal(t, "page=2&token=***", redactQuery(q))
}

func TestTraceMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping?trace_id=abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get("X-Trace-ID"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Trace-ID", "from-header")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "from-header", w.Header().Get("X-Trace-ID"))
}
