package ginx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/goindi/indidriver/pkg/apierror"
	"github.com/goindi/indidriver/pkg/ginx"
)

type payload struct {
	Name string `json:"name" xml:"name"`
}

func TestRenderResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		testFunc func(*testing.T)
	}{
		{
			name: "nil renders 204",
			testFunc: func(t *testing.T) {
				t.Parallel()
				gin.SetMode(gin.TestMode)
				router := gin.New()
				router.GET("/test", func(c *gin.Context) { ginx.RenderResponse(c, nil) })

				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
				assert.Equal(t, http.StatusNoContent, w.Code)
			},
		},
		{
			name: "struct defaults to JSON",
			testFunc: func(t *testing.T) {
				t.Parallel()
				gin.SetMode(gin.TestMode)
				router := gin.New()
				router.GET("/test", func(c *gin.Context) { ginx.RenderResponse(c, payload{Name: "CCD Simulator"}) })

				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
				assert.Equal(t, http.StatusOK, w.Code)
				assert.Contains(t, w.Body.String(), `"name":"CCD Simulator"`)
			},
		},
		{
			name: "Accept: application/xml switches to XML",
			testFunc: func(t *testing.T) {
				t.Parallel()
				gin.SetMode(gin.TestMode)
				router := gin.New()
				router.GET("/test", func(c *gin.Context) { ginx.RenderResponse(c, payload{Name: "Mount"}) })

				req := httptest.NewRequest(http.MethodGet, "/test", nil)
				req.Header.Set("Accept", "application/xml")
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				assert.Contains(t, w.Header().Get("Content-Type"), "xml")
				assert.Contains(t, w.Body.String(), "<name>Mount</name>")
			},
		},
		{
			name: "SetResponseFormat overrides Accept header",
			testFunc: func(t *testing.T) {
				t.Parallel()
				gin.SetMode(gin.TestMode)
				router := gin.New()
				router.GET("/test", func(c *gin.Context) {
					ginx.SetResponseFormat(c, "xml")
					ginx.RenderResponse(c, payload{Name: "Focuser"})
				})

				req := httptest.NewRequest(http.MethodGet, "/test", nil)
				req.Header.Set("Accept", "application/json")
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				assert.Contains(t, w.Header().Get("Content-Type"), "xml")
			},
		},
		{
			name: "scalar int wraps in value key",
			testFunc: func(t *testing.T) {
				t.Parallel()
				gin.SetMode(gin.TestMode)
				router := gin.New()
				router.GET("/test", func(c *gin.Context) { ginx.RenderResponse(c, 42) })

				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
				assert.Contains(t, w.Body.String(), `"value":42`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestRenderError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		testFunc func(*testing.T)
	}{
		{
			name: "apierror.Error uses its own HTTP status",
			testFunc: func(t *testing.T) {
				t.Parallel()
				gin.SetMode(gin.TestMode)
				router := gin.New()
				router.GET("/test", func(c *gin.Context) {
					ginx.RenderError(c, http.StatusInternalServerError, apierror.ErrUnknownProperty)
				})

				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
				assert.Equal(t, http.StatusNotFound, w.Code)
				assert.Contains(t, w.Body.String(), "UnknownProperty")
			},
		},
		{
			name: "plain error falls back to generic body",
			testFunc: func(t *testing.T) {
				t.Parallel()
				gin.SetMode(gin.TestMode)
				router := gin.New()
				router.GET("/test", func(c *gin.Context) {
					ginx.RenderError(c, http.StatusBadRequest, assert.AnError)
				})

				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Contains(t, w.Body.String(), `"error"`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}
