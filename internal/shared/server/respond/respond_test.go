package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorWritesMessageBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	called := false
	router.GET("/x", func(c *gin.Context) {
		Error(c, http.StatusNotFound, "not_found", "Analysis not found")
	}, func(c *gin.Context) {
		called = true
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Analysis not found" {
		t.Fatalf("unexpected body %v", body)
	}
	if called {
		t.Fatalf("expected chain to be aborted")
	}
}

func TestAbortStopsChainWithPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	called := false
	router.POST("/x", func(c *gin.Context) {
		Abort(c, http.StatusBadRequest, gin.H{"status": "failed"})
	}, func(c *gin.Context) {
		called = true
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/x", nil))

	if resp.Code != http.StatusBadRequest || called {
		t.Fatalf("expected aborted 400, got %d (next called: %v)", resp.Code, called)
	}
}
