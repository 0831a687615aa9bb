package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/tkp/constants"
)

func TestRecorder_ObserveQuote(t *testing.T) {
	before := testutil.ToFloat64(QuotesTotal.WithLabelValues("no_results"))

	Recorder{}.ObserveQuote(constants.OutcomeNoResults, 1500*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(QuotesTotal.WithLabelValues("no_results")))
}

func TestRecorder_ObserveDocument(t *testing.T) {
	okBefore := testutil.ToFloat64(DocumentsTotal.WithLabelValues("xlsx", "ok"))
	errBefore := testutil.ToFloat64(DocumentsTotal.WithLabelValues("xlsx", "error"))

	Recorder{}.ObserveDocument("xlsx", nil)
	Recorder{}.ObserveDocument("xlsx", errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(DocumentsTotal.WithLabelValues("xlsx", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(DocumentsTotal.WithLabelValues("xlsx", "error")))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusTeapot, "x") })

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/ping", "GET", "418"))
	unmatched := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("unmatched", "GET", "404"))

	for _, path := range []string{"/ping", "/nope"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/ping", "GET", "418")))
	assert.Equal(t, unmatched+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("unmatched", "GET", "404")))
}
