package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordStatement(t *testing.T) {
	before := testutil.ToFloat64(StatementsTotal.WithLabelValues("teacher", KindPage))
	beforeErr := testutil.ToFloat64(StatementErrors.WithLabelValues("teacher", KindPage))

	RecordStatement("teacher", KindPage, 3*time.Millisecond, nil)
	RecordStatement("teacher", KindPage, time.Millisecond, errors.New("connection reset"))

	assert.Equal(t, before+2, testutil.ToFloat64(StatementsTotal.WithLabelValues("teacher", KindPage)))
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(StatementErrors.WithLabelValues("teacher", KindPage)))
}

func TestRecordRejection(t *testing.T) {
	before := testutil.ToFloat64(ValidationRejections.WithLabelValues("student", "no_fields"))
	RecordRejection("student", "no_fields")
	assert.Equal(t, before+1, testutil.ToFloat64(ValidationRejections.WithLabelValues("student", "no_fields")))
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/teacher", "200"))
	RecordHTTPRequest("GET", "/teacher", "200", 10*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/teacher", "200")))
}

func TestUpdatePoolStats(t *testing.T) {
	UpdatePoolStats(5, 2, 3)
	assert.Equal(t, 5.0, testutil.ToFloat64(PoolConnections.WithLabelValues("open")))
	assert.Equal(t, 2.0, testutil.ToFloat64(PoolConnections.WithLabelValues("in_use")))
	assert.Equal(t, 3.0, testutil.ToFloat64(PoolConnections.WithLabelValues("idle")))
}

func TestHandler(t *testing.T) {
	RecordStatement("teacher", KindCount, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "registrar_statements_total")
}
