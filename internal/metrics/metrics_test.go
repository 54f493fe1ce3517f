package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/posts", "200"))
	RecordAPIRequest("GET", "/api/v1/posts", 200, 10*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/posts", "200"))

	assert.Equal(t, before+1, after)
}

func TestRecordAuth(t *testing.T) {
	ok := testutil.ToFloat64(AuthAttempts.WithLabelValues("basic", "success"))
	bad := testutil.ToFloat64(AuthAttempts.WithLabelValues("basic", "failure"))

	RecordAuth("basic", nil)
	RecordAuth("basic", errors.New("nope"))

	assert.Equal(t, ok+1, testutil.ToFloat64(AuthAttempts.WithLabelValues("basic", "success")))
	assert.Equal(t, bad+1, testutil.ToFloat64(AuthAttempts.WithLabelValues("basic", "failure")))
}
