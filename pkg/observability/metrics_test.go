package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_RecordDBOperation(t *testing.T) {
	c := NewCollector("test")

	c.RecordDBOperation("club", "CreateClub", time.Now(), nil)
	c.RecordDBOperation("club", "CreateClub", time.Now(), errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.DBOperations.WithLabelValues("club", "CreateClub", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DBOperations.WithLabelValues("club", "CreateClub", "error")))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordDBOperation("club", "GetClubByID", time.Now(), nil)
		c.RecordAuthorization("MANAGE_PLATFORM", false)
		c.RecordCache(true)
		c.RecordEvent("club.created", nil)
	})
}

func TestCollector_RecordAuthorization(t *testing.T) {
	c := NewCollector("test")
	c.RecordAuthorization("MANAGE_ALL_CLUBS", true)
	c.RecordCache(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.AuthzDecisions.WithLabelValues("MANAGE_ALL_CLUBS", "grant")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CacheMisses))
}
