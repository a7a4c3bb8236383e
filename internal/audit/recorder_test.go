// internal/audit/recorder_test.go
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"admission-engine/internal/common/logger"
	"admission-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndexer struct {
	index string
	id    string
	body  []byte
	err   error
	calls int
}

func (f *fakeIndexer) Index(_ context.Context, index, id string, body io.Reader) error {
	f.calls++
	f.index = index
	f.id = id
	f.body, _ = io.ReadAll(body)
	return f.err
}

func testRecord() models.TransitionRecord {
	return models.TransitionRecord{
		ID:            "rec-001",
		ApplicationID: "app-001",
		From:          models.StatusPending,
		To:            models.StatusUnderReview,
		Reason:        "critical documents present",
		Timestamp:     time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC),
	}
}

func TestRecorder_IndexesTransition(t *testing.T) {
	indexer := &fakeIndexer{}
	r := NewRecorder(indexer, "admission-transitions", logger.NewTestLogger(t))

	r.Record(context.Background(), testRecord())

	assert.Equal(t, "admission-transitions", indexer.index)
	assert.Equal(t, "rec-001", indexer.id)

	var indexed models.TransitionRecord
	require.NoError(t, json.Unmarshal(indexer.body, &indexed))
	assert.Equal(t, models.StatusPending, indexed.From)
	assert.Equal(t, models.StatusUnderReview, indexed.To)
	assert.Equal(t, "critical documents present", indexed.Reason)
}

func TestRecorder_IndexFailureIsSwallowed(t *testing.T) {
	indexer := &fakeIndexer{err: fmt.Errorf("cluster unavailable")}
	r := NewRecorder(indexer, "admission-transitions", logger.NewTestLogger(t))

	// Must not panic or propagate; audit is best effort.
	r.Record(context.Background(), testRecord())
	assert.Equal(t, 1, indexer.calls)
}

func TestNopRecorder_OnlyLogs(t *testing.T) {
	r := NewNopRecorder(logger.NewTestLogger(t))
	r.Record(context.Background(), testRecord())
}
