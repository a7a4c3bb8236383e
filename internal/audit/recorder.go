// internal/audit/recorder.go

// Package audit appends committed transitions to an Elasticsearch
// index. The trail is write-only from the engine's point of view:
// indexing failures are logged and dropped, never retried against the
// workflow.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"admission-engine/internal/common/logger"
	"admission-engine/internal/models"
)

// Indexer is the slice of the Elasticsearch client the recorder needs.
type Indexer interface {
	Index(ctx context.Context, index, id string, body io.Reader) error
}

type Recorder struct {
	es     Indexer
	index  string
	logger logger.Logger
}

func NewRecorder(es Indexer, index string, log logger.Logger) *Recorder {
	return &Recorder{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "audit-recorder"}),
	}
}

// Record indexes one transition record, best effort.
func (r *Recorder) Record(ctx context.Context, record models.TransitionRecord) {
	body, err := json.Marshal(record)
	if err != nil {
		r.logger.Error("marshal transition record", map[string]interface{}{
			"applicationId": record.ApplicationID,
			"error":         err.Error(),
		})
		return
	}

	if err := r.es.Index(ctx, r.index, record.ID, bytes.NewReader(body)); err != nil {
		r.logger.Error("index transition record", map[string]interface{}{
			"applicationId": record.ApplicationID,
			"from":          record.From,
			"to":            record.To,
			"error":         err.Error(),
		})
		return
	}

	r.logger.Debug("transition recorded", map[string]interface{}{
		"applicationId": record.ApplicationID,
		"from":          record.From,
		"to":            record.To,
	})
}

// NopRecorder logs transitions without persisting them. Used when the
// audit sink is disabled in configuration.
type NopRecorder struct {
	logger logger.Logger
}

func NewNopRecorder(log logger.Logger) *NopRecorder {
	return &NopRecorder{logger: log}
}

func (r *NopRecorder) Record(_ context.Context, record models.TransitionRecord) {
	r.logger.Info("transition", map[string]interface{}{
		"applicationId": record.ApplicationID,
		"from":          record.From,
		"to":            record.To,
		"reason":        record.Reason,
	})
}
