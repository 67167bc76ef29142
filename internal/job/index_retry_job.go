package job

import (
	"context"

	"github.com/schemapilot/schemapilot/internal/service"
)

const retryBatchSize = 20

// IndexRetryJob re-runs the indexing pipeline for files that never made it
// to the indexed state, typically after an embedding or vector store outage.
type IndexRetryJob struct {
	indexing *service.IndexingService
}

func NewIndexRetryJob(indexing *service.IndexingService) *IndexRetryJob {
	return &IndexRetryJob{indexing: indexing}
}

func (j *IndexRetryJob) Name() string {
	return "index_retry"
}

func (j *IndexRetryJob) Run(ctx context.Context) error {
	if j.indexing == nil {
		return nil
	}
	return j.indexing.RetryUnindexed(ctx, retryBatchSize)
}
