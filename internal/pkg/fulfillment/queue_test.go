package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AutoVinReports/VinFox/internal/pkg/env"
	"github.com/AutoVinReports/VinFox/internal/pkg/report"
)

const queueTestRedisDB = 14

// newTestRedis returns a client against an isolated test DB, skipping the
// test when no redis is reachable.
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := fmt.Sprintf("%s:%s",
		env.GetEnv("CACHE_HOST", "127.0.0.1"),
		env.GetEnv("CACHE_PORT", "6379"),
	)
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   queueTestRedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}

	require.NoError(t, client.FlushDB(context.Background()).Err())
	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})
	return client
}

func reportPayload() ReportJobPayload {
	return ReportJobPayload{
		PurchaseID: 1,
		VIN:        "1HGCM82633A004352",
		Email:      "buyer@example.com",
		Vehicle:    "2003 Honda Accord",
	}
}

func TestQueueEnqueueAndDequeue(t *testing.T) {
	client := newTestRedis(t)
	queue := NewQueue(client, &Fulfiller{}, 1)

	job, err := queue.EnqueueReportJob(reportPayload())
	require.NoError(t, err)

	ctx := context.Background()
	size, err := queue.GetQueueSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	dequeued, err := queue.dequeueJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.ID, dequeued.ID)

	processing, err := queue.GetProcessingSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), processing)
}

func TestQueueFailedJobRetryScheduleIsDurable(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	repo := newFakePurchaseRepo(pendingPurchase())
	provider := &fakeArtifactProvider{err: errors.New("provider down")}
	fulfiller := &Fulfiller{Provider: provider, Mailer: &fakeMailer{}, Purchases: repo}
	queue := NewQueue(client, fulfiller, 1)

	_, err := queue.EnqueueReportJob(reportPayload())
	require.NoError(t, err)

	job, err := queue.dequeueJob(ctx)
	require.NoError(t, err)
	queue.processJob(ctx, job)

	// The retry is a sorted-set entry keyed by ready time, not a process
	// timer: a restart between failure and retry loses nothing.
	score, err := client.ZScore(ctx, JobRetryKey, job.ID).Result()
	require.NoError(t, err, "failed job must be on the retry schedule")
	assert.Greater(t, score, float64(time.Now().Unix()))

	pending, err := queue.GetQueueSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending, "retry must not be runnable before its delay")
}

func TestQueuePromoteDueRetries(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()
	queue := NewQueue(client, &Fulfiller{}, 1)

	job, err := queue.EnqueueReportJob(reportPayload())
	require.NoError(t, err)
	_, err = queue.dequeueJob(ctx)
	require.NoError(t, err)
	queue.removeFromProcessing(ctx, job.ID)

	// Schedule one due retry and one future retry, as a fresh process
	// would find them after a restart.
	require.NoError(t, client.ZAdd(ctx, JobRetryKey, redis.Z{
		Score:  float64(time.Now().Add(-time.Minute).Unix()),
		Member: job.ID,
	}).Err())
	require.NoError(t, client.ZAdd(ctx, JobRetryKey, redis.Z{
		Score:  float64(time.Now().Add(time.Hour).Unix()),
		Member: "job-future",
	}).Err())

	queue.promoteDueRetries(ctx)

	pending, err := client.LRange(ctx, JobQueueKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{job.ID}, pending)

	_, err = client.ZScore(ctx, JobRetryKey, job.ID).Result()
	assert.ErrorIs(t, err, redis.Nil, "promoted retry must leave the schedule")
	_, err = client.ZScore(ctx, JobRetryKey, "job-future").Result()
	assert.NoError(t, err, "future retry must stay scheduled")

	// Promoting again is a no-op.
	queue.promoteDueRetries(ctx)
	pending, err = client.LRange(ctx, JobQueueKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

var _ report.ArtifactProvider = (*fakeArtifactProvider)(nil)
