package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"system-mirror/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Collect builds the document exported for cycle.
type Collect func(cycle uint64) any

// Exporter writes periodic JSON snapshots to object storage and prunes old
// ones.
type Exporter struct {
	client  storage.Client
	bucket  string
	prefix  string
	every   uint64
	retain  int
	collect Collect
	logger  *zap.Logger
	now     func() time.Time

	trigger chan uint64
}

// New creates an exporter writing under cfg.Prefix + name + "/".
func New(client storage.Client, cfg storage.Config, name string, collect Collect, logger *zap.Logger) *Exporter {
	every := cfg.EveryCycles
	if every <= 0 {
		every = 1
	}
	return &Exporter{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix + name + "/",
		every:   uint64(every),
		retain:  cfg.Retain,
		collect: collect,
		logger:  logger.Named("export").With(zap.String("bucket", cfg.Bucket)),
		now:     time.Now,
		trigger: make(chan uint64, 1),
	}
}

// Notify schedules an export when cycle is due. It never blocks; a due cycle
// arriving while an export is pending is skipped.
func (e *Exporter) Notify(cycle uint64) {
	if cycle%e.every != 0 {
		return
	}
	select {
	case e.trigger <- cycle:
	default:
		e.logger.Debug("Export still pending, skipping cycle", zap.Uint64("cycle", cycle))
	}
}

// Run performs scheduled exports until ctx is done.
func (e *Exporter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cycle := <-e.trigger:
			if _, err := e.Export(ctx, cycle); err != nil {
				e.logger.Warn("Snapshot export failed", zap.Uint64("cycle", cycle), zap.Error(err))
			}
		}
	}
}

// Export writes the snapshot of cycle and prunes old snapshots. It returns
// the object name.
func (e *Exporter) Export(ctx context.Context, cycle uint64) (string, error) {
	data, err := json.Marshal(e.collect(cycle))
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	name := fmt.Sprintf("%s%s-%08d.json", e.prefix, e.now().UTC().Format("20060102T150405Z"), cycle)
	_, err = e.client.PutObject(ctx, e.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot %s: %w", name, err)
	}
	e.logger.Info("Snapshot exported", zap.String("object", name), zap.Int("bytes", len(data)))

	if err := e.prune(ctx); err != nil {
		return name, err
	}
	return name, nil
}

// prune removes the oldest snapshots beyond the retention count. Names sort
// chronologically.
func (e *Exporter) prune(ctx context.Context) error {
	if e.retain <= 0 {
		return nil
	}

	var names []string
	for obj := range e.client.ListObjects(ctx, e.bucket, minio.ListObjectsOptions{Prefix: e.prefix, Recursive: true}) {
		if obj.Err != nil {
			return fmt.Errorf("failed to list snapshots: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, ".json") {
			names = append(names, obj.Key)
		}
	}
	if len(names) <= e.retain {
		return nil
	}

	sort.Strings(names)
	for _, name := range names[:len(names)-e.retain] {
		if err := e.client.RemoveObject(ctx, e.bucket, name, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove snapshot %s: %w", name, err)
		}
		e.logger.Debug("Snapshot pruned", zap.String("object", name))
	}
	return nil
}
