package pruning

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// minConcurrentPrune is the mandatory floor on the concurrency budget
// (spec 4.6 step 4): the executor reuses one semaphore for both segment-
// and block-level permits, so a budget at or below 1 would deadlock a
// segment task that holds a permit while waiting on its own children.
const minConcurrentPrune = 10

// Executor is the two-level pruning executor (spec 4.6): it fans out
// pruning over segments, then blocks within kept segments, under a single
// bounded concurrency budget, honoring early termination as the row-limit
// gate is exhausted.
type Executor struct {
	log      *zap.Logger
	metadata MetadataReader
	snapshot Snapshot
	table    TableContext
	indexed  map[ColumnID]bool
}

// NewExecutor builds an Executor bound to one immutable snapshot.
// indexedColumns names the columns that carry a bloom index at write
// time, used to decide which equality predicates the bloom pruner may
// consume.
func NewExecutor(log *zap.Logger, metadata MetadataReader, snapshot Snapshot, tableCtx TableContext, indexedColumns map[ColumnID]bool) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{log: log, metadata: metadata, snapshot: snapshot, table: tableCtx, indexed: indexedColumns}
}

// Prune is the async entry point (spec 6):
// prune(ctx, schema, push_down) -> Result<Vec<(segment_idx, block_meta)>>.
//
// Prune takes no schema argument: the predicate compiler in this
// implementation only needs the PushDown's filter expression, since
// ColumnStats are already self-describing.
func (e *Executor) Prune(ctx context.Context, pushDown PushDown) ([]PrunedBlock, error) {
	if len(e.snapshot.Segments) == 0 {
		return nil, nil
	}
	return e.prune(ctx, pushDown)
}

// SyncPrune is the blocking variant with identical semantics (spec 4.6):
// a convenience wrapper, since Go's goroutines need no separate blocking
// adapter runtime the way the original's `futures::executor::block_on`
// does.
func (e *Executor) SyncPrune(ctx context.Context, pushDown PushDown) ([]PrunedBlock, error) {
	return e.Prune(ctx, pushDown)
}

func (e *Executor) prune(ctx context.Context, pushDown PushDown) ([]PrunedBlock, error) {
	segments := e.snapshot.Segments
	if len(segments) == 0 {
		return nil, nil
	}

	var effectiveLimit *uint64
	if len(pushDown.OrderBy) == 0 {
		effectiveLimit = pushDown.Limit
	}

	limiter := NewLimiter(effectiveLimit)
	rangePruner := NewRangeFilterPruner(pushDown.Filter)
	bloomPruner := NewBloomPruner(e.table.Storage, pushDown.Filter, e.indexed)

	budget := e.table.Settings.MaxConcurrentPrune
	if budget < minConcurrentPrune {
		e.log.Warn("max_concurrent_prune is too low, raising to the mandatory floor",
			zap.Int("configured", budget),
			zap.Int("floor", minConcurrentPrune),
			zap.String("correlation_id", e.table.CorrelationID),
		)
		budget = minConcurrentPrune
	}
	sem := semaphore.NewWeighted(int64(budget))

	segResults := make([][]PrunedBlock, len(segments))

	group, groupCtx := errgroup.WithContext(ctx)
	for segIdx, segLoc := range segments {
		segIdx, segLoc := segIdx, segLoc

		if err := sem.Acquire(groupCtx, 1); err != nil {
			return nil, ErrUnexpected.Wrap(err)
		}

		group.Go(func() error {
			result, err := e.pruneSegment(groupCtx, segIdx, segLoc, limiter, rangePruner, bloomPruner, sem)
			if err != nil {
				return err
			}
			segResults[segIdx] = result
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, ErrStorageOther.Wrap(err)
	}

	var flat []PrunedBlock
	for _, result := range segResults {
		flat = append(flat, result...)
	}

	if len(pushDown.OrderBy) > 0 && pushDown.Limit != nil {
		flat = NewTopNPruner(pushDown.OrderBy, *pushDown.Limit).Prune(flat)
	}

	return flat, nil
}

// pruneSegment is the per-segment task (spec 4.6, "prune_segment"). It
// holds the permit acquired by its caller until it returns.
func (e *Executor) pruneSegment(
	ctx context.Context,
	segIdx SegmentIndex,
	segLoc SegmentLocation,
	limiter *Limiter,
	rangePruner RangeFilterPruner,
	bloomPruner BloomPruner,
	sem *semaphore.Weighted,
) ([]PrunedBlock, error) {
	defer sem.Release(1)

	if limiter.Exceeded() {
		return nil, nil
	}

	info, err := e.metadata.Read(ctx, segLoc.Path, nil, segLoc.Version)
	if err != nil {
		return nil, ErrStorageOther.Wrap(err)
	}

	if !rangePruner.ShouldKeep(info.Summary.ColStats, info.Summary.RowCount) {
		return nil, nil
	}

	result := make([]PrunedBlock, 0, len(info.Blocks))

	blockGroup, blockCtx := errgroup.WithContext(ctx)
	type blockOutcome struct {
		blockIdx BlockIndex
		keep     bool
	}
	outcomes := make([]blockOutcome, 0, len(info.Blocks))

	for blockIdx, block := range info.Blocks {
		if limiter.Exceeded() {
			break
		}
		if !rangePruner.ShouldKeep(block.ColStats, block.RowCount) {
			continue
		}

		blockIdx, block := blockIdx, block
		if err := sem.Acquire(blockCtx, 1); err != nil {
			return nil, ErrUnexpected.Wrap(err)
		}

		slot := len(outcomes)
		outcomes = append(outcomes, blockOutcome{})

		blockGroup.Go(func() error {
			keep, err := e.pruneBlock(blockCtx, limiter, bloomPruner, block.RowCount, block.BloomIdx, sem)
			if err != nil {
				return err
			}
			outcomes[slot] = blockOutcome{blockIdx: blockIdx, keep: keep}
			return nil
		})
	}

	if err := blockGroup.Wait(); err != nil {
		return nil, err
	}

	for _, o := range outcomes {
		if o.keep {
			result = append(result, PrunedBlock{
				SegmentIdx: segIdx,
				BlockIdx:   o.blockIdx,
				Block:      info.Blocks[o.blockIdx],
			})
		}
	}

	return result, nil
}

// pruneBlock is the per-block task (spec 4.6, "prune_blocks"). It holds
// the permit acquired by its caller until it returns. Evaluation is
// short-circuit: the limiter is tested first, so no bloom fetch is issued
// once the limit is exhausted.
func (e *Executor) pruneBlock(
	ctx context.Context,
	limiter *Limiter,
	bloomPruner BloomPruner,
	rowCount uint64,
	bloomIdx *BloomIndexDescriptor,
	sem *semaphore.Weighted,
) (bool, error) {
	defer sem.Release(1)

	if !limiter.WithinLimit(rowCount) {
		return false, nil
	}

	var location *string
	var size uint64
	if bloomIdx != nil {
		location = &bloomIdx.Location
		size = bloomIdx.SizeBytes
	}

	keep, err := bloomPruner.ShouldKeep(ctx, location, size)
	if err != nil {
		return false, err
	}
	return keep, nil
}
