// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hintwell/hintwell/services/solver/datatypes"
)

// Dispatcher tuning defaults.
const (
	// defaultShardsPerWorker controls shard granularity. More shards per
	// worker means finer cancellation latency at the price of merge
	// overhead; each shard should land in the tens of milliseconds.
	defaultShardsPerWorker = 4

	// maxWorkers caps the pool regardless of CPU count.
	maxWorkers = 8
)

var dispatchTracer = otel.Tracer("solver.engine.dispatch")

// shard is a contiguous half-open slice [start, end) of the candidate list.
type shard struct {
	start int
	end   int
}

// dispatch scores candidates against answers on a worker pool and returns
// the global top-k ranking.
//
// Candidates are split into contiguous shards (at most workers *
// shardsPerWorker of them, bounded by the candidate count). Workers pull shards from a channel
// and score each guess with the 243-bucket partitioner; the collector merges
// finished shards and, when emit is non-nil, publishes a re-ranked snapshot
// after every merge with depth = shards merged so far.
//
// Cancellation is cooperative. Workers observe ctx between guesses; the
// collector observes it between shard results and returns ctx.Err() without
// waiting for stragglers. The results channel is buffered to the shard
// count, so abandoned workers can always finish their send and exit.
func (e *Engine) dispatch(
	ctx context.Context,
	candidates []datatypes.Word,
	answers []datatypes.Word,
	topK int,
	emit func(ranked []ScoredGuess, depth int),
) ([]ScoredGuess, error) {
	ctx, span := dispatchTracer.Start(ctx, "engine.dispatch")
	defer span.End()

	numShards := e.workers * e.shardsPerWorker
	if numShards > len(candidates) {
		numShards = len(candidates)
	}
	shardSize := (len(candidates) + numShards - 1) / numShards
	// Rounding the shard size up can leave fewer shards than requested;
	// the collector must wait for exactly the shards that are enqueued.
	numShards = (len(candidates) + shardSize - 1) / shardSize

	span.SetAttributes(
		attribute.Int("candidate_count", len(candidates)),
		attribute.Int("answer_count", len(answers)),
		attribute.Int("workers", e.workers),
		attribute.Int("shards", numShards),
	)

	jobs := make(chan shard, numShards)
	for start := 0; start < len(candidates); start += shardSize {
		end := start + shardSize
		if end > len(candidates) {
			end = len(candidates)
		}
		jobs <- shard{start: start, end: end}
	}
	close(jobs)

	results := make(chan []ScoredGuess, numShards)
	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.scoreShards(ctx, jobs, candidates, answers, results)
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	all := make([]ScoredGuess, 0, len(candidates))
	merged := 0
	for merged < numShards {
		select {
		case <-ctx.Done():
			span.SetAttributes(attribute.Bool("cancelled", true))
			span.SetStatus(codes.Error, ctx.Err().Error())
			return nil, ctx.Err()
		case part, ok := <-results:
			if !ok {
				// Workers bailed out on cancellation before
				// producing every shard.
				span.SetAttributes(attribute.Bool("cancelled", true))
				return nil, ctx.Err()
			}
			all = append(all, part...)
			merged++
			if merged == 1 {
				span.AddEvent("first ranking available",
					trace.WithAttributes(attribute.Int("scored", len(all))))
			}
			if emit != nil && merged < numShards {
				snapshot := make([]ScoredGuess, len(all))
				copy(snapshot, all)
				emit(rankTop(snapshot, topK), merged)
			}
		}
	}

	ranked := rankTop(all, topK)
	if emit != nil {
		emit(ranked, merged)
	}
	return ranked, nil
}

// scoreShards drains the job channel, scoring one shard at a time. The
// context is checked between guesses, which bounds cancellation latency to
// a single bucketization pass.
func (e *Engine) scoreShards(
	ctx context.Context,
	jobs <-chan shard,
	candidates []datatypes.Word,
	answers []datatypes.Word,
	results chan<- []ScoredGuess,
) {
	for s := range jobs {
		part := make([]ScoredGuess, 0, s.end-s.start)
		for i := s.start; i < s.end; i++ {
			if ctx.Err() != nil {
				return
			}
			part = append(part, ScoredGuess{
				Word:  candidates[i],
				Score: informationGain(candidates[i], answers),
			})
		}
		results <- part
	}
}
