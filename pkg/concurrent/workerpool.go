// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

// Package concurrent provides bounded fan-out helpers for service methods
// that issue batches of independent storage or collaborator calls.
package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerPool bounds how many functions from a batch run at the same time.
type WorkerPool struct {
	workerCount int
}

// NewWorkerPool creates a pool that runs at most workerCount functions
// concurrently. Counts below one are clamped to one.
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{
		workerCount: workerCount,
	}
}

// Run executes the functions with bounded concurrency and stops at the first
// failure: the first non-nil error is returned and functions that have not
// started yet observe a cancelled context.
func (wp *WorkerPool) Run(ctx context.Context, functions ...func() error) error {
	if len(functions) == 0 {
		return nil
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(wp.workerCount)

	for _, fn := range functions {
		g.Go(func() error {
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			default:
			}

			return fn()
		})
	}

	return g.Wait()
}

// RunAll executes every function with bounded concurrency regardless of
// failures and returns whatever non-nil errors occurred. Callers that treat
// per-item failures as degradations rather than batch failures use this
// instead of Run.
func (wp *WorkerPool) RunAll(ctx context.Context, functions ...func() error) []error {
	if len(functions) == 0 {
		return nil
	}

	type indexedError struct {
		index int
		err   error
	}
	errorChan := make(chan indexedError, len(functions))

	// A plain errgroup here: the closures always return nil so one failure
	// never cancels the rest of the batch.
	g := new(errgroup.Group)
	g.SetLimit(wp.workerCount)

	for i, fn := range functions {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				errorChan <- indexedError{index: i, err: ctx.Err()}
				return nil
			default:
			}

			if err := fn(); err != nil {
				errorChan <- indexedError{index: i, err: err}
			}
			return nil
		})
	}

	_ = g.Wait()
	close(errorChan)

	var errors []error
	for ie := range errorChan {
		errors = append(errors, ie.err)
	}

	return errors
}
