package resolver

import (
	"context"
	"sync"

	"github.com/biblioflow/biblioflow/internal/record"
)

// Result is the outcome of resolving one queued document. Exactly one of
// Record or Err is meaningful.
type Result struct {
	Path   string
	Record record.Record
	Err    error
}

// Queue resolves a batch of documents with bounded parallelism, delivering
// results on a channel so callers (a CLI loop, a watch daemon) never share
// mutable state with the workers.
type Queue struct {
	resolver *Resolver
	workers  int
}

// NewQueue creates a Queue over the resolver. workers below 1 is clamped
// to 1: one in-flight resolution per document, documents sequential.
func NewQueue(r *Resolver, workers int) *Queue {
	if workers < 1 {
		workers = 1
	}
	return &Queue{resolver: r, workers: workers}
}

// Run resolves every path and streams results in completion order. The
// returned channel closes when all work is done or the context is
// cancelled; cancelled documents simply produce no result.
func (q *Queue) Run(ctx context.Context, paths []string) <-chan Result {
	jobs := make(chan string)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				rec, err := q.resolver.ResolvePath(ctx, path)
				if ctx.Err() != nil {
					return
				}
				select {
				case results <- Result{Path: path, Record: rec, Err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range paths {
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
