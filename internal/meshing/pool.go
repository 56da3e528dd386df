package meshing

import (
	"context"
	"errors"
	"sync"

	"voxel-render/internal/world"
)

// ErrPoolClosed is returned when submitting to a pool after Shutdown.
var ErrPoolClosed = errors.New("mesh worker pool is shut down")

// MeshJob represents a meshing job request
type MeshJob struct {
	Reader BlockReader
	Chunk  *world.Chunk
	// Result channel - will be sent the result when done
	ResultChan chan<- MeshResult
}

// MeshResult contains the result of a meshing operation
type MeshResult struct {
	Coord world.ChunkCoord
	Mesh  *Mesh
}

// WorkerPool manages goroutines for mesh generation. Chunks handed to it
// must not be mutated until their result has been received.
type WorkerPool struct {
	jobQueue chan MeshJob
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewWorkerPool creates a new mesh worker pool
func NewWorkerPool(workers int, queueSize int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	workers = max(workers, 1)

	pool := &WorkerPool{
		jobQueue: make(chan MeshJob, max(queueSize, 0)),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}

	// Start worker goroutines
	for i := range workers {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	return pool
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// SubmitJob submits a mesh generation job to the pool
// Returns true if job was submitted successfully, false if queue is full
func (p *WorkerPool) SubmitJob(job MeshJob) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false // Queue is full
	}
}

// SubmitJobBlocking submits a job and blocks until it's queued, ctx is done
// or the pool shuts down.
func (p *WorkerPool) SubmitJobBlocking(ctx context.Context, job MeshJob) error {
	if p.ctx.Err() != nil {
		return ErrPoolClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.jobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolClosed
	}
}

// worker is the worker goroutine that processes mesh jobs
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			result := MeshResult{
				Coord: job.Chunk.Coord(),
				Mesh:  BuildChunkMesh(job.Reader, job.Chunk),
			}

			// Send result back
			select {
			case job.ResultChan <- result:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// BuildAll meshes every chunk on the pool and returns the meshes in the
// order of chunks. It returns once all results are in, so callers may
// mutate the chunks again afterwards.
func (p *WorkerPool) BuildAll(ctx context.Context, r BlockReader, chunks []*world.Chunk) ([]*Mesh, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	results := make(chan MeshResult, len(chunks))
	index := make(map[world.ChunkCoord]int, len(chunks))

	submitted := 0
	var submitErr error
	for i, c := range chunks {
		index[c.Coord()] = i
		if err := p.SubmitJobBlocking(ctx, MeshJob{Reader: r, Chunk: c, ResultChan: results}); err != nil {
			submitErr = err
			break
		}
		submitted++
	}

	// Drain what was queued even on error so no worker still reads a chunk
	// once we return.
	meshes := make([]*Mesh, len(chunks))
	for received := 0; received < submitted; received++ {
		select {
		case res := <-results:
			meshes[index[res.Coord]] = res.Mesh
		case <-p.ctx.Done():
			return nil, ErrPoolClosed
		}
	}
	if submitErr != nil {
		return nil, submitErr
	}
	return meshes, nil
}

// Shutdown gracefully shuts down the worker pool
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}
