package core

import "sync"

// workerPool bounds the number of plugin calls in flight. Submission
// blocks while the pool is full, so the controller never has more than
// size calls outstanding.
type workerPool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

func newWorkerPool(size int) *workerPool {
	if size <= 0 {
		size = DefaultMaxWorkers
	}
	return &workerPool{sem: make(chan struct{}, size)}
}

// submit runs task on a pool goroutine once a slot is free
func (p *workerPool) submit(task func()) {
	p.wg.Add(1)
	p.sem <- struct{}{}

	go func() {
		defer func() {
			<-p.sem
			p.wg.Done()
		}()
		task()
	}()
}

// wait blocks until every submitted task has finished
func (p *workerPool) wait() {
	p.wg.Wait()
}
