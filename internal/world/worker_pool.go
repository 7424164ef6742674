package world

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/annel0/voxel-engine/internal/logging"
)

// Job представляет задачу для пула воркеров.
// Abandon вызывается вместо Run, если пул остановлен до начала выполнения.
type Job interface {
	Run()
	Abandon()
}

// WorkerPoolStats содержит статистику пула
type WorkerPoolStats struct {
	completed atomic.Int64
	abandoned atomic.Int64
}

// WorkerPool представляет пул воркеров с неограниченной очередью.
// Submit никогда не блокирует, поэтому поток тика не ждёт воркеров.
type WorkerPool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []Job
	closed  bool
	workers int
	wg      sync.WaitGroup
	stats   WorkerPoolStats
	logger  *logging.Logger
}

// NewWorkerPool создаёт пул и запускает воркеров
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	p := &WorkerPool{
		workers: workerCount,
		logger:  logging.GetWorkerLogger(),
	}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.logger.Debug("Запущено %d воркеров", workerCount)
	return p
}

// Submit ставит задачу в очередь. Возвращает false, если пул уже остановлен.
func (p *WorkerPool) Submit(job Job) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.queue = append(p.queue, job)
	p.mu.Unlock()
	p.cond.Signal()
	return true
}

// Shutdown останавливает пул: ждёт выполняющиеся задачи,
// а для не начатых вызывает Abandon. Возвращает количество брошенных задач.
func (p *WorkerPool) Shutdown() int {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0
	}
	p.closed = true
	pending := p.queue
	p.queue = nil
	p.mu.Unlock()
	p.cond.Broadcast()

	p.wg.Wait()

	for _, job := range pending {
		job.Abandon()
	}
	p.stats.abandoned.Add(int64(len(pending)))

	if len(pending) > 0 {
		p.logger.Info("Пул остановлен, брошено задач: %d", len(pending))
	}
	return len(pending)
}

// QueueLen возвращает количество задач в очереди
func (p *WorkerPool) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Workers возвращает количество воркеров
func (p *WorkerPool) Workers() int {
	return p.workers
}

// Completed возвращает количество выполненных задач
func (p *WorkerPool) Completed() int64 {
	return p.stats.completed.Load()
}

// Abandoned возвращает количество брошенных задач
func (p *WorkerPool) Abandoned() int64 {
	return p.stats.abandoned.Load()
}

// worker выполняет задачи из очереди до остановки пула
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.closed {
			p.mu.Unlock()
			p.logger.Trace("Воркер %d остановлен", id)
			return
		}
		job := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()

		job.Run()
		p.stats.completed.Add(1)
	}
}
