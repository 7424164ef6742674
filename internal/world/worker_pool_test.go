package world

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type funcJob struct {
	run       func()
	abandoned *atomic.Int32
}

func (j funcJob) Run() {
	if j.run != nil {
		j.run()
	}
}

func (j funcJob) Abandon() {
	j.abandoned.Add(1)
}

func TestWorkerPool_RunsJobs(t *testing.T) {
	p := NewWorkerPool(4)
	defer p.Shutdown()

	var ran atomic.Int32
	var abandoned atomic.Int32
	for i := 0; i < 100; i++ {
		assert.True(t, p.Submit(funcJob{run: func() { ran.Add(1) }, abandoned: &abandoned}))
	}

	assert.Eventually(t, func() bool { return ran.Load() == 100 }, 2*time.Second, 5*time.Millisecond,
		"все задачи должны выполниться")
	assert.Equal(t, 4, p.Workers())
	assert.Eventually(t, func() bool { return p.Completed() == 100 }, time.Second, 5*time.Millisecond)
}

func TestWorkerPool_ShutdownAbandonsQueued(t *testing.T) {
	p := NewWorkerPool(1)

	var abandoned atomic.Int32
	var ran atomic.Int32
	started := make(chan struct{})
	gate := make(chan struct{})

	p.Submit(funcJob{run: func() {
		close(started)
		<-gate
		ran.Add(1)
	}, abandoned: &abandoned})
	<-started

	for i := 0; i < 3; i++ {
		p.Submit(funcJob{run: func() { ran.Add(1) }, abandoned: &abandoned})
	}
	assert.Equal(t, 3, p.QueueLen())

	result := make(chan int, 1)
	go func() { result <- p.Shutdown() }()

	// Освобождаем выполняющуюся задачу только после того, как пул закрыт
	assert.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.closed
	}, time.Second, time.Millisecond)
	close(gate)

	select {
	case n := <-result:
		assert.Equal(t, 3, n, "незапущенные задачи должны быть брошены")
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown не завершился")
	}

	assert.Equal(t, int32(1), ran.Load(), "выполнена только уже запущенная задача")
	assert.Equal(t, int32(3), abandoned.Load())
	assert.Equal(t, int64(3), p.Abandoned())
	assert.False(t, p.Submit(funcJob{abandoned: &abandoned}), "после остановки задачи не принимаются")
	assert.Equal(t, 0, p.Shutdown(), "повторная остановка ничего не делает")
}
