package redis

import (
	"sync"

	"go.uber.org/zap"
)

// taskPool 缓存更新 Worker Pool（纯闭包模式）
type taskPool struct {
	tasks     chan func()
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newTaskPool(workerNum, bufferSize int) *taskPool {
	if workerNum <= 0 {
		workerNum = 1
	}
	p := &taskPool{tasks: make(chan func(), bufferSize)}
	for i := 0; i < workerNum; i++ {
		p.wg.Add(1)
		go p.startWorker()
	}
	zap.L().Info("cache workers started", zap.Int("workers", workerNum), zap.Int("buffer", bufferSize))
	return p
}

// startWorker 启动单个 Worker 消费循环
func (p *taskPool) startWorker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *taskPool) run(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("cache worker panic", zap.Any("recover", rec))
		}
	}()
	if task != nil {
		task()
	}
}

// submit 通道满时降级为同步执行
func (p *taskPool) submit(action func()) {
	select {
	case p.tasks <- action:
	default:
		zap.L().Warn("cache task channel full, executing synchronously")
		p.run(action)
	}
}

// close 等待已提交的任务执行完毕
func (p *taskPool) close() {
	p.closeOnce.Do(func() {
		close(p.tasks)
		p.wg.Wait()
	})
}
