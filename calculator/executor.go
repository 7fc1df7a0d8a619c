package calculator

import (
	"sync"
	"time"

	"grainsim/model"
)

// 批量计算：固定数量的 worker 从 dispatchChan 领取任务
// 每个任务拥有独立的场数组，worker 之间不共享可变状态
type executor struct {
	workers      int
	dispatchChan chan task
	finish       chan outcome
}

type task struct {
	index int
	input model.SimulationInput
}

type outcome struct {
	index  int
	result *model.SimulationResult
	err    error
}

func newExecutor(workers, tasks int) *executor {
	if workers < 1 {
		workers = 1
	}
	if workers > tasks && tasks > 0 {
		workers = tasks
	}
	return &executor{
		workers:      workers,
		dispatchChan: make(chan task, tasks),
		finish:       make(chan outcome, tasks),
	}
}

func (e *executor) run(f func(t task) outcome) {
	var wg sync.WaitGroup
	wg.Add(e.workers)
	for i := 0; i < e.workers; i++ {
		go func() {
			defer wg.Done()
			for t := range e.dispatchChan {
				e.finish <- f(t)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(e.finish)
	}()
}

func (e *executor) dispatchTask(inputs []model.SimulationInput) time.Duration {
	start := time.Now()
	for i, in := range inputs {
		e.dispatchChan <- task{index: i, input: in}
	}
	close(e.dispatchChan)
	return time.Since(start)
}

// 批量结果，与输入一一对应
type BatchResult struct {
	Result *model.SimulationResult
	Err    error
}

// RunBatch 并发计算多组互不相关的输入，结果按输入顺序返回。
// OnStep 回调不在批量计算中调用。
func (c *Calculator) RunBatch(inputs []model.SimulationInput) []BatchResult {
	results := make([]BatchResult, len(inputs))
	if len(inputs) == 0 {
		return results
	}

	start := time.Now()
	worker := *c
	worker.OnStep = nil

	e := newExecutor(c.cfg.Workers, len(inputs))
	e.run(func(t task) outcome {
		res, err := worker.Run(t.input)
		return outcome{index: t.index, result: res, err: err}
	})
	e.dispatchTask(inputs)

	for o := range e.finish {
		results[o.index] = BatchResult{Result: o.result, Err: o.err}
	}
	c.Log.WithField("tasks", len(inputs)).WithField("cost", time.Since(start)).Info("批量计算完成")
	return results
}
