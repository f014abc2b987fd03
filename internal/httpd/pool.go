package httpd

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
)

// PoolStats はワーカープールの統計情報
type PoolStats struct {
	Workers   int    `json:"workers"`   // ワーカー数
	Queued    int64  `json:"queued"`    // 待機中のタスク数
	Active    int64  `json:"active"`    // 実行中のタスク数
	Completed uint64 `json:"completed"` // 完了したタスク数
	Panics    uint64 `json:"panics"`    // パニックで終了したタスク数
}

// Pool は固定数のワーカーでタスクを実行する。
// 投入はブロックせず、ワーカーが埋まっている間は待ち行列（上限なし）に積む
type Pool struct {
	size   int
	logger *slog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool

	wg sync.WaitGroup

	queued    atomic.Int64
	active    atomic.Int64
	completed atomic.Uint64
	panics    atomic.Uint64
}

// NewPool は size 個のワーカーを起動したPoolを返す。size が0以下ならCPU数
func NewPool(size int, logger *slog.Logger) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{
		size:   size,
		logger: logger,
	}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker(i)
	}
	return p
}

// Size はワーカー数を返す
func (p *Pool) Size() int {
	return p.size
}

// Submit はタスクを待ち行列に追加する。停止後は ErrPoolClosed
func (p *Pool) Submit(task func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}
	p.queue = append(p.queue, task)
	p.queued.Add(1)
	p.cond.Signal()
	return nil
}

// Stop は新規投入を止め、待ち行列が空になりワーカーが終了するまで待つ
func (p *Pool) Stop() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
}

// Stats は現在の統計情報を返す
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Workers:   p.size,
		Queued:    p.queued.Load(),
		Active:    p.active.Load(),
		Completed: p.completed.Load(),
		Panics:    p.panics.Load(),
	}
}

// next は次のタスクを取り出す。停止済みかつ空なら false
func (p *Pool) next() (func(), bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.queue) == 0 {
		if p.closed {
			return nil, false
		}
		p.cond.Wait()
	}
	task := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	p.queued.Add(-1)
	return task, true
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		task, ok := p.next()
		if !ok {
			return
		}
		p.run(id, task)
	}
}

// run はタスクを1つ実行する。パニックしてもワーカーは継続する
func (p *Pool) run(id int, task func()) {
	p.active.Add(1)
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			p.logger.Error("タスクがパニックしました", "worker", id, "panic", r)
		}
		p.active.Add(-1)
		p.completed.Add(1)
	}()

	task()
}
