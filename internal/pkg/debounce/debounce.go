package debounce

import (
	"sync"
	"time"
)

// Keyed 按 key 合并调用：窗口期内的多次 Push 只执行最后一次
type Keyed[K comparable, V any] struct {
	mu      sync.Mutex
	window  time.Duration
	fn      func(K, V)
	pending map[K]*entry[V]
	wg      sync.WaitGroup
	seq     uint64
	closed  bool
	// 串行执行 fn，保证同一 key 的写入按 Push 顺序落地
	runMu sync.Mutex
}

type entry[V any] struct {
	value V
	timer *time.Timer
	gen   uint64
}

func NewKeyed[K comparable, V any](window time.Duration, fn func(K, V)) *Keyed[K, V] {
	return &Keyed[K, V]{
		window:  window,
		fn:      fn,
		pending: make(map[K]*entry[V]),
	}
}

// Push 记录 key 的最新值并重置计时器，关闭后返回 false
func (d *Keyed[K, V]) Push(key K, value V) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	e, ok := d.pending[key]
	if !ok {
		e = &entry[V]{}
		d.pending[key] = e
		d.wg.Add(1)
	} else {
		e.timer.Stop()
	}
	e.value = value
	d.seq++
	e.gen = d.seq
	gen := e.gen
	e.timer = time.AfterFunc(d.window, func() { d.fire(key, gen) })
	return true
}

func (d *Keyed[K, V]) fire(key K, gen uint64) {
	d.mu.Lock()
	e, ok := d.pending[key]
	if !ok || e.gen != gen {
		// 已被 Flush 或被新的 Push 取代
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	defer d.wg.Done()
	d.run(key, e.value)
}

// Flush 立即执行 key 的待处理值，没有待处理值时返回 false
func (d *Keyed[K, V]) Flush(key K) bool {
	d.mu.Lock()
	e, ok := d.pending[key]
	if !ok {
		d.mu.Unlock()
		return false
	}
	e.timer.Stop()
	delete(d.pending, key)
	d.mu.Unlock()

	defer d.wg.Done()
	d.run(key, e.value)
	return true
}

func (d *Keyed[K, V]) run(key K, value V) {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	d.fn(key, value)
}

// Pending 是否有待处理值
func (d *Keyed[K, V]) Pending(key K) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Close 拒绝新的 Push，立即执行所有待处理值并等待执行结束
func (d *Keyed[K, V]) Close() {
	d.mu.Lock()
	d.closed = true
	keys := make([]K, 0, len(d.pending))
	for k := range d.pending {
		keys = append(keys, k)
	}
	d.mu.Unlock()

	for _, k := range keys {
		d.Flush(k)
	}
	d.wg.Wait()
}
