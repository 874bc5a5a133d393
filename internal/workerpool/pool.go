// Package workerpool fans out event-sink dispatch across a fixed number
// of shards so that per-symbol event order is preserved without serializing
// every symbol behind one channel.
package workerpool

import (
	"hash/fnv"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const shardQueueSize = 256

// Pool runs dispatched tasks on a fixed set of shard goroutines, one per
// shard, selected by hashing a key. Every task sharing a key runs on the
// same shard in enqueue order; different keys can run concurrently.
type Pool struct {
	t      tomb.Tomb
	shards []chan func()
}

// New starts a Pool with shardCount worker goroutines. shardCount is
// clamped to a minimum of 1: a zero-shard pool has nowhere to dispatch.
func New(shardCount int) *Pool {
	if shardCount < 1 {
		shardCount = 1
	}
	p := &Pool{shards: make([]chan func(), shardCount)}
	for i := range p.shards {
		ch := make(chan func(), shardQueueSize)
		p.shards[i] = ch
		p.t.Go(func() error { return p.runShard(ch) })
	}
	return p
}

func (p *Pool) runShard(tasks chan func()) error {
	for {
		select {
		case <-p.t.Dying():
			return nil
		case task := <-tasks:
			task()
		}
	}
}

// Dispatch enqueues task on the shard selected by key. If that shard's
// queue is full, task runs immediately on its own goroutine instead of
// blocking the caller — a slow subscriber must never stall the matching
// path, at the cost of losing ordering for that one task.
func (p *Pool) Dispatch(key string, task func()) {
	shard := p.shards[shardFor(key, len(p.shards))]
	select {
	case shard <- task:
	default:
		log.Warn().Str("key", key).Msg("event shard full, dispatching off-pool")
		go task()
	}
}

func shardFor(key string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}

// Stop signals every shard goroutine to exit and waits for them to finish.
func (p *Pool) Stop() error {
	p.t.Kill(nil)
	return p.t.Wait()
}
