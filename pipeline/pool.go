/*
Copyright 2011-2026 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pipeline

import "sync"

// blockQueue is the Reader's free-pool/busy-queue pair. The Reader
// draws buffers from the free pool, fills them, and dispatches them to
// the busy queue; Workers drain the busy queue and return buffers to
// the free pool once they've copied out what they need. One mutex
// guards both slices; two condition variables (rather than one) let a
// Worker block on "busy queue has something" independently of the
// Reader blocking on "free pool has something", avoiding a wakeup that
// has to check the wrong predicate.
type blockQueue struct {
	mu       sync.Mutex
	freeCond *sync.Cond
	busyCond *sync.Cond
	free     []*InputBlock
	busy     []*InputBlock
	done     bool
}

func newBlockQueue(poolSize, blockCapacity int) *blockQueue {
	q := &blockQueue{free: make([]*InputBlock, 0, poolSize)}
	q.freeCond = sync.NewCond(&q.mu)
	q.busyCond = sync.NewCond(&q.mu)

	for i := 0; i < poolSize; i++ {
		q.free = append(q.free, &InputBlock{Data: make([]byte, blockCapacity)})
	}

	return q
}

// acquire blocks until a free buffer is available and returns it.
// Reader-side only.
func (q *blockQueue) acquire() *InputBlock {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.free) == 0 {
		q.freeCond.Wait()
	}

	n := len(q.free)
	blk := q.free[n-1]
	q.free = q.free[:n-1]
	return blk
}

// dispatch hands a filled block to the busy queue. Reader-side only.
func (q *blockQueue) dispatch(blk *InputBlock) {
	q.mu.Lock()
	q.busy = append(q.busy, blk)
	q.mu.Unlock()
	q.busyCond.Signal()
}

// get blocks until a filled block is available or the Reader has
// finished and the busy queue has drained, in which case it returns
// (nil, false). Worker-side.
func (q *blockQueue) get() (*InputBlock, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.busy) == 0 && !q.done {
		q.busyCond.Wait()
	}

	if len(q.busy) == 0 {
		return nil, false
	}

	blk := q.busy[0]
	q.busy = q.busy[1:]
	return blk, true
}

// put returns a consumed buffer to the free pool. Worker-side.
func (q *blockQueue) put(blk *InputBlock) {
	q.mu.Lock()
	blk.Size = 0
	q.free = append(q.free, blk)
	q.mu.Unlock()
	q.freeCond.Signal()
}

// closeBusy marks the busy queue as final: every Worker parked in get()
// wakes, and any future call to get() returns false once the queue is
// empty.
func (q *blockQueue) closeBusy() {
	q.mu.Lock()
	q.done = true
	q.mu.Unlock()
	q.busyCond.Broadcast()
}
