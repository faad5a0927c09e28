package stream

import "sync"

const (
	// MaxPooledCapacity is the largest buffer returned to the pool.
	MaxPooledCapacity = 1 << 20
	initialCapacity   = 4096
)

var bufPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, initialCapacity)
		return &buf
	},
}

func getBuf() *[]byte {
	return bufPool.Get().(*[]byte)
}

func putBuf(buf *[]byte) {
	if buf == nil || cap(*buf) > MaxPooledCapacity {
		return // reject oversized
	}
	*buf = (*buf)[:0]
	bufPool.Put(buf)
}
