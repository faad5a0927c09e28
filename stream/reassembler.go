// Package stream reassembles encoded values that arrive in fragments.
//
// A Reassembler buffers written chunks and hands out views over complete
// frames at its head. Incomplete and malformed frames are both reported
// by Next returning false; Pending tells them apart. Views returned by
// Next borrow the reassembler's buffer and are valid until the next
// Write, Reset or Close.
package stream

import (
	"iter"

	"go.uber.org/zap"

	"github.com/wippyai/zerowire"
	"github.com/wippyai/zerowire/errors"
)

// DefaultMaxBuffered bounds the unconsumed bytes of a reassembler created
// with a zero limit.
const DefaultMaxBuffered = 16 << 20

// Reassembler is a single-consumer frame buffer. It is not safe for
// concurrent use.
type Reassembler struct {
	buf         *[]byte
	head        int
	maxBuffered int
	frames      int
}

// New returns a reassembler holding at most maxBuffered unconsumed bytes.
func New(maxBuffered int) *Reassembler {
	if maxBuffered <= 0 {
		maxBuffered = DefaultMaxBuffered
	}
	return &Reassembler{maxBuffered: maxBuffered}
}

func (r *Reassembler) data() []byte {
	if r.buf == nil {
		return nil
	}
	return *r.buf
}

// Buffered returns the number of unconsumed bytes.
func (r *Reassembler) Buffered() int { return len(r.data()) - r.head }

// MaxBuffered returns the unconsumed byte limit.
func (r *Reassembler) MaxBuffered() int { return r.maxBuffered }

// Write appends a chunk. It fails without buffering anything when the
// unconsumed bytes would exceed the limit.
func (r *Reassembler) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.Buffered()+len(p) > r.maxBuffered {
		return 0, errors.New(errors.PhaseStream, errors.KindLengthExceeded).
			Type("stream").
			Value(r.Buffered() + len(p)).
			Detail("%d buffered bytes plus %d exceed %d", r.Buffered(), len(p), r.maxBuffered).
			Build()
	}
	if r.buf == nil {
		r.buf = getBuf()
	}
	r.compact()
	*r.buf = append(*r.buf, p...)
	return len(p), nil
}

// compact moves the unconsumed tail to the front of the buffer.
func (r *Reassembler) compact() {
	if r.head == 0 {
		return
	}
	buf := *r.buf
	n := copy(buf, buf[r.head:])
	if ce := Logger().Check(zap.DebugLevel, "compact"); ce != nil {
		ce.Write(zap.Int("consumed", r.head), zap.Int("kept", n), zap.Int("frames", r.frames))
	}
	*r.buf = buf[:n]
	r.head = 0
}

// Next decodes v over the frame at the head and consumes it. It returns
// false while the frame is incomplete or malformed and never panics.
// Frames that decode to zero bytes are never consumed.
func (r *Reassembler) Next(v zerowire.View) bool {
	data := r.data()
	if r.head >= len(data) {
		return false
	}
	if !zerowire.TryDecode(v, data, r.head, len(data)) || v.Sizeof() == 0 {
		return false
	}
	r.head = v.Limit()
	r.frames++
	return true
}

// Pending reports why the head frame is not available: nil when more
// input may complete it, the decode error when it can never decode.
func (r *Reassembler) Pending(v zerowire.View) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.New(errors.PhaseStream, errors.KindInvalidData).
				Type("stream").
				Offset(r.head).
				Detail("decoder panicked: %v", p).
				Build()
		}
	}()
	data := r.data()
	if r.head >= len(data) {
		return nil
	}
	err = v.Decode(data, r.head, len(data))
	if err == nil || errors.HasKind(err, errors.KindOutOfBounds) {
		return nil
	}
	return err
}

// Frames yields every complete frame at the head, re-wrapping v for each.
func Frames[V zerowire.View](r *Reassembler, v V) iter.Seq[V] {
	return func(yield func(V) bool) {
		for r.Next(v) {
			if !yield(v) {
				return
			}
		}
	}
}

// Count returns the number of frames consumed since creation or Reset.
func (r *Reassembler) Count() int { return r.frames }

// Reset drops all buffered input and keeps the buffer.
func (r *Reassembler) Reset() {
	if r.buf != nil {
		*r.buf = (*r.buf)[:0]
	}
	r.head = 0
	r.frames = 0
}

// Close returns the buffer to the pool. The reassembler can be written
// again afterwards.
func (r *Reassembler) Close() error {
	putBuf(r.buf)
	r.buf = nil
	r.head = 0
	return nil
}
