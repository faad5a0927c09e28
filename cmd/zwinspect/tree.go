package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/wippyai/zerowire/stream"
	"github.com/wippyai/zerowire/variant"
)

const readChunk = 32 << 10

// node is one line of the rendered tree. Offsets are file offsets.
type node struct {
	depth  int
	label  string
	kind   variant.Kind
	offset int
	size   int
	text   string
}

type walker struct {
	cfg   Config
	nodes []node
	shift int // file offset minus buffer offset of the current frame
}

// inspect reads consecutive values from src, which starts at file offset
// base, and returns their flattened trees.
func inspect(src io.Reader, base int, cfg Config) ([]node, error) {
	w := &walker{cfg: cfg}
	r := stream.New(0)
	defer r.Close()

	chunk := make([]byte, readChunk)
	pos, count := base, 0
	frame := variant.NewValue()
	for {
		n, err := src.Read(chunk)
		if n > 0 {
			if _, werr := r.Write(chunk[:n]); werr != nil {
				return w.nodes, fmt.Errorf("value %d at offset %d: %w", count, pos, werr)
			}
			for v := range stream.Frames(r, frame) {
				w.shift = pos - v.Offset()
				w.value(v, "#"+strconv.Itoa(count), 0)
				pos += v.Sizeof()
				count++
				if cfg.MaxValues > 0 && count >= cfg.MaxValues {
					return w.nodes, nil
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return w.nodes, fmt.Errorf("read: %w", err)
		}
	}

	if r.Buffered() == 0 {
		return w.nodes, nil
	}
	if err := r.Pending(frame); err != nil {
		return w.nodes, fmt.Errorf("value %d at offset %d: %w", count, pos, err)
	}
	return w.nodes, fmt.Errorf("value %d at offset %d: truncated, %d bytes left", count, pos, r.Buffered())
}

func (w *walker) add(v *variant.Value, label string, depth int, text string) {
	w.nodes = append(w.nodes, node{
		depth:  depth,
		label:  label,
		kind:   v.Kind(),
		offset: v.Offset() + w.shift,
		size:   v.Sizeof(),
		text:   text,
	})
}

func (w *walker) value(v *variant.Value, label string, depth int) {
	k := v.Kind()
	switch {
	case k == variant.KindNull:
		w.add(v, label, depth, "null")
	case k == variant.KindFalse || k == variant.KindTrue:
		w.add(v, label, depth, strconv.FormatBool(v.Bool()))
	case v.IsInt():
		w.add(v, label, depth, strconv.FormatInt(v.Int(), 10))
	case v.IsUint():
		w.add(v, label, depth, strconv.FormatUint(v.Uint(), 10))
	case k.Family() == variant.KindString8.Family():
		w.add(v, label, depth, w.quote(v.Str()))
	case k.Family() == variant.KindList0:
		l := v.List()
		w.add(v, label, depth, fmt.Sprintf("[%d]", l.Count()))
		if w.expand(depth) {
			w.list(v, l, depth+1)
		}
	case k.Family() == variant.KindMap0:
		m := v.Map()
		w.add(v, label, depth, fmt.Sprintf("{%d}", m.Len()))
		if w.expand(depth) {
			w.dict(v, m, depth+1)
		}
	case k.Family() == variant.KindArray0:
		a := v.Array()
		text := "[0]"
		if a.Count() > 0 {
			text = fmt.Sprintf("[%d]%s", a.Count(), a.ElementKind())
		}
		w.add(v, label, depth, text)
		if w.expand(depth) {
			w.array(a, depth+1)
		}
	default:
		w.add(v, label, depth, "?")
	}
}

// expand marks a collapsed container when depth reaches the limit.
func (w *walker) expand(depth int) bool {
	if depth < w.cfg.MaxDepth {
		return true
	}
	w.nodes[len(w.nodes)-1].text += " ..."
	return false
}

func (w *walker) list(parent *variant.Value, l *variant.ListOf, depth int) {
	buf := parent.Buffer()
	pos := l.Limit() - len(l.Payload())
	child := variant.NewValue()
	for i, it := range l.Items() {
		child.Wrap(buf, pos, pos+len(it.Data))
		w.value(child, "["+strconv.Itoa(i)+"]", depth)
		pos += len(it.Data)
	}
}

func (w *walker) dict(parent *variant.Value, m *variant.MapOf, depth int) {
	buf := parent.Buffer()
	pos := m.Limit() - len(m.Payload())
	key, val := variant.NewValue(), variant.NewValue()
	for ki, vi := range m.Entries() {
		key.Wrap(buf, pos, pos+len(ki.Data))
		pos += len(ki.Data)
		val.Wrap(buf, pos, pos+len(vi.Data))
		pos += len(vi.Data)
		w.value(val, w.keyLabel(key), depth)
	}
}

func (w *walker) keyLabel(key *variant.Value) string {
	switch {
	case key.Kind().Family() == variant.KindString8.Family():
		return w.quote(key.Str())
	case key.IsInt():
		return strconv.FormatInt(key.Int(), 10)
	case key.IsUint():
		return strconv.FormatUint(key.Uint(), 10)
	}
	return key.Kind().String()
}

func (w *walker) array(a *variant.ArrayOf, depth int) {
	pos := a.Limit() - len(a.Payload())
	for i, it := range a.Items() {
		var text string
		switch it.Kind.Family() {
		case variant.KindString8.Family():
			text = w.quote(it.String())
		case variant.KindUint8.Family():
			text = strconv.FormatUint(it.Uint(), 10)
		default:
			text = strconv.FormatInt(it.Int(), 10)
		}
		w.nodes = append(w.nodes, node{
			depth:  depth,
			label:  "[" + strconv.Itoa(i) + "]",
			kind:   it.Kind,
			offset: pos + w.shift,
			size:   len(it.Data),
			text:   text,
		})
		pos += len(it.Data)
	}
}

// quote truncates s to the preview length.
func (w *walker) quote(s string) string {
	if w.cfg.Preview > 0 && utf8.RuneCountInString(s) > w.cfg.Preview {
		runes := []rune(s)
		return strconv.Quote(string(runes[:w.cfg.Preview])) + "..."
	}
	return strconv.Quote(s)
}

// hexdump formats p in rows of width bytes labelled with file offsets.
func hexdump(p []byte, base, width int) string {
	var b strings.Builder
	for row := 0; row < len(p); row += width {
		end := min(row+width, len(p))
		fmt.Fprintf(&b, "%08x ", base+row)
		for i := row; i < row+width; i++ {
			if i < end {
				fmt.Fprintf(&b, " %02x", p[i])
			} else {
				b.WriteString("   ")
			}
		}
		b.WriteString("  ")
		for _, c := range p[row:end] {
			if c < 0x20 || c > 0x7e {
				c = '.'
			}
			b.WriteByte(c)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
