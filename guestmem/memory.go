// Package guestmem binds views and builders to WebAssembly linear memory.
//
// Regions are slices of the guest's memory, not copies. Growing the memory
// may move it, so regions and the views bound to them must not be used
// after a Grow or after the guest calls memory.grow.
package guestmem

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/zerowire"
	"github.com/wippyai/zerowire/errors"
)

// DefaultExport is the conventional name of a module's exported memory.
const DefaultExport = "memory"

// Memory wraps a wazero linear memory.
type Memory struct {
	mem api.Memory
}

// New wraps mem.
func New(mem api.Memory) (*Memory, error) {
	if mem == nil {
		return nil, errors.InvalidInput(errors.PhaseGuest, "nil memory")
	}
	return &Memory{mem: mem}, nil
}

// FromModule wraps the memory exported by mod under name, or the module's
// default memory when name is empty.
func FromModule(mod api.Module, name string) (*Memory, error) {
	if mod == nil {
		return nil, errors.InvalidInput(errors.PhaseGuest, "nil module")
	}
	var mem api.Memory
	if name == "" {
		mem = mod.Memory()
	} else {
		mem = mod.ExportedMemory(name)
	}
	if mem == nil {
		return nil, errors.New(errors.PhaseGuest, errors.KindUnsupported).
			Type(mod.Name()).
			Detail("module exports no memory %q", name).
			Build()
	}
	return &Memory{mem: mem}, nil
}

// Size returns the current size in bytes.
func (m *Memory) Size() uint32 { return m.mem.Size() }

// Grow adds deltaPages pages and returns the previous size in pages.
// Regions taken before the call are invalid afterwards.
func (m *Memory) Grow(deltaPages uint32) (uint32, error) {
	prev, ok := m.mem.Grow(deltaPages)
	if !ok {
		return 0, errors.New(errors.PhaseGuest, errors.KindLengthExceeded).
			Type("memory").
			Value(deltaPages).
			Detail("cannot grow by %d pages", deltaPages).
			Build()
	}
	return prev, nil
}

// Region returns memory[offset:offset+length] without copying.
func (m *Memory) Region(offset, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, m.outOfBounds(offset, length)
	}
	return data, nil
}

func (m *Memory) outOfBounds(offset, length uint32) error {
	return errors.OutOfBounds(errors.PhaseGuest, "memory", int(offset), int(uint64(offset)+uint64(length)), int(m.mem.Size()))
}

// whole returns all of memory so bound views report guest addresses.
func (m *Memory) whole(offset, length uint32) ([]byte, error) {
	if uint64(offset)+uint64(length) > uint64(m.mem.Size()) {
		return nil, m.outOfBounds(offset, length)
	}
	data, _ := m.mem.Read(0, m.mem.Size())
	return data, nil
}

// WrapView decodes v over the guest region [offset, offset+length). The
// view's Offset and Limit are guest addresses.
func (m *Memory) WrapView(v zerowire.View, offset, length uint32) error {
	data, err := m.whole(offset, length)
	if err != nil {
		return err
	}
	return v.Decode(data, int(offset), int(offset+length))
}

// WrapBuilder resets b over the guest region [offset, offset+length).
func (m *Memory) WrapBuilder(b zerowire.Builder, offset, length uint32) error {
	data, err := m.whole(offset, length)
	if err != nil {
		return err
	}
	b.Reset(data, int(offset), int(offset+length))
	return nil
}

// Write runs w into the guest region [offset, offset+length) and returns
// the guest address just past the encoding. A panic raised by w is
// returned as an error.
func (m *Memory) Write(w zerowire.Writer, offset, length uint32) (end uint32, err error) {
	data, err := m.whole(offset, length)
	if err != nil {
		return 0, err
	}
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*errors.Error)
			if !ok {
				panic(r)
			}
			err = e
		}
	}()
	return uint32(w(data, int(offset), int(offset+length))), nil
}
