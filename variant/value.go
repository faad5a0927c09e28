package variant

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/wippyai/zerowire"
	"github.com/wippyai/zerowire/errors"
	"github.com/wippyai/zerowire/flyweight"
)

// MaxDepth bounds the nesting of lists and maps inside a Value.
const MaxDepth = 64

// Value is a dynamic self-describing variant: null, booleans, signed and
// unsigned integers, strings, lists of Value, maps of Value to Value and
// arrays of scalars.
type Value struct {
	flyweight.Flyweight
	depth int
	str   String
	list  *ListOf
	dict  *MapOf
	array *ArrayOf
}

func NewValue() *Value { return &Value{} }

func (v *Value) child() zerowire.View { return &Value{depth: v.depth + 1} }

func (v *Value) nested(k Kind) error {
	if v.depth >= MaxDepth {
		return errors.New(errors.PhaseDecode, errors.KindLengthExceeded).
			Type("value").
			Offset(v.Offset()).
			Detail("%s nested deeper than %d", k, MaxDepth).
			Build()
	}
	return nil
}

func (v *Value) lists() *ListOf {
	if v.list == nil {
		v.list = NewListOf(v.child)
	}
	return v.list
}

func (v *Value) maps() *MapOf {
	if v.dict == nil {
		v.dict = NewMapOf(SelfDescribing(v.child), SelfDescribing(v.child))
	}
	return v.dict
}

func (v *Value) arrays() *ArrayOf {
	if v.array == nil {
		v.array = NewArrayOf(scalarElements{})
	}
	return v.array
}

func (v *Value) Decode(buf []byte, offset, maxLimit int) error {
	if err := v.Bind("value", buf, offset, maxLimit); err != nil {
		return err
	}
	if err := v.Need("value", offset+1); err != nil {
		return err
	}
	k := Kind(buf[offset])
	switch {
	case k == KindNull || k == KindFalse || k == KindTrue:
		return nil
	case isIntKind(k) || isUintKind(k):
		return v.Need("value", offset+1+k.Width())
	case k.Family() == 0x70 && k.Known():
		return v.str.Decode(buf, offset, maxLimit)
	case k.Family() == KindList0 && k.Known():
		if err := v.nested(k); err != nil {
			return err
		}
		return v.lists().Decode(buf, offset, maxLimit)
	case k.Family() == KindMap0 && k.Known():
		if err := v.nested(k); err != nil {
			return err
		}
		return v.maps().Decode(buf, offset, maxLimit)
	case k.Family() == KindArray0 && k.Known():
		return v.arrays().Decode(buf, offset, maxLimit)
	}
	err := errors.InvalidDiscriminant(errors.PhaseDecode, "value", uint32(k))
	err.Offset = offset
	return err
}

func (v *Value) Wrap(buf []byte, offset, maxLimit int) *Value {
	flyweight.Must(v.Decode(buf, offset, maxLimit))
	return v
}

func (v *Value) TryWrap(buf []byte, offset, maxLimit int) *Value {
	if !zerowire.TryDecode(v, buf, offset, maxLimit) {
		return nil
	}
	return v
}

func (v *Value) Kind() Kind { return Kind(v.Buffer()[v.Offset()]) }

func (v *Value) Limit() int {
	k := v.Kind()
	switch k.Family() {
	case 0x70:
		return v.str.Limit()
	case KindList0:
		return v.list.Limit()
	case KindMap0:
		return v.dict.Limit()
	case KindArray0:
		return v.array.Limit()
	}
	return v.Offset() + 1 + k.Width()
}

func (v *Value) Sizeof() int { return v.Limit() - v.Offset() }

func (v *Value) IsNull() bool { return v.Kind() == KindNull }

func (v *Value) IsInt() bool { return isIntKind(v.Kind()) }

func (v *Value) IsUint() bool { return isUintKind(v.Kind()) }

// Bool returns the value of the false and true kinds.
func (v *Value) Bool() bool { return v.Kind() == KindTrue }

// Int returns an integer value; unsigned kinds are reinterpreted.
func (v *Value) Int() int64 {
	if k := v.Kind(); isUintKind(k) {
		return int64(readUint(k, v.Buffer(), v.Offset()+1))
	}
	return readInt(v.Kind(), v.Buffer(), v.Offset()+1)
}

func (v *Value) Uint() uint64 {
	if k := v.Kind(); isIntKind(k) {
		return uint64(readInt(k, v.Buffer(), v.Offset()+1))
	}
	return readUint(v.Kind(), v.Buffer(), v.Offset()+1)
}

// Str returns a string value; it is empty for other kinds.
func (v *Value) Str() string {
	if v.Kind().Family() != 0x70 {
		return ""
	}
	return v.str.String()
}

// List returns the decoded list, nil for other kinds.
func (v *Value) List() *ListOf {
	if v.Kind().Family() != KindList0 {
		return nil
	}
	return v.list
}

// Map returns the decoded map, nil for other kinds.
func (v *Value) Map() *MapOf {
	if v.Kind().Family() != KindMap0 {
		return nil
	}
	return v.dict
}

// Array returns the decoded array, nil for other kinds.
func (v *Value) Array() *ArrayOf {
	if v.Kind().Family() != KindArray0 {
		return nil
	}
	return v.array
}

// Interface converts the value to Go values: nil, bool, int64, uint64,
// string, []any and map[string]any. Non-string map keys are formatted
// with fmt.
func (v *Value) Interface() (any, error) {
	k := v.Kind()
	switch {
	case k == KindNull:
		return nil, nil
	case k == KindFalse || k == KindTrue:
		return k == KindTrue, nil
	case isIntKind(k):
		return v.Int(), nil
	case isUintKind(k):
		return v.Uint(), nil
	case k.Family() == 0x70:
		return v.str.String(), nil
	case k.Family() == KindArray0:
		out := make([]any, 0, v.array.Count())
		for _, it := range v.array.Items() {
			out = append(out, scalarInterface(it))
		}
		return out, nil
	case k.Family() == KindList0:
		out := make([]any, 0, v.list.Count())
		item := &Value{depth: v.depth + 1}
		for i, it := range v.list.Items() {
			x, err := item.interfaceAt(it)
			if err != nil {
				return nil, errors.WithPath(err, "["+strconv.Itoa(i)+"]")
			}
			out = append(out, x)
		}
		return out, nil
	case k.Family() == KindMap0:
		out := make(map[string]any, v.dict.Len())
		key, val := &Value{depth: v.depth + 1}, &Value{depth: v.depth + 1}
		for ki, vi := range v.dict.Entries() {
			kx, err := key.interfaceAt(ki)
			if err != nil {
				return nil, err
			}
			name, ok := kx.(string)
			if !ok {
				name = fmt.Sprint(kx)
			}
			vx, err := val.interfaceAt(vi)
			if err != nil {
				return nil, errors.WithPath(err, name)
			}
			out[name] = vx
		}
		return out, nil
	}
	return nil, errors.InvalidDiscriminant(errors.PhaseDecode, "value", uint32(k))
}

func (v *Value) interfaceAt(it Item) (any, error) {
	if err := v.Decode(it.Data, 0, len(it.Data)); err != nil {
		return nil, err
	}
	return v.Interface()
}

func scalarInterface(it Item) any {
	switch {
	case isIntKind(it.Kind):
		return it.Int()
	case isUintKind(it.Kind):
		return it.Uint()
	}
	return it.String()
}

// scalarElements decodes the element kind of any scalar array. Zero and
// One are read as signed.
type scalarElements struct{}

func (scalarElements) pick(k Kind) Elements {
	switch k.Family() {
	case 0x60:
		return UintElements
	case 0x70:
		return StringElements
	}
	return IntElements
}

func (scalarElements) Name() string   { return "scalar" }
func (scalarElements) Explicit() bool { return true }
func (scalarElements) Widest() Kind   { return KindInt64 }

func (scalarElements) Accepts(k Kind) bool {
	return isIntKind(k) || isUintKind(k) || StringElements.Accepts(k)
}

func (e scalarElements) Size(k Kind, buf []byte, off, limit int) (int, error) {
	return e.pick(k).Size(k, buf, off, limit)
}

func (e scalarElements) Narrowest(k Kind, buf []byte, off int) Kind {
	return e.pick(k).Narrowest(k, buf, off)
}

func (e scalarElements) Merge(a, b Kind) Kind { return e.pick(a).Merge(a, b) }

func (e scalarElements) SizeAs(to Kind, buf []byte, off int, from Kind) int {
	return e.pick(from).SizeAs(to, buf, off, from)
}

func (e scalarElements) Reencode(dst []byte, dstOff int, to Kind, src []byte, srcOff int, from Kind) int {
	return e.pick(from).Reencode(dst, dstOff, to, src, srcOff, from)
}

// ValueBuilder writes a Value in its narrowest encoding.
type ValueBuilder struct {
	flyweight.BuilderBase
	ints  IntBuilder
	uints UintBuilder
	str   StringBuilder
	view  Value
}

func NewValueBuilder() *ValueBuilder { return &ValueBuilder{} }

func (b *ValueBuilder) Wrap(buf []byte, offset, maxLimit int) *ValueBuilder {
	b.Reset(buf, offset, maxLimit)
	return b
}

func (b *ValueBuilder) setKind(k Kind) *ValueBuilder {
	b.CheckLimit("value", b.Offset()+1)
	b.Buffer()[b.Offset()] = byte(k)
	b.SetLimit(b.Offset() + 1)
	return b
}

func (b *ValueBuilder) SetNull() *ValueBuilder { return b.setKind(KindNull) }

func (b *ValueBuilder) SetBool(x bool) *ValueBuilder {
	if x {
		return b.setKind(KindTrue)
	}
	return b.setKind(KindFalse)
}

func (b *ValueBuilder) SetInt(x int64) *ValueBuilder {
	b.SetLimit(b.ints.Wrap(b.Buffer(), b.Offset(), b.MaxLimit()).Set(x).Limit())
	return b
}

func (b *ValueBuilder) SetUint(x uint64) *ValueBuilder {
	b.SetLimit(b.uints.Wrap(b.Buffer(), b.Offset(), b.MaxLimit()).Set(x).Limit())
	return b
}

func (b *ValueBuilder) SetString(s string) *ValueBuilder {
	b.SetLimit(b.str.Wrap(b.Buffer(), b.Offset(), b.MaxLimit()).Set(s).Limit())
	return b
}

// SetList writes a list of Value items appended by fill.
func (b *ValueBuilder) SetList(fill func(*ListOfBuilder)) *ValueBuilder {
	lb := NewListOfBuilder(func() zerowire.View { return NewValue() }).
		Wrap(b.Buffer(), b.Offset(), b.MaxLimit())
	fill(lb)
	b.SetLimit(lb.Build().Limit())
	return b
}

// SetMap writes a map of Value keys and values appended by fill.
func (b *ValueBuilder) SetMap(fill func(*MapOfBuilder)) *ValueBuilder {
	mb := NewMapOfBuilder(valueElements(), valueElements()).
		Wrap(b.Buffer(), b.Offset(), b.MaxLimit())
	fill(mb)
	b.SetLimit(mb.Build().Limit())
	return b
}

func valueElements() Elements {
	return SelfDescribing(func() zerowire.View { return NewValue() })
}

// Encode writes x, which must be built from nil, booleans, integers,
// integral floats, strings, json.Number, slices and string-keyed maps.
// Map keys are written in sorted order so equal inputs encode equally.
// Encoding failures, bounds included, are returned instead of raised.
func (b *ValueBuilder) Encode(x any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*errors.Error)
			if !ok {
				panic(r)
			}
			err = e
		}
	}()
	b.encode(x, 0)
	return nil
}

func (b *ValueBuilder) encode(x any, depth int) {
	if depth > MaxDepth {
		panic(errors.New(errors.PhaseEncode, errors.KindLengthExceeded).
			Type("value").
			Detail("input nested deeper than %d", MaxDepth).
			Build())
	}
	switch x := x.(type) {
	case nil:
		b.SetNull()
	case bool:
		b.SetBool(x)
	case int:
		b.SetInt(int64(x))
	case int8:
		b.SetInt(int64(x))
	case int16:
		b.SetInt(int64(x))
	case int32:
		b.SetInt(int64(x))
	case int64:
		b.SetInt(x)
	case uint:
		b.SetUint(uint64(x))
	case uint8:
		b.SetUint(uint64(x))
	case uint16:
		b.SetUint(uint64(x))
	case uint32:
		b.SetUint(uint64(x))
	case uint64:
		b.SetUint(x)
	case float32:
		b.encodeFloat(float64(x))
	case float64:
		b.encodeFloat(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			b.SetInt(i)
		} else if u, err := strconv.ParseUint(string(x), 10, 64); err == nil {
			b.SetUint(u)
		} else {
			panic(errors.Unsupported(errors.PhaseEncode, "non-integral number "+string(x)))
		}
	case string:
		b.SetString(x)
	case []string:
		b.SetList(func(lb *ListOfBuilder) {
			for _, s := range x {
				lb.Item(ValueOf(s))
			}
		})
	case []any:
		b.SetList(func(lb *ListOfBuilder) {
			for _, item := range x {
				lb.Item(valueWriter(item, depth+1))
			}
		})
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		b.SetMap(func(mb *MapOfBuilder) {
			for _, k := range keys {
				mb.Entry(ValueOf(k), valueWriter(x[k], depth+1))
			}
		})
	case map[string]string:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		b.SetMap(func(mb *MapOfBuilder) {
			for _, k := range keys {
				mb.Entry(ValueOf(k), ValueOf(x[k]))
			}
		})
	default:
		panic(errors.Unsupported(errors.PhaseEncode, fmt.Sprintf("value of type %T", x)))
	}
}

func (b *ValueBuilder) encodeFloat(f float64) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || f < math.MinInt64 || f >= math.MaxInt64 {
		panic(errors.Unsupported(errors.PhaseEncode, "non-integral number "+strconv.FormatFloat(f, 'g', -1, 64)))
	}
	b.SetInt(int64(f))
}

func (b *ValueBuilder) Build() *Value {
	return b.view.Wrap(b.Buffer(), b.Offset(), b.Limit())
}

// ValueOf returns a Writer encoding x as a Value. It panics on input that
// Encode would reject.
func ValueOf(x any) zerowire.Writer {
	return valueWriter(x, 0)
}

func valueWriter(x any, depth int) zerowire.Writer {
	return func(buf []byte, offset, maxLimit int) int {
		var b ValueBuilder
		b.Wrap(buf, offset, maxLimit).encode(x, depth)
		return b.Limit()
	}
}

var (
	_ zerowire.View    = (*Value)(nil)
	_ zerowire.Builder = (*ValueBuilder)(nil)
)
