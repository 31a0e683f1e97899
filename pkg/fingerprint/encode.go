package fingerprint

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/aretw0/postman/pkg/domain"
)

// Type tags of the canonical encoding. Changing any of them requires a new Version.
const (
	tagNil     = 'n'
	tagTrue    = 't'
	tagFalse   = 'f'
	tagInt     = 'i'
	tagUint    = 'u'
	tagFloat   = 'd'
	tagComplex = 'c'
	tagString  = 's'
	tagBytes   = 'b'
	tagList    = 'l'
	tagMap     = 'm'
	tagStruct  = 'S'
	tagTime    = 'T'
	tagText    = 'x'
)

var (
	timeType          = reflect.TypeOf(time.Time{})
	numberType        = reflect.TypeOf(json.Number(""))
	closerType        = reflect.TypeOf((*io.Closer)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

type visit struct {
	ptr uintptr
	typ reflect.Type
}

// encoder writes the canonical form of a value.
type encoder struct {
	w        io.Writer
	maxDepth int
	depth    int
	visiting map[visit]struct{}
	scratch  [binary.MaxVarintLen64]byte
}

func newEncoder(w io.Writer, maxDepth int) *encoder {
	return &encoder{
		w:        w,
		maxDepth: maxDepth,
		visiting: make(map[visit]struct{}),
	}
}

func (e *encoder) snapshot(s domain.Snapshot) error {
	if s == nil {
		s = domain.Snapshot{}
	}
	return e.value("", reflect.ValueOf(map[string]any(s)))
}

func (e *encoder) tag(t byte) {
	e.scratch[0] = t
	e.w.Write(e.scratch[:1])
}

func (e *encoder) uvarint(n uint64) {
	k := binary.PutUvarint(e.scratch[:], n)
	e.w.Write(e.scratch[:k])
}

func (e *encoder) u64(n uint64) {
	binary.BigEndian.PutUint64(e.scratch[:8], n)
	e.w.Write(e.scratch[:8])
}

func (e *encoder) str(t byte, s string) {
	e.tag(t)
	e.uvarint(uint64(len(s)))
	io.WriteString(e.w, s)
}

func (e *encoder) raw(t byte, b []byte) {
	e.tag(t)
	e.uvarint(uint64(len(b)))
	e.w.Write(b)
}

func (e *encoder) float(f float64) {
	if f == 0 {
		f = 0 // folds -0 into +0
	}
	e.u64(math.Float64bits(f))
}

// number encodes a json.Number like the Go value it stands for, so decoded
// request bodies compare equal to values set from code.
func (e *encoder) number(n json.Number) {
	if i, err := n.Int64(); err == nil {
		e.tag(tagInt)
		e.u64(uint64(i))
		return
	}
	if f, err := n.Float64(); err == nil {
		e.tag(tagFloat)
		e.float(f)
		return
	}
	e.str(tagString, n.String())
}

func refuse(path string, v reflect.Value, reason string) error {
	if path == "" {
		path = "<root>"
	}
	return &domain.SerializationError{Path: path, Type: v.Type().String(), Reason: reason}
}

func (e *encoder) value(path string, v reflect.Value) error {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			e.tag(tagNil)
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		e.tag(tagNil)
		return nil
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			e.tag(tagNil)
			return nil
		}
		// *time.Time would otherwise take the TextMarshaler path and keep its zone.
		switch v.Type().Elem() {
		case timeType, numberType:
			v = v.Elem()
		}
	}

	if e.depth >= e.maxDepth {
		return refuse(path, v, fmt.Sprintf("nesting exceeds %d levels", e.maxDepth))
	}
	e.depth++
	defer func() { e.depth-- }()

	switch v.Type() {
	case timeType:
		t := v.Interface().(time.Time)
		e.str(tagTime, t.UTC().Format(time.RFC3339Nano))
		return nil
	case numberType:
		e.number(json.Number(v.String()))
		return nil
	}

	if v.Type().Implements(closerType) {
		return refuse(path, v, "open handle")
	}

	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Uintptr:
		return refuse(path, v, "live reference")
	}

	if v.Type().Implements(textMarshalerType) && v.CanInterface() {
		text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return refuse(path, v, err.Error())
		}
		e.raw(tagText, text)
		return nil
	}

	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			e.tag(tagTrue)
		} else {
			e.tag(tagFalse)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.tag(tagInt)
		e.u64(uint64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		e.tag(tagUint)
		e.u64(v.Uint())
	case reflect.Float32, reflect.Float64:
		e.tag(tagFloat)
		e.float(v.Float())
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		e.tag(tagComplex)
		e.float(real(c))
		e.float(imag(c))
	case reflect.String:
		e.str(tagString, v.String())
	case reflect.Slice:
		if v.IsNil() {
			e.tag(tagNil)
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			e.raw(tagBytes, v.Bytes())
			return nil
		}
		return e.guard(path, v, func() error { return e.list(path, v) })
	case reflect.Array:
		return e.list(path, v)
	case reflect.Map:
		if v.IsNil() {
			e.tag(tagNil)
			return nil
		}
		return e.guard(path, v, func() error { return e.mapping(path, v) })
	case reflect.Struct:
		return e.structure(path, v)
	case reflect.Pointer:
		return e.guard(path, v, func() error { return e.value(path, v.Elem()) })
	default:
		return refuse(path, v, "unsupported kind "+v.Kind().String())
	}
	return nil
}

// guard detects reference cycles along the current path.
func (e *encoder) guard(path string, v reflect.Value, fn func() error) error {
	key := visit{ptr: v.Pointer(), typ: v.Type()}
	if _, seen := e.visiting[key]; seen {
		return refuse(path, v, "reference cycle")
	}
	e.visiting[key] = struct{}{}
	defer delete(e.visiting, key)
	return fn()
}

func (e *encoder) list(path string, v reflect.Value) error {
	n := v.Len()
	e.tag(tagList)
	e.uvarint(uint64(n))
	for i := 0; i < n; i++ {
		if err := e.value(path+"["+strconv.Itoa(i)+"]", v.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

type entry struct {
	key []byte
	val []byte
}

// mapping writes entries ordered by the canonical bytes of their keys, so the
// result never depends on map iteration order.
func (e *encoder) mapping(path string, v reflect.Value) error {
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k, val := iter.Key(), iter.Value()
		childPath := keyPath(path, k)

		var kb, vb bytes.Buffer
		sub := *e
		sub.w = &kb
		if err := sub.value(childPath, k); err != nil {
			return err
		}
		sub.w = &vb
		if err := sub.value(childPath, val); err != nil {
			return err
		}
		entries = append(entries, entry{key: kb.Bytes(), val: vb.Bytes()})
	}

	sort.Slice(entries, func(i, j int) bool {
		if c := bytes.Compare(entries[i].key, entries[j].key); c != 0 {
			return c < 0
		}
		// keys of different Go types can share an encoding (int8(1), int(1))
		return bytes.Compare(entries[i].val, entries[j].val) < 0
	})

	e.tag(tagMap)
	e.uvarint(uint64(len(entries)))
	for _, en := range entries {
		e.w.Write(en.key)
		e.w.Write(en.val)
	}
	return nil
}

func keyPath(path string, k reflect.Value) string {
	for k.Kind() == reflect.Interface && !k.IsNil() {
		k = k.Elem()
	}
	if k.Kind() == reflect.String {
		if path == "" {
			return k.String()
		}
		return path + "." + k.String()
	}
	if k.CanInterface() {
		return fmt.Sprintf("%s[%v]", path, k.Interface())
	}
	return path + "[?]"
}

// structure writes exported fields sorted by name.
func (e *encoder) structure(path string, v reflect.Value) error {
	t := v.Type()
	fields := make([]int, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			fields = append(fields, i)
		}
	}
	sort.Slice(fields, func(a, b int) bool {
		return t.Field(fields[a]).Name < t.Field(fields[b]).Name
	})

	e.tag(tagStruct)
	e.uvarint(uint64(len(fields)))
	for _, i := range fields {
		name := t.Field(i).Name
		e.str(tagString, name)
		childPath := name
		if path != "" {
			childPath = path + "." + name
		}
		if err := e.value(childPath, v.Field(i)); err != nil {
			return err
		}
	}
	return nil
}
