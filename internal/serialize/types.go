package serialize

import (
	"fmt"

	"pvc/internal/types"
)

// writeType encodes a types.Type by its Kind tag followed by whatever
// payload that Kind carries, mirroring Type's own recursive shape.
func writeType(w *Writer, t types.Type) {
	w.U8(uint8(t.Kind))
	switch t.Kind {
	case types.USize, types.U8, types.Bool, types.IO:
		// no payload
	case types.Slice:
		writeType(w, *t.Elem)
	case types.Array:
		writeType(w, *t.Elem)
		w.U32(uint32(t.Len))
	case types.Tuple:
		w.U32(uint32(len(t.Fields)))
		for _, f := range t.Fields {
			writeType(w, f)
		}
	case types.Pointer:
		if t.Func != nil {
			w.U8(1)
			writeSignature(w, *t.Func)
		} else {
			w.U8(0)
			writeType(w, *t.Elem)
		}
	default:
		panic(fmt.Sprintf("serialize: unknown type kind %d", t.Kind))
	}
}

func readType(r *Reader) types.Type {
	kind := types.Kind(r.U8())
	switch kind {
	case types.USize, types.U8, types.Bool, types.IO:
		return types.Type{Kind: kind}
	case types.Slice:
		elem := readType(r)
		return types.NewSlice(elem)
	case types.Array:
		elem := readType(r)
		n := int(r.U32())
		return types.NewArray(elem, n)
	case types.Tuple:
		n := r.U32()
		fields := make([]types.Type, n)
		for i := range fields {
			fields[i] = readType(r)
		}
		return types.NewTuple(fields...)
	case types.Pointer:
		isFunc := r.U8()
		if isFunc == 1 {
			sig := readSignature(r)
			return types.NewPointerToFunction(sig)
		}
		elem := readType(r)
		return types.NewPointerToValue(elem)
	default:
		r.fail(fmt.Errorf("serialize: unknown type tag %d", kind))
		return types.Type{}
	}
}

func writeSignature(w *Writer, s types.Signature) {
	w.U32(uint32(len(s.Args)))
	for _, a := range s.Args {
		writeType(w, a)
	}
	writeType(w, s.Returns)
}

func readSignature(r *Reader) types.Signature {
	n := r.U32()
	args := make([]types.Type, n)
	for i := range args {
		args[i] = readType(r)
	}
	returns := readType(r)
	return types.Signature{Args: args, Returns: returns}
}
