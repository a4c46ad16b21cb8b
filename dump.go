package logging

import (
	"context"
	"fmt"
	"reflect"
)

// Maximum recursion depth to prevent stack overflow
const maxDumpDepth = 10

// Maximum number of slice or array elements included per level
const maxDumpElements = 10

// Dump logs a single debug record describing the value's contents.
// Structs contribute their exported fields, maps and slices their
// elements, and basic types their values. Pointer cycles are detected
// and deep nesting is truncated rather than recursed into.
func (s *Service) Dump(ctx context.Context, v any, opts ...Option) {
	if s == nil || !s.isInitialized.Load() {
		return
	}
	o := applyOptions(opts)

	rec := newRecord(KindGeneral, LevelDebug, nil, o)
	rec.message = fmt.Sprintf("dump %T", v)
	rec.traceID = s.resolveTraceID(ctx, o)
	if o != nil {
		rec.requestID = o.requestID
	}

	visited := make(map[uintptr]bool)
	rec.payload = map[string]any{
		fieldDump:     dumpValue(v, visited, 0),
		fieldDumpType: fmt.Sprintf("%T", v),
	}
	s.emit(rec)
}

// dumpValue is a recursive helper for Dump. It returns a plain value
// tree built from maps, slices, and scalars so any engine can encode it.
func dumpValue(v any, visited map[uintptr]bool, depth int) any {
	if depth > maxDumpDepth {
		return "<max depth reached>"
	}
	if v == nil {
		return "<nil>"
	}

	val := reflect.ValueOf(v)

	// Unwrap interfaces and pointers, with cycle detection.
	for {
		switch val.Kind() {
		case reflect.Interface:
			if val.IsNil() {
				return "<nil>"
			}
			val = val.Elem()
			continue
		case reflect.Pointer:
			if val.IsNil() {
				return "<nil>"
			}
			ptr := val.Pointer()
			if visited[ptr] {
				return "<circular reference>"
			}
			visited[ptr] = true
			val = val.Elem()
			continue
		}
		break
	}

	typ := val.Type()

	switch val.Kind() {
	case reflect.Struct:
		fields := make(map[string]any, typ.NumField())
		for i := 0; i < typ.NumField(); i++ {
			fieldVal := val.Field(i)
			// Skip unexported fields
			if !fieldVal.CanInterface() {
				continue
			}
			fields[typ.Field(i).Name] = dumpValue(fieldVal.Interface(), visited, depth+1)
		}
		return fields

	case reflect.Map:
		entries := make(map[string]any, val.Len())
		iter := val.MapRange()
		for iter.Next() {
			key := fmt.Sprintf("%v", iter.Key().Interface())
			entries[key] = dumpValue(iter.Value().Interface(), visited, depth+1)
		}
		return entries

	case reflect.Slice, reflect.Array:
		n := val.Len()
		shown := n
		if shown > maxDumpElements {
			shown = maxDumpElements
		}
		elems := make([]any, 0, shown+1)
		for i := 0; i < shown; i++ {
			elem := val.Index(i)
			if elem.CanInterface() {
				elems = append(elems, dumpValue(elem.Interface(), visited, depth+1))
			} else {
				elems = append(elems, fmt.Sprintf("%v", elem))
			}
		}
		if n > shown {
			elems = append(elems, fmt.Sprintf("... (%d more elements)", n-shown))
		}
		return elems

	default:
		if val.IsValid() && val.CanInterface() {
			return val.Interface()
		}
		return fmt.Sprintf("%v", v)
	}
}
