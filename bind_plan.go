package tabularcore

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

// tagName is the struct tag key record binding reads, following the
// teacher's "tabularcore" export namespace instead of tiendc-go-csvlib's
// "csv".
const tagName = "tabular"

// converterKind selects which ColumnView decoder a binding member uses.
type converterKind uint8

const (
	convText converterKind = iota
	convInt
	convUint
	convFloat
	convBool
	convTime
)

// timeType is the reflect.Type of time.Time, checked by identity rather
// than Kind since time.Time is itself a struct.
var timeType = reflect.TypeOf(time.Time{})

// member is one struct field's binding instructions: where its value comes
// from (by header name or fixed column index) and how to convert it.
type member struct {
	fieldIndex []int
	name       string
	// column is the column index to bind from when >= 0; -1 means bind by
	// header name instead.
	column    int
	required  bool
	omitempty bool
	converter converterKind
	// nullable marks a field declared as a pointer type: an empty column
	// decodes to a nil pointer instead of the zero value.
	nullable bool
}

// Plan is an immutable binding template for one struct type, built once by
// reflection and reused for every row thereafter.
type Plan struct {
	typ     reflect.Type
	members []member
}

var planCache sync.Map // reflect.Type -> *Plan

// PlanFor builds or retrieves the cached Plan for struct type T, inspecting
// exported fields tagged `tabular:"..."`. The first goroutine to build a
// given type's plan wins; concurrent callers racing to build the same plan
// all get that winner's result, matching the process-wide cache
// requirement.
func PlanFor(sample interface{}) (*Plan, error) {
	typ := reflect.TypeOf(sample)
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tabularcore: PlanFor requires a struct or pointer to struct, got %v", typ.Kind())
	}

	if cached, ok := planCache.Load(typ); ok {
		return cached.(*Plan), nil
	}

	plan, err := buildPlan(typ)
	if err != nil {
		return nil, err
	}
	actual, _ := planCache.LoadOrStore(typ, plan)
	return actual.(*Plan), nil
}

func buildPlan(typ reflect.Type) (*Plan, error) {
	plan := &Plan{typ: typ}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		tag, ok := field.Tag.Lookup(tagName)
		if !ok {
			continue
		}
		m, skip, err := parseMemberTag(field, tag)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		conv, nullable, err := converterFor(field.Type)
		if err != nil {
			return nil, err
		}
		m.converter = conv
		m.nullable = nullable
		plan.members = append(plan.members, m)
	}
	return plan, nil
}

// parseMemberTag parses `tabular:"name,index=N,required,omitempty"`. A bare
// "-" tag skips the field. name defaults to the field name if empty.
func parseMemberTag(field reflect.StructField, tag string) (m member, skip bool, err error) {
	parts := strings.Split(tag, ",")
	name := strings.TrimSpace(parts[0])
	if name == "-" {
		return member{}, true, nil
	}
	if name == "" {
		name = field.Name
	}

	m = member{
		fieldIndex: append([]int(nil), field.Index...),
		name:       name,
		column:     -1,
	}

	for _, opt := range parts[1:] {
		opt = strings.TrimSpace(opt)
		switch {
		case opt == "required":
			m.required = true
		case opt == "omitempty":
			m.omitempty = true
		case strings.HasPrefix(opt, "index="):
			n, convErr := strconv.Atoi(strings.TrimPrefix(opt, "index="))
			if convErr != nil {
				return member{}, false, fmt.Errorf("tabularcore: invalid index in tag %q on field %s: %w", tag, field.Name, convErr)
			}
			m.column = n
		}
	}
	return m, false, nil
}

// converterFor resolves t's scalar converter and reports whether t is a
// nullable member: a pointer type, where an empty column decodes to nil
// rather than the pointed-to type's zero value. Pointers are unwrapped one
// level before the Kind switch; time.Time (and *time.Time) is recognized by
// type identity since it is itself a struct, not one of the scalar
// reflect.Kinds.
func converterFor(t reflect.Type) (converterKind, bool, error) {
	nullable := false
	target := t
	if target.Kind() == reflect.Pointer {
		nullable = true
		target = target.Elem()
	}
	if target == timeType {
		return convTime, nullable, nil
	}
	switch target.Kind() {
	case reflect.String:
		return convText, nullable, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return convInt, nullable, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return convUint, nullable, nil
	case reflect.Float32, reflect.Float64:
		return convFloat, nullable, nil
	case reflect.Bool:
		return convBool, nullable, nil
	default:
		return 0, false, newBindError(KindUnsupportedMemberType, 0, 0, t.Name(), "unsupported struct field type "+t.String())
	}
}
