package tabularcore

import (
	"reflect"

	"github.com/hashicorp/go-multierror"
)

// Binder applies a cached Plan to rows, writing decoded fields into a
// caller-supplied struct value.
type Binder struct {
	plan   *Plan
	header *HeaderIndex
}

// NewBinder builds a Binder for the given struct sample, resolving each
// member's column either from its fixed tag index or by looking up its
// name in header (header may be nil if every member specifies index=N).
func NewBinder(sample interface{}, header *HeaderIndex) (*Binder, error) {
	plan, err := PlanFor(sample)
	if err != nil {
		return nil, err
	}
	return &Binder{plan: plan, header: header}, nil
}

// BindRow decodes one RowView into dest, which must be a pointer to the
// struct type the Binder was built for. The first encountered error stops
// the row's binding and is returned; dest may hold a partial result.
func (b *Binder) BindRow(row RowView, dest interface{}) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return newBindError(KindUnmappedMember, 0, 0, "", "dest must be a non-nil pointer to struct")
	}
	v = v.Elem()

	for _, m := range b.plan.members {
		col, err := b.resolveColumn(m)
		if err != nil {
			return err
		}
		if col >= row.Len() {
			if m.required {
				return newBindError(KindUnmappedMember, 0, col+1, m.name, "row is missing required column")
			}
			continue
		}
		field := row.Column(col)
		if m.omitempty && field.IsEmpty() {
			continue
		}
		if err := setField(v.FieldByIndex(m.fieldIndex), field, m); err != nil {
			return err
		}
	}
	return nil
}

func (b *Binder) resolveColumn(m member) (int, error) {
	if m.column >= 0 {
		return m.column, nil
	}
	if b.header == nil {
		return 0, newBindError(KindUnmappedMember, 0, 0, m.name, "no header available to resolve column by name")
	}
	ord, ok := b.header.Lookup(m.name)
	if !ok {
		return 0, newBindError(KindUnmappedMember, 0, 0, m.name, "column not found in header")
	}
	return ord, nil
}

// setField decodes col into fv, which is either the target scalar type or,
// for a nullable member, a pointer to it. A nullable member whose decoded
// text is empty is left as a nil pointer rather than calling the converter.
func setField(fv reflect.Value, col ColumnView, m member) error {
	if m.nullable {
		if col.Text() == "" {
			fv.Set(reflect.Zero(fv.Type()))
			return nil
		}
		ptr := reflect.New(fv.Type().Elem())
		if err := setScalar(ptr.Elem(), col, m); err != nil {
			return err
		}
		fv.Set(ptr)
		return nil
	}
	return setScalar(fv, col, m)
}

func setScalar(fv reflect.Value, col ColumnView, m member) error {
	switch m.converter {
	case convText:
		fv.SetString(col.Text())
		return nil
	case convInt:
		n, err := col.Int()
		if err != nil {
			return annotate(err, m)
		}
		fv.SetInt(n)
		return nil
	case convUint:
		n, err := col.Uint()
		if err != nil {
			return annotate(err, m)
		}
		fv.SetUint(n)
		return nil
	case convFloat:
		f, err := col.Float()
		if err != nil {
			return annotate(err, m)
		}
		fv.SetFloat(f)
		return nil
	case convBool:
		bv, err := col.Bool()
		if err != nil {
			return annotate(err, m)
		}
		fv.SetBool(bv)
		return nil
	case convTime:
		tv, err := col.TimeISO8601()
		if err != nil {
			return annotate(err, m)
		}
		fv.Set(reflect.ValueOf(tv))
		return nil
	default:
		return newBindError(KindUnsupportedMemberType, 0, 0, m.name, "no converter for member")
	}
}

// annotate rewraps a ColumnView decode failure (a *ParseError with no
// member context) as a *BindError naming the struct field it failed on.
func annotate(err error, m member) error {
	if pe, ok := err.(*ParseError); ok {
		return newBindError(pe.Kind, pe.Row, pe.Col, m.name, pe.Msg)
	}
	return newBindError(KindUnknown, 0, 0, m.name, err.Error())
}

// BatchResult summarizes a BindAll run: how many rows were attempted,
// bound cleanly, or skipped due to an error.
type BatchResult struct {
	Total  int
	Bound  int
	Failed int
}

// BindAll binds every row produced by rows (which returns ok=false when
// rows are exhausted) into freshly allocated elements appended to out, a
// pointer to a slice of the Binder's struct type. Errors are aggregated
// with go-multierror rather than stopping at the first row; a failed row is
// counted and skipped, and binding continues with the next row.
func (b *Binder) BindAll(rows func() (RowView, bool), out interface{}) (BatchResult, error) {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Slice {
		return BatchResult{}, newBindError(KindUnmappedMember, 0, 0, "", "out must be a pointer to a slice")
	}
	slice := v.Elem()
	elemType := slice.Type().Elem()

	var result BatchResult
	var errs *multierror.Error

	for {
		row, ok := rows()
		if !ok {
			break
		}
		result.Total++

		elem := reflect.New(elemType)
		if err := b.BindRow(row, elem.Interface()); err != nil {
			result.Failed++
			errs = multierror.Append(errs, err)
			continue
		}
		result.Bound++
		slice = reflect.Append(slice, elem.Elem())
	}

	v.Elem().Set(slice)
	if errs != nil {
		return result, errs.ErrorOrNil()
	}
	return result, nil
}
