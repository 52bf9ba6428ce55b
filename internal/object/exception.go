package object

import (
	"fmt"
	"reflect"
	"strconv"

	"pyrt/internal/errtypes"
)

// ExceptionType adopts *errtypes.UserException as a carrier class so a
// caught exception is a full runtime value (spec.md's exception object
// model: type(e), str(e), repr(e) all work without a dedicated
// except-clause carrier). errtypes itself stays free of any import on
// this package - the dependency runs one way, object -> errtypes, the
// same direction every other slot installer in this file already uses
// for constructing TypeErrors and friends.
var ExceptionType *Type

func init() {
	ExceptionType = mustType(NewType(TypeSpec{
		Name:      "Exception",
		Canonical: reflect.TypeOf((*errtypes.UserException)(nil)),
	}))
	s := ExceptionType.Slots
	s.Str = func(v Value) (Value, error) {
		return Str(v.(*errtypes.UserException).Message), nil
	}
	s.Repr = func(v Value) (Value, error) {
		ue := v.(*errtypes.UserException)
		return Str(fmt.Sprintf("%s(%s)", ue.Kind, strconv.Quote(ue.Message))), nil
	}
	s.GetAttribute = func(v Value, name string) (Value, error) {
		ue := v.(*errtypes.UserException)
		if name != "args" {
			return nil, errtypes.New(errtypes.AttributeError, "'%s' object has no attribute '%s'", ue.Kind, name)
		}
		items := make(Tuple, len(ue.Args))
		for i, a := range ue.Args {
			if val, ok := a.(Value); ok {
				items[i] = val
			} else {
				items[i] = Str(fmt.Sprint(a))
			}
		}
		return items, nil
	}
}
