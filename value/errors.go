package value

import "fmt"

// ConversionError reports a payload extraction or runtime conversion that
// failed because the value held a different type than requested.
type ConversionError struct {
	Want Type
	Got  Type
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s to %s", e.Got, e.Want)
}

// OpError reports an operation applied to operand types that do not admit it.
type OpError struct {
	Op    string
	Left  Type
	Right Type
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: incompatible operand types %s and %s", e.Op, e.Left, e.Right)
}
