package value

// Named operations replacing the original operator-overload surface. Each
// dispatches on the operand tags and returns an *OpError on a combination
// JavaScript-style semantics cannot support without implicit coercion:
//
//   - Add: number+number is numeric addition; if either operand is a string,
//     the other is stringified and the results concatenated.
//   - The ordered comparisons accept two numbers or two strings.
//   - Inc/Dec operate on numbers only.

// Add returns v + o.
func Add(v, o Value) (Value, error) {
	switch {
	case v.typ == TypeNumber && o.typ == TypeNumber:
		return Number(v.n + o.n), nil
	case v.typ == TypeString || o.typ == TypeString:
		return Str(v.String() + o.String()), nil
	default:
		return Value{}, &OpError{Op: "add", Left: v.typ, Right: o.typ}
	}
}

// LessThan returns v < o.
func LessThan(v, o Value) (bool, error) {
	return compare("lessThan", v, o, func(c int) bool { return c < 0 })
}

// LessOrEqual returns v <= o.
func LessOrEqual(v, o Value) (bool, error) {
	return compare("lessOrEqual", v, o, func(c int) bool { return c <= 0 })
}

// GreaterThan returns v > o.
func GreaterThan(v, o Value) (bool, error) {
	return compare("greaterThan", v, o, func(c int) bool { return c > 0 })
}

// GreaterOrEqual returns v >= o.
func GreaterOrEqual(v, o Value) (bool, error) {
	return compare("greaterOrEqual", v, o, func(c int) bool { return c >= 0 })
}

// Inc returns v + 1 for a number value.
func Inc(v Value) (Value, error) {
	if v.typ != TypeNumber {
		return Value{}, &OpError{Op: "inc", Left: v.typ, Right: TypeNumber}
	}
	return Number(v.n + 1), nil
}

// Dec returns v - 1 for a number value.
func Dec(v Value) (Value, error) {
	if v.typ != TypeNumber {
		return Value{}, &OpError{Op: "dec", Left: v.typ, Right: TypeNumber}
	}
	return Number(v.n - 1), nil
}

func compare(op string, v, o Value, ok func(int) bool) (bool, error) {
	switch {
	case v.typ == TypeNumber && o.typ == TypeNumber:
		switch {
		case v.n < o.n:
			return ok(-1), nil
		case v.n > o.n:
			return ok(1), nil
		default:
			return ok(0), nil
		}
	case v.typ == TypeString && o.typ == TypeString:
		switch {
		case v.s < o.s:
			return ok(-1), nil
		case v.s > o.s:
			return ok(1), nil
		default:
			return ok(0), nil
		}
	default:
		return false, &OpError{Op: op, Left: v.typ, Right: o.typ}
	}
}
