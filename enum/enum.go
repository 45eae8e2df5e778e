// Package enum provides helpers for closed, contiguous enumerations that end in a
// sentinel value.
//
// An enumeration is a named integer type whose valid values run from 0 to N-1. The
// type reports its sentinel N through a MaxValue method, which doubles as the count of
// valid values and as the "invalid / none" marker:
//
//	type Color int
//
//	const (
//	    Red Color = iota
//	    Green
//	    Blue
//	    ColorMaxValue
//	)
//
//	func (Color) MaxValue() Color { return ColorMaxValue }
//
//	enum.Count[Color]()  // 3
//	enum.Max[Color]()    // Blue
//	enum.Values[Color]() // [Red Green Blue]
//
// Types that are not integers, or that lack the MaxValue method, do not satisfy Enum and
// are rejected by the compiler.
package enum

// Integer is the set of types an enumeration may be built on.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Enum is satisfied by an integer type that exposes its trailing sentinel.
// MaxValue must not depend on the receiver; it is always called on the zero value.
type Enum[E any] interface {
	Integer
	MaxValue() E
}

// Sentinel returns the sentinel of E.
func Sentinel[E Enum[E]]() E {
	var zero E

	return zero.MaxValue()
}

// Count returns the number of valid values of E.
func Count[E Enum[E]]() int {
	return int(Sentinel[E]())
}

// Max returns the largest valid value of E.
func Max[E Enum[E]]() E {
	return Sentinel[E]() - 1
}

// Values returns every valid value of E in ascending order. The slice is freshly
// allocated on each call and may be modified by the caller.
func Values[E Enum[E]]() []E {
	count := Count[E]()
	values := make([]E, count)

	for i := range count {
		values[i] = E(i)
	}

	return values
}

// Index returns the position of v in the enumeration.
func Index[E Enum[E]](v E) int {
	return int(v)
}

// Valid reports whether v is one of the real values of E, i.e. neither negative nor
// the sentinel or beyond.
func Valid[E Enum[E]](v E) bool {
	i := int(v)

	return i >= 0 && i < Count[E]()
}
