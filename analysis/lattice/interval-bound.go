package lattice

import "strconv"

// IntervalBound is an interface implemented by all interval lattice
// bounds i.e., any FiniteBound value, PlusInfinity and MinusInfinity.
// The comparison semantics is -∞ ≤ c ≤ ∞ for any c ∈ ℤ.
type IntervalBound interface {
	String() string

	// IsInfinite checks whether the interval bound is infinite.
	IsInfinite() bool

	// Eq checks for interval bound equality.
	Eq(IntervalBound) bool
	// Leq computes b1 ≤ b2.
	Leq(IntervalBound) bool
	// Geq computes b1 ≥ b2.
	Geq(IntervalBound) bool
	// Lt computes b1 < b2.
	Lt(IntervalBound) bool
	// Gt computes b1 > b2.
	Gt(IntervalBound) bool

	// Plus computes b1 + b2. Panics on ∞ + -∞.
	Plus(IntervalBound) IntervalBound
	// Minus computes b1 - b2. Panics on ∞ - ∞ and -∞ - (-∞).
	Minus(IntervalBound) IntervalBound
	// Mult computes b1 * b2. Panics on 0 * ±∞ and ∞ * -∞.
	Mult(IntervalBound) IntervalBound
	// Max computes max(b1, b2).
	Max(IntervalBound) IntervalBound
	// Min computes min(b1, b2).
	Min(IntervalBound) IntervalBound
}

type (
	// FiniteBound is used to represent finite limits of an interval value.
	FiniteBound int
	// PlusInfinity represents ∞.
	PlusInfinity struct{}
	// MinusInfinity represents -∞.
	MinusInfinity struct{}
)

// IsInfinite is false for the finite bound.
func (FiniteBound) IsInfinite() bool {
	return false
}

func (b FiniteBound) String() string {
	return colorize.Element(strconv.Itoa((int)(b)))
}

// Eq compares for equality with another bound. Two finite bounds
// are equal if their underlying values are equal.
func (b1 FiniteBound) Eq(b2 IntervalBound) bool {
	switch b2 := b2.(type) {
	case FiniteBound:
		return b1 == b2
	}
	return false
}

// Leq computes b1 ≤ b2.
func (b1 FiniteBound) Leq(b2 IntervalBound) bool {
	switch b2 := b2.(type) {
	case FiniteBound:
		return b1 <= b2
	case PlusInfinity:
		return true
	case MinusInfinity:
		return false
	}
	return false
}

// Geq computes b1 ≥ b2.
func (b1 FiniteBound) Geq(b2 IntervalBound) bool {
	switch b2 := b2.(type) {
	case FiniteBound:
		return b1 >= b2
	case PlusInfinity:
		return false
	case MinusInfinity:
		return true
	}
	return false
}

// Lt computes b1 < b2.
func (b1 FiniteBound) Lt(b2 IntervalBound) bool {
	switch b2 := b2.(type) {
	case FiniteBound:
		return b1 < b2
	case PlusInfinity:
		return true
	case MinusInfinity:
		return false
	}
	return false
}

// Gt computes b1 > b2.
func (b1 FiniteBound) Gt(b2 IntervalBound) bool {
	switch b2 := b2.(type) {
	case FiniteBound:
		return b1 > b2
	case PlusInfinity:
		return false
	case MinusInfinity:
		return true
	}
	return false
}

// Plus computes b1 + b2. A finite bound plus an infinite bound yields
// the infinite bound.
func (b1 FiniteBound) Plus(b2 IntervalBound) IntervalBound {
	switch b2 := b2.(type) {
	case FiniteBound:
		return b1 + b2
	case PlusInfinity:
		return PlusInfinity{}
	case MinusInfinity:
		return MinusInfinity{}
	}
	return nil
}

// Minus computes b1 - b2. A finite bound minus an infinite bound yields
// the opposite infinite bound.
func (b1 FiniteBound) Minus(b2 IntervalBound) IntervalBound {
	switch b2 := b2.(type) {
	case FiniteBound:
		return b1 - b2
	case PlusInfinity:
		return MinusInfinity{}
	case MinusInfinity:
		return PlusInfinity{}
	}
	return nil
}

// Mult computes b1 * b2. The sign of a nonzero finite bound carries
// over to an infinite product. Panics on 0 * ±∞.
func (b1 FiniteBound) Mult(b2 IntervalBound) IntervalBound {
	switch b2 := b2.(type) {
	case FiniteBound:
		return b1 * b2
	case PlusInfinity:
		switch {
		case b1 > 0:
			return PlusInfinity{}
		case b1 == 0:
			panic("0 * ∞")
		case b1 < 0:
			return MinusInfinity{}
		}
	case MinusInfinity:
		switch {
		case b1 > 0:
			return MinusInfinity{}
		case b1 == 0:
			panic("0 * -∞")
		case b1 < 0:
			return PlusInfinity{}
		}
	}
	return nil
}

// Max computes max(b1, b2).
func (b1 FiniteBound) Max(b2 IntervalBound) IntervalBound {
	switch b2 := b2.(type) {
	case FiniteBound:
		if b1 < b2 {
			return b2
		}
		return b1
	case PlusInfinity:
		return b2
	case MinusInfinity:
		return b1
	}
	return nil
}

// Min computes min(b1, b2).
func (b1 FiniteBound) Min(b2 IntervalBound) IntervalBound {
	switch b2 := b2.(type) {
	case FiniteBound:
		if b1 < b2 {
			return b1
		}
		return b2
	case PlusInfinity:
		return b1
	case MinusInfinity:
		return b2
	}
	return nil
}

// IsInfinite is true for ∞.
func (PlusInfinity) IsInfinite() bool {
	return true
}

func (PlusInfinity) String() string {
	return colorize.Element("∞")
}

// Eq checks for interval bound equality.
func (PlusInfinity) Eq(b2 IntervalBound) bool {
	switch b2.(type) {
	case PlusInfinity:
		return true
	}
	return false
}

// Leq computes ∞ ≤ b.
func (PlusInfinity) Leq(b2 IntervalBound) bool {
	switch b2.(type) {
	case PlusInfinity:
		return true
	}
	return false
}

// Geq computes ∞ ≥ b. It is always true as ∞ is the largest possible bound.
func (PlusInfinity) Geq(IntervalBound) bool {
	return true
}

// Lt computes ∞ < b. It is always false as ∞ is the largest possible bound.
func (PlusInfinity) Lt(IntervalBound) bool {
	return false
}

// Gt computes ∞ > b.
func (PlusInfinity) Gt(b2 IntervalBound) bool {
	switch b2.(type) {
	case PlusInfinity:
		return false
	}
	return true
}

// Plus computes ∞ + b. Panics on ∞ + -∞.
func (PlusInfinity) Plus(b2 IntervalBound) IntervalBound {
	switch b2.(type) {
	case MinusInfinity:
		panic("∞ - ∞")
	}
	return PlusInfinity{}
}

// Minus computes ∞ - b. Panics on ∞ - ∞.
func (PlusInfinity) Minus(b2 IntervalBound) IntervalBound {
	switch b2.(type) {
	case PlusInfinity:
		panic("∞ - ∞")
	}
	return PlusInfinity{}
}

// Mult computes ∞ * b. The product follows the sign of b.
// Panics on ∞ * 0 and ∞ * -∞.
func (PlusInfinity) Mult(b2 IntervalBound) IntervalBound {
	switch b2 := b2.(type) {
	case FiniteBound:
		switch {
		case b2 < 0:
			return MinusInfinity{}
		case b2 == 0:
			panic("∞ * 0")
		}
	case MinusInfinity:
		panic("∞ * -∞")
	}
	return PlusInfinity{}
}

// Max computes max(∞, b), which is always ∞.
func (PlusInfinity) Max(IntervalBound) IntervalBound {
	return PlusInfinity{}
}

// Min computes min(∞, b), which is always b.
func (PlusInfinity) Min(b2 IntervalBound) IntervalBound {
	return b2
}

// IsInfinite is true for -∞.
func (MinusInfinity) IsInfinite() bool {
	return true
}

func (MinusInfinity) String() string {
	return colorize.Element("-∞")
}

// Eq computes -∞ = b.
func (MinusInfinity) Eq(b2 IntervalBound) bool {
	switch b2.(type) {
	case MinusInfinity:
		return true
	}
	return false
}

// Leq computes -∞ ≤ b. It is always true as -∞ is the smallest possible bound.
func (MinusInfinity) Leq(IntervalBound) bool {
	return true
}

// Geq computes -∞ ≥ b.
func (MinusInfinity) Geq(b2 IntervalBound) bool {
	switch b2.(type) {
	case MinusInfinity:
		return true
	}
	return false
}

// Lt computes -∞ < b.
func (MinusInfinity) Lt(b2 IntervalBound) bool {
	switch b2.(type) {
	case MinusInfinity:
		return false
	}
	return true
}

// Gt computes -∞ > b. It is always false as -∞ is the smallest possible bound.
func (MinusInfinity) Gt(IntervalBound) bool {
	return false
}

// Plus computes -∞ + b. Panics on -∞ + ∞.
func (MinusInfinity) Plus(b IntervalBound) IntervalBound {
	switch b.(type) {
	case PlusInfinity:
		panic("-∞ + ∞")
	}
	return MinusInfinity{}
}

// Minus computes -∞ - b. Panics on -∞ - (-∞).
func (MinusInfinity) Minus(b IntervalBound) IntervalBound {
	switch b.(type) {
	case MinusInfinity:
		panic("-∞ - (-∞)")
	}
	return MinusInfinity{}
}

// Mult computes -∞ * b. The product follows the sign of b.
// Panics on -∞ * 0 and -∞ * ∞.
func (MinusInfinity) Mult(b IntervalBound) IntervalBound {
	switch b := b.(type) {
	case FiniteBound:
		switch {
		case b == 0:
			panic("-∞ * 0")
		case b < 0:
			return PlusInfinity{}
		}
	case PlusInfinity:
		panic("-∞ * ∞")
	case MinusInfinity:
		return PlusInfinity{}
	}
	return MinusInfinity{}
}

// Max computes max(-∞, b), which is always b.
func (MinusInfinity) Max(b IntervalBound) IntervalBound {
	return b
}

// Min computes min(-∞, b), which is always -∞.
func (MinusInfinity) Min(b IntervalBound) IntervalBound {
	return MinusInfinity{}
}
