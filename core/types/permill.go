package types

import "fmt"

// PermillDenominator is one whole in parts per million
const PermillDenominator = 1_000_000

// Permill is a fraction expressed in parts per million
type Permill uint32

// PermillFromPercent builds a Permill from a whole percentage
func PermillFromPercent(p uint32) Permill {
	return Permill(p * 10_000)
}

func (p Permill) Valid() bool {
	return p <= PermillDenominator
}

// Complement returns 1 - p
func (p Permill) Complement() Permill {
	if p > PermillDenominator {
		return 0
	}
	return PermillDenominator - p
}

func (p Permill) String() string {
	return fmt.Sprintf("%d.%04d%%", p/10_000, p%10_000)
}
