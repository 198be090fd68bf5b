// Package num provides checked 128-bit integer arithmetic for balances,
// pools, and prices. Every operation that can leave the 128-bit range
// returns ErrOverflow instead of wrapping; division truncates toward zero.
package num

import (
	"errors"
	"fmt"
	"math/big"
)

var ErrOverflow = errors.New("num: 128-bit overflow")

var (
	maxInt128  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minInt128  = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)

// Int128 is an immutable signed 128-bit integer. The zero value is 0.
type Int128 struct {
	v *big.Int
}

func I128FromInt64(x int64) Int128 {
	return Int128{v: big.NewInt(x)}
}

func ParseInt128(s string) (Int128, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Int128{}, fmt.Errorf("num: invalid integer %q", s)
	}
	if v.Cmp(minInt128) < 0 || v.Cmp(maxInt128) > 0 {
		return Int128{}, ErrOverflow
	}
	return Int128{v: v}, nil
}

func (x Int128) big() *big.Int {
	if x.v == nil {
		return new(big.Int)
	}
	return x.v
}

func checkedI128(v *big.Int) (Int128, error) {
	if v.Cmp(minInt128) < 0 || v.Cmp(maxInt128) > 0 {
		return Int128{}, ErrOverflow
	}
	return Int128{v: v}, nil
}

func (x Int128) Add(y Int128) (Int128, error) {
	return checkedI128(new(big.Int).Add(x.big(), y.big()))
}

func (x Int128) Sub(y Int128) (Int128, error) {
	return checkedI128(new(big.Int).Sub(x.big(), y.big()))
}

func (x Int128) Mul(y Int128) (Int128, error) {
	return checkedI128(new(big.Int).Mul(x.big(), y.big()))
}

// Quo divides truncating toward zero. y must be non-zero; callers guard.
func (x Int128) Quo(y Int128) Int128 {
	return Int128{v: new(big.Int).Quo(x.big(), y.big())}
}

func (x Int128) Cmp(y Int128) int { return x.big().Cmp(y.big()) }
func (x Int128) Sign() int        { return x.big().Sign() }
func (x Int128) IsZero() bool     { return x.big().Sign() == 0 }
func (x Int128) String() string   { return x.big().String() }
func (x Int128) Int64() int64     { return x.big().Int64() }

func (x Int128) MarshalJSON() ([]byte, error) {
	return []byte(`"` + x.String() + `"`), nil
}

func (x *Int128) UnmarshalJSON(data []byte) error {
	parsed, err := ParseInt128(unquote(data))
	if err != nil {
		return err
	}
	*x = parsed
	return nil
}

// Uint128 is an immutable unsigned 128-bit integer. The zero value is 0.
type Uint128 struct {
	v *big.Int
}

func U128FromUint64(x uint64) Uint128 {
	return Uint128{v: new(big.Int).SetUint64(x)}
}

func ParseUint128(s string) (Uint128, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Uint128{}, fmt.Errorf("num: invalid integer %q", s)
	}
	if v.Sign() < 0 || v.Cmp(maxUint128) > 0 {
		return Uint128{}, ErrOverflow
	}
	return Uint128{v: v}, nil
}

func (x Uint128) big() *big.Int {
	if x.v == nil {
		return new(big.Int)
	}
	return x.v
}

func (x Uint128) Cmp(y Uint128) int { return x.big().Cmp(y.big()) }
func (x Uint128) IsZero() bool      { return x.big().Sign() == 0 }
func (x Uint128) String() string    { return x.big().String() }

// AbsDiff returns |x - y|. The result of an absolute difference of two
// uint128 values always fits back in a uint128.
func (x Uint128) AbsDiff(y Uint128) Uint128 {
	d := new(big.Int).Sub(x.big(), y.big())
	return Uint128{v: d.Abs(d)}
}

func (x Uint128) MarshalJSON() ([]byte, error) {
	return []byte(`"` + x.String() + `"`), nil
}

func (x *Uint128) UnmarshalJSON(data []byte) error {
	parsed, err := ParseUint128(unquote(data))
	if err != nil {
		return err
	}
	*x = parsed
	return nil
}

func unquote(data []byte) string {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
