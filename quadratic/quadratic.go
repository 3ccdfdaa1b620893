// Package quadratic solves a·x² + b·x + c = 0 with a two-stage pipeline: the
// discriminant is computed first, then its sign selects the root formula.
package quadratic

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"math/cmplx"

	"github.com/hupe1980/agentshop/pipeline"
)

var (
	// ErrNotQuadratic is returned by Solve when a is zero.
	ErrNotQuadratic = errors.New("quadratic: coefficient a must be non-zero")
	// ErrZeroSlope is returned by SolveLinear when a is zero.
	ErrZeroSlope = errors.New("quadratic: linear coefficient a must be non-zero")
)

// Coefficients of a·x² + b·x + c. D is filled in by CalcDiscriminant.
type Coefficients struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
	D float64 `json:"D"`
}

// Kind tells which fields of Roots are meaningful.
type Kind int

const (
	// TwoReal roots are in real(X1) and real(X2).
	TwoReal Kind = iota
	// OneReal root is in X.
	OneReal
	// Complex conjugate roots are in X1 and X2.
	Complex
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case TwoReal:
		return "two_real"
	case OneReal:
		return "one_real"
	case Complex:
		return "complex"
	default:
		return "unknown"
	}
}

// Roots is the solver result.
type Roots struct {
	Kind Kind
	X    float64
	X1   complex128
	X2   complex128
}

type complexJSON struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

// MarshalJSON renders real roots as numbers and complex roots as {re, im}.
func (r Roots) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case OneReal:
		return json.Marshal(struct {
			Kind string  `json:"kind"`
			X    float64 `json:"x"`
		}{r.Kind.String(), r.X})
	case TwoReal:
		return json.Marshal(struct {
			Kind string  `json:"kind"`
			X1   float64 `json:"x1"`
			X2   float64 `json:"x2"`
		}{r.Kind.String(), real(r.X1), real(r.X2)})
	default:
		return json.Marshal(struct {
			Kind string      `json:"kind"`
			X1   complexJSON `json:"x1"`
			X2   complexJSON `json:"x2"`
		}{
			r.Kind.String(),
			complexJSON{Re: real(r.X1), Im: imag(r.X1)},
			complexJSON{Re: real(r.X2), Im: imag(r.X2)},
		})
	}
}

// CalcDiscriminant returns coef with D = b² − 4ac.
func CalcDiscriminant(coef Coefficients) Coefficients {
	coef.D = coef.B*coef.B - 4*coef.A*coef.C
	return coef
}

// CalcTwoRoots applies the real formula; requires D > 0.
func CalcTwoRoots(coef Coefficients) Roots {
	sqrtD := math.Sqrt(coef.D)
	return Roots{
		Kind: TwoReal,
		X1:   complex((-coef.B+sqrtD)/(2*coef.A), 0),
		X2:   complex((-coef.B-sqrtD)/(2*coef.A), 0),
	}
}

// CalcOneRoot returns the double root −b/(2a); requires D == 0.
func CalcOneRoot(coef Coefficients) Roots {
	return Roots{Kind: OneReal, X: -coef.B / (2 * coef.A)}
}

// CalcComplexRoots uses the complex square root of D; intended for D < 0.
func CalcComplexRoots(coef Coefficients) Roots {
	sqrtD := cmplx.Sqrt(complex(coef.D, 0))
	minusB := complex(-coef.B, 0)
	twoA := complex(2*coef.A, 0)
	return Roots{
		Kind: Complex,
		X1:   (minusB + sqrtD) / twoA,
		X2:   (minusB - sqrtD) / twoA,
	}
}

var solver = pipeline.Pipe(
	pipeline.Func("calc_discriminant", CalcDiscriminant),
	pipeline.Branch(
		pipeline.Func("calc_complex_roots", CalcComplexRoots),
		pipeline.When("D > 0", func(c Coefficients) bool { return c.D > 0 },
			pipeline.Func("calc_two_roots", CalcTwoRoots)),
		// Exact comparison: a D that is only nearly zero takes a two-root or complex path.
		pipeline.When("D == 0", func(c Coefficients) bool { return c.D == 0 },
			pipeline.Func("calc_one_root", CalcOneRoot)),
	),
)

// Pipeline returns the unguarded solver pipeline. With A == 0 it yields
// Inf/NaN roots instead of failing; use Solve for the checked entry point.
func Pipeline() pipeline.Runnable[Coefficients, Roots] { return solver }

// Solve computes the roots of a·x² + b·x + c = 0.
func Solve(ctx context.Context, a, b, c float64) (Roots, error) {
	if a == 0 {
		return Roots{}, ErrNotQuadratic
	}
	return solver.Invoke(ctx, Coefficients{A: a, B: b, C: c})
}

// SolveLinear solves a·x + b = 0.
func SolveLinear(a, b float64) (float64, error) {
	if a == 0 {
		return 0, ErrZeroSlope
	}
	return -b / a, nil
}
