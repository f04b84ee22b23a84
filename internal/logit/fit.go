// Package logit fits per-predictor logistic regressions with
// cluster-robust standard errors and exports the results as odds ratios.
//
// Every model has exactly two coefficients, intercept and one predictor,
// matching the one-regression-per-Baustein design of the analysis.
package logit

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	maxIter   = 35
	scoreTol  = 1e-8
	probFloor = 1e-10
)

// Result holds one fitted model's predictor coefficient on the log-odds
// and odds-ratio scales. A degenerate fit (perfect separation, singular
// Hessian, non-convergence) is reported as all-NaN rather than an error.
type Result struct {
	Beta   float64
	SE     float64
	CILow  float64
	CIHigh float64
	OR     float64
	ORLow  float64
	ORHigh float64
	P      float64
}

// Degenerate reports whether the fit produced no usable estimate.
func (r Result) Degenerate() bool {
	return math.IsNaN(r.Beta)
}

var nanResult = Result{
	Beta: math.NaN(), SE: math.NaN(),
	CILow: math.NaN(), CIHigh: math.NaN(),
	OR: math.NaN(), ORLow: math.NaN(), ORHigh: math.NaN(),
	P: math.NaN(),
}

// Fit estimates logit(P(y=1)) = b0 + b1*x by Newton-Raphson IRLS and
// computes a cluster-robust (sandwich) standard error for b1, with
// clusters given per observation. The 95% interval is beta +/- 1.96*SE;
// the p-value is the two-sided normal test of b1 = 0.
func Fit(y, x []float64, clusters []string) Result {
	n := len(y)
	if n == 0 || len(x) != n || len(clusters) != n {
		return nanResult
	}

	beta := [2]float64{}
	p := make([]float64, n)

	converged := false
	for iter := 0; iter < maxIter; iter++ {
		// Score g = X'(y-p) and Hessian H = X'WX with W = diag(p(1-p)).
		var g0, g1 float64
		var h00, h01, h11 float64
		for i := 0; i < n; i++ {
			p[i] = sigmoid(beta[0] + beta[1]*x[i])
			r := y[i] - p[i]
			w := p[i] * (1 - p[i])
			g0 += r
			g1 += r * x[i]
			h00 += w
			h01 += w * x[i]
			h11 += w * x[i] * x[i]
		}

		if math.Abs(g0) < scoreTol && math.Abs(g1) < scoreTol {
			converged = true
			break
		}

		det := h00*h11 - h01*h01
		if det <= 0 || math.IsNaN(det) {
			return nanResult
		}
		d0 := (h11*g0 - h01*g1) / det
		d1 := (h00*g1 - h01*g0) / det
		beta[0] += d0
		beta[1] += d1
		if math.IsNaN(beta[0]) || math.IsNaN(beta[1]) {
			return nanResult
		}
	}

	if !converged || separated(p) {
		return nanResult
	}

	se := clusterSE(y, x, p, clusters)
	if math.IsNaN(se) || se <= 0 {
		return nanResult
	}

	b := beta[1]
	lo := b - 1.96*se
	hi := b + 1.96*se
	z := b / se
	return Result{
		Beta:   b,
		SE:     se,
		CILow:  lo,
		CIHigh: hi,
		OR:     math.Exp(b),
		ORLow:  math.Exp(lo),
		ORHigh: math.Exp(hi),
		P:      2 * distuv.UnitNormal.Survival(math.Abs(z)),
	}
}

// separated detects perfect separation: every fitted probability pinned to
// 0 or 1, which leaves the likelihood unbounded and the variance collapsed.
func separated(p []float64) bool {
	for i := range p {
		if p[i] > probFloor && p[i] < 1-probFloor {
			return false
		}
	}
	return true
}

// clusterSE computes the sandwich standard error of the predictor
// coefficient: Hinv * (sum of within-cluster score outer products) * Hinv,
// scaled by the small-sample factor G/(G-1).
func clusterSE(y, x, p []float64, clusters []string) float64 {
	n := len(y)

	h := mat.NewSymDense(2, nil)
	for i := 0; i < n; i++ {
		w := p[i] * (1 - p[i])
		h.SetSym(0, 0, h.At(0, 0)+w)
		h.SetSym(0, 1, h.At(0, 1)+w*x[i])
		h.SetSym(1, 1, h.At(1, 1)+w*x[i]*x[i])
	}

	var hinv mat.Dense
	if err := hinv.Inverse(h); err != nil {
		return math.NaN()
	}

	// Within-cluster score sums s_g = sum_i x_i (y_i - p_i).
	scores := make(map[string][2]float64)
	for i := 0; i < n; i++ {
		r := y[i] - p[i]
		s := scores[clusters[i]]
		s[0] += r
		s[1] += r * x[i]
		scores[clusters[i]] = s
	}

	meat := mat.NewSymDense(2, nil)
	for _, s := range scores {
		meat.SetSym(0, 0, meat.At(0, 0)+s[0]*s[0])
		meat.SetSym(0, 1, meat.At(0, 1)+s[0]*s[1])
		meat.SetSym(1, 1, meat.At(1, 1)+s[1]*s[1])
	}

	g := len(scores)
	if g < 2 {
		return math.NaN()
	}
	correction := float64(g) / float64(g-1)

	var tmp, cov mat.Dense
	tmp.Mul(&hinv, meat)
	cov.Mul(&tmp, &hinv)

	v := cov.At(1, 1) * correction
	if v <= 0 {
		return math.NaN()
	}
	return math.Sqrt(v)
}

func sigmoid(eta float64) float64 {
	return 1 / (1 + math.Exp(-eta))
}
