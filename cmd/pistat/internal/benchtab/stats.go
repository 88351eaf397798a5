// Copyright 2026 The PiBench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchtab

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
)

// A Summary summarizes a sample by its median and a
// distribution-free confidence interval for the median.
type Summary struct {
	// Center is the median of the sample.
	Center float64

	// Lo and Hi are the bounds of the confidence interval. If the
	// sample is too small for the requested confidence, they are
	// -Inf and +Inf.
	Lo, Hi float64

	// Confidence is the confidence level of [Lo, Hi].
	Confidence float64

	// Warnings is a list of problems with this summary.
	Warnings []error
}

func summarize(xs []float64, confidence float64) Summary {
	s := Summary{Center: stats.Sample{Xs: xs}.Quantile(0.5), Confidence: confidence}

	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := len(sorted)

	// The interval between order statistics l and h (0-based)
	// covers the median with probability P(l < B <= h) for
	// B ~ Binomial(n, 1/2). Widen symmetrically from the center
	// until that reaches the confidence level.
	bin := stats.BinomialDist{N: n, P: 0.5}
	for l := (n - 1) / 2; l >= 0; l-- {
		h := n - 1 - l
		if bin.CDF(float64(h))-bin.CDF(float64(l)) >= confidence {
			s.Lo, s.Hi = sorted[l], sorted[h]
			return s
		}
	}
	s.Lo, s.Hi = math.Inf(-1), math.Inf(1)
	s.Warnings = append(s.Warnings, fmt.Errorf("need >= %d samples for confidence interval at level %v", minCISamples(confidence), confidence))
	return s
}

// minCISamples returns the smallest sample size whose widest interval,
// [min, max], covers the median with the given confidence.
func minCISamples(confidence float64) int {
	// The coverage of [min, max] is 1 - 2^(1-n).
	return int(math.Ceil(math.Log2(2 / (1 - confidence))))
}

// PctRangeString returns the half-width of the confidence interval
// as a percentage of the center, such as "3%". It returns "∞" if
// there is no confidence interval.
func (s Summary) PctRangeString() string {
	if math.IsInf(s.Lo, 0) || math.IsInf(s.Hi, 0) {
		return "∞"
	}
	if s.Lo == s.Center && s.Hi == s.Center {
		return "0%"
	}
	pct := math.Max(s.Hi/s.Center-1, 1-s.Lo/s.Center)
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "?"
	}
	return fmt.Sprintf("%.0f%%", math.Abs(pct)*100)
}

// A Comparison is the result of comparing two samples with a
// Mann-Whitney U-test.
type Comparison struct {
	// P is the p-value of the test. A small value means the
	// samples probably come from different distributions.
	P float64

	// N1 and N2 are the sizes of the baseline and compared
	// samples.
	N1, N2 int

	// Alpha is the significance level P is judged against.
	Alpha float64

	// Warnings is a list of problems with this comparison.
	Warnings []error
}

func compare(base, xs []float64, alpha float64) Comparison {
	c := Comparison{P: 1, N1: len(base), N2: len(xs), Alpha: alpha}
	res, err := stats.MannWhitneyUTest(base, xs, stats.LocationDiffers)
	switch {
	case errors.Is(err, stats.ErrSamplesEqual):
		// Identical samples do not differ.
	case err != nil:
		c.Warnings = append(c.Warnings, err)
	default:
		c.P = res.P
	}
	if need := minMWUSamples(alpha); c.P >= alpha && (c.N1 < need || c.N2 < need) {
		c.Warnings = append(c.Warnings, fmt.Errorf("need >= %d samples to detect a difference at alpha level %v", need, alpha))
	}
	return c
}

// minMWUSamples returns the smallest n such that two samples of size
// n can reject the null hypothesis at level alpha. The smallest
// two-sided p-value for samples of size n is 2 / C(2n, n).
func minMWUSamples(alpha float64) int {
	c := 2.0 // C(2, 1)
	for n := 1; n < 100; n++ {
		if 2/c < alpha {
			return n
		}
		// C(2n+2, n+1) = C(2n, n) * (2n+1)(2n+2) / (n+1)^2
		c = c * float64((2*n+1)*(2*n+2)) / float64((n+1)*(n+1))
	}
	return 100
}

// Significant reports whether the compared samples differ at level
// Alpha, that is, whether P < Alpha.
func (c Comparison) Significant() bool {
	return c.P < c.Alpha
}

// FormatDelta formats the change from old to new as a percentage.
// It returns "~" if the difference is not significant, and "?" if
// there is no meaningful ratio.
func (c Comparison) FormatDelta(old, new float64) string {
	if !c.Significant() {
		return "~"
	}
	if old == 0 {
		return "?"
	}
	return fmt.Sprintf("%+.2f%%", (new/old-1)*100)
}

// String returns the test statistics, such as "p=0.002 n=10" or
// "p=0.002 n=10+8".
func (c Comparison) String() string {
	if c.N1 == c.N2 {
		return fmt.Sprintf("p=%0.3f n=%d", c.P, c.N1)
	}
	return fmt.Sprintf("p=%0.3f n=%d+%d", c.P, c.N1, c.N2)
}
