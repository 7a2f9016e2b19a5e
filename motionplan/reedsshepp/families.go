package reedsshepp

import (
	"math"
)

// The formulas below follow Reeds, J.A. and Shepp, L.A., "Optimal paths for a car that goes both
// forwards and backwards", Pacific J. Math 145(2), 1990, section 8. They operate on a problem
// normalized to a unit turning radius with the start at the origin facing +X. Every family solves
// one canonical word and reaches the others through time-flip (x, y, phi) -> (-x, y, -phi) and
// reflection (x, y, phi) -> (x, -y, -phi) symmetries.

// Tolerance when checking segment signs.
const familyEpsilon = 1e-10

// Letters of the words in wordTable, indexed by candidate.word.
var wordTable = [18][]SegmentType{
	{Left, Right, Left},
	{Right, Left, Right},
	{Left, Right, Left, Right},
	{Right, Left, Right, Left},
	{Left, Right, Straight, Left},
	{Right, Left, Straight, Right},
	{Left, Straight, Right, Left},
	{Right, Straight, Left, Right},
	{Left, Right, Straight, Right},
	{Right, Left, Straight, Left},
	{Right, Straight, Right, Left},
	{Left, Straight, Left, Right},
	{Left, Straight, Right},
	{Right, Straight, Left},
	{Left, Straight, Left},
	{Right, Straight, Right},
	{Left, Right, Straight, Left, Right},
	{Right, Left, Straight, Right, Left},
}

// candidate is one solved word with signed segment lengths in units of the turning radius.
type candidate struct {
	word    int
	lengths []float64
}

func (c candidate) totalLength() float64 {
	total := 0.
	for _, l := range c.lengths {
		total += math.Abs(l)
	}
	return total
}

// mod2pi returns x in (-pi, pi].
func mod2pi(x float64) float64 {
	v := math.Mod(x, 2*math.Pi)
	if v < -math.Pi {
		v += 2 * math.Pi
	} else if v > math.Pi {
		v -= 2 * math.Pi
	}
	return v
}

func polar(x, y float64) (r, theta float64) {
	return math.Hypot(x, y), math.Atan2(y, x)
}

func tauOmega(u, v, xi, eta, phi float64) (tau, omega float64) {
	delta := mod2pi(u - v)
	a := math.Sin(u) - math.Sin(delta)
	b := math.Cos(u) - math.Cos(delta) - 1
	t1 := math.Atan2(eta*a-xi*b, xi*a+eta*b)
	t2 := 2*(math.Cos(delta)-math.Cos(v)-math.Cos(u)) + 3
	if t2 < 0 {
		tau = mod2pi(t1 + math.Pi)
	} else {
		tau = mod2pi(t1)
	}
	omega = mod2pi(tau - u + v - phi)
	return tau, omega
}

// formula 8.1.
func lpSpLp(x, y, phi float64) (t, u, v float64, ok bool) {
	u, t = polar(x-math.Sin(phi), y-1+math.Cos(phi))
	if t >= -familyEpsilon {
		v = mod2pi(phi - t)
		if v >= -familyEpsilon {
			return t, u, v, true
		}
	}
	return 0, 0, 0, false
}

// formula 8.2.
func lpSpRp(x, y, phi float64) (t, u, v float64, ok bool) {
	u1, t1 := polar(x+math.Sin(phi), y-1-math.Cos(phi))
	u1 *= u1
	if u1 < 4 {
		return 0, 0, 0, false
	}
	u = math.Sqrt(u1 - 4)
	theta := math.Atan2(2, u)
	t = mod2pi(t1 + theta)
	v = mod2pi(t - phi)
	return t, u, v, t >= -familyEpsilon && v >= -familyEpsilon
}

// formula 8.3 / 8.4.
func lpRmL(x, y, phi float64) (t, u, v float64, ok bool) {
	xi := x - math.Sin(phi)
	eta := y - 1 + math.Cos(phi)
	u1, theta := polar(xi, eta)
	if u1 > 4 {
		return 0, 0, 0, false
	}
	u = -2 * math.Asin(0.25*u1)
	t = mod2pi(theta + 0.5*u + math.Pi)
	v = mod2pi(phi - t + u)
	return t, u, v, t >= -familyEpsilon && u <= familyEpsilon
}

// formula 8.7.
func lpRupLumRm(x, y, phi float64) (t, u, v float64, ok bool) {
	xi := x + math.Sin(phi)
	eta := y - 1 - math.Cos(phi)
	rho := 0.25 * (2 + math.Hypot(xi, eta))
	if rho > 1 {
		return 0, 0, 0, false
	}
	u = math.Acos(rho)
	t, v = tauOmega(u, -u, xi, eta, phi)
	return t, u, v, t >= -familyEpsilon && v <= familyEpsilon
}

// formula 8.8.
func lpRumLumRp(x, y, phi float64) (t, u, v float64, ok bool) {
	xi := x + math.Sin(phi)
	eta := y - 1 - math.Cos(phi)
	rho := (20 - xi*xi - eta*eta) / 16
	if rho < 0 || rho > 1 {
		return 0, 0, 0, false
	}
	u = -math.Acos(rho)
	if u < -0.5*math.Pi {
		return 0, 0, 0, false
	}
	t, v = tauOmega(u, u, xi, eta, phi)
	return t, u, v, t >= -familyEpsilon && v >= -familyEpsilon
}

// formula 8.9.
func lpRmSmLm(x, y, phi float64) (t, u, v float64, ok bool) {
	xi := x - math.Sin(phi)
	eta := y - 1 + math.Cos(phi)
	rho, theta := polar(xi, eta)
	if rho < 2 {
		return 0, 0, 0, false
	}
	r := math.Sqrt(rho*rho - 4)
	u = 2 - r
	t = mod2pi(theta + math.Atan2(r, -2))
	v = mod2pi(phi - 0.5*math.Pi - t)
	return t, u, v, t >= -familyEpsilon && u <= familyEpsilon && v <= familyEpsilon
}

// formula 8.10.
func lpRmSmRm(x, y, phi float64) (t, u, v float64, ok bool) {
	xi := x + math.Sin(phi)
	eta := y - 1 - math.Cos(phi)
	rho, theta := polar(-eta, xi)
	if rho < 2 {
		return 0, 0, 0, false
	}
	t = theta
	u = 2 - rho
	v = mod2pi(t + 0.5*math.Pi - phi)
	return t, u, v, t >= -familyEpsilon && u <= familyEpsilon && v <= familyEpsilon
}

// formula 8.11.
func lpRmSLmRp(x, y, phi float64) (t, u, v float64, ok bool) {
	xi := x + math.Sin(phi)
	eta := y - 1 - math.Cos(phi)
	rho, _ := polar(xi, eta)
	if rho < 2 {
		return 0, 0, 0, false
	}
	u = 4 - math.Sqrt(rho*rho-4)
	if u > familyEpsilon {
		return 0, 0, 0, false
	}
	t = mod2pi(math.Atan2((4-u)*xi-2*eta, -2*xi+(u-4)*eta))
	v = mod2pi(t - phi)
	return t, u, v, t >= -familyEpsilon && v >= -familyEpsilon
}

type familySolver func(x, y, phi float64) (t, u, v float64, ok bool)

// symmetric solves a family in its four symmetric variants. build turns the solved (t, u, v) and
// whether the variant is time-flipped into segment lengths; word and reflectedWord pick the letters.
func symmetric(
	out []candidate,
	solve familySolver,
	x, y, phi float64,
	word, reflectedWord int,
	build func(t, u, v float64) []float64,
) []candidate {
	variants := []struct {
		x, y, phi float64
		word      int
		flip      bool
	}{
		{x, y, phi, word, false},
		{-x, y, -phi, word, true},
		{x, -y, -phi, reflectedWord, false},
		{-x, -y, phi, reflectedWord, true},
	}
	for _, vr := range variants {
		t, u, v, ok := solve(vr.x, vr.y, vr.phi)
		if !ok {
			continue
		}
		lengths := build(t, u, v)
		if vr.flip {
			for i := range lengths {
				lengths[i] = -lengths[i]
			}
		}
		out = append(out, candidate{word: vr.word, lengths: lengths})
	}
	return out
}

func csc(out []candidate, x, y, phi float64) []candidate {
	straight := func(t, u, v float64) []float64 { return []float64{t, u, v} }
	out = symmetric(out, lpSpLp, x, y, phi, 14, 15, straight)
	return symmetric(out, lpSpRp, x, y, phi, 12, 13, straight)
}

func ccc(out []candidate, x, y, phi float64) []candidate {
	out = symmetric(out, lpRmL, x, y, phi, 0, 1, func(t, u, v float64) []float64 { return []float64{t, u, v} })

	// backwards
	xb := x*math.Cos(phi) + y*math.Sin(phi)
	yb := x*math.Sin(phi) - y*math.Cos(phi)
	return symmetric(out, lpRmL, xb, yb, phi, 0, 1, func(t, u, v float64) []float64 { return []float64{v, u, t} })
}

func cccc(out []candidate, x, y, phi float64) []candidate {
	out = symmetric(out, lpRupLumRm, x, y, phi, 2, 3, func(t, u, v float64) []float64 { return []float64{t, u, -u, v} })
	return symmetric(out, lpRumLumRp, x, y, phi, 2, 3, func(t, u, v float64) []float64 { return []float64{t, u, u, v} })
}

func ccsc(out []candidate, x, y, phi float64) []candidate {
	forward := func(t, u, v float64) []float64 { return []float64{t, -0.5 * math.Pi, u, v} }
	out = symmetric(out, lpRmSmLm, x, y, phi, 4, 5, forward)
	out = symmetric(out, lpRmSmRm, x, y, phi, 8, 9, forward)

	// backwards
	xb := x*math.Cos(phi) + y*math.Sin(phi)
	yb := x*math.Sin(phi) - y*math.Cos(phi)
	backward := func(t, u, v float64) []float64 { return []float64{v, u, -0.5 * math.Pi, t} }
	out = symmetric(out, lpRmSmLm, xb, yb, phi, 6, 7, backward)
	return symmetric(out, lpRmSmRm, xb, yb, phi, 10, 11, backward)
}

func ccscc(out []candidate, x, y, phi float64) []candidate {
	return symmetric(out, lpRmSLmRp, x, y, phi, 16, 17, func(t, u, v float64) []float64 {
		return []float64{t, -0.5 * math.Pi, u, -0.5 * math.Pi, v}
	})
}

// allCandidates returns every word solving the normalized problem.
func allCandidates(x, y, phi float64) []candidate {
	out := make([]candidate, 0, 48)
	out = csc(out, x, y, phi)
	out = ccc(out, x, y, phi)
	out = cccc(out, x, y, phi)
	out = ccsc(out, x, y, phi)
	return ccscc(out, x, y, phi)
}
