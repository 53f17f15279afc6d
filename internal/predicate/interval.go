package predicate

// Interval is the set of values a column may take under the range and
// equality terms of a conjunction. An unset side is unbounded.
type Interval struct {
	Lo, Hi         int64
	HasLo, HasHi   bool
	LoIncl, HiIncl bool
}

// Unbounded is the interval admitting every value
var Unbounded = Interval{}

// Narrows reports whether an operator can shrink an interval. != cannot:
// it punches a hole instead.
func (o Op) Narrows() bool {
	return o != OpNe
}

// Intersect narrows the interval by one comparison. Comparisons that do
// not narrow return the interval unchanged.
func (iv Interval) Intersect(c Comparison) Interval {
	switch c.Op {
	case OpEq:
		iv = iv.withLo(c.Value, true)
		iv = iv.withHi(c.Value, true)
	case OpGt:
		iv = iv.withLo(c.Value, false)
	case OpGe:
		iv = iv.withLo(c.Value, true)
	case OpLt:
		iv = iv.withHi(c.Value, false)
	case OpLe:
		iv = iv.withHi(c.Value, true)
	}
	return iv
}

func (iv Interval) withLo(v int64, incl bool) Interval {
	switch {
	case !iv.HasLo, v > iv.Lo:
		iv.Lo, iv.LoIncl, iv.HasLo = v, incl, true
	case v == iv.Lo:
		iv.LoIncl = iv.LoIncl && incl
	}
	return iv
}

func (iv Interval) withHi(v int64, incl bool) Interval {
	switch {
	case !iv.HasHi, v < iv.Hi:
		iv.Hi, iv.HiIncl, iv.HasHi = v, incl, true
	case v == iv.Hi:
		iv.HiIncl = iv.HiIncl && incl
	}
	return iv
}

// Empty reports whether no value satisfies the interval
func (iv Interval) Empty() bool {
	if !iv.HasLo || !iv.HasHi {
		return false
	}
	if iv.Lo > iv.Hi {
		return true
	}
	return iv.Lo == iv.Hi && !(iv.LoIncl && iv.HiIncl)
}

// IsPoint reports whether the interval admits exactly one value
func (iv Interval) IsPoint() bool {
	return iv.HasLo && iv.HasHi && iv.Lo == iv.Hi && iv.LoIncl && iv.HiIncl
}

// Constrained reports whether either side is bounded
func (iv Interval) Constrained() bool {
	return iv.HasLo || iv.HasHi
}

// Contains reports whether v lies in the interval
func (iv Interval) Contains(v int64) bool {
	if iv.HasLo && (v < iv.Lo || (v == iv.Lo && !iv.LoIncl)) {
		return false
	}
	if iv.HasHi && (v > iv.Hi || (v == iv.Hi && !iv.HiIncl)) {
		return false
	}
	return true
}

// Intervals folds the narrowing terms of p into one interval per column
func Intervals(p Predicate) map[string]Interval {
	out := make(map[string]Interval)
	for _, c := range p {
		if !c.Op.Narrows() {
			continue
		}
		out[c.Column] = out[c.Column].Intersect(c)
	}
	return out
}
