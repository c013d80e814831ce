package arena

import (
	"fmt"
	"math/rand"
	"sort"
)

// Action spaces are trees of countable discrete axes. Every space defines an
// exact bijection between its points and the flat range [0,Size()) via
// mixed-radix positional encoding, most significant axis first. Ravel and
// Unravel are total only on the declared domain and fail loudly outside it.
//
// Point representations:
//
//	Discrete    int
//	IntBox      []int
//	MultiBinary []int (0/1)
//	DictSpace   map[string]any, keys in sorted order
//	TupleSpace  []any
type Space interface {
	// Size returns the number of points in the space.
	Size() int
	// Contains reports whether p is a point of this space.
	Contains(p any) bool
	// Ravel maps a point to its flat index.
	Ravel(p any) (int, error)
	// Unravel maps a flat index back to its point.
	Unravel(i int) (any, error)
	// Sample draws a uniform random point.
	Sample(rng *rand.Rand) any
	// Null returns the designated no-op point.
	Null() any
}

// Discrete is the integer range [0,N).
type Discrete struct {
	N int
}

func (d Discrete) Size() int { return d.N }

func (d Discrete) Contains(p any) bool {
	v, ok := p.(int)
	return ok && v >= 0 && v < d.N
}

func (d Discrete) Ravel(p any) (int, error) {
	if !d.Contains(p) {
		return 0, fmt.Errorf("point %v is not in Discrete(%d)", p, d.N)
	}
	return p.(int), nil
}

func (d Discrete) Unravel(i int) (any, error) {
	if i < 0 || i >= d.N {
		return nil, fmt.Errorf("index %d outside Discrete(%d)", i, d.N)
	}
	return i, nil
}

func (d Discrete) Sample(rng *rand.Rand) any { return rng.Intn(d.N) }

func (d Discrete) Null() any { return 0 }

// IntBox is a fixed-shape vector of bounded integers. Low and High have equal
// length and bound each element inclusively. Callers flatten multi-dimensional
// windows row-major.
type IntBox struct {
	Low, High []int
}

// UniformBox returns an IntBox with n elements all bounded by [low,high].
func UniformBox(low, high, n int) IntBox {
	b := IntBox{Low: make([]int, n), High: make([]int, n)}
	for i := 0; i < n; i++ {
		b.Low[i] = low
		b.High[i] = high
	}
	return b
}

func (b IntBox) Size() int {
	size := 1
	for i := range b.Low {
		size *= b.High[i] - b.Low[i] + 1
	}
	return size
}

func (b IntBox) Contains(p any) bool {
	v, ok := p.([]int)
	if !ok || len(v) != len(b.Low) {
		return false
	}
	for i, x := range v {
		if x < b.Low[i] || x > b.High[i] {
			return false
		}
	}
	return true
}

func (b IntBox) Ravel(p any) (int, error) {
	if !b.Contains(p) {
		return 0, fmt.Errorf("point %v is not in box %v..%v", p, b.Low, b.High)
	}
	v := p.([]int)
	flat := 0
	for i, x := range v {
		flat = flat*(b.High[i]-b.Low[i]+1) + (x - b.Low[i])
	}
	return flat, nil
}

func (b IntBox) Unravel(i int) (any, error) {
	if i < 0 || i >= b.Size() {
		return nil, fmt.Errorf("index %d outside box of size %d", i, b.Size())
	}
	v := make([]int, len(b.Low))
	for k := len(b.Low) - 1; k >= 0; k-- {
		radix := b.High[k] - b.Low[k] + 1
		v[k] = i%radix + b.Low[k]
		i /= radix
	}
	return v, nil
}

func (b IntBox) Sample(rng *rand.Rand) any {
	v := make([]int, len(b.Low))
	for i := range v {
		v[i] = b.Low[i] + rng.Intn(b.High[i]-b.Low[i]+1)
	}
	return v
}

func (b IntBox) Null() any {
	v := make([]int, len(b.Low))
	for i := range v {
		if b.Low[i] > 0 {
			v[i] = b.Low[i]
		} else if b.High[i] < 0 {
			v[i] = b.High[i]
		}
	}
	return v
}

// MultiBinary is a fixed-length vector of 0/1 flags.
type MultiBinary struct {
	N int
}

func (m MultiBinary) Size() int {
	return 1 << m.N
}

func (m MultiBinary) Contains(p any) bool {
	v, ok := p.([]int)
	if !ok || len(v) != m.N {
		return false
	}
	for _, x := range v {
		if x != 0 && x != 1 {
			return false
		}
	}
	return true
}

func (m MultiBinary) Ravel(p any) (int, error) {
	if !m.Contains(p) {
		return 0, fmt.Errorf("point %v is not in MultiBinary(%d)", p, m.N)
	}
	flat := 0
	for _, x := range p.([]int) {
		flat = flat<<1 | x
	}
	return flat, nil
}

func (m MultiBinary) Unravel(i int) (any, error) {
	if i < 0 || i >= m.Size() {
		return nil, fmt.Errorf("index %d outside MultiBinary(%d)", i, m.N)
	}
	v := make([]int, m.N)
	for k := m.N - 1; k >= 0; k-- {
		v[k] = i & 1
		i >>= 1
	}
	return v, nil
}

func (m MultiBinary) Sample(rng *rand.Rand) any {
	v := make([]int, m.N)
	for i := range v {
		v[i] = rng.Intn(2)
	}
	return v
}

func (m MultiBinary) Null() any {
	return make([]int, m.N)
}

// DictSpace is a keyed product of subspaces. Keys contribute to the encoding
// in sorted order so the bijection does not depend on construction order.
type DictSpace struct {
	keys []string
	subs map[string]Space
}

// NewDictSpace builds a DictSpace from named subspaces.
func NewDictSpace(subs map[string]Space) DictSpace {
	keys := make([]string, 0, len(subs))
	for k := range subs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return DictSpace{keys: keys, subs: subs}
}

// Keys returns the subspace keys in sorted order.
func (d DictSpace) Keys() []string { return d.keys }

// Sub returns the subspace registered under key.
func (d DictSpace) Sub(key string) Space { return d.subs[key] }

func (d DictSpace) Size() int {
	size := 1
	for _, k := range d.keys {
		size *= d.subs[k].Size()
	}
	return size
}

func (d DictSpace) Contains(p any) bool {
	v, ok := p.(map[string]any)
	if !ok || len(v) != len(d.keys) {
		return false
	}
	for _, k := range d.keys {
		sub, present := v[k]
		if !present || !d.subs[k].Contains(sub) {
			return false
		}
	}
	return true
}

func (d DictSpace) Ravel(p any) (int, error) {
	v, ok := p.(map[string]any)
	if !ok {
		return 0, fmt.Errorf("point %T is not a dict point", p)
	}
	flat := 0
	for _, k := range d.keys {
		sub, err := d.subs[k].Ravel(v[k])
		if err != nil {
			return 0, fmt.Errorf("key %q: %w", k, err)
		}
		flat = flat*d.subs[k].Size() + sub
	}
	return flat, nil
}

func (d DictSpace) Unravel(i int) (any, error) {
	if i < 0 || i >= d.Size() {
		return nil, fmt.Errorf("index %d outside dict space of size %d", i, d.Size())
	}
	v := make(map[string]any, len(d.keys))
	for k := len(d.keys) - 1; k >= 0; k-- {
		key := d.keys[k]
		radix := d.subs[key].Size()
		sub, err := d.subs[key].Unravel(i % radix)
		if err != nil {
			return nil, err
		}
		v[key] = sub
		i /= radix
	}
	return v, nil
}

func (d DictSpace) Sample(rng *rand.Rand) any {
	v := make(map[string]any, len(d.keys))
	for _, k := range d.keys {
		v[k] = d.subs[k].Sample(rng)
	}
	return v
}

func (d DictSpace) Null() any {
	v := make(map[string]any, len(d.keys))
	for _, k := range d.keys {
		v[k] = d.subs[k].Null()
	}
	return v
}

// TupleSpace is an ordered product of subspaces.
type TupleSpace struct {
	Subs []Space
}

func (t TupleSpace) Size() int {
	size := 1
	for _, s := range t.Subs {
		size *= s.Size()
	}
	return size
}

func (t TupleSpace) Contains(p any) bool {
	v, ok := p.([]any)
	if !ok || len(v) != len(t.Subs) {
		return false
	}
	for i, s := range t.Subs {
		if !s.Contains(v[i]) {
			return false
		}
	}
	return true
}

func (t TupleSpace) Ravel(p any) (int, error) {
	v, ok := p.([]any)
	if !ok || len(v) != len(t.Subs) {
		return 0, fmt.Errorf("point %v is not a tuple point of arity %d", p, len(t.Subs))
	}
	flat := 0
	for i, s := range t.Subs {
		sub, err := s.Ravel(v[i])
		if err != nil {
			return 0, fmt.Errorf("element %d: %w", i, err)
		}
		flat = flat*s.Size() + sub
	}
	return flat, nil
}

func (t TupleSpace) Unravel(i int) (any, error) {
	if i < 0 || i >= t.Size() {
		return nil, fmt.Errorf("index %d outside tuple space of size %d", i, t.Size())
	}
	v := make([]any, len(t.Subs))
	for k := len(t.Subs) - 1; k >= 0; k-- {
		radix := t.Subs[k].Size()
		sub, err := t.Subs[k].Unravel(i % radix)
		if err != nil {
			return nil, err
		}
		v[k] = sub
		i /= radix
	}
	return v, nil
}

func (t TupleSpace) Sample(rng *rand.Rand) any {
	v := make([]any, len(t.Subs))
	for i, s := range t.Subs {
		v[i] = s.Sample(rng)
	}
	return v
}

func (t TupleSpace) Null() any {
	v := make([]any, len(t.Subs))
	for i, s := range t.Subs {
		v[i] = s.Null()
	}
	return v
}
