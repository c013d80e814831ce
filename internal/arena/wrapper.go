package arena

import "fmt"

// Action-space transformation wrappers. Both wrappers satisfy Actor and
// re-encode the wrapped actor's structured action channel into a flat
// Discrete space through an exact bijection, so learning-side code only ever
// sees enumerable integer actions.

// RavelActionWrapper re-encodes the wrapped actor's action space of size N
// into Discrete(N) via mixed-radix positional encoding.
type RavelActionWrapper struct {
	inner Actor
}

// NewRavelActionWrapper wraps an actor with the ravel bijection.
func NewRavelActionWrapper(inner Actor) *RavelActionWrapper {
	return &RavelActionWrapper{inner: inner}
}

// Unwrapped returns the wrapped actor.
func (w *RavelActionWrapper) Unwrapped() Actor { return w.inner }

func (w *RavelActionWrapper) Key() string { return w.inner.Key() }

func (w *RavelActionWrapper) Supports(a *Agent) bool { return w.inner.Supports(a) }

func (w *RavelActionWrapper) Space(a *Agent) Space {
	return Discrete{N: w.inner.Space(a).Size()}
}

// WrapAction maps a flat action back to the wrapped actor's structured point.
func (w *RavelActionWrapper) WrapAction(a *Agent, flat int) (any, error) {
	return w.inner.Space(a).Unravel(flat)
}

// UnwrapAction maps a structured point to its flat action.
func (w *RavelActionWrapper) UnwrapAction(a *Agent, point any) (int, error) {
	return w.inner.Space(a).Ravel(point)
}

func (w *RavelActionWrapper) ProcessAction(a *Agent, action any) (any, error) {
	flat, ok := action.(int)
	if !ok {
		return nil, fmt.Errorf("ravelled action for %s must be an int, got %T", a.ID, action)
	}
	point, err := w.WrapAction(a, flat)
	if err != nil {
		return nil, fmt.Errorf("ravelled action for %s: %w", a.ID, err)
	}
	return w.inner.ProcessAction(a, point)
}

// ExclusiveChannelActionWrapper flattens a keyed dict of independently
// raveled subspaces n_1..n_k under the constraint that at most one channel is
// nonzero per turn. Flat size is (sum of n_k) - (k-1): index 0 maps to all
// channels zero, the next n_1-1 indexes to channel 1 nonzero with the rest
// zero, and so on. Total bijection in both directions.
type ExclusiveChannelActionWrapper struct {
	inner Actor
}

// NewExclusiveChannelActionWrapper wraps an actor whose action space is a
// DictSpace of discrete channels.
func NewExclusiveChannelActionWrapper(inner Actor) *ExclusiveChannelActionWrapper {
	return &ExclusiveChannelActionWrapper{inner: inner}
}

// Unwrapped returns the wrapped actor.
func (w *ExclusiveChannelActionWrapper) Unwrapped() Actor { return w.inner }

func (w *ExclusiveChannelActionWrapper) Key() string { return w.inner.Key() }

func (w *ExclusiveChannelActionWrapper) Supports(a *Agent) bool { return w.inner.Supports(a) }

func (w *ExclusiveChannelActionWrapper) Space(a *Agent) Space {
	dict, err := w.channels(a)
	if err != nil {
		return Discrete{N: 0}
	}
	return Discrete{N: ExclusiveChannelSize(dict)}
}

func (w *ExclusiveChannelActionWrapper) channels(a *Agent) (DictSpace, error) {
	dict, ok := w.inner.Space(a).(DictSpace)
	if !ok {
		return DictSpace{}, fmt.Errorf(
			"exclusive channel wrapper on %q requires a dict action space, got %T",
			w.inner.Key(), w.inner.Space(a))
	}
	return dict, nil
}

// WrapAction maps a flat action to the dict point with at most one nonzero
// channel.
func (w *ExclusiveChannelActionWrapper) WrapAction(a *Agent, flat int) (any, error) {
	dict, err := w.channels(a)
	if err != nil {
		return nil, err
	}
	return ExclusiveChannelUnflatten(dict, flat)
}

// UnwrapAction maps a dict point back to its flat action.
func (w *ExclusiveChannelActionWrapper) UnwrapAction(a *Agent, point any) (int, error) {
	dict, err := w.channels(a)
	if err != nil {
		return 0, err
	}
	return ExclusiveChannelFlatten(dict, point)
}

func (w *ExclusiveChannelActionWrapper) ProcessAction(a *Agent, action any) (any, error) {
	flat, ok := action.(int)
	if !ok {
		return nil, fmt.Errorf("exclusive channel action for %s must be an int, got %T", a.ID, action)
	}
	point, err := w.WrapAction(a, flat)
	if err != nil {
		return nil, fmt.Errorf("exclusive channel action for %s: %w", a.ID, err)
	}
	return w.inner.ProcessAction(a, point)
}

// ExclusiveChannelSize returns the flat size (sum of n_k) - (k-1) for the
// dict's channels.
func ExclusiveChannelSize(dict DictSpace) int {
	size := 1
	for _, k := range dict.Keys() {
		size += dict.Sub(k).Size() - 1
	}
	return size
}

// ExclusiveChannelUnflatten maps a flat index to a dict point in which at
// most one channel is nonzero. Index 0 yields every channel's zero point.
func ExclusiveChannelUnflatten(dict DictSpace, flat int) (map[string]any, error) {
	if flat < 0 || flat >= ExclusiveChannelSize(dict) {
		return nil, fmt.Errorf("index %d outside exclusive channel space of size %d",
			flat, ExclusiveChannelSize(dict))
	}
	point := make(map[string]any, len(dict.Keys()))
	for _, k := range dict.Keys() {
		zero, err := dict.Sub(k).Unravel(0)
		if err != nil {
			return nil, err
		}
		point[k] = zero
	}
	if flat == 0 {
		return point, nil
	}
	offset := 1
	for _, k := range dict.Keys() {
		n := dict.Sub(k).Size()
		if flat < offset+n-1 {
			sub, err := dict.Sub(k).Unravel(flat - offset + 1)
			if err != nil {
				return nil, err
			}
			point[k] = sub
			return point, nil
		}
		offset += n - 1
	}
	// Unreachable given the bounds check above.
	return nil, fmt.Errorf("index %d not covered by any channel", flat)
}

// ExclusiveChannelFlatten maps a dict point with at most one nonzero channel
// back to its flat index. Points with two or more nonzero channels are
// outside the declared domain and fail loudly.
func ExclusiveChannelFlatten(dict DictSpace, point any) (int, error) {
	v, ok := point.(map[string]any)
	if !ok {
		return 0, fmt.Errorf("point %T is not a dict point", point)
	}
	flat := 0
	nonzero := 0
	offset := 1
	for _, k := range dict.Keys() {
		sub, err := dict.Sub(k).Ravel(v[k])
		if err != nil {
			return 0, fmt.Errorf("channel %q: %w", k, err)
		}
		if sub != 0 {
			nonzero++
			flat = offset + sub - 1
		}
		offset += dict.Sub(k).Size() - 1
	}
	if nonzero > 1 {
		return 0, fmt.Errorf("point has %d nonzero channels; the exclusive channel space admits at most one", nonzero)
	}
	return flat, nil
}
