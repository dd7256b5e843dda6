package gesture

// Sampler queries the current pointer state.
// Implementations must not block longer than the underlying OS call.
type Sampler interface {
	Sample() (PointerSample, error)
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func() (PointerSample, error)

func (f SamplerFunc) Sample() (PointerSample, error) { return f() }
