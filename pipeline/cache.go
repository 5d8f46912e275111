package pipeline

import lru "github.com/hashicorp/golang-lru/v2"

// WithCache memoizes up to size predictions keyed by the submitted values.
// The artifacts are immutable, so a hit is identical to a fresh run.
func WithCache(size int) Option {
	return func(p *Pipeline) {
		if size <= 0 {
			return
		}
		cache, err := lru.New[Customer, *Prediction](size)
		if err != nil {
			return
		}
		p.cache = cache
	}
}

func (p *Pipeline) lookup(c Customer) (*Prediction, bool) {
	if p.cache == nil {
		return nil, false
	}
	hit, ok := p.cache.Get(c)
	if !ok {
		return nil, false
	}
	return hit.clone(), true
}

func (p *Pipeline) store(c Customer, result *Prediction) {
	if p.cache == nil {
		return
	}
	p.cache.Add(c, result.clone())
}

func (p *Prediction) clone() *Prediction {
	return &Prediction{
		Label:         p.Label,
		Probabilities: append([]float64(nil), p.Probabilities...),
	}
}
