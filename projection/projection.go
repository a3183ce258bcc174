package projection

// Projection is a mapping of target SmartData element to value which preserves insertion order.
// Setting an existing target replaces its value and keeps its position.
type Projection struct {
	targets []string
	values  map[string]string
}

func NewProjection() *Projection {
	return &Projection{
		values: make(map[string]string),
	}
}

func (p *Projection) Set(target, value string) {
	if _, ok := p.values[target]; !ok {
		p.targets = append(p.targets, target)
	}
	p.values[target] = value
}

func (p *Projection) Get(target string) (string, bool) {
	if p == nil {
		return "", false
	}
	value, ok := p.values[target]
	return value, ok
}

func (p *Projection) Has(target string) bool {
	_, ok := p.values[target]
	return ok
}

func (p *Projection) Len() int {
	return len(p.targets)
}

func (p *Projection) Targets() []string {
	targets := make([]string, len(p.targets))
	copy(targets, p.targets)
	return targets
}

// Each calls fn for every target in insertion order
func (p *Projection) Each(fn func(target, value string)) {
	for _, target := range p.targets {
		fn(target, p.values[target])
	}
}

// Map returns a copy of the projection as a plain map
func (p *Projection) Map() map[string]string {
	result := make(map[string]string, len(p.values))
	for target, value := range p.values {
		result[target] = value
	}
	return result
}
