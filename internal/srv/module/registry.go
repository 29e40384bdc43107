package module

// Registry maps module names to providers, keeping registration order for
// listings.
type Registry struct {
	names     []string
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{
		providers: map[string]Provider{},
	}
}

func (r *Registry) Register(provider Provider) {
	name := provider.Name()
	if _, exists := r.providers[name]; !exists {
		r.names = append(r.names, name)
	}
	r.providers[name] = provider
}

func (r *Registry) Get(name string) (Provider, bool) {
	provider, ok := r.providers[name]
	return provider, ok
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}
