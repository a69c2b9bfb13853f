package payment

import (
	"go.uber.org/fx"

	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
)

// Registry resolves adapters by gateway name.
type Registry struct {
	gateways map[model.Gateway]Gateway
}

// NewRegistry indexes gateways by name.
func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[model.Gateway]Gateway, len(gateways))}
	for _, g := range gateways {
		if g != nil {
			r.gateways[g.Name()] = g
		}
	}
	return r
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Gateway, error) {
	if g, ok := r.gateways[model.Gateway(name)]; ok {
		return g, nil
	}
	return nil, domainErrors.ErrUnknownGateway
}

// Module builds the registry from every adapter in the "gateways" group.
var Module = fx.Provide(newRegistry)

type registryParams struct {
	fx.In

	Gateways []Gateway `group:"gateways"`
}

func newRegistry(p registryParams) *Registry {
	return NewRegistry(p.Gateways...)
}
