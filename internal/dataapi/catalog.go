package dataapi

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Endpoint describes one remote operation at a given minimum API version.
type Endpoint struct {
	// ID is the operation name, e.g. "authenticate".
	ID string `json:"id" yaml:"id"`
	// Verb is the HTTP method: GET, POST, PUT or DELETE.
	Verb string `json:"verb" yaml:"verb"`
	// Route is the path template with ":param" placeholders.
	Route string `json:"route" yaml:"route"`
	// Version is the minimum API version this shape applies to.
	Version int `json:"version" yaml:"version"`
}

// Catalog is the set of endpoints published by one remote service.
type Catalog struct {
	endpoints []Endpoint
}

// NewCatalog creates a catalog from a list of endpoints.
func NewCatalog(endpoints []Endpoint) *Catalog {
	eps := make([]Endpoint, len(endpoints))
	copy(eps, endpoints)
	return &Catalog{endpoints: eps}
}

// Endpoints returns a copy of every entry in the catalog.
func (c *Catalog) Endpoints() []Endpoint {
	eps := make([]Endpoint, len(c.endpoints))
	copy(eps, c.endpoints)
	return eps
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.endpoints)
}

// Resolve returns the entry for operationID with the greatest version that
// does not exceed version. Selection among duplicate (id, version) pairs is
// unspecified.
func (c *Catalog) Resolve(operationID string, version int) (Endpoint, error) {
	matches := lo.Filter(c.endpoints, func(ep Endpoint, _ int) bool {
		return ep.ID == operationID && ep.Version <= version
	})
	if len(matches) == 0 {
		return Endpoint{}, fmt.Errorf("%w: %s", ErrUnknownOperation, operationID)
	}

	return lo.MaxBy(matches, func(a, b Endpoint) bool {
		return a.Version > b.Version
	}), nil
}

// Operations returns the sorted, de-duplicated ids resolvable at version.
func (c *Catalog) Operations(version int) []string {
	ids := lo.FilterMap(c.endpoints, func(ep Endpoint, _ int) (string, bool) {
		return ep.ID, ep.Version <= version
	})
	ids = lo.Uniq(ids)
	sort.Strings(ids)
	return ids
}
