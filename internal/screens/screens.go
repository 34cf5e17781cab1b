// Package screens lists the business screens the shell can open and builds
// the search store behind each of them.
package screens

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/five82/erpdesk/internal/erpapi"
	"github.com/five82/erpdesk/internal/search"
)

// Row is one grid line as returned by the backend.
type Row map[string]any

// Query is the search request body every list endpoint accepts.
type Query struct {
	Keyword string            `json:"keyword,omitempty"`
	Params  map[string]string `json:"params,omitempty"`
}

// Column describes one grid column.
type Column struct {
	Key   string
	Title string
	Width int
	Right bool
}

// Action is a screen button guarded by a button permission.
type Action struct {
	ObjectID string
	Label    string
	Key      string
}

// Definition binds a route to its backend endpoint and grid layout.
type Definition struct {
	Route      string
	Title      string
	Endpoint   string
	Columns    []Column
	Actions    []Action
	Required   []string
	CountLabel string
}

// Validate reports the first required parameter missing from q.
func (d Definition) Validate(q Query) error {
	for _, name := range d.Required {
		if strings.TrimSpace(q.Params[name]) == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	return nil
}

// Searcher runs a list query. *erpapi.Client satisfies it through Adapt.
type Searcher interface {
	Search(ctx context.Context, endpoint string, q Query) ([]Row, error)
}

type clientSearcher struct {
	client *erpapi.Client
}

// Adapt exposes an API client as a Searcher.
func Adapt(client *erpapi.Client) Searcher {
	return clientSearcher{client: client}
}

func (c clientSearcher) Search(ctx context.Context, endpoint string, q Query) ([]Row, error) {
	return erpapi.Search[Row](ctx, c.client, endpoint, q)
}

// NewStore returns the search store for d. Validation and the success
// count notice come from the definition; opts add to them.
func NewStore(d Definition, s Searcher, opts ...search.Option) *search.Store[Query, Row] {
	fetch := func(ctx context.Context, q Query) ([]Row, error) {
		return s.Search(ctx, d.Endpoint, q)
	}
	all := []search.Option{search.WithName(d.Route), search.WithValidate(d.Validate)}
	if d.CountLabel != "" {
		all = append(all, search.WithSuccessCount(d.CountLabel))
	}
	all = append(all, opts...)
	return search.New(fetch, all...)
}

// ParseQuery splits search box input into key=value parameters and free
// keyword text.
func ParseQuery(input string) Query {
	q := Query{}
	var words []string
	for _, field := range strings.Fields(input) {
		key, value, ok := strings.Cut(field, "=")
		if ok && key != "" {
			if q.Params == nil {
				q.Params = make(map[string]string)
			}
			q.Params[key] = value
			continue
		}
		words = append(words, field)
	}
	q.Keyword = strings.Join(words, " ")
	return q
}

// String renders q back into search box form.
func (q Query) String() string {
	keys := make([]string, 0, len(q.Params))
	for k := range q.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		parts = append(parts, k+"="+q.Params[k])
	}
	if q.Keyword != "" {
		parts = append(parts, q.Keyword)
	}
	return strings.Join(parts, " ")
}

// Registry indexes definitions by route.
type Registry struct {
	defs    []Definition
	byRoute map[string]int
}

// NewRegistry fails on an empty or duplicate route.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{byRoute: make(map[string]int, len(defs))}
	for _, d := range defs {
		route := strings.TrimRight(d.Route, "/")
		if route == "" {
			return nil, fmt.Errorf("screen %q has no route", d.Title)
		}
		if _, dup := r.byRoute[route]; dup {
			return nil, fmt.Errorf("duplicate screen route %s", route)
		}
		d.Route = route
		r.byRoute[route] = len(r.defs)
		r.defs = append(r.defs, d)
	}
	return r, nil
}

// Lookup returns the definition registered for route, ignoring any query
// string and trailing slash.
func (r *Registry) Lookup(route string) (Definition, bool) {
	route, _, _ = strings.Cut(route, "?")
	idx, ok := r.byRoute[strings.TrimRight(route, "/")]
	if !ok {
		return Definition{}, false
	}
	return r.defs[idx], true
}

// All returns the definitions in registration order.
func (r *Registry) All() []Definition {
	return append([]Definition(nil), r.defs...)
}
