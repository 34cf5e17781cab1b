package menu

import (
	"net/url"
	"path"
	"strings"
)

const (
	// DefaultDevPrefix is the source directory stripped from menu paths that
	// were registered against development file locations.
	DefaultDevPrefix = "/src"

	appRoot      = "/app"
	pagesSegment = "pages/"
)

var pageExtensions = []string{".tsx", ".ts", ".jsx", ".js"}

// Resolver maps a URL path to the program that owns it.
type Resolver struct {
	DevPrefix string
}

// DefaultResolver strips DefaultDevPrefix.
var DefaultResolver = Resolver{DevPrefix: DefaultDevPrefix}

// ResolveProgramNo resolves currentPath against tree with DefaultResolver.
func ResolveProgramNo(currentPath string, tree []Item) (string, bool) {
	return DefaultResolver.ResolveProgramNo(currentPath, tree)
}

type candidate struct {
	item  Item
	route string
}

// ResolveProgramNo walks the current path from its longest prefix down to its
// first segment. For each prefix the first menu in pre-order whose route
// equals the prefix, or lies beneath it, wins. When no prefix matches, the
// last path segment is compared case-insensitively with each menu's file
// name.
func (r Resolver) ResolveProgramNo(currentPath string, tree []Item) (string, bool) {
	flat := Flatten(tree)
	if len(flat) == 0 {
		return "", false
	}

	candidates := make([]candidate, 0, len(flat))
	for _, it := range flat {
		route := r.NormalizeRoute(it.Path)
		if route == "" {
			continue
		}
		candidates = append(candidates, candidate{item: it, route: route})
	}

	segments := splitSegments(currentPath)
	for n := len(segments); n >= 1; n-- {
		prefix := "/" + strings.Join(segments[:n], "/")
		for _, c := range candidates {
			if c.route == prefix || strings.HasPrefix(c.route, prefix+"/") {
				return c.item.ProgramNo, true
			}
		}
	}

	if len(segments) == 0 {
		return "", false
	}
	last := segments[len(segments)-1]
	for _, it := range flat {
		if it.Path == "" {
			continue
		}
		if strings.EqualFold(fileStem(it.Path), last) {
			return it.ProgramNo, true
		}
	}
	return "", false
}

// NormalizeRoute turns a menu path into the route the shell serves it under.
// Source-file paths inside a pages directory become /app/<dir>; anything else
// is rooted under /app. Empty paths yield "".
func (r Resolver) NormalizeRoute(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		return ""
	}
	if prefix := strings.TrimRight(r.DevPrefix, "/"); prefix != "" {
		if trimmed == prefix {
			trimmed = "/"
		} else if strings.HasPrefix(trimmed, prefix+"/") {
			trimmed = strings.TrimPrefix(trimmed, prefix)
		}
	}

	if hasPageExtension(trimmed) {
		if idx := strings.Index(trimmed, pagesSegment); idx >= 0 {
			rest := trimmed[idx+len(pagesSegment):]
			dir := path.Dir(rest)
			if dir == "." {
				dir = ""
			}
			return collapseSlashes(appRoot + "/" + dir)
		}
	}

	route := collapseSlashes("/" + trimmed)
	if route == appRoot || strings.HasPrefix(route, appRoot+"/") {
		return route
	}
	return collapseSlashes(appRoot + route)
}

func splitSegments(p string) []string {
	if u, err := url.Parse(p); err == nil {
		p = u.Path
	}
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func hasPageExtension(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, e := range pageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func fileStem(p string) string {
	base := path.Base(strings.TrimRight(p, "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

func collapseSlashes(p string) string {
	var b strings.Builder
	b.Grow(len(p))
	prevSlash := false
	for _, r := range p {
		if r == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteRune(r)
	}
	out := b.String()
	if len(out) > 1 {
		out = strings.TrimRight(out, "/")
	}
	return out
}
