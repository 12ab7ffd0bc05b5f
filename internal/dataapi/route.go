package dataapi

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// placeholderRe matches ":name" tokens; callers keep only those that end at
// a slash or at the end of the template.
var placeholderRe = regexp.MustCompile(`:([^:/]+)`)

// BuildRoute substitutes ":name" placeholders in template with values from
// params. It returns the final path and the parameters that were not used by
// the template. params itself is not modified.
func BuildRoute(template string, params map[string]string) (string, map[string]string, error) {
	remaining := make(map[string]string, len(params))
	for k, v := range params {
		remaining[k] = v
	}

	var b strings.Builder
	last := 0
	for _, m := range placeholderRe.FindAllStringSubmatchIndex(template, -1) {
		start, end := m[0], m[1]
		if end < len(template) && template[end] != '/' {
			continue
		}

		key := template[m[2]:m[3]]
		value, ok := remaining[key]
		if !ok {
			return "", nil, fmt.Errorf("%w: %q", ErrMissingParameter, key)
		}
		delete(remaining, key)

		b.WriteString(template[last:start])
		b.WriteString(url.PathEscape(value))
		last = end
	}
	b.WriteString(template[last:])

	return b.String(), remaining, nil
}

// BuildQuery renders params as a query string with keys in lexicographic
// order. Empty params yield an empty string.
func BuildQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	values := make(url.Values, len(params))
	for k, v := range params {
		values.Set(k, v)
	}
	// Encode sorts by key.
	return values.Encode()
}

// AppendQuery appends the query string for params to rawURL, returning
// rawURL unchanged when params is empty.
func AppendQuery(rawURL string, params map[string]string) string {
	query := BuildQuery(params)
	if query == "" {
		return rawURL
	}
	return rawURL + "?" + query
}
