package cache

import (
	"fmt"
	"strings"
)

const keySep = ":"

// GenerateKey joins prefix and id, e.g. "narrative:BTCUSDT".
func GenerateKey(prefix string, id string) string {
	return prefix + keySep + id
}

// GenerateKeyWithParams appends every param to prefix, separated by ':'.
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range params {
		b.WriteString(keySep)
		fmt.Fprint(&b, p)
	}
	return b.String()
}

// BuildPattern matches every key starting with prefix. Glob metacharacters in
// prefix are escaped so symbols and idea keys match literally.
func BuildPattern(prefix string) string {
	return EscapePattern(prefix) + "*"
}

// EscapePattern escapes * ? [ ] and \ for Redis and path.Match globs.
func EscapePattern(s string) string {
	if !strings.ContainsAny(s, `*?[]\`) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
