// SPDX-License-Identifier: MPL-2.0

package sandbox

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMountSpec is the sentinel error wrapped by InvalidMountSpecError.
var ErrInvalidMountSpec = errors.New("invalid mount spec")

type (
	// ExpandContext carries every value placeholder expansion may consult.
	// Callers supply it explicitly at invocation time; nothing here reads
	// the process environment mid-resolution, so expansion is a pure
	// function of (token, context) and deterministic under test.
	ExpandContext struct {
		// WorkDir is substituted for $PWD.
		WorkDir string
		// Home is substituted for a leading ~.
		Home string
		// Environ resolves $NAME and ${NAME} references.
		Environ map[string]string
	}

	// MountSpec is one expanded source/destination pair for a bind mount.
	MountSpec struct {
		Source string
		Dest   string
	}

	// InvalidMountSpecError is returned when a mount token expands to an
	// empty source or destination. Fatal only for the command declaring it.
	InvalidMountSpecError struct {
		Token  string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidMountSpecError) Error() string {
	return fmt.Sprintf("invalid mount spec %q: %s", e.Token, e.Reason)
}

// Unwrap returns ErrInvalidMountSpec so callers can use errors.Is for
// programmatic detection.
func (e *InvalidMountSpecError) Unwrap() error { return ErrInvalidMountSpec }

// Expand substitutes placeholders in one path-or-value string: a leading ~
// becomes the home directory, $PWD becomes the working directory, and
// $NAME / ${NAME} become the corresponding context entry. A reference to an
// absent variable is left as literal text rather than silently expanding to
// an empty string.
func (c ExpandContext) Expand(s string) string {
	if s == "~" {
		return c.Home
	}
	if strings.HasPrefix(s, "~/") {
		s = c.Home + s[1:]
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '$' {
			b.WriteByte(s[i])
			i++
			continue
		}

		// ${NAME}
		if i+1 < len(s) && s[i+1] == '{' {
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				b.WriteString(s[i:])
				break
			}
			name := s[i+2 : i+2+end]
			if val, ok := c.lookup(name); ok {
				b.WriteString(val)
			} else {
				b.WriteString(s[i : i+2+end+1])
			}
			i += 2 + end + 1
			continue
		}

		// $NAME
		j := i + 1
		for j < len(s) && isNameByte(s[j], j > i+1) {
			j++
		}
		if j == i+1 {
			b.WriteByte('$')
			i++
			continue
		}
		name := s[i+1 : j]
		if val, ok := c.lookup(name); ok {
			b.WriteString(val)
		} else {
			b.WriteString(s[i:j])
		}
		i = j
	}
	return b.String()
}

// Mount expands one raw mount token into a source/destination pair. The
// token splits on the first unescaped colon; a bare token mounts the path at
// itself. An empty source or destination after expansion is an error: a
// mount that silently collapsed to nothing would weaken the sandbox.
func (c ExpandContext) Mount(token string) (MountSpec, error) {
	src, dst, pair := splitMountToken(token)

	source := c.Expand(src)
	if source == "" {
		return MountSpec{}, &InvalidMountSpecError{Token: token, Reason: "source expands to an empty path"}
	}

	if !pair {
		return MountSpec{Source: source, Dest: source}, nil
	}

	dest := c.Expand(dst)
	if dest == "" {
		return MountSpec{}, &InvalidMountSpecError{Token: token, Reason: "destination expands to an empty path"}
	}
	return MountSpec{Source: source, Dest: dest}, nil
}

// Tmpfs expands one tmpfs destination token.
func (c ExpandContext) Tmpfs(token string) (string, error) {
	dest := c.Expand(token)
	if dest == "" {
		return "", &InvalidMountSpecError{Token: token, Reason: "destination expands to an empty path"}
	}
	return dest, nil
}

// lookup resolves a placeholder name. $PWD always means the supplied working
// directory, even when the context environment carries its own PWD.
func (c ExpandContext) lookup(name string) (string, bool) {
	if name == "PWD" {
		return c.WorkDir, true
	}
	val, ok := c.Environ[name]
	return val, ok
}

// splitMountToken splits a raw token on the first unescaped colon.
// A backslash escapes the following colon (and itself); escapes are removed
// from the returned halves.
func splitMountToken(token string) (src, dst string, pair bool) {
	var b strings.Builder
	for i := 0; i < len(token); i++ {
		ch := token[i]
		if ch == '\\' && i+1 < len(token) && (token[i+1] == ':' || token[i+1] == '\\') {
			b.WriteByte(token[i+1])
			i++
			continue
		}
		if ch == ':' {
			return b.String(), unescape(token[i+1:]), true
		}
		b.WriteByte(ch)
	}
	return b.String(), "", false
}

// unescape removes backslash escapes from the destination half.
func unescape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == ':' || s[i+1] == '\\') {
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// isNameByte reports whether ch may appear in a $NAME reference at the given
// position (rest=false for the first byte).
func isNameByte(ch byte, rest bool) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch == '_':
		return true
	case ch >= '0' && ch <= '9':
		return rest
	}
	return false
}
