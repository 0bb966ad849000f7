package directive

import (
	"strings"
)

// Parse tokenizes one raw provider response into its directives, in document
// order, and the leftover narrative text with every matched tag span removed
// and the edges trimmed.
//
// The grammar is deliberately flat: any syntactically valid tag is stripped
// from the narrative even when the dispatcher does not know its name, tags do
// not nest, and a paired tag closes at the first matching close tag. A
// malformed attribute list yields whatever pairs could be scanned rather than
// failing the directive.
func Parse(raw string) ([]Directive, string) {
	var (
		directives []Directive
		narrative  strings.Builder
	)

	i := 0
	for i < len(raw) {
		open := strings.IndexByte(raw[i:], '<')
		if open < 0 {
			narrative.WriteString(raw[i:])
			break
		}
		open += i
		narrative.WriteString(raw[i:open])

		d, end, ok := parseTag(raw, open)
		if !ok {
			// Not a tag; keep the '<' as narrative text.
			narrative.WriteByte('<')
			i = open + 1
			continue
		}
		directives = append(directives, d)
		i = end
	}

	return directives, strings.TrimSpace(narrative.String())
}

// parseTag attempts to read a complete tag starting at raw[start] == '<'.
// It returns the directive, the index just past the tag span, and whether a
// syntactically valid tag was found.
func parseTag(raw string, start int) (Directive, int, bool) {
	i := start + 1

	// Tag name: one or more [a-zA-Z_].
	nameStart := i
	for i < len(raw) && isNameChar(raw[i]) {
		i++
	}
	if i == nameStart {
		return Directive{}, 0, false
	}
	name := raw[nameStart:i]

	// Everything up to the closing '>' is the attribute segment. A '<' before
	// the '>' means the open tag never closed.
	gt := strings.IndexByte(raw[i:], '>')
	if gt < 0 {
		return Directive{}, 0, false
	}
	segment := raw[i : i+gt]
	if strings.IndexByte(segment, '<') >= 0 {
		return Directive{}, 0, false
	}
	afterOpen := i + gt + 1

	// Self-closing form: <name attr="v" />
	if strings.HasSuffix(strings.TrimSpace(segment), "/") {
		trimmed := strings.TrimSpace(segment)
		return Directive{
			Name:  name,
			Attrs: parseAttrs(trimmed[:len(trimmed)-1]),
		}, afterOpen, true
	}

	// Paired form: the body runs to the first matching close tag; nested
	// same-named tags are not supported.
	closeTag := "</" + name + ">"
	closeIdx := strings.Index(raw[afterOpen:], closeTag)
	if closeIdx < 0 {
		return Directive{}, 0, false
	}
	body := raw[afterOpen : afterOpen+closeIdx]

	return Directive{
		Name:  name,
		Attrs: parseAttrs(segment),
		Body:  body,
	}, afterOpen + closeIdx + len(closeTag), true
}

// parseAttrs scans key="value" pairs from an attribute segment. Anything that
// does not fit the shape is skipped, so a malformed list produces a partial
// map instead of an error.
func parseAttrs(segment string) map[string]string {
	attrs := make(map[string]string)
	i := 0
	for i < len(segment) {
		// Skip to the start of a key.
		for i < len(segment) && !isWordChar(segment[i]) {
			i++
		}
		keyStart := i
		for i < len(segment) && isWordChar(segment[i]) {
			i++
		}
		if keyStart == i {
			break
		}
		key := segment[keyStart:i]

		// Require ="..." immediately after the key.
		if i+1 >= len(segment) || segment[i] != '=' || segment[i+1] != '"' {
			continue
		}
		i += 2
		valueEnd := strings.IndexByte(segment[i:], '"')
		if valueEnd < 0 {
			break
		}
		attrs[key] = segment[i : i+valueEnd]
		i += valueEnd + 1
	}
	return attrs
}

func isNameChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordChar(c byte) bool {
	return isNameChar(c) || (c >= '0' && c <= '9')
}
