package report

import (
	"fmt"
	"strings"
)

// header pairs a literal line prefix with the token it opens.
type header struct {
	prefix string
	token  string
}

// SplitSections splits raw into the bodies of tokens. Token k is opened by
// a line starting with "{k+1}. {token}"; matching is an exact,
// case-sensitive prefix test. The header line is not part of the body.
//
// Lines before the first header are dropped and tokens that never open are
// absent from the result. A renumbered or skipped header does not open
// anything, so its content lands in the previously opened section.
func SplitSections(raw string, tokens []string) map[string]string {
	headers := make([]header, len(tokens))
	for k, t := range tokens {
		headers[k] = header{prefix: fmt.Sprintf("%d. %s", k+1, t), token: t}
	}
	return scan(raw, headers)
}

// Split is SplitSections driven by the declarations of spec, using each
// declaration's own ordinal.
func Split(raw string, spec PromptSpec) map[string]string {
	headers := make([]header, len(spec.Sections))
	for i, d := range spec.Sections {
		headers[i] = header{prefix: d.Header(), token: d.Token}
	}
	return scan(raw, headers)
}

func scan(raw string, headers []header) map[string]string {
	out := make(map[string]string, len(headers))

	var (
		open    bool
		current string
		body    []string
	)
	flush := func() {
		if open {
			out[current] = strings.TrimSpace(strings.Join(body, "\n"))
		}
		body = body[:0]
	}

	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	for _, line := range strings.Split(raw, "\n") {
		if token, ok := opens(line, headers); ok {
			flush()
			open, current = true, token
			continue
		}
		if open {
			body = append(body, line)
		}
	}
	flush()
	return out
}

func opens(line string, headers []header) (string, bool) {
	for _, h := range headers {
		if strings.HasPrefix(line, h.prefix) {
			return h.token, true
		}
	}
	return "", false
}
