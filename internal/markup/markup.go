// Package markup tokenizes the inline role markup used in release-note
// entries: cross-reference roles (:func:`pkg.io.read_raw`), issue
// references (:gh:`11969`), contributor tags (:newcontrib:`Jane Doe`),
// named references (`Jane Doe`_), and double-backtick literals.
//
// The scanner is deliberately strict: malformed markup renders as garbage
// downstream, so unterminated roles and bare single-backtick text are
// reported as errors rather than passed through.
package markup

import (
	"fmt"
	"strings"
)

// Kind identifies the type of a scanned token.
type Kind int

const (
	// KindText is plain prose between markup constructs.
	KindText Kind = iota
	// KindRole is an interpreted-text role such as :func:`target`.
	KindRole
	// KindNamedRef is a named reference such as `Jane Doe`_.
	KindNamedRef
	// KindLiteral is inline literal text such as ``code``.
	KindLiteral
)

// CrossRefRoles are the roles resolved against the documented library's
// symbol inventory.
var CrossRefRoles = map[string]bool{
	"func":  true,
	"class": true,
	"meth":  true,
	"attr":  true,
	"mod":   true,
	"data":  true,
}

// KnownRoles is every role the toolchain understands. Roles outside this
// set are surfaced by the unknown-role lint rule.
var KnownRoles = map[string]bool{
	"func":       true,
	"class":      true,
	"meth":       true,
	"attr":       true,
	"mod":        true,
	"data":       true,
	"ref":        true,
	"doc":        true,
	"term":       true,
	"gh":         true,
	"newcontrib": true,
}

// Token is a single scanned markup construct.
type Token struct {
	Kind Kind
	// Offset is the byte offset of the token within the scanned text.
	Offset int
	// Raw is the original markup slice, including delimiters.
	Raw string
	// Name is the role name. Empty for non-role tokens.
	Name string
	// Content is the role content, reference name, literal body, or the
	// text itself for plain-text tokens.
	Content string
}

// Target returns the resolvable target of a cross-reference token.
// The leading "~" shorthand (render only the last path component) is
// stripped since it has no effect on resolution.
func (t Token) Target() string {
	return strings.TrimPrefix(t.Content, "~")
}

// DisplayText returns the text a reader sees once the markup is rendered.
func (t Token) DisplayText() string {
	switch t.Kind {
	case KindRole:
		if t.Name == "gh" {
			return "#" + t.Content
		}
		if CrossRefRoles[t.Name] && strings.HasPrefix(t.Content, "~") {
			target := t.Target()
			if i := strings.LastIndex(target, "."); i >= 0 {
				return target[i+1:]
			}
			return target
		}
		return t.Content
	case KindNamedRef, KindLiteral:
		return t.Content
	default:
		return t.Content
	}
}

// ScanError reports malformed markup with its byte offset in the scanned text.
type ScanError struct {
	Offset  int
	Message string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("markup error at offset %d: %s", e.Offset, e.Message)
}

// Scan tokenizes entry text into a sequence of text, role, reference, and
// literal tokens. Backslash escapes the following character into plain text.
func Scan(text string) ([]Token, error) {
	var tokens []Token
	start := 0

	emitText := func(end int) {
		if end > start {
			tokens = append(tokens, Token{
				Kind:    KindText,
				Offset:  start,
				Raw:     text[start:end],
				Content: text[start:end],
			})
		}
	}

	i := 0
	for i < len(text) {
		switch text[i] {
		case '\\':
			if i+1 >= len(text) {
				// Trailing backslash stays literal.
				i++
				continue
			}
			emitText(i)
			tokens = append(tokens, Token{
				Kind:    KindText,
				Offset:  i,
				Raw:     text[i : i+2],
				Content: text[i+1 : i+2],
			})
			i += 2
			start = i
		case '`':
			tok, next, err := scanBacktick(text, i)
			if err != nil {
				return nil, err
			}
			emitText(i)
			tokens = append(tokens, tok)
			i = next
			start = i
		case ':':
			tok, next, ok, err := scanRole(text, i)
			if err != nil {
				return nil, err
			}
			if !ok {
				i++
				continue
			}
			emitText(i)
			tokens = append(tokens, tok)
			i = next
			start = i
		default:
			i++
		}
	}
	emitText(len(text))
	return tokens, nil
}

// Strip returns the display text of the markup: roles, references, and
// literals are replaced with what a reader would see. Malformed markup is
// returned unchanged.
func Strip(text string) string {
	tokens, err := Scan(text)
	if err != nil {
		return text
	}
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.DisplayText())
	}
	return sb.String()
}

// scanBacktick handles double-backtick literals and named references (`X`_)
// starting at position i, which must hold a backtick.
func scanBacktick(text string, i int) (Token, int, error) {
	if i+1 < len(text) && text[i+1] == '`' {
		end := strings.Index(text[i+2:], "``")
		if end < 0 {
			return Token{}, 0, &ScanError{Offset: i, Message: "unterminated literal (missing closing ``)"}
		}
		raw := text[i : i+end+4]
		return Token{
			Kind:    KindLiteral,
			Offset:  i,
			Raw:     raw,
			Content: text[i+2 : i+2+end],
		}, i + len(raw), nil
	}

	end := strings.IndexByte(text[i+1:], '`')
	if end < 0 {
		return Token{}, 0, &ScanError{Offset: i, Message: "unterminated reference (missing closing `)"}
	}
	closing := i + 1 + end
	if closing+1 >= len(text) || text[closing+1] != '_' {
		return Token{}, 0, &ScanError{
			Offset:  i,
			Message: "single-backtick text without a role; use ``...`` for literals or `Name`_ for contributor references",
		}
	}
	return Token{
		Kind:    KindNamedRef,
		Offset:  i,
		Raw:     text[i : closing+2],
		Content: text[i+1 : closing],
	}, closing + 2, nil
}

// scanRole attempts to scan a :name:`content` role starting at position i,
// which must hold a colon. A colon that does not introduce a role is left
// for the caller to treat as plain text.
func scanRole(text string, i int) (Token, int, bool, error) {
	j := i + 1
	for j < len(text) && isRoleNameByte(text[j]) {
		j++
	}
	if j == i+1 || j >= len(text) || text[j] != ':' {
		return Token{}, 0, false, nil
	}
	if j+1 >= len(text) || text[j+1] != '`' {
		return Token{}, 0, false, nil
	}

	name := text[i+1 : j]
	end := strings.IndexByte(text[j+2:], '`')
	if end < 0 {
		return Token{}, 0, false, &ScanError{
			Offset:  i,
			Message: fmt.Sprintf("unterminated :%s: role (missing closing `)", name),
		}
	}
	if end == 0 {
		return Token{}, 0, false, &ScanError{
			Offset:  i,
			Message: fmt.Sprintf("empty :%s: role", name),
		}
	}

	contentStart := j + 2
	closing := contentStart + end
	return Token{
		Kind:    KindRole,
		Offset:  i,
		Raw:     text[i : closing+1],
		Name:    name,
		Content: text[contentStart:closing],
	}, closing + 1, true, nil
}

func isRoleNameByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '+' || c == '.':
		return true
	}
	return false
}
