package patterns

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-aop-go/asceticaop/reflection"
)

var ErrMalformedPattern = errors.New("malformed pattern")

const (
	AnyWildcard   = "*"
	EagerWildcard = ".."
	SubtypeMarker = "+"
	VoidTypeName  = "void"
)

// NamePattern matches simple (undotted) names, `*` standing for any run of
// characters.
type NamePattern struct {
	pattern string
	re      *regexp.Regexp
}

func CompileName(pattern string) (NamePattern, error) {
	if pattern == "" {
		return NamePattern{}, errors.Wrap(ErrMalformedPattern, "empty name pattern")
	}
	for _, r := range pattern {
		if r != '*' && !isIdentRune(r) {
			return NamePattern{}, errors.Wrapf(ErrMalformedPattern, "name pattern %q: unexpected character %q", pattern, r)
		}
	}
	if pattern == AnyWildcard {
		return NamePattern{pattern: pattern}, nil
	}
	parts := strings.Split(pattern, AnyWildcard)
	for i := range parts {
		parts[i] = regexp.QuoteMeta(parts[i])
	}
	re, err := regexp.Compile("^" + strings.Join(parts, ".*") + "$")
	if err != nil {
		return NamePattern{}, errors.Wrapf(ErrMalformedPattern, "name pattern %q: %v", pattern, err)
	}
	return NamePattern{pattern: pattern, re: re}, nil
}

func (p NamePattern) Matches(name string) bool {
	if p.re == nil {
		return true
	}
	return p.re.MatchString(name)
}

func (p NamePattern) String() string {
	if p.pattern == "" {
		return AnyWildcard
	}
	return p.pattern
}

// TypePattern matches dotted type names. `*` matches within one segment,
// `..` matches any number of package segments, a trailing `+` also accepts
// subtypes of matching types. The lone `..` is the eager wildcard of
// parameter and argument lists.
type TypePattern struct {
	pattern      string
	hierarchical bool
	eager        bool
	re           *regexp.Regexp
}

func CompileType(pattern string) (TypePattern, error) {
	p := strings.TrimSpace(pattern)
	if p == "" {
		return TypePattern{}, errors.Wrap(ErrMalformedPattern, "empty type pattern")
	}
	if p == EagerWildcard {
		return TypePattern{pattern: p, eager: true}, nil
	}
	hierarchical := strings.HasSuffix(p, SubtypeMarker)
	p = strings.TrimSuffix(p, SubtypeMarker)
	if p == "" || strings.Contains(p, "...") || strings.HasSuffix(p, ".") || strings.HasPrefix(p, ".") && !strings.HasPrefix(p, EagerWildcard) {
		return TypePattern{}, errors.Wrapf(ErrMalformedPattern, "type pattern %q", pattern)
	}
	for _, r := range p {
		if r != '*' && r != '.' && r != '[' && r != ']' && !isIdentRune(r) {
			return TypePattern{}, errors.Wrapf(ErrMalformedPattern, "type pattern %q: unexpected character %q", pattern, r)
		}
	}
	if p == AnyWildcard {
		return TypePattern{pattern: p, hierarchical: hierarchical}, nil
	}

	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(p); {
		switch {
		case strings.HasPrefix(p[i:], EagerWildcard):
			if i == 0 {
				b.WriteString(`(?:.*\.)?`)
			} else {
				b.WriteString(`\.(?:.*\.)?`)
			}
			i += len(EagerWildcard)
		case p[i] == '*':
			b.WriteString(`[^.]*`)
			i++
		default:
			b.WriteString(regexp.QuoteMeta(p[i : i+1]))
			i++
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return TypePattern{}, errors.Wrapf(ErrMalformedPattern, "type pattern %q: %v", pattern, err)
	}
	return TypePattern{pattern: p, hierarchical: hierarchical, re: re}, nil
}

func MustCompileType(pattern string) TypePattern {
	tp, err := CompileType(pattern)
	if err != nil {
		panic(err)
	}
	return tp
}

// Pattern returns the pattern text without the subtype marker.
func (p TypePattern) Pattern() string {
	return p.pattern
}

func (p TypePattern) IsHierarchical() bool {
	return p.hierarchical
}

func (p TypePattern) IsEagerWildcard() bool {
	return p.eager
}

func (p TypePattern) IsAny() bool {
	return !p.eager && p.re == nil
}

func (p TypePattern) MatchesName(name string) bool {
	if p.re == nil {
		return true
	}
	return p.re.MatchString(name)
}

func (p TypePattern) Matches(class reflection.ClassInfo) bool {
	if p.re == nil {
		return true
	}
	if class == nil {
		return false
	}
	if !p.hierarchical {
		return p.MatchesName(class.Name())
	}
	return reflection.IsSubtypeOf(class, func(c reflection.ClassInfo) bool {
		return p.MatchesName(c.Name())
	})
}

func (p TypePattern) String() string {
	if p.pattern == "" {
		return AnyWildcard
	}
	if p.hierarchical {
		return p.pattern + SubtypeMarker
	}
	return p.pattern
}

// ModifierPattern requires every modifier of one mask and forbids every
// modifier of the other.
type ModifierPattern struct {
	required  reflection.Modifiers
	forbidden reflection.Modifiers
}

func NewModifierPattern(required, forbidden reflection.Modifiers) ModifierPattern {
	return ModifierPattern{required: required, forbidden: forbidden}
}

func (p ModifierPattern) Required() reflection.Modifiers {
	return p.required
}

func (p ModifierPattern) Forbidden() reflection.Modifiers {
	return p.forbidden
}

func (p ModifierPattern) IsEmpty() bool {
	return p.required == 0 && p.forbidden == 0
}

func (p ModifierPattern) Matches(modifiers reflection.Modifiers) bool {
	return modifiers&p.required == p.required && modifiers&p.forbidden == 0
}

func (p ModifierPattern) String() string {
	parts := make([]string, 0, 2)
	if p.required != 0 {
		parts = append(parts, p.required.String())
	}
	if p.forbidden != 0 {
		for _, name := range strings.Fields(p.forbidden.String()) {
			parts = append(parts, "!"+name)
		}
	}
	return strings.Join(parts, " ")
}

func (p *ModifierPattern) add(token string) error {
	negated := strings.HasPrefix(token, "!")
	modifier, err := reflection.ParseModifier(strings.TrimPrefix(token, "!"))
	if err != nil {
		return errors.Wrapf(ErrMalformedPattern, "%v", err)
	}
	if negated {
		p.forbidden |= modifier
	} else {
		p.required |= modifier
	}
	if p.required&p.forbidden != 0 {
		return errors.Wrapf(ErrMalformedPattern, "modifier %q is both required and forbidden", token)
	}
	return nil
}

// AttributePattern tests the presence (or with `!@` the absence) of an
// annotation by exact name.
type AttributePattern struct {
	name    string
	negated bool
}

func CompileAttribute(token string) (AttributePattern, error) {
	negated := strings.HasPrefix(token, "!")
	name := strings.TrimPrefix(strings.TrimPrefix(token, "!"), "@")
	if !strings.HasPrefix(strings.TrimPrefix(token, "!"), "@") || name == "" {
		return AttributePattern{}, errors.Wrapf(ErrMalformedPattern, "attribute pattern %q", token)
	}
	return AttributePattern{name: name, negated: negated}, nil
}

func (p AttributePattern) Name() string {
	return p.name
}

func (p AttributePattern) IsNegated() bool {
	return p.negated
}

func (p AttributePattern) Matches(e reflection.Element) bool {
	return reflection.HasAnnotation(e, p.name) != p.negated
}

func (p AttributePattern) String() string {
	if p.negated {
		return "!@" + p.name
	}
	return "@" + p.name
}

// MatchAttributes reports whether every attribute pattern matches the element.
func MatchAttributes(attributes []AttributePattern, e reflection.Element) bool {
	for _, a := range attributes {
		if !a.Matches(e) {
			return false
		}
	}
	return true
}

// MatchParameters matches a declared parameter list against actual types.
// Each eager wildcard stands for zero or more actual parameters, wherever it
// appears. Without wildcards the counts must be equal.
func MatchParameters(declared []TypePattern, actual []reflection.ClassInfo) bool {
	_, ok := AlignParameters(declared, actual)
	return ok
}

// AlignParameters is MatchParameters reporting where every declared pattern
// landed: declared[i] matched actual[positions[i]]. Eager wildcards get -1.
// Runs of patterns between wildcards take the leftmost place that fits.
func AlignParameters(declared []TypePattern, actual []reflection.ClassInfo) (positions []int, ok bool) {
	n := len(declared)
	if n == 0 {
		return nil, len(actual) == 0
	}
	positions = make([]int, n)
	for i := range positions {
		positions[i] = -1
	}
	var segments [][2]int
	start := 0
	for i, p := range declared {
		if p.IsEagerWildcard() {
			if i > start {
				segments = append(segments, [2]int{start, i})
			}
			start = i + 1
		}
	}
	if start < n {
		segments = append(segments, [2]int{start, n})
	}
	if len(segments) == 1 && segments[0] == [2]int{0, n} {
		if len(actual) != n || !matchAt(declared, actual, 0) {
			return nil, false
		}
		place(positions, segments[0], 0)
		return positions, true
	}

	lo, hi := 0, len(actual)
	if len(segments) > 0 && segments[0][0] == 0 {
		head := segments[0]
		if !matchAt(declared[head[0]:head[1]], actual, 0) {
			return nil, false
		}
		place(positions, head, 0)
		lo = head[1]
		segments = segments[1:]
	}
	if len(segments) > 0 && segments[len(segments)-1][1] == n {
		tail := segments[len(segments)-1]
		at := hi - (tail[1] - tail[0])
		if at < lo || !matchAt(declared[tail[0]:tail[1]], actual, at) {
			return nil, false
		}
		place(positions, tail, at)
		hi = at
		segments = segments[:len(segments)-1]
	}
	for _, seg := range segments {
		size := seg[1] - seg[0]
		found := false
		for at := lo; at+size <= hi; at++ {
			if matchAt(declared[seg[0]:seg[1]], actual[:hi], at) {
				place(positions, seg, at)
				lo = at + size
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return positions, true
}

func place(positions []int, segment [2]int, at int) {
	for i := segment[0]; i < segment[1]; i++ {
		positions[i] = at + i - segment[0]
	}
}

func matchAt(declared []TypePattern, actual []reflection.ClassInfo, offset int) bool {
	for i, p := range declared {
		if offset+i >= len(actual) || !p.Matches(actual[offset+i]) {
			return false
		}
	}
	return true
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' || r == '<' || r == '>'
}
