// -----------------------------------------------------------------------------
// Placeholder Allocation & Binding Absorption
// -----------------------------------------------------------------------------
// Named placeholder allocation, absorption of sub-builder and expression
// bindings, and the finalize step that assembles the binding set handed to
// the driver.
//
// Names are minted from a monotonic per-builder counter (qb_p0, qb_p1, ...).
// Absorbing a child fragment rewrites the child's placeholder names to fresh
// parent names in one pass, which is what makes composed queries
// collision-free: two children may both have used qb_p0, but after
// absorption each occurrence refers to a distinct parent name. Caller-managed
// placeholders are untouched because only names known to the child are
// rewritten.
// -----------------------------------------------------------------------------

package database

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultPlaceholderPrefix is the prefix of auto-allocated placeholder
// names.
const DefaultPlaceholderPrefix = "qb_p"

var (
	// placeholderToken matches a :name placeholder. Matching is greedy, so
	// :qb_p1 never matches inside :qb_p10.
	placeholderToken = regexp.MustCompile(`:[A-Za-z0-9_]+`)

	// callerPlaceholder matches a whole string that is exactly one :name
	// token. Such values are treated as caller-managed placeholders instead
	// of literals.
	callerPlaceholder = regexp.MustCompile(`^:[A-Za-z0-9_]+$`)

	// validPrefix restricts placeholder prefixes to name characters.
	validPrefix = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// bindingKind orders positional values by the clause family they belong to.
// The finalize step concatenates the lists in statement skeleton order.
type bindingKind int

const (
	bindSelect bindingKind = iota
	bindFrom
	bindJoin
	bindSet
	bindWhere
	bindHaving
)

// pendingParam marks a caller-managed ? slot in a positional list. The slot
// is filled from the runtime arguments of ExecuteArgs.
type pendingParam struct{}

// nextName mints a fresh placeholder name.
func (qb *QueryBuilder) nextName() string {
	name := qb.prefix + strconv.Itoa(qb.paramCounter)
	qb.paramCounter++
	return name
}

// allocate binds a value under a fresh name in the builder's own binding
// set and returns the name.
func (qb *QueryBuilder) allocate(value any) string {
	name := qb.nextName()
	qb.named[name] = value
	return name
}

// allocateEmbedded binds a value absorbed from a child under a fresh name.
// Embedded bindings are kept apart from the builder's own so both sets can
// be inspected, but they merge into one map at finalize.
func (qb *QueryBuilder) allocateEmbedded(value any) string {
	name := qb.nextName()
	qb.embedded[name] = value
	return name
}

// absorbFragment rewrites the placeholders of a child fragment to fresh
// names in this builder and copies their values into the embedded binding
// set. Only names found in the given source maps are rewritten; anything
// else is a caller-managed placeholder and passes through verbatim.
func (qb *QueryBuilder) absorbFragment(fragment string, sources ...map[string]any) string {
	renamed := make(map[string]string)
	return placeholderToken.ReplaceAllStringFunc(fragment, func(token string) string {
		name := token[1:]
		if fresh, ok := renamed[name]; ok {
			return ":" + fresh
		}
		for _, src := range sources {
			if value, ok := src[name]; ok {
				fresh := qb.allocateEmbedded(value)
				renamed[name] = fresh
				return ":" + fresh
			}
		}
		return token
	})
}

// absorbSub takes a rendered sub-builder fragment into this builder. In
// named mode the child's bindings are absorbed under fresh names and the
// rewritten fragment is returned. In positional mode the fragment keeps its
// ? markers and the child's finalized argument list is returned for replay
// into the parent's positional lists. Mixing modes is an error.
func (qb *QueryBuilder) absorbSub(sub *QueryBuilder, fragment string) (string, []any, error) {
	if sub.usePositional != qb.usePositional {
		return "", nil, ErrMixedPlaceholders
	}
	if qb.usePositional {
		args, err := sub.finalizeArgs(nil)
		if err != nil {
			return "", nil, err
		}
		return fragment, args, nil
	}
	return qb.absorbFragment(fragment, sub.named, sub.embedded), nil, nil
}

// replayPositional appends absorbed sub-builder values to a positional list.
// Positional lists are rebuilt on every render, so memoized fragments replay
// their values each time.
func (qb *QueryBuilder) replayPositional(kind bindingKind, values []any) {
	for _, v := range values {
		qb.pushPositional(kind, v)
	}
}

// pushPositional appends one value to the positional list of a clause
// family.
func (qb *QueryBuilder) pushPositional(kind bindingKind, value any) {
	qb.positional[kind] = append(qb.positional[kind], value)
}

// finalizeBindings builds the binding set for a rendered statement: own and
// embedded bindings merged, execution-time overrides applied, and the result
// filtered to the names the SQL text actually references. The filter keeps
// the set tight when clauses were replaced after values were allocated.
func (qb *QueryBuilder) finalizeBindings(sqlText string, overrides map[string]any) map[string]any {
	merged := make(map[string]any, len(qb.named)+len(qb.embedded)+len(overrides))
	for name, value := range qb.named {
		merged[name] = value
	}
	for name, value := range qb.embedded {
		merged[name] = value
	}
	for name, value := range overrides {
		merged[strings.TrimPrefix(name, ":")] = value
	}

	used := make(map[string]any, len(merged))
	for _, token := range placeholderToken.FindAllString(sqlText, -1) {
		name := token[1:]
		if value, ok := merged[name]; ok {
			used[name] = value
		}
	}
	return used
}

// positionalOrder lists the clause families of this statement kind in
// skeleton order.
func (qb *QueryBuilder) positionalOrder() []bindingKind {
	switch qb.kind {
	case StatementInsert:
		return []bindingKind{bindSet}
	case StatementUpdate:
		return []bindingKind{bindSet, bindWhere}
	case StatementDelete:
		return []bindingKind{bindWhere}
	default:
		return []bindingKind{bindSelect, bindFrom, bindJoin, bindWhere, bindHaving}
	}
}

// finalizeArgs concatenates the positional lists in statement skeleton order
// and fills pending ? slots from the runtime arguments. Leftover or missing
// runtime arguments are an error.
func (qb *QueryBuilder) finalizeArgs(runtime []any) ([]any, error) {
	args := make([]any, 0, len(runtime))
	next := 0
	for _, kind := range qb.positionalOrder() {
		for _, value := range qb.positional[kind] {
			if _, pending := value.(pendingParam); pending {
				if next >= len(runtime) {
					return nil, ErrArgumentCount
				}
				value = runtime[next]
				next++
			}
			args = append(args, value)
		}
	}
	if next != len(runtime) {
		return nil, ErrArgumentCount
	}
	return args, nil
}

// sortedKeys returns the keys of a map in lexical order. Map iteration order
// is random in Go, so every map-driven clause goes through this to keep
// rendered SQL deterministic.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
