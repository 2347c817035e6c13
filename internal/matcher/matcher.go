// Package matcher implements the ordered, self-expiring rule list behind every
// interceptor.
package matcher

import "sync"

// Rule is anything that can sit in a List. Limit is the number of calls the
// rule may answer; zero or less means it never expires.
type Rule interface {
	Limit() int
}

type entry[R Rule] struct {
	rule      R
	remaining int
}

// List is an ordered rule list where the most recently registered rules are
// consulted first. It is safe for concurrent use.
type List[R Rule] struct {
	mu      sync.Mutex
	entries []*entry[R]
}

// Register places rules ahead of every rule already in the list, keeping the
// order of the batch itself.
func (l *List[R]) Register(rules ...R) {
	if len(rules) == 0 {
		return
	}

	added := make([]*entry[R], 0, len(rules)+len(l.entries))
	for _, r := range rules {
		added = append(added, &entry[R]{rule: r, remaining: r.Limit()})
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(added, l.entries...)
}

// Dispatch finds the first rule accepted by match and charges one call
// against it. A rule whose count drops to zero is removed before Dispatch
// returns, so concurrent callers never both consume its last call.
func (l *List[R]) Dispatch(match func(R) bool) (R, bool) {
	rule, ok, _ := l.Resolve(match, nil)
	return rule, ok
}

// Resolve is Dispatch with a resolve step that runs on the matched rule
// before the call is charged. When resolve fails the rule keeps its
// remaining calls and the error is returned with ok set.
func (l *List[R]) Resolve(match func(R) bool, resolve func(R) error) (R, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.entries {
		if !match(e.rule) {
			continue
		}
		if resolve != nil {
			if err := resolve(e.rule); err != nil {
				return e.rule, true, err
			}
		}
		if e.remaining > 0 {
			e.remaining--
			if e.remaining == 0 {
				l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			}
		}
		return e.rule, true, nil
	}

	var zero R
	return zero, false, nil
}

// Replace swaps the whole list for rules in one step.
func (l *List[R]) Replace(rules ...R) {
	entries := make([]*entry[R], 0, len(rules))
	for _, r := range rules {
		entries = append(entries, &entry[R]{rule: r, remaining: r.Limit()})
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = entries
}

// Clear removes every rule.
func (l *List[R]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Len returns the number of active rules.
func (l *List[R]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Rules returns the active rules in match order.
func (l *List[R]) Rules() []R {
	l.mu.Lock()
	defer l.mu.Unlock()

	rules := make([]R, 0, len(l.entries))
	for _, e := range l.entries {
		rules = append(rules, e.rule)
	}
	return rules
}

// FindMatch returns the first rule accepted by match.
func FindMatch[R any](rules []R, match func(R) bool) (R, bool) {
	for _, r := range rules {
		if match(r) {
			return r, true
		}
	}
	var zero R
	return zero, false
}
