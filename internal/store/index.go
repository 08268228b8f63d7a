package store

import (
	"slices"
	"sort"
)

// refIndex maps a referenced id to the set of ids referencing it.
type refIndex map[string]map[string]struct{}

func (ix refIndex) add(key, id string) {
	if key == "" {
		return
	}
	set, ok := ix[key]
	if !ok {
		set = make(map[string]struct{})
		ix[key] = set
	}
	set[id] = struct{}{}
}

func (ix refIndex) remove(key, id string) {
	set, ok := ix[key]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(ix, key)
	}
}

// ids returns the referencing ids of key, sorted.
func (ix refIndex) ids(key string) []string {
	set := ix[key]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (ix refIndex) has(key string) bool { return len(ix[key]) > 0 }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func cloneStrPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// mergeRefs unions sorted id lists, dropping duplicates.
func mergeRefs(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	sort.Strings(out)
	return slices.Compact(out)
}
