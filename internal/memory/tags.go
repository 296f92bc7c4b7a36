package memory

import "sort"

// Tags is a set of tags kept as a sorted, duplicate-free slice so it
// serializes as an ordered sequence.
type Tags []string

// NewTags builds a tag set from arbitrary input.
func NewTags(tags ...string) Tags {
	var t Tags
	for _, tag := range tags {
		t = t.Add(tag)
	}
	return t
}

// Has reports whether tag is in the set.
func (t Tags) Has(tag string) bool {
	i := sort.SearchStrings(t, tag)
	return i < len(t) && t[i] == tag
}

// Add returns the set with tag inserted.
func (t Tags) Add(tag string) Tags {
	if tag == "" {
		return t
	}
	i := sort.SearchStrings(t, tag)
	if i < len(t) && t[i] == tag {
		return t
	}
	t = append(t, "")
	copy(t[i+1:], t[i:])
	t[i] = tag
	return t
}

// Union returns the set with every tag in other inserted.
func (t Tags) Union(other []string) Tags {
	for _, tag := range other {
		t = t.Add(tag)
	}
	return t
}

// Remove returns the set without tag.
func (t Tags) Remove(tag string) Tags {
	i := sort.SearchStrings(t, tag)
	if i < len(t) && t[i] == tag {
		return append(t[:i], t[i+1:]...)
	}
	return t
}

// Clone returns an independent copy.
func (t Tags) Clone() Tags {
	if t == nil {
		return nil
	}
	return append(Tags(nil), t...)
}
