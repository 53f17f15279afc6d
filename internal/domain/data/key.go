package data

// Key is an index key: column values in index key order
type Key []int64

// Compare orders keys lexicographically. A key that is a strict prefix of
// another sorts first.
func (k Key) Compare(other Key) int {
	n := len(k)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		switch {
		case k[i] < other[i]:
			return -1
		case k[i] > other[i]:
			return 1
		}
	}
	switch {
	case len(k) < len(other):
		return -1
	case len(k) > len(other):
		return 1
	}
	return 0
}

// ComparePrefix compares only the first len(prefix) values of k against
// prefix. k must be at least as long as prefix.
func (k Key) ComparePrefix(prefix Key) int {
	return k[:len(prefix)].Compare(prefix)
}

// HasPrefix reports whether k begins with prefix
func (k Key) HasPrefix(prefix Key) bool {
	return len(k) >= len(prefix) && k.ComparePrefix(prefix) == 0
}

// Copy returns an independent copy of the key
func (k Key) Copy() Key {
	if k == nil {
		return nil
	}
	c := make(Key, len(k))
	copy(c, k)
	return c
}
