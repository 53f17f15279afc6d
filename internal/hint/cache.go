package hint

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache memoizes parsed table references by their raw text. Only
// successful parses are cached. A Cache is safe for concurrent use.
type Cache struct {
	refs *lru.Cache[string, TableRef]
}

// NewCache creates a cache holding up to size references. A size <= 0
// disables caching.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		return &Cache{}, nil
	}
	refs, err := lru.New[string, TableRef](size)
	if err != nil {
		return nil, err
	}
	return &Cache{refs: refs}, nil
}

// Parse returns the cached reference for input or parses and caches it
func (c *Cache) Parse(input string) (TableRef, error) {
	if c == nil || c.refs == nil {
		return Parse(input)
	}
	if ref, ok := c.refs.Get(input); ok {
		return ref, nil
	}
	ref, err := Parse(input)
	if err != nil {
		return TableRef{}, err
	}
	c.refs.Add(input, ref)
	return ref, nil
}

// Len returns the number of cached references
func (c *Cache) Len() int {
	if c == nil || c.refs == nil {
		return 0
	}
	return c.refs.Len()
}
