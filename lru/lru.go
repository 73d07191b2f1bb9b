// Copyright (c) 2019 Perlin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

// Package lru provides a small mutex-guarded LRU cache used to memoize
// rendered query responses.
package lru

import (
	"container/list"
	"sync"
)

type entry struct {
	key interface{}
	val interface{}
}

type Cache struct {
	sync.Mutex

	size int

	elements map[interface{}]*list.Element
	access   *list.List // *entry
}

func NewCache(size int) *Cache {
	return &Cache{
		size:     size,
		elements: make(map[interface{}]*list.Element, size),
		access:   list.New(),
	}
}

func (c *Cache) Load(key interface{}) (interface{}, bool) {
	c.Lock()
	defer c.Unlock()

	elem, ok := c.elements[key]
	if !ok {
		return nil, false
	}

	c.access.MoveToFront(elem)

	return elem.Value.(*entry).val, true
}

func (c *Cache) Put(key interface{}, val interface{}) {
	c.Lock()
	defer c.Unlock()

	elem, ok := c.elements[key]

	if ok {
		elem.Value.(*entry).val = val
		c.access.MoveToFront(elem)

		return
	}

	c.elements[key] = c.access.PushFront(&entry{key: key, val: val})

	for len(c.elements) > c.size {
		back := c.access.Back()
		evicted := back.Value.(*entry)

		delete(c.elements, evicted.key)
		c.access.Remove(back)
	}
}

func (c *Cache) Remove(key interface{}) {
	c.Lock()
	defer c.Unlock()

	if elem, ok := c.elements[key]; ok {
		delete(c.elements, key)
		c.access.Remove(elem)
	}
}
