package memcache

import "container/list"

// lruIndex maintains access order over the same key set as the entry map.
// The front of the list is the most recently used key; the back is the
// eviction candidate. All operations are O(1).
//
// The index carries no lock of its own: the cache mutex guards it together
// with the entry map and the memory counter so the three are always observed
// in a consistent state.
type lruIndex struct {
	order *list.List
	items map[string]*list.Element
}

func newLRUIndex() *lruIndex {
	return &lruIndex{
		order: list.New(),
		items: make(map[string]*list.Element),
	}
}

// add inserts a key at the most recently used position. Adding an existing
// key is equivalent to touching it.
func (l *lruIndex) add(key string) {
	if elem, ok := l.items[key]; ok {
		l.order.MoveToFront(elem)
		return
	}
	l.items[key] = l.order.PushFront(key)
}

// touch moves a key to the most recently used position.
func (l *lruIndex) touch(key string) {
	if elem, ok := l.items[key]; ok {
		l.order.MoveToFront(elem)
	}
}

// remove deletes a key from the index.
func (l *lruIndex) remove(key string) {
	if elem, ok := l.items[key]; ok {
		l.order.Remove(elem)
		delete(l.items, key)
	}
}

// oldest returns the least recently used key, if any.
func (l *lruIndex) oldest() (string, bool) {
	elem := l.order.Back()
	if elem == nil {
		return "", false
	}
	return elem.Value.(string), true
}

// len returns the number of indexed keys.
func (l *lruIndex) len() int {
	return len(l.items)
}

// clear drops all indexed keys.
func (l *lruIndex) clear() {
	l.order.Init()
	l.items = make(map[string]*list.Element)
}
