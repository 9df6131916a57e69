package restaurant

// index is a keyed collection that remembers insertion order.
type index[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

func newIndex[K comparable, V any]() *index[K, V] {
	return &index[K, V]{values: make(map[K]V)}
}

func (i *index[K, V]) get(key K) (V, bool) {
	value, ok := i.values[key]
	return value, ok
}

func (i *index[K, V]) put(key K, value V) {
	if _, ok := i.values[key]; !ok {
		i.keys = append(i.keys, key)
	}
	i.values[key] = value
}

func (i *index[K, V]) remove(key K) {
	if _, ok := i.values[key]; !ok {
		return
	}
	delete(i.values, key)
	for n, k := range i.keys {
		if k == key {
			i.keys = append(i.keys[:n], i.keys[n+1:]...)
			break
		}
	}
}

func (i *index[K, V]) len() int {
	return len(i.keys)
}

// each visits values in insertion order until fn returns false.
func (i *index[K, V]) each(fn func(V) bool) {
	for _, key := range i.keys {
		if !fn(i.values[key]) {
			return
		}
	}
}

// nextID returns the largest key plus one, or 0 for an empty index.
func nextID[V any](i *index[int, V]) int {
	next := 0
	for _, key := range i.keys {
		if key >= next {
			next = key + 1
		}
	}
	return next
}
