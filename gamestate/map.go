package gamestate

var _ VolatileStorage[string, any] = &MapStorage[string, any]{}

// MapStorage is the map-backed VolatileStorage implementation.
type MapStorage[K comparable, V any] struct {
	internalMap map[K]V
}

func NewMapStorage[K comparable, V any]() *MapStorage[K, V] {
	return &MapStorage[K, V]{
		internalMap: make(map[K]V),
	}
}

func (m *MapStorage[K, V]) Get(key K) (V, error) {
	value, ok := m.internalMap[key]
	if !ok {
		return value, ErrKeyNotFound
	}
	return value, nil
}

func (m *MapStorage[K, V]) Has(key K) bool {
	_, ok := m.internalMap[key]
	return ok
}

func (m *MapStorage[K, V]) Set(key K, value V) error {
	m.internalMap[key] = value
	return nil
}

func (m *MapStorage[K, V]) Delete(key K) error {
	delete(m.internalMap, key)
	return nil
}

func (m *MapStorage[K, V]) Keys() ([]K, error) {
	acc := make([]K, 0, len(m.internalMap))
	for key := range m.internalMap {
		acc = append(acc, key)
	}
	return acc, nil
}

func (m *MapStorage[K, V]) Len() int {
	return len(m.internalMap)
}

func (m *MapStorage[K, V]) Clear() error {
	m.internalMap = make(map[K]V)
	return nil
}
