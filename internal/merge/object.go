package merge

// Member is one key/value pair of an ordered object.
type Member struct {
	Key   string
	Value any
}

// Object is an ordered set of members with unique keys.
type Object []Member

// Index returns the position of key, or -1.
func (o Object) Index(key string) int {
	for i, m := range o {
		if m.Key == key {
			return i
		}
	}
	return -1
}

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	if i := o.Index(key); i >= 0 {
		return o[i].Value, true
	}
	return nil, false
}

// Set replaces the value of key in place, or appends it.
func (o Object) Set(key string, value any) Object {
	if i := o.Index(key); i >= 0 {
		o[i].Value = value
		return o
	}
	return append(o, Member{Key: key, Value: value})
}

// Keys returns the member keys in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}
