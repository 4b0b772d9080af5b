package core

import (
	"fmt"
	"strconv"
	"time"
)

// Pair is a single metadata key-value pair
type Pair struct {
	Key   string
	Value interface{}
}

// Metadata is an ordered key-value mapping attached to an event.
// Order is the order in which pairs were added; Set replaces the value
// of an existing key without moving it.
type Metadata []Pair

// Get returns the value for key and whether it was present
func (m Metadata) Get(key string) (interface{}, bool) {
	for _, p := range m {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of an existing key or appends a new pair,
// returning the (possibly grown) metadata
func (m Metadata) Set(key string, value interface{}) Metadata {
	for i := range m {
		if m[i].Key == key {
			m[i].Value = value
			return m
		}
	}
	return append(m, Pair{Key: key, Value: value})
}

// ValueString returns the string representation of a pair's value
func (p Pair) ValueString() string {
	switch v := p.Value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case time.Duration:
		return v.String()
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
