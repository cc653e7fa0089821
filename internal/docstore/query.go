package docstore

import (
	"reflect"
	"sort"
	"time"
)

// Op is a filter operator.
type Op string

const (
	OpEqual            Op = "=="
	OpLess             Op = "<"
	OpLessOrEqual      Op = "<="
	OpGreater          Op = ">"
	OpGreaterOrEqual   Op = ">="
	OpArrayContainsAny Op = "array-contains-any"
)

// Direction orders query results.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type Filter struct {
	Field string
	Op    Op
	Value any
}

type Order struct {
	Field     string
	Direction Direction
}

// Query selects documents of one collection.
type Query struct {
	Collection string
	Filters    []Filter
	Orders     []Order
	Max        int
}

// From starts a query over collection.
func From(collection string) Query { return Query{Collection: collection} }

func (q Query) Where(field string, op Op, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: op, Value: value})
	return q
}

func (q Query) OrderBy(field string, dir Direction) Query {
	q.Orders = append(append([]Order(nil), q.Orders...), Order{Field: field, Direction: dir})
	return q
}

func (q Query) Limit(n int) Query {
	q.Max = n
	return q
}

// normalized returns a copy whose filter operands are in stored form.
func (q Query) normalized(now time.Time) (Query, error) {
	out := q
	out.Filters = make([]Filter, len(q.Filters))
	for i, f := range q.Filters {
		v, err := normalizeValue(f.Value, now)
		if err != nil {
			return Query{}, err
		}
		f.Value = v
		out.Filters[i] = f
	}
	return out, nil
}

func (f Filter) matches(doc Document) bool {
	v, ok := lookup(doc, f.Field)
	if !ok {
		return false
	}
	switch f.Op {
	case OpEqual:
		return reflect.DeepEqual(v, f.Value)
	case OpArrayContainsAny:
		arr, ok := v.([]any)
		candidates, ok2 := f.Value.([]any)
		if !ok || !ok2 {
			return false
		}
		for _, el := range arr {
			for _, c := range candidates {
				if reflect.DeepEqual(el, c) {
					return true
				}
			}
		}
		return false
	}
	c, ok := compare(v, f.Value)
	if !ok {
		return false
	}
	switch f.Op {
	case OpLess:
		return c < 0
	case OpLessOrEqual:
		return c <= 0
	case OpGreater:
		return c > 0
	case OpGreaterOrEqual:
		return c >= 0
	}
	return false
}

// apply filters, orders and limits snapshots in memory. Documents missing an
// order field are excluded, matching the Postgres implementation.
func (q Query) apply(snaps []*Snapshot) []*Snapshot {
	out := make([]*Snapshot, 0, len(snaps))
next:
	for _, s := range snaps {
		for _, f := range q.Filters {
			if !f.matches(s.Data) {
				continue next
			}
		}
		for _, o := range q.Orders {
			if _, ok := lookup(s.Data, o.Field); !ok {
				continue next
			}
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		for _, o := range q.Orders {
			a, _ := lookup(out[i].Data, o.Field)
			b, _ := lookup(out[j].Data, o.Field)
			c, _ := compare(a, b)
			if c == 0 {
				continue
			}
			if o.Direction == Desc {
				return c > 0
			}
			return c < 0
		}
		return out[i].Ref.ID < out[j].Ref.ID
	})
	if q.Max > 0 && len(out) > q.Max {
		out = out[:q.Max]
	}
	return out
}
