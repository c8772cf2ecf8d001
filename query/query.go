/*
Package query implements the structured query language used by the event
subscription system. Queries are built with constructors and chained And*
methods, each appending one more condition, and render to the exact string
the server expects, so they can be used both as a `subscribe` parameter and
as the routing key for events pushed back over the same connection.

	q := query.MustEventType("Tx").AndGte("tx.height", 100)
	// q.String() == "tm.event = 'Tx' AND tx.height >= 100"

An empty Query renders to an empty string and matches every event.
*/
package query

import (
	"fmt"
	"strings"
	"time"
)

// eventTypeKey is the reserved key the server uses for the event type clause.
const eventTypeKey = "tm.event"

// Query is an immutable filter over events. The zero value matches
// everything. Two queries are equivalent for routing purposes if and only if
// their String() renderings are equal.
type Query struct {
	eventType  *EventType
	conditions []Condition
}

// Empty returns a query matching any event.
func Empty() Query {
	return Query{}
}

// FromEventType returns a query matching events of the given type.
func FromEventType(t EventType) Query {
	return Query{eventType: &t}
}

// MustEventType is like FromEventType but takes the wire literal and panics
// on unknown input. Useful for static queries in client code.
func MustEventType(s string) Query {
	t, err := EventTypeFromString(s)
	if err != nil {
		panic(err)
	}
	return FromEventType(t)
}

// Eq creates a query testing whether `<key> = <value>`.
func Eq(key string, value any) Query {
	return Query{}.AndEq(key, value)
}

// Lt creates a query testing whether `<key> < <value>`.
func Lt(key string, value any) Query {
	return Query{}.AndLt(key, value)
}

// Lte creates a query testing whether `<key> <= <value>`.
func Lte(key string, value any) Query {
	return Query{}.AndLte(key, value)
}

// Gt creates a query testing whether `<key> > <value>`.
func Gt(key string, value any) Query {
	return Query{}.AndGt(key, value)
}

// Gte creates a query testing whether `<key> >= <value>`.
func Gte(key string, value any) Query {
	return Query{}.AndGte(key, value)
}

// Contains creates a query testing whether the value of `<key>` contains
// the given substring.
func Contains(key string, substring string) Query {
	return Query{}.AndContains(key, substring)
}

// Exists creates a query testing whether `<key>` is present at all.
func Exists(key string) Query {
	return Query{}.AndExists(key)
}

// and returns a copy of q with one more condition. The full slice expression
// forces a reallocation, so queries derived from a common prefix never share
// backing storage.
func (q Query) and(c Condition) Query {
	n := len(q.conditions)
	return Query{
		eventType:  q.eventType,
		conditions: append(q.conditions[:n:n], c),
	}
}

// AndEq appends the condition `<key> = <value>` to the query.
func (q Query) AndEq(key string, value any) Query {
	return q.and(Condition{Key: key, Op: OpEq, Value: NewOperand(value)})
}

// AndLt appends the condition `<key> < <value>` to the query.
func (q Query) AndLt(key string, value any) Query {
	return q.and(Condition{Key: key, Op: OpLt, Value: NewOperand(value)})
}

// AndLte appends the condition `<key> <= <value>` to the query.
func (q Query) AndLte(key string, value any) Query {
	return q.and(Condition{Key: key, Op: OpLte, Value: NewOperand(value)})
}

// AndGt appends the condition `<key> > <value>` to the query.
func (q Query) AndGt(key string, value any) Query {
	return q.and(Condition{Key: key, Op: OpGt, Value: NewOperand(value)})
}

// AndGte appends the condition `<key> >= <value>` to the query.
func (q Query) AndGte(key string, value any) Query {
	return q.and(Condition{Key: key, Op: OpGte, Value: NewOperand(value)})
}

// AndContains appends a substring-match condition to the query.
func (q Query) AndContains(key string, substring string) Query {
	return q.and(Condition{Key: key, Op: OpContains, Value: NewOperand(substring)})
}

// AndExists appends a key-presence condition to the query.
func (q Query) AndExists(key string) Query {
	return q.and(Condition{Key: key, Op: OpExists})
}

// Conditions returns a copy of the query's conditions in insertion order.
func (q Query) Conditions() []Condition {
	res := make([]Condition, len(q.conditions))
	copy(res, q.conditions)
	return res
}

// String returns the canonical rendering of the query. It is deterministic
// and total: any constructed Query renders successfully.
func (q Query) String() string {
	var b strings.Builder
	if q.eventType != nil {
		b.WriteString(eventTypeKey)
		b.WriteString(" = '")
		b.WriteString(q.eventType.String())
		b.WriteByte('\'')
	}
	for i, c := range q.conditions {
		if i > 0 || q.eventType != nil {
			b.WriteString(" AND ")
		}
		b.WriteString(c.String())
	}
	return b.String()
}

// Op is a condition's comparison operator.
type Op byte

const (
	OpEq Op = iota
	OpLt
	OpLte
	OpGt
	OpGte
	OpContains
	OpExists
)

// String implements the Stringer interface.
func (op Op) String() string {
	switch op {
	case OpEq:
		return "="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpContains:
		return "CONTAINS"
	case OpExists:
		return "EXISTS"
	default:
		return "unknown"
	}
}

// Condition is a single `<key> <op> <operand>` clause. Value is ignored for
// OpExists.
type Condition struct {
	Key   string
	Op    Op
	Value Operand
}

// String implements the Stringer interface.
func (c Condition) String() string {
	if c.Op == OpExists {
		return c.Key + " EXISTS"
	}
	return c.Key + " " + c.Op.String() + " " + c.Value.String()
}

// Date is an operand carrying a calendar date without a time component. It
// renders as `DATE yyyy-mm-dd`.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{Year: y, Month: m, Day: d}
}

// String implements the Stringer interface.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// operandKind discriminates Operand contents.
type operandKind byte

const (
	operandString operandKind = iota
	operandSigned
	operandUnsigned
	operandFloat
	operandDate
	operandDateTime
)

// Operand is a typed condition operand. The server distinguishes strings,
// signed and unsigned integers, floats, dates and timestamps, each with its
// own literal syntax.
type Operand struct {
	kind operandKind
	str  string
	i    int64
	u    uint64
	f    float64
	d    Date
	t    time.Time
}

// NewOperand converts a Go value into an Operand. Strings, all integer
// widths, floats, Date and time.Time map onto their wire representations;
// anything else is rendered with fmt and treated as a string. Conversion
// never fails, which keeps query rendering total.
func NewOperand(v any) Operand {
	switch t := v.(type) {
	case Operand:
		return t
	case string:
		return Operand{kind: operandString, str: t}
	case int:
		return Operand{kind: operandSigned, i: int64(t)}
	case int8:
		return Operand{kind: operandSigned, i: int64(t)}
	case int16:
		return Operand{kind: operandSigned, i: int64(t)}
	case int32:
		return Operand{kind: operandSigned, i: int64(t)}
	case int64:
		return Operand{kind: operandSigned, i: t}
	case uint:
		return Operand{kind: operandUnsigned, u: uint64(t)}
	case uint8:
		return Operand{kind: operandUnsigned, u: uint64(t)}
	case uint16:
		return Operand{kind: operandUnsigned, u: uint64(t)}
	case uint32:
		return Operand{kind: operandUnsigned, u: uint64(t)}
	case uint64:
		return Operand{kind: operandUnsigned, u: t}
	case float32:
		return Operand{kind: operandFloat, f: float64(t)}
	case float64:
		return Operand{kind: operandFloat, f: t}
	case Date:
		return Operand{kind: operandDate, d: t}
	case time.Time:
		return Operand{kind: operandDateTime, t: t}
	case fmt.Stringer:
		return Operand{kind: operandString, str: t.String()}
	default:
		return Operand{kind: operandString, str: fmt.Sprint(t)}
	}
}

// String renders the operand in wire syntax.
func (o Operand) String() string {
	switch o.kind {
	case operandSigned:
		return fmt.Sprintf("%d", o.i)
	case operandUnsigned:
		return fmt.Sprintf("%d", o.u)
	case operandFloat:
		return fmt.Sprintf("%v", o.f)
	case operandDate:
		return "DATE " + o.d.String()
	case operandDateTime:
		return "TIME " + o.t.Format(time.RFC3339)
	default:
		return escape(o.str)
	}
}

// escape quotes s, prefixing every backslash and single quote with
// a backslash.
func escape(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, ch := range s {
		if ch == '\\' || ch == '\'' {
			b.WriteByte('\\')
		}
		b.WriteRune(ch)
	}
	b.WriteByte('\'')
	return b.String()
}
