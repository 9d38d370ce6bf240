package saga

// Action is an immutable tagged event value flowing through the store and
// the action channel. Identity does not matter, only the discriminator and
// whatever payload the concrete type carries.
type Action interface {
	Type() string
}

// GenericAction is the plain (type, payload) action. User-defined structs
// implementing Action are equally valid and can be matched by kind.
type GenericAction struct {
	Kind    string
	Payload any
}

func (a GenericAction) Type() string { return a.Kind }

// ActionOf constructs a generic action from a discriminator and payload.
func ActionOf(typ string, payload any) Action {
	return GenericAction{Kind: typ, Payload: payload}
}

// Pattern decides whether a dequeued action satisfies a Take. The interface
// is sealed; use OfType, OfKind, or Matching. A nil Pattern matches any
// action.
type Pattern interface {
	Matches(Action) bool
	pattern()
}

type predPattern struct {
	pred func(Action) bool
}

func (p predPattern) Matches(a Action) bool { return p.pred(a) }
func (predPattern) pattern()                {}

// OfType matches actions whose discriminator equals typ.
func OfType(typ string) Pattern {
	return predPattern{pred: func(a Action) bool { return a.Type() == typ }}
}

// OfKind matches actions that are instances of the concrete type T,
// regardless of their discriminator.
func OfKind[T Action]() Pattern {
	return predPattern{pred: func(a Action) bool {
		_, ok := a.(T)
		return ok
	}}
}

// Matching matches actions satisfying an arbitrary predicate.
func Matching(pred func(Action) bool) Pattern {
	return predPattern{pred: pred}
}

func matches(p Pattern, a Action) bool {
	return p == nil || p.Matches(a)
}
