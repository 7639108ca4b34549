package entities

// IdentityKind distinguishes the origin persona from ordinary chat members
type IdentityKind int

const (
	IdentityOrdinary IdentityKind = iota
	IdentityOrigin
)

// Identity is either an ordinary member or the origin persona (the tracked
// user or the channel itself). ID keeps the raw chat id in both cases.
type Identity struct {
	Kind IdentityKind
	ID   int64
}

// Ordinary returns the identity of a regular chat member
func Ordinary(id int64) Identity {
	return Identity{Kind: IdentityOrdinary, ID: id}
}

// Origin returns the identity of the origin persona
func Origin(id int64) Identity {
	return Identity{Kind: IdentityOrigin, ID: id}
}

// IsOrigin reports whether this identity is the origin persona
func (i Identity) IsOrigin() bool {
	return i.Kind == IdentityOrigin
}

// RatingCategory names the reputation bucket a scored reaction lands in
type RatingCategory string

const (
	CategoryReactor RatingCategory = "reactor"
	CategorySelf    RatingCategory = "self"
	CategoryNeri    RatingCategory = "neri"
)

// ScoringRule describes how a reaction between two identities is scored
type ScoringRule struct {
	Category   RatingCategory
	Multiplier int64
	// Gated rules go through the rate limit and brigading cap
	Gated bool
}

type identityPair struct {
	author  IdentityKind
	reactor IdentityKind
}

var scoringTable = map[identityPair]ScoringRule{
	{author: IdentityOrdinary, reactor: IdentityOrdinary}: {Category: CategoryReactor, Multiplier: 1, Gated: true},
	{author: IdentityOrigin, reactor: IdentityOrdinary}:   {Category: CategorySelf, Multiplier: 1},
	{author: IdentityOrdinary, reactor: IdentityOrigin}:   {Category: CategoryNeri, Multiplier: NeriMultiplier},
	{author: IdentityOrigin, reactor: IdentityOrigin}:     {Category: CategoryNeri, Multiplier: NeriMultiplier},
}

// ScoringRuleFor returns the scoring rule for a reaction by reactor on author's message
func ScoringRuleFor(author, reactor Identity) ScoringRule {
	return scoringTable[identityPair{author: author.Kind, reactor: reactor.Kind}]
}

// IdentityResolver maps raw chat ids onto identities
type IdentityResolver struct {
	originIDs map[int64]struct{}
	primary   int64
}

// NewIdentityResolver creates a resolver where every id in originIDs is the origin.
// The first id is used for messages that carry no author.
func NewIdentityResolver(originIDs ...int64) *IdentityResolver {
	r := &IdentityResolver{originIDs: make(map[int64]struct{}, len(originIDs))}
	for i, id := range originIDs {
		if i == 0 {
			r.primary = id
		}
		r.originIDs[id] = struct{}{}
	}
	return r
}

// Resolve returns the identity for a raw id
func (r *IdentityResolver) Resolve(id int64) Identity {
	if _, ok := r.originIDs[id]; ok {
		return Origin(id)
	}
	return Ordinary(id)
}

// ResolveAuthor returns the identity of a message author; nil means a channel post
func (r *IdentityResolver) ResolveAuthor(authorID *int64) Identity {
	if authorID == nil {
		return Origin(r.primary)
	}
	return r.Resolve(*authorID)
}
