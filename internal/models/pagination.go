package models

import "maps"

// SourcePaginationState is the cursor for one provider.
type SourcePaginationState struct {
	Page      int  `json:"page"`
	Exhausted bool `json:"exhausted"`
}

// PaginationState maps each provider to its cursor. It is treated as an
// immutable value: callers thread it forward, and every mutation goes
// through Clone first.
type PaginationState map[ProviderID]SourcePaginationState

// InitialPaginationState puts every provider at page 1, not exhausted.
func InitialPaginationState(ids ...ProviderID) PaginationState {
	state := make(PaginationState, len(ids))
	for _, id := range ids {
		state[id] = SourcePaginationState{Page: 1}
	}
	return state
}

func (s PaginationState) Clone() PaginationState {
	if s == nil {
		return PaginationState{}
	}
	return maps.Clone(s)
}

func (s PaginationState) Equal(other PaginationState) bool {
	return maps.Equal(s, other)
}

// PageFor returns the provider's next page, 1 when unknown.
func (s PaginationState) PageFor(id ProviderID) int {
	if st, ok := s[id]; ok && st.Page > 0 {
		return st.Page
	}
	return 1
}

func (s PaginationState) IsExhausted(id ProviderID) bool {
	return s[id].Exhausted
}
