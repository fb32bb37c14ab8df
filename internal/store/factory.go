package store

import "basegraph.app/herald/core/db"

type Stores struct {
	q db.Querier
}

func NewStores(q db.Querier) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Realms() RealmStore {
	return newRealmStore(s.q)
}

func (s *Stores) Users() UserStore {
	return newUserStore(s.q)
}

func (s *Stores) Streams() StreamStore {
	return newStreamStore(s.q)
}

func (s *Stores) Messages() MessageStore {
	return newMessageStore(s.q)
}
