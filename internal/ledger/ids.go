package ledger

import "time"

// idGenerator hands out millisecond timestamps as ids, bumping past the last
// issued value so two invoices created in the same millisecond never collide.
type idGenerator struct {
	last int64
	now  func() time.Time
}

func (g *idGenerator) next() int64 {
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// observe raises the floor so ids loaded from storage are never reissued.
func (g *idGenerator) observe(id int64) {
	if id > g.last {
		g.last = id
	}
}
