package cart

// Line is one product in the cart.
type Line struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Cart is an immutable snapshot: every quantity is at least 1 and lines keep
// the order they were first added in. Mutating methods return a new Cart.
type Cart struct {
	qty   map[int64]int
	order []int64
}

func Empty() Cart { return Cart{} }

// FromLines builds a cart from stored lines. Non-positive quantities are
// dropped and repeated ids are merged.
func FromLines(lines []Line) Cart {
	c := Empty()
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		c = c.With(l.ProductID, c.Quantity(l.ProductID)+l.Quantity)
	}
	return c
}

func (c Cart) Quantity(id int64) int { return c.qty[id] }

func (c Cart) Has(id int64) bool {
	_, ok := c.qty[id]
	return ok
}

func (c Cart) Len() int { return len(c.order) }

func (c Cart) IsEmpty() bool { return len(c.order) == 0 }

// Lines returns the lines in insertion order.
func (c Cart) Lines() []Line {
	out := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, Line{ProductID: id, Quantity: c.qty[id]})
	}
	return out
}

// Units is the number of items across all lines.
func (c Cart) Units() int {
	n := 0
	for _, q := range c.qty {
		n += q
	}
	return n
}

// With sets id to q. q <= 0 removes the line.
func (c Cart) With(id int64, q int) Cart {
	if q <= 0 {
		return c.Without(id)
	}
	next := c.clone()
	if _, ok := next.qty[id]; !ok {
		next.order = append(next.order, id)
	}
	next.qty[id] = q
	return next
}

func (c Cart) Without(id int64) Cart {
	if !c.Has(id) {
		return c
	}
	next := Cart{qty: make(map[int64]int, len(c.qty)), order: make([]int64, 0, len(c.order))}
	for _, oid := range c.order {
		if oid == id {
			continue
		}
		next.order = append(next.order, oid)
		next.qty[oid] = c.qty[oid]
	}
	return next
}

// Equal reports whether both carts hold the same lines in the same order.
func (c Cart) Equal(o Cart) bool {
	if len(c.order) != len(o.order) {
		return false
	}
	for i, id := range c.order {
		if o.order[i] != id || o.qty[id] != c.qty[id] {
			return false
		}
	}
	return true
}

func (c Cart) clone() Cart {
	next := Cart{qty: make(map[int64]int, len(c.qty)+1), order: make([]int64, len(c.order), len(c.order)+1)}
	copy(next.order, c.order)
	for id, q := range c.qty {
		next.qty[id] = q
	}
	return next
}
