package item

// Counter is a non-negative count. Subtraction below zero clamps.
type Counter uint32

// Inc adds one.
func (c *Counter) Inc() {
	c.Add(1)
}

// Add adds n.
func (c *Counter) Add(n uint32) {
	*c += Counter(n)
}

// Sub subtracts n, stopping at zero.
func (c *Counter) Sub(n uint32) {
	if Counter(n) >= *c {
		*c = 0
		return
	}
	*c -= Counter(n)
}

// Active reports whether the count is above zero.
func (c Counter) Active() bool {
	return c > 0
}
