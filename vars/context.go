package vars

// Context records the variables being expanded by one top-level resolution.
// A Context is not safe for concurrent use; each resolution owns its own.
type Context struct {
	visited map[string]struct{}
	trace   []string
}

// NewContext returns an empty resolution context.
func NewContext() *Context {
	return &Context{visited: make(map[string]struct{})}
}

// Trace returns the keys currently being expanded, outermost first.
func (c *Context) Trace() []string { return append([]string(nil), c.trace...) }

// Depth returns the number of keys currently being expanded.
func (c *Context) Depth() int { return len(c.trace) }

// enter marks key as being expanded. It reports false if key is already on
// the trace.
func (c *Context) enter(key string) bool {
	if _, ok := c.visited[key]; ok {
		return false
	}

	c.visited[key] = struct{}{}
	c.trace = append(c.trace, key)

	return true
}

func (c *Context) leave(key string) {
	delete(c.visited, key)

	if n := len(c.trace); n > 0 && c.trace[n-1] == key {
		c.trace = c.trace[:n-1]
	}
}
