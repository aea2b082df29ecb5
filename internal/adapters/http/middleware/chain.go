// Package middleware
package middleware

import "net/http"

type Middleware func(http.Handler) http.Handler

type Chain struct {
	mws []Middleware
}

func New() *Chain {
	return &Chain{}
}

func (c *Chain) Use(mw Middleware) {
	c.mws = append(c.mws, mw)
}

// Apply wraps h so that the first registered middleware runs first.
func (c *Chain) Apply(h http.Handler) http.Handler {
	for i := len(c.mws) - 1; i >= 0; i-- {
		h = c.mws[i](h)
	}
	return h
}

func (c *Chain) Then(h http.Handler) http.Handler {
	return c.Apply(h)
}
