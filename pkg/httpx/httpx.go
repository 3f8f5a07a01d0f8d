package httpx

import "net/http"

// Middleware wraps an http.Handler with extra behaviour, such as request
// logging or rate limiting.
type Middleware func(http.Handler) http.Handler

// Chain wraps h in the given middlewares. The first middleware listed runs
// first at request time, so route registrations read top to bottom in
// execution order.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
