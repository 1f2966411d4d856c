// Package ctx provides the request context used by medcart handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context with helpers for params, binding and the JSON
// envelope:
//
//	func (pc *ProductController) Delete(c *ctx.Context) {
//	    if err := pc.svc.Delete(c.Context(), c.Param("id")); err != nil {
//	        c.Fail(err)
//	        return
//	    }
//	    c.Message(http.StatusOK, "Product deleted successfully")
//	}
//
//	r.Delete("/products/{id}", "products.destroy", ctx.Wrap(pc.Delete))
package ctx

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/medcart/pkg/apperr"
	"github.com/shashiranjanraj/medcart/pkg/bind"
	"github.com/shashiranjanraj/medcart/pkg/logger"
	"github.com/shashiranjanraj/medcart/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W http.ResponseWriter
	R *http.Request
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter (e.g. "/products/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// ClientIP returns the real client IP, respecting X-Forwarded-For and
// X-Real-Ip before falling back to the remote address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// ─── Binding ──────────────────────────────────────────────────────────────────

// DecodeJSON decodes the body without validating it; the service layer
// validates instead. Writes a 400 and returns false on malformed JSON.
func (c *Context) DecodeJSON(dest any) bool {
	if err := bind.Decode(c.R, dest); err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// ─── Response helpers ─────────────────────────────────────────────────────────

func (c *Context) Success(data any) { response.Success(c.W, data) }

// SuccessMessage sends a 200 carrying both a message and data.
func (c *Context) SuccessMessage(message string, data any) {
	response.Write(c.W, http.StatusOK, response.Envelope{Success: true, Message: message, Data: data})
}

func (c *Context) Created(data any) { response.Created(c.W, data) }

// CreatedMessage sends a 201 carrying both a message and data.
func (c *Context) CreatedMessage(message string, data any) {
	response.Write(c.W, http.StatusCreated, response.Envelope{Success: true, Message: message, Data: data})
}

// List sends data with its element count.
func (c *Context) List(data any, count int) { response.List(c.W, data, count) }

// Message sends a successful envelope carrying only a message.
func (c *Context) Message(code int, message string) {
	response.Write(c.W, code, response.Envelope{Success: true, Message: message})
}

// Error sends a failed envelope with the given status and message.
func (c *Context) Error(code int, message string) { response.Error(c.W, code, message) }

// Fail writes the envelope for a service error. Internal failures are logged
// with the request-scoped logger before the response is written.
func (c *Context) Fail(err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		logger.WithCtx(c.Context()).Error("request failed",
			"method", c.R.Method, "path", c.R.URL.Path, "error", err)
	}
	response.FromError(c.W, err)
}

func (c *Context) Unauthorized(message ...string) {
	c.Error(http.StatusUnauthorized, first(message, "Unauthorized"))
}

func first(opts []string, def string) string {
	if len(opts) > 0 && opts[0] != "" {
		return opts[0]
	}
	return def
}
