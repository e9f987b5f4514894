package app

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/dmitrymomot/dispatch/core/logger"
	"github.com/dmitrymomot/dispatch/core/reqctx"
	"github.com/dmitrymomot/dispatch/core/trie"
)

// Response is a function that renders an HTTP response. Handlers may return
// one to take over writing; any other return value goes through the
// configured Renderer.
type Response func(w http.ResponseWriter, r *http.Request) error

// Renderer writes a handler's return value to the response.
type Renderer func(w http.ResponseWriter, r *http.Request, v any) error

// ServeHTTP dispatches the request, invokes the matched handler, and writes
// the result. Routing and resolution failures go through the error handler;
// panics in handlers and providers are recovered and wrapped so one bad
// request never takes down the serving process.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ww := &responseWriter{ResponseWriter: w}

	defer func() {
		if p := recover(); p != nil {
			perr := &panicError{value: p, stack: debug.Stack()}
			if ww.Written() {
				a.logger.Error("panic after response written",
					slog.Any("value", perr.value),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
				)
				return
			}
			a.errorHandler(ww, r, perr)
		}
	}()

	binding, args, err := a.Dispatch(r.Context(), r)
	if err != nil {
		a.translate(ww, r, err)
		return
	}

	result, err := binding.Handler(r.Context(), args)
	if err != nil {
		a.translate(ww, r, err)
		return
	}

	if err := a.renderer(ww, r, result); err != nil && !ww.Written() {
		a.translate(ww, r, err)
	}
}

func (a *App) translate(w *responseWriter, r *http.Request, err error) {
	// The Allow header must be set before the error handler writes.
	var mna *trie.MethodNotAllowedError
	if errors.As(err, &mna) && !w.Written() {
		w.Header().Set("Allow", strings.Join(mna.Allowed, ", "))
	}

	if status(err) >= http.StatusInternalServerError {
		a.logger.Error("request failed",
			logger.Error(err),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
		)
	}

	a.errorHandler(w, r, err)
}

// statusCode lets custom errors carry their own HTTP status.
type statusCode interface {
	StatusCode() int
}

func status(err error) int {
	var sc statusCode
	switch {
	case errors.As(err, &sc):
		return sc.StatusCode()
	case errors.Is(err, trie.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, trie.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, reqctx.ErrMissingParameter),
		errors.Is(err, reqctx.ErrCoercion):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// defaultErrorHandler writes a plain-text response for the error's status.
// Internal details of 5xx failures stay out of the response body.
func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	if ww, ok := w.(*responseWriter); ok && ww.Written() {
		return
	}

	code := status(err)
	msg := err.Error()
	if code >= http.StatusInternalServerError {
		msg = http.StatusText(code)
	}
	http.Error(w, msg, code)
}

// defaultRenderer writes common handler return shapes: Response functions
// and http.Handlers take over the writer, nil means 204, strings and bytes
// go out as-is, everything else is JSON.
func defaultRenderer(w http.ResponseWriter, r *http.Request, v any) error {
	switch res := v.(type) {
	case nil:
		w.WriteHeader(http.StatusNoContent)
		return nil
	case Response:
		return res(w, r)
	case func(http.ResponseWriter, *http.Request) error:
		return res(w, r)
	case http.Handler:
		res.ServeHTTP(w, r)
		return nil
	case string:
		_, err := w.Write([]byte(res))
		return err
	case []byte:
		_, err := w.Write(res)
		return err
	default:
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		return json.NewEncoder(w).Encode(v)
	}
}

// responseWriter wraps http.ResponseWriter to track whether a response has
// been written, guarding against double writes from error paths.
type responseWriter struct {
	http.ResponseWriter
	written bool
	status  int
}

func (w *responseWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
		w.ResponseWriter.WriteHeader(status)
	}
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Written reports whether the response header has been sent.
func (w *responseWriter) Written() bool {
	return w.written
}

// Status returns the written status code, 0 before any write.
func (w *responseWriter) Status() int {
	return w.status
}
