package app_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/core/app"
	"github.com/dmitrymomot/dispatch/core/plan"
	"github.com/dmitrymomot/dispatch/core/reqctx"
	"github.com/dmitrymomot/dispatch/core/template"
)

func tagMiddleware(order *[]string, tag string) app.Middleware {
	return func(next app.HandlerFunc) app.HandlerFunc {
		return func(ctx context.Context, args reqctx.Args) (any, error) {
			*order = append(*order, tag)
			return next(ctx, args)
		}
	}
}

func TestMiddlewareOrder(t *testing.T) {
	t.Parallel()

	var order []string

	a := app.New()
	a.Use(tagMiddleware(&order, "app"))

	api := a.Router("/api")
	api.Use(tagMiddleware(&order, "router"))

	users := api.Controller("/users")
	users.Use(tagMiddleware(&order, "controller"))

	require.NoError(t, users.Get("/me", textHandler("me"),
		app.WithMiddleware(tagMiddleware(&order, "handler"))))
	require.NoError(t, a.Compile())

	w := get(t, a, "/api/users/me")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"app", "router", "controller", "handler"}, order)
}

func TestMiddlewareScoping(t *testing.T) {
	t.Parallel()

	var order []string

	a := app.New()
	api := a.Router("/api")
	api.Use(tagMiddleware(&order, "router"))
	require.NoError(t, api.Get("/ping", textHandler("pong")))
	require.NoError(t, a.Get("/bare", textHandler("bare")))
	require.NoError(t, a.Compile())

	get(t, a, "/bare")
	assert.Empty(t, order, "router middleware must not apply outside its router")

	get(t, a, "/api/ping")
	assert.Equal(t, []string{"router"}, order)
}

func TestMiddlewareShortCircuit(t *testing.T) {
	t.Parallel()

	errDenied := errors.New("denied")

	a := app.New()
	a.Use(func(app.HandlerFunc) app.HandlerFunc {
		return func(context.Context, reqctx.Args) (any, error) {
			return nil, errDenied
		}
	})
	require.NoError(t, a.Get("/secret", textHandler("never")))
	require.NoError(t, a.Compile())

	w := get(t, a, "/secret")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "never")
}

func TestMiddlewareSeesDispatchedArgs(t *testing.T) {
	t.Parallel()

	var seen any

	a := app.New()
	a.Use(func(next app.HandlerFunc) app.HandlerFunc {
		return func(ctx context.Context, args reqctx.Args) (any, error) {
			seen = args["greeting"]
			return next(ctx, args)
		}
	})
	require.NoError(t, a.Get("/hello", echoArgs("greeting"),
		app.WithParams(plan.Query("greeting", template.TypeString))))
	require.NoError(t, a.Compile())

	w := get(t, a, "/hello?greeting=hi")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hi", seen)
}
