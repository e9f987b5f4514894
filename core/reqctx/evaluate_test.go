package reqctx_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/core/plan"
	"github.com/dmitrymomot/dispatch/core/provider"
	"github.com/dmitrymomot/dispatch/core/reqctx"
	"github.com/dmitrymomot/dispatch/core/template"
)

func buildPlan(t *testing.T, params []plan.Param, providers ...provider.Provider) *plan.Plan {
	t.Helper()
	tbl := provider.NewTable(provider.ScopeApplication)
	for _, p := range providers {
		require.NoError(t, tbl.Register(p))
	}
	pl, err := plan.Build(params, provider.NewChain(tbl))
	require.NoError(t, err)
	return pl
}

func TestEvaluateExtractsAndCoerces(t *testing.T) {
	t.Parallel()

	pl := buildPlan(t, []plan.Param{
		plan.Path("id", template.TypeInt),
		plan.Query("limit", template.TypeInt).WithDefault(10),
		plan.Query("active", template.TypeBool),
		plan.Header("X-Tenant", template.TypeString),
		plan.Cookie("session", template.TypeString).Optional(),
	})

	req := httptest.NewRequest("GET", "/users/42?active=true", nil)
	req.Header.Set("X-Tenant", "acme")

	rc := reqctx.New(req, map[string]string{"id": "42"}, nil)
	args, err := reqctx.Evaluate(context.Background(), pl, rc)
	require.NoError(t, err)

	assert.Equal(t, 42, args.Int("id"))
	assert.Equal(t, 10, args.Int("limit"), "absent optional query uses default")
	assert.Equal(t, true, args.Bool("active"))
	assert.Equal(t, "acme", args.String("X-Tenant"))
	assert.Equal(t, "", args.String("session"), "absent optional cookie yields zero value")
}

func TestEvaluateMissingRequiredParameter(t *testing.T) {
	t.Parallel()

	pl := buildPlan(t, []plan.Param{plan.Query("q", template.TypeString)})

	req := httptest.NewRequest("GET", "/search", nil)
	rc := reqctx.New(req, nil, nil)

	_, err := reqctx.Evaluate(context.Background(), pl, rc)
	require.Error(t, err)
	assert.ErrorIs(t, err, reqctx.ErrMissingParameter)

	var missing *reqctx.MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "q", missing.Param)
	assert.Equal(t, plan.SourceQuery, missing.Source)
}

func TestEvaluateCoercionError(t *testing.T) {
	t.Parallel()

	pl := buildPlan(t, []plan.Param{plan.Path("id", template.TypeInt)})

	req := httptest.NewRequest("GET", "/users/abc", nil)
	rc := reqctx.New(req, map[string]string{"id": "abc"}, nil)

	_, err := reqctx.Evaluate(context.Background(), pl, rc)
	require.Error(t, err)
	assert.ErrorIs(t, err, reqctx.ErrCoercion)

	var coercion *reqctx.CoercionError
	require.ErrorAs(t, err, &coercion)
	assert.Equal(t, "id", coercion.Param)
	assert.Equal(t, template.TypeInt, coercion.Want)
	assert.Equal(t, "abc", coercion.Raw)
}

func TestEvaluateStateParam(t *testing.T) {
	t.Parallel()

	pl := buildPlan(t, []plan.Param{plan.State("version")})

	req := httptest.NewRequest("GET", "/", nil)
	rc := reqctx.New(req, nil, map[string]any{"version": "1.2.3"})

	args, err := reqctx.Evaluate(context.Background(), pl, rc)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", args["version"])

	rc = reqctx.New(req, nil, nil)
	_, err = reqctx.Evaluate(context.Background(), pl, rc)
	assert.ErrorIs(t, err, reqctx.ErrMissingParameter)
}

func TestEvaluateDiamondMemoization(t *testing.T) {
	t.Parallel()

	var baseCalls atomic.Int32
	base := provider.Provider{
		Name: "base",
		Fn: func(context.Context, provider.Values) (any, error) {
			baseCalls.Add(1)
			return "shared", nil
		},
	}
	left := provider.Provider{
		Name:      "left",
		DependsOn: []string{"base"},
		Mode:      provider.Async,
		Fn: func(_ context.Context, deps provider.Values) (any, error) {
			return "L:" + deps["base"].(string), nil
		},
	}
	right := provider.Provider{
		Name:      "right",
		DependsOn: []string{"base"},
		Mode:      provider.Async,
		Fn: func(_ context.Context, deps provider.Values) (any, error) {
			return "R:" + deps["base"].(string), nil
		},
	}

	pl := buildPlan(t, []plan.Param{
		plan.Provided("left"),
		plan.Provided("right"),
	}, base, left, right)

	req := httptest.NewRequest("GET", "/", nil)
	rc := reqctx.New(req, nil, nil)

	args, err := reqctx.Evaluate(context.Background(), pl, rc)
	require.NoError(t, err)
	assert.Equal(t, "L:shared", args["left"])
	assert.Equal(t, "R:shared", args["right"])
	assert.Equal(t, int32(1), baseCalls.Load(), "shared dependency executes exactly once per request")
}

func TestEvaluateProviderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	pl := buildPlan(t, []plan.Param{plan.Provided("db")}, provider.Provider{
		Name: "db",
		Fn:   func(context.Context, provider.Values) (any, error) { return nil, boom },
	})

	req := httptest.NewRequest("GET", "/", nil)
	rc := reqctx.New(req, nil, nil)

	_, err := reqctx.Evaluate(context.Background(), pl, rc)
	require.Error(t, err)
	assert.ErrorIs(t, err, reqctx.ErrProviderExecution)
	assert.ErrorIs(t, err, boom)

	var pe *reqctx.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "db", pe.Provider)
}

func TestEvaluateAsyncProvidersRunConcurrently(t *testing.T) {
	t.Parallel()

	// Both providers block until the other has started; serial execution
	// would deadlock (guarded by the test timeout below).
	var wg sync.WaitGroup
	wg.Add(2)

	rendezvous := func(name string) provider.Provider {
		return provider.Provider{
			Name: name,
			Mode: provider.Async,
			Fn: func(ctx context.Context, _ provider.Values) (any, error) {
				wg.Done()
				wg.Wait()
				return name, nil
			},
		}
	}

	pl := buildPlan(t, []plan.Param{
		plan.Provided("a"),
		plan.Provided("b"),
	}, rendezvous("a"), rendezvous("b"))

	req := httptest.NewRequest("GET", "/", nil)
	rc := reqctx.New(req, nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		args, err := reqctx.Evaluate(context.Background(), pl, rc)
		assert.NoError(t, err)
		assert.Equal(t, "a", args["a"])
		assert.Equal(t, "b", args["b"])
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async providers in one batch did not overlap")
	}
}

func TestEvaluateCancellation(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	pl := buildPlan(t, []plan.Param{plan.Provided("slow")}, provider.Provider{
		Name: "slow",
		Mode: provider.Async,
		Fn: func(ctx context.Context, _ provider.Values) (any, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})

	req := httptest.NewRequest("GET", "/", nil)
	rc := reqctx.New(req, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := reqctx.Evaluate(ctx, pl, rc)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveSerializesConcurrentAttempts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	slow := provider.Provider{
		Name: "slow",
		Mode: provider.Async,
		Fn: func(context.Context, provider.Values) (any, error) {
			calls.Add(1)
			time.Sleep(20 * time.Millisecond)
			return "v", nil
		},
	}

	pl := buildPlan(t, []plan.Param{plan.Provided("slow")}, slow)

	req := httptest.NewRequest("GET", "/", nil)
	rc := reqctx.New(req, nil, nil)

	// Evaluate the same plan against one context from several goroutines;
	// the memo latch must keep the provider at one execution.
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reqctx.Evaluate(context.Background(), pl, rc)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestEvaluatePrecanceledContext(t *testing.T) {
	t.Parallel()

	pl := buildPlan(t, []plan.Param{plan.Query("q", template.TypeString)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest("GET", "/?q=x", nil)
	rc := reqctx.New(req, nil, nil)

	_, err := reqctx.Evaluate(ctx, pl, rc)
	assert.ErrorIs(t, err, context.Canceled)
}
