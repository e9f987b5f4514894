// Package async provides a small typed Future primitive.
//
// It exists for plan evaluation: asynchronous providers within one execution
// batch are launched with Go and awaited together, so independent branches
// of a dependency graph overlap instead of running serially.
//
//	f := async.Go(ctx, func(ctx context.Context) (User, error) {
//		return loadUser(ctx, id)
//	})
//	user, err := f.Await(ctx)
package async
