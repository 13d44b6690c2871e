// Package contract is the request/assertion engine used by the API suites.
//
// A Spec is built fluently from an Engine:
//
//	e.Spec("create user").
//		Post("/users").
//		WithJSONBody(map[string]interface{}{"name": "Ann", "job": "Eng"}).
//		ExpectStatus(201).
//		ExpectJSONLike(map[string]interface{}{"name": "Ann"}).
//		Stores("UserID", "id").
//		Run(ctx)
//
// Running a spec resolves $S{name} placeholders from the engine's store, sends the request,
// evaluates every assertion, and then applies captures, which write response values back into
// the store for later specs. Misconfiguration and undefined variables are detected before
// anything is sent. A non-2xx status is an ordinary response; only a timeout or a transport
// error prevents assertions from being evaluated.
package contract
