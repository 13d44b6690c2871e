// Package apitests contains the API contract suites themselves and their supporting API.
//
// Each suite runs against one sandbox service. Its tests share a contract.Engine, so a value
// captured with Stores in one test can be referenced as $S{name} by any later test in the same
// suite. Suites never share variables.
//
// Infrastructure that is not specific to HTTP, such as the hierarchical test context and test
// filtering, is in the lower-level framework package.
package apitests
