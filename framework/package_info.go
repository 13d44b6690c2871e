// Package framework contains the low-level test runner infrastructure that the API suites are
// built on. It knows nothing about HTTP; the contract package provides the request/assertion
// engine and the apitests package ties the two together.
//
// The general model is:
//
// 1. There is a general notion of a test context which is similar to Go's *testing.T, allowing
// pieces of test logic to be associated with a hierarchical test identifier and to accumulate
// success/failure results. Subtests run synchronously, in program order.
//
// 2. Each test can write debug output to a capturing logger. The output is handed to the
// TestLogger when the test finishes, so it can be shown only for failed tests.
//
// 3. A Filter decides which tests run, based on regular expressions given on the command line.
package framework
