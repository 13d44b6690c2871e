package framework

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(path ...string) TestID { return TestID{Path: path} }

func TestRegexFiltersMatchByElement(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("reqres/users"))

	assert.True(t, filters.AsFilter(id("reqres")))
	assert.True(t, filters.AsFilter(id("reqres", "users")))
	assert.True(t, filters.AsFilter(id("reqres", "users", "create user")))
	assert.False(t, filters.AsFilter(id("reqres", "authentication")))
	assert.False(t, filters.AsFilter(id("jsonplaceholder")))
}

func TestRegexFiltersMustNotMatch(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustNotMatch.Set("delete"))

	assert.True(t, filters.AsFilter(id("reqres", "users", "create user")))
	assert.False(t, filters.AsFilter(id("reqres", "users", "delete user")))
}

func TestRegexFiltersWithNothingDefined(t *testing.T) {
	var filters RegexFilters
	assert.True(t, filters.AsFilter(id("anything")))
}

func TestRegexListFlagValue(t *testing.T) {
	var list RegexList
	assert.False(t, list.IsDefined())
	require.NoError(t, list.Set("^a"))
	require.NoError(t, list.Set("b$"))
	assert.Error(t, list.Set("("))

	assert.True(t, list.IsDefined())
	assert.Equal(t, `"^a" or "b$"`, list.String())
	assert.Equal(t, "regex", list.Type())
	assert.True(t, list.AnyMatch("abc"))
	assert.True(t, list.AnyMatch("xb"))
	assert.False(t, list.AnyMatch("xyz"))
}

func TestPrintFilterDescription(t *testing.T) {
	var buf bytes.Buffer
	PrintFilterDescription(&buf, RegexFilters{}, nil)
	assert.Empty(t, buf.String())

	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("reqres"))
	require.NoError(t, filters.MustNotMatch.Set("login"))
	PrintFilterDescription(&buf, filters, []string{"fakerestapi"})

	out := buf.String()
	assert.Contains(t, out, `skip any not matching "reqres"`)
	assert.Contains(t, out, `skip any matching "login"`)
	assert.Contains(t, out, "fakerestapi")
}

func TestLoggerWithPrefix(t *testing.T) {
	var target CapturingLogger
	LoggerWithPrefix(&target, "[x] ").Printf("n=%d", 1)
	output := target.Output()
	require.Len(t, output, 1)
	assert.Equal(t, "[x] n=1", output[0].Message)

	var buf bytes.Buffer
	output.Dump(&buf, "DEBUG ")
	assert.Contains(t, buf.String(), "DEBUG [")
	assert.Contains(t, buf.String(), "] [x] n=1\n")
}
