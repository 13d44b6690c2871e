package contract

import (
	"testing"
	"time"

	"github.com/rafafrassetto/http-contract-tests/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func TestBuildResolvesPathAndQueryParams(t *testing.T) {
	vars := store.New()
	vars.Set("UserID", ldvalue.String("42"))

	d, err := NewRequest().
		Get("https://reqres.in/api/users/{id}?x=1").
		WithPathParam("id", "$S{UserID}").
		WithQueryParam("page", 2).
		WithQueryParam("q", "a b").
		Build(vars)
	require.NoError(t, err)

	assert.Equal(t, "GET", d.Method)
	assert.Equal(t, "https://reqres.in/api/users/42?x=1&page=2&q=a+b", d.URL)
	assert.Equal(t, []NameValue{{Name: "id", Value: "42"}}, d.PathParams)
	assert.Equal(t, []NameValue{{Name: "page", Value: "2"}, {Name: "q", Value: "a b"}}, d.QueryParams)
	assert.Nil(t, d.Body)
	assert.False(t, d.TimeoutMS.IsDefined())
}

func TestBuildEscapesPathParamValues(t *testing.T) {
	d, err := NewRequest().Get("http://h/files/{name}").WithPathParam("name", "a/b c").Build(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://h/files/a%2Fb%20c", d.URL)
}

func TestBuildResolvesPlaceholdersInURL(t *testing.T) {
	vars := store.New()
	vars.Set("PostID", ldvalue.Int(101))
	d, err := NewRequest().Delete("http://h/posts/$S{PostID}").Build(vars)
	require.NoError(t, err)
	assert.Equal(t, "http://h/posts/101", d.URL)
}

func TestBuildUnboundPathParam(t *testing.T) {
	_, err := NewRequest().Get("http://h/users").WithPathParam("id", "1").Build(nil)
	assert.ErrorIs(t, err, ErrUnboundPathParam)

	_, err = NewRequest().Get("http://h/users/{id}").Build(nil)
	assert.ErrorIs(t, err, ErrUnboundPathParam)

	_, err = NewRequest().Get("http://h/users/{id}").WithPathParam("ID", "1").Build(nil)
	assert.ErrorIs(t, err, ErrUnboundPathParam)
}

func TestBuildIncompleteSpec(t *testing.T) {
	_, err := NewRequest().Build(nil)
	assert.ErrorIs(t, err, ErrIncompleteSpec)

	_, err = NewRequest().Method("GET", "").Build(nil)
	assert.ErrorIs(t, err, ErrIncompleteSpec)

	_, err = NewRequest().Method("TRACE", "http://h").Build(nil)
	assert.ErrorIs(t, err, ErrIncompleteSpec)

	_, err = NewRequest().Post("http://h").WithJSONBody(func() {}).Build(nil)
	assert.ErrorIs(t, err, ErrIncompleteSpec)
}

func TestBuildRejectsMalformedURL(t *testing.T) {
	_, err := NewRequest().Get("http://example.com/%zz").Build(nil)
	assert.ErrorIs(t, err, ErrIncompleteSpec)

	_, err = NewRequest().Get("http://example.com/users/{id}").WithPathParam("id", "%zz").Build(nil)
	assert.NoError(t, err)
}

func TestBuildDefaultHeaders(t *testing.T) {
	d, err := NewRequest().Get("http://h").
		WithDefaultHeader("x-api-key", "default").
		WithDefaultHeader("Accept", "application/json").
		WithHeader("X-API-KEY", "override").
		Build(nil)
	require.NoError(t, err)
	assert.Equal(t, []NameValue{
		{Name: "Accept", Value: "application/json"},
		{Name: "X-API-KEY", Value: "override"},
	}, d.Headers)

	d, err = NewRequest().Get("http://h").WithDefaultHeader("x-api-key", "default").Build(nil)
	require.NoError(t, err)
	assert.Equal(t, "default", d.Header("X-Api-Key"))
}

func TestBuildUndefinedVariable(t *testing.T) {
	_, err := NewRequest().Put("http://h/users/{id}").WithPathParam("id", "$S{UserID}").Build(store.New())
	assert.ErrorIs(t, err, ErrUndefinedVariable)

	_, err = NewRequest().Get("http://h").WithHeader("Authorization", "Bearer $S{Token}").Build(store.New())
	assert.ErrorIs(t, err, ErrUndefinedVariable)

	_, err = NewRequest().Post("http://h").WithJSONBody(map[string]interface{}{"id": "$S{Nope}"}).Build(store.New())
	assert.ErrorIs(t, err, ErrUndefinedVariable)
}

func TestBuildJSONBody(t *testing.T) {
	vars := store.New()
	vars.Set("UserID", ldvalue.Int(7))

	d, err := NewRequest().
		Post("http://h/posts").
		WithJSONBody(map[string]interface{}{"userId": "$S{UserID}", "title": "for $S{UserID}"}).
		Build(vars)
	require.NoError(t, err)
	assert.Equal(t, "application/json", d.Header("content-type"))
	assert.Equal(t, 7, d.JSONBody.GetByKey("userId").IntValue())
	assert.Equal(t, "for 7", d.JSONBody.GetByKey("title").StringValue())
	assert.JSONEq(t, `{"userId":7,"title":"for 7"}`, string(d.Body))

	d, err = NewRequest().
		Post("http://h/posts").
		WithHeader("Content-Type", "application/vnd.api+json").
		WithJSONBody(ldvalue.ArrayOf(ldvalue.Int(1))).
		Build(nil)
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.api+json", d.Header("Content-Type"))
	assert.Len(t, d.Headers, 1)
}

func TestBuildRawBody(t *testing.T) {
	vars := store.New()
	vars.Set("name", ldvalue.String("Ann"))
	d, err := NewRequest().Post("http://h").WithBody("name=$S{name}", "application/x-www-form-urlencoded").Build(vars)
	require.NoError(t, err)
	assert.Equal(t, "name=Ann", string(d.Body))
	assert.Equal(t, "application/x-www-form-urlencoded", d.Header("Content-Type"))
	assert.True(t, d.JSONBody.IsNull())
}

func TestBuildTimeout(t *testing.T) {
	d, err := NewRequest().Get("http://h").WithTimeout(1500 * time.Millisecond).Build(nil)
	require.NoError(t, err)
	assert.Equal(t, ldvalue.NewOptionalInt(1500), d.TimeoutMS)

	d, err = NewRequest().Get("http://h").WithTimeout(time.Microsecond).Build(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, d.TimeoutMS.IntValue())
}

func TestBuildDoesNotShareStateBetweenDescriptors(t *testing.T) {
	b := NewRequest().Get("http://h").WithHeader("A", "1")
	first, err := b.Build(nil)
	require.NoError(t, err)
	b.WithHeader("B", "2")
	second, err := b.Build(nil)
	require.NoError(t, err)
	assert.Len(t, first.Headers, 1)
	assert.Len(t, second.Headers, 2)
}
