package apitests

import (
	"net/http"

	"github.com/rafafrassetto/http-contract-tests/match"
)

const postSchema = `{
	"type": "object",
	"required": ["userId", "id", "title", "body"],
	"properties": {
		"userId": {"type": "integer"},
		"id": {"type": "integer"},
		"title": {"type": "string"},
		"body": {"type": "string"}
	}
}`

var postListSchema = `{"type": "array", "items": ` + postSchema + `}`

// DoJSONPlaceholderTests exercises the blog-post sandbox. Writes are accepted but not persisted
// by the service, so the tests that follow a create use fixed resource ids.
func DoJSONPlaceholderTests(t *T) {
	t.Run("posts", func(t *T) {
		t.Run("list posts", func(t *T) {
			t.Require(t.Spec().
				Get("/posts").
				ExpectStatus(http.StatusOK).
				ExpectJSONSchema(postListSchema).
				ExpectJSONLength(100).
				ExpectPath("[0].id", 1))
		})

		t.Run("get post", func(t *T) {
			t.Require(t.Spec().
				Get("/posts/{id}").
				WithPathParam("id", 1).
				ExpectStatus(http.StatusOK).
				ExpectJSONSchema(postSchema).
				ExpectJSONAt("userId", 1).
				ExpectPathSatisfies("title", "not empty"))
		})

		t.Run("create post", func(t *T) {
			title := UniqueName("title")
			t.Require(t.Spec().
				Post("/posts").
				WithHeader("Content-Type", "application/json; charset=UTF-8").
				WithJSONBody(map[string]interface{}{"title": title, "body": "bar", "userId": 1}).
				ExpectStatus(http.StatusCreated).
				ExpectJSONLike(map[string]interface{}{"title": title, "body": "bar", "userId": 1}).
				ExpectPath("id", match.AtLeast(1)).
				Stores("PostID", "id").
				Stores("PostTitle", "title"))

			t.Run("captured title is reusable", func(t *T) {
				t.RequireStored("PostTitle")
				t.Require(t.Spec().
					Post("/posts").
					WithJSONBody(map[string]interface{}{"title": "$S{PostTitle}", "userId": 1}).
					ExpectStatus(http.StatusCreated).
					ExpectJSONAt("title", "$S{PostTitle}"))
			})
		})

		t.Run("patch post", func(t *T) {
			t.Require(t.Spec().
				Patch("/posts/{id}").
				WithPathParam("id", 1).
				WithJSONBody(map[string]interface{}{"title": "patched"}).
				ExpectStatus(http.StatusOK).
				ExpectJSONLike(map[string]interface{}{"id": 1, "title": "patched"}))
		})

		t.Run("delete post", func(t *T) {
			t.Require(t.Spec().
				Delete("/posts/{id}").
				WithPathParam("id", 1).
				ExpectStatus(http.StatusOK).
				ExpectJSON(map[string]interface{}{}))
		})
	})

	t.Run("comments", func(t *T) {
		t.Run("comments of a post", func(t *T) {
			t.Require(t.Spec().
				Get("/comments").
				WithQueryParam("postId", 1).
				ExpectStatus(http.StatusOK).
				ExpectPathSatisfies("$", "length > 0").
				ExpectPathSatisfies("[0].email", "matches @").
				ExpectJSONLike([]interface{}{map[string]interface{}{"postId": 1}}))
		})
	})
}
