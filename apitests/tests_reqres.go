package apitests

import (
	"net/http"

	"github.com/rafafrassetto/http-contract-tests/match"
)

// DoReqResTests exercises the user-management sandbox. The update and delete tests use the id
// captured by the create test, so they depend on running after it.
func DoReqResTests(t *T) {
	t.Run("users", func(t *T) {
		name, job := UniqueName("Ann"), "Engineer"

		t.Run("create user", func(t *T) {
			t.Require(t.Spec().
				Post("/users").
				WithJSONBody(map[string]interface{}{"name": name, "job": job}).
				ExpectStatus(http.StatusCreated).
				ExpectJSONLike(map[string]interface{}{"name": name, "job": job}).
				ExpectPathSatisfies("id", "not empty").
				Stores("UserID", "id"))
		})

		t.Run("list users of a page", func(t *T) {
			t.Require(t.Spec().
				Get("/users").
				WithQueryParam("page", 2).
				ExpectStatus(http.StatusOK).
				ExpectJSONMatch(map[string]interface{}{
					"page":        2,
					"per_page":    match.TypeOf(0),
					"total":       match.TypeOf(0),
					"total_pages": match.TypeOf(0),
					"data": match.Partially([]interface{}{
						map[string]interface{}{"id": 7, "email": "michael.lawson@reqres.in"},
					}),
					"support": match.Anything(),
				}))
		})

		t.Run("get single user", func(t *T) {
			t.Require(t.Spec().
				Get("/users/{id}").
				WithPathParam("id", 2).
				ExpectStatus(http.StatusOK).
				ExpectJSONLike(map[string]interface{}{
					"data": map[string]interface{}{
						"id":         2,
						"email":      "janet.weaver@reqres.in",
						"first_name": "Janet",
					},
				}).
				ExpectJSONMatchAt("data.avatar", match.Regex(`^https://`)))
		})

		t.Run("update user", func(t *T) {
			t.RequireStored("UserID")
			updated := UniqueName("Ann")
			t.Require(t.Spec().
				Put("/users/{id}").
				WithPathParam("id", "$S{UserID}").
				WithJSONBody(map[string]interface{}{"name": updated, "job": "Resident"}).
				ExpectStatus(http.StatusOK).
				ExpectJSONLike(map[string]interface{}{"name": updated, "job": "Resident"}).
				ExpectPathSatisfies("updatedAt", "type == string"))
		})

		t.Run("delete user", func(t *T) {
			t.RequireStored("UserID")
			t.Require(t.Spec().
				Delete("/users/{id}").
				WithPathParam("id", "$S{UserID}").
				ExpectStatus(http.StatusNoContent))
		})
	})

	t.Run("authentication", func(t *T) {
		t.Run("login without password", func(t *T) {
			t.Require(t.Spec().
				Post("/login").
				WithJSONBody(map[string]interface{}{"email": "peter@klaven"}).
				ExpectStatus(http.StatusBadRequest).
				ExpectJSON(map[string]interface{}{"error": "Missing password"}))
		})
	})
}
