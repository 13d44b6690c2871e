package apitests

import (
	"net/http"
	"time"

	"github.com/rafafrassetto/http-contract-tests/match"
)

var activitySchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"id", "title", "completed"},
	"properties": map[string]interface{}{
		"id":        map[string]interface{}{"type": "integer"},
		"title":     map[string]interface{}{"type": "string", "nullable": true},
		"dueDate":   map[string]interface{}{"type": "string"},
		"completed": map[string]interface{}{"type": "boolean"},
	},
}

// DoFakeRESTAPITests exercises the generic fake-REST sandbox.
func DoFakeRESTAPITests(t *T) {
	t.Run("activities", func(t *T) {
		t.Run("list activities", func(t *T) {
			t.Require(t.Spec().
				Get("/Activities").
				ExpectStatus(http.StatusOK).
				ExpectJSONSchema(map[string]interface{}{"type": "array", "items": activitySchema}).
				ExpectPath("$", match.NotEmpty()))
		})

		t.Run("create activity", func(t *T) {
			title := UniqueName("activity")
			t.Require(t.Spec().
				Post("/Activities").
				WithJSONBody(map[string]interface{}{
					"id":        0,
					"title":     title,
					"dueDate":   time.Now().UTC().Format(time.RFC3339),
					"completed": false,
				}).
				ExpectStatus(http.StatusOK).
				ExpectJSONSchema(activitySchema).
				ExpectJSONAt("title", title).
				Stores("ActivityTitle", "title"))
		})

		t.Run("get activity", func(t *T) {
			t.Require(t.Spec().
				Get("/Activities/{id}").
				WithPathParam("id", 1).
				ExpectStatus(http.StatusOK).
				ExpectJSONMatch(map[string]interface{}{
					"id":        1,
					"title":     match.TypeOf(""),
					"dueDate":   match.Regex(`^\d{4}-\d{2}-\d{2}T`),
					"completed": match.TypeOf(true),
				}))
		})
	})
}
