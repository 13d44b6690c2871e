package apitests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rafafrassetto/http-contract-tests/config"
)

// sandbox emulates the public sandbox services closely enough for every suite to pass against
// it. Unlike the real reqres, it only accepts updates to users it created.
type sandbox struct {
	lock       sync.Mutex
	nextUserID int
	users      map[string]bool
	calls      map[string]int
}

func newSandbox() *sandbox {
	return &sandbox{nextUserID: 123, users: make(map[string]bool), calls: make(map[string]int)}
}

func (s *sandbox) config(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.TimeoutMS = 5000
	cfg.Suites[config.ReqRes] = config.SuiteConfig{BaseURL: baseURL + "/api", Headers: map[string]string{"x-api-key": "reqres-free-v1"}}
	cfg.Suites[config.JSONPlaceholder] = config.SuiteConfig{BaseURL: baseURL}
	cfg.Suites[config.FakeRESTAPI] = config.SuiteConfig{BaseURL: baseURL + "/api/v1"}
	return cfg
}

func (s *sandbox) callCount(route string) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.calls[route]
}

func (s *sandbox) router() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req)
			s.lock.Lock()
			s.calls[req.Method+" "+chi.RouteContext(req.Context()).RoutePattern()]++
			s.lock.Unlock()
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", s.createUser)
		r.Get("/users", s.listUsers)
		r.Get("/users/{id}", s.getUser)
		r.Put("/users/{id}", s.updateUser)
		r.Delete("/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		r.Post("/login", s.login)

		r.Route("/v1/Activities", func(r chi.Router) {
			r.Get("/", s.listActivities)
			r.Post("/", echo(http.StatusOK, nil))
			r.Get("/{id}", s.getActivity)
		})
	})

	r.Get("/posts", s.listPosts)
	r.Post("/posts", echo(http.StatusCreated, map[string]interface{}{"id": 101}))
	r.Get("/posts/{id}", s.getPost)
	r.Patch("/posts/{id}", s.patchPost)
	r.Delete("/posts/{id}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{})
	})
	r.Get("/comments", s.listComments)
	return r
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func readJSON(r *http.Request) (map[string]interface{}, error) {
	body := make(map[string]interface{})
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body, nil
}

// echo returns the request body merged with extra.
func echo(status int, extra map[string]interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readJSON(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
			return
		}
		for k, v := range extra {
			body[k] = v
		}
		writeJSON(w, status, body)
	}
}

func reqresUser(id int) map[string]interface{} {
	names := map[int][2]string{2: {"Janet", "Weaver"}, 7: {"Michael", "Lawson"}, 8: {"Lindsay", "Ferguson"}}
	n := names[id]
	return map[string]interface{}{
		"id":         id,
		"email":      fmt.Sprintf("%s.%s@reqres.in", strings.ToLower(n[0]), strings.ToLower(n[1])),
		"first_name": n[0],
		"last_name":  n[1],
		"avatar":     fmt.Sprintf("https://reqres.in/img/faces/%d-image.jpg", id),
	}
}

var reqresSupport = map[string]interface{}{"url": "https://contentcaddy.io", "text": "Tired of writing endless social media content?"}

func (s *sandbox) createUser(w http.ResponseWriter, r *http.Request) {
	body, err := readJSON(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		return
	}
	s.lock.Lock()
	id := strconv.Itoa(s.nextUserID)
	s.nextUserID++
	s.users[id] = true
	s.lock.Unlock()
	body["id"] = id
	body["createdAt"] = time.Now().UTC().Format(time.RFC3339Nano)
	writeJSON(w, http.StatusCreated, body)
}

func (s *sandbox) listUsers(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page == 0 {
		page = 1
	}
	var data []interface{}
	if page == 2 {
		data = []interface{}{reqresUser(7), reqresUser(8)}
	} else {
		data = []interface{}{reqresUser(2)}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"page":        page,
		"per_page":    6,
		"total":       12,
		"total_pages": 2,
		"data":        data,
		"support":     reqresSupport,
	})
}

func (s *sandbox) getUser(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "id") != "2" {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": reqresUser(2), "support": reqresSupport})
}

func (s *sandbox) updateUser(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	known := s.users[chi.URLParam(r, "id")]
	s.lock.Unlock()
	if !known {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{})
		return
	}
	echo(http.StatusOK, map[string]interface{}{"updatedAt": time.Now().UTC().Format(time.RFC3339Nano)})(w, r)
}

func (s *sandbox) login(w http.ResponseWriter, r *http.Request) {
	body, err := readJSON(r)
	if err != nil || body["password"] == nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Missing password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"token": "QpwL5tke4Pnpja7X4"})
}

func post(id int) map[string]interface{} {
	return map[string]interface{}{
		"userId": (id-1)/10 + 1,
		"id":     id,
		"title":  fmt.Sprintf("post %d", id),
		"body":   fmt.Sprintf("body of post %d", id),
	}
}

func (s *sandbox) listPosts(w http.ResponseWriter, _ *http.Request) {
	posts := make([]interface{}, 0, 100)
	for id := 1; id <= 100; id++ {
		posts = append(posts, post(id))
	}
	writeJSON(w, http.StatusOK, posts)
}

func postID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil && id >= 1 && id <= 100
}

func (s *sandbox) getPost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{})
		return
	}
	writeJSON(w, http.StatusOK, post(id))
}

func (s *sandbox) patchPost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{})
		return
	}
	echo(http.StatusOK, map[string]interface{}{"id": id})(w, r)
}

func (s *sandbox) listComments(w http.ResponseWriter, r *http.Request) {
	pid, _ := strconv.Atoi(r.URL.Query().Get("postId"))
	comments := []interface{}{}
	if pid >= 1 && pid <= 100 {
		for i := 1; i <= 5; i++ {
			comments = append(comments, map[string]interface{}{
				"postId": pid,
				"id":     (pid-1)*5 + i,
				"name":   fmt.Sprintf("comment %d", i),
				"email":  fmt.Sprintf("reader%d@example.org", i),
				"body":   "nice post",
			})
		}
	}
	writeJSON(w, http.StatusOK, comments)
}

func activity(id int) map[string]interface{} {
	return map[string]interface{}{
		"id":        id,
		"title":     fmt.Sprintf("Activity %d", id),
		"dueDate":   time.Date(2026, 10, 14, id%24, 0, 0, 0, time.UTC).Format(time.RFC3339),
		"completed": id%2 == 0,
	}
}

func (s *sandbox) listActivities(w http.ResponseWriter, _ *http.Request) {
	list := make([]interface{}, 0, 30)
	for id := 1; id <= 30; id++ {
		list = append(list, activity(id))
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *sandbox) getActivity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 || id > 30 {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"title": "Not Found", "status": 404})
		return
	}
	writeJSON(w, http.StatusOK, activity(id))
}
