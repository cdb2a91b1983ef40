package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/starford/martini/internal/testutil"
)

type testEnvResult struct {
	router http.Handler
	env    *testutil.Env
}

// testEnv wires a temp data dir, SQLite index, service, and router.
// A non-empty authToken enables token mode.
func testEnv(t *testing.T, authToken string) testEnvResult {
	t.Helper()
	env := testutil.TestEnv(t)
	router := NewRouter(env.Service, authToken != "", authToken, 0, nil)
	return testEnvResult{router: router, env: env}
}

func postMessage(t *testing.T, h http.Handler, chat, text string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"text": text})
	req := httptest.NewRequest(http.MethodPost, "/chats/"+chat+"/messages", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPostMessage_NeedAndGot(t *testing.T) {
	env := testEnv(t, "")

	w := postMessage(t, env.router, "1", "/need Milk, Bread, milk")
	if w.Code != http.StatusOK {
		t.Fatalf("need status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp MessageResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.ChatID != 1 {
		t.Errorf("chat_id = %d", resp.ChatID)
	}
	if want := "'milk' already on the list!\nWe need:\n1. Bread\n2. Milk"; resp.Reply != want {
		t.Errorf("reply = %q, want %q", resp.Reply, want)
	}

	w = postMessage(t, env.router, "1", "/got bread")
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Reply != "We still need:\n1. Milk" {
		t.Errorf("reply = %q", resp.Reply)
	}
}

func TestPostMessage_Persists(t *testing.T) {
	env := testEnv(t, "")
	postMessage(t, env.router, "-42", "/need Eggs")

	data, err := env.env.FS.Read(-42)
	if err != nil {
		t.Fatalf("snapshot missing: %v", err)
	}
	if !strings.Contains(string(data), "Eggs") {
		t.Errorf("snapshot = %q", data)
	}
}

func TestPostMessage_BadRequests(t *testing.T) {
	env := testEnv(t, "")

	if w := postMessage(t, env.router, "abc", "/need milk"); w.Code != http.StatusBadRequest {
		t.Errorf("invalid chat id status = %d", w.Code)
	}
	if w := postMessage(t, env.router, "1", ""); w.Code != http.StatusBadRequest {
		t.Errorf("empty text status = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/chats/1/messages", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid json status = %d", w.Code)
	}
}

func TestPostMessage_UnknownCommand(t *testing.T) {
	env := testEnv(t, "")
	w := postMessage(t, env.router, "1", "/dance")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
	w = postMessage(t, env.router, "1", "hello there")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("plain text status = %d, want 422", w.Code)
	}
}

func TestGetList(t *testing.T) {
	env := testEnv(t, "")
	postMessage(t, env.router, "5", "/need zucchini, Apples")

	req := httptest.NewRequest(http.MethodGet, "/chats/5/items", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !reflect.DeepEqual(resp.Items, []string{"Apples", "zucchini"}) {
		t.Errorf("items = %v", resp.Items)
	}
	if resp.Text != "We need:\n1. Apples\n2. zucchini" {
		t.Errorf("text = %q", resp.Text)
	}
}

func TestGetList_UnknownChatIsEmpty(t *testing.T) {
	env := testEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/chats/77/items", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"items":[]`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestSearchAndListChats(t *testing.T) {
	env := testEnv(t, "")
	postMessage(t, env.router, "1", "/need Milk")
	postMessage(t, env.router, "2", "/need milk, tea")
	env.env.Sync(t)

	req := httptest.NewRequest(http.MethodGet, "/search?item=MILK", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	var search SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &search)
	if !reflect.DeepEqual(search.ChatIDs, []int64{1, 2}) {
		t.Errorf("chat_ids = %v", search.ChatIDs)
	}

	req = httptest.NewRequest(http.MethodGet, "/chats", nil)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	var lists ListsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &lists)
	if lists.Total != 2 || len(lists.Lists) != 2 {
		t.Errorf("lists = %+v", lists)
	}
}

func TestSearch_MissingItem(t *testing.T) {
	env := testEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAuth_TokenMode(t *testing.T) {
	env := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/chats/1/items", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/chats/1/items", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/chats/1/items", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token status = %d, want 200", w.Code)
	}
}
