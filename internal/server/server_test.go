package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/dialogue"
	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/bookstore/internal/core/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDialogue struct {
	gotUser int64
	gotName string
	gotText string
}

func (f *fakeDialogue) HandleTurn(_ context.Context, userID int64, displayName, text string) dialogue.TurnResult {
	f.gotUser, f.gotName, f.gotText = userID, displayName, text
	return dialogue.TurnResult{
		TurnID:    "t-1",
		Response:  "Purchase failed",
		State:     model.StateInitial,
		Turns:     []model.Turn{{Role: model.RoleUser, Content: text}},
		ErrorCode: errx.CodeItemNotFound,
	}
}

func (f *fakeDialogue) Welcome(name string) string { return "Hello " + name + "!" }

func TestChat(t *testing.T) {
	d := &fakeDialogue{}
	srv := httptest.NewServer(New(d).Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/chat", "application/json",
		strings.NewReader(`{"user_id": 42, "display_name": " Ada ", "message": "buy Dune"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, int64(42), d.gotUser)
	assert.Equal(t, "Ada", d.gotName)
	assert.Equal(t, "buy Dune", d.gotText)

	var body dialogue.TurnResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "t-1", body.TurnID)
	assert.Equal(t, errx.CodeItemNotFound, body.ErrorCode)
	assert.Equal(t, model.StateInitial, body.State)
	require.Len(t, body.Turns, 1)
}

func TestChatRejectsBadRequests(t *testing.T) {
	h := New(&fakeDialogue{}).Routes()

	for name, body := range map[string]string{
		"not json":      "buy Dune",
		"missing user":  `{"message": "hi"}`,
		"unknown field": `{"user_id": 1, "text": "hi"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var e errorBody
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
			assert.Equal(t, errx.CodeParseFailure, e.Code)
		})
	}
}

func TestChatMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	New(&fakeDialogue{}).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWelcomeAndHealthcheck(t *testing.T) {
	h := New(&fakeDialogue{}).Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/welcome?name=Ada", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "Hello Ada!"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
