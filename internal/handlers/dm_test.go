package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gizetz/gbairai/internal/models"
)

func (ts *testServer) startConversation(from, to int64) int64 {
	ts.t.Helper()
	rr := ts.do("POST", "/conversations", from, map[string]int64{"participant_id": to})
	require.Equal(ts.t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[map[string]int64](ts.t, rr)["conversation_id"]
}

func (ts *testServer) send(conversationID, from int64, content string) models.Message {
	ts.t.Helper()
	rr := ts.do("POST", fmt.Sprintf("/conversations/%d/messages", conversationID), from, map[string]string{"content": content, "kind": "text"})
	require.Equal(ts.t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[models.Message](ts.t, rr)
}

func (ts *testServer) inbox(viewer int64) []models.ConversationSummary {
	ts.t.Helper()
	rr := ts.do("GET", "/conversations", viewer, nil)
	require.Equal(ts.t, http.StatusOK, rr.Code)
	return decode[[]models.ConversationSummary](ts.t, rr)
}

func TestRoutesRequireSession(t *testing.T) {
	ts := newTestServer(t)
	routes := []struct{ method, path string }{
		{"POST", "/conversations"},
		{"GET", "/conversations"},
		{"GET", "/conversations/1"},
		{"DELETE", "/conversations/1"},
		{"GET", "/conversations/1/messages"},
		{"POST", "/conversations/1/messages"},
		{"DELETE", "/messages/1/for-me"},
		{"DELETE", "/messages/1"},
		{"POST", "/users/1/block"},
		{"DELETE", "/users/1/block"},
		{"GET", "/blocked-users"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rr := ts.do(rt.method, rt.path, 0, nil)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestCreateConversation(t *testing.T) {
	ts := newTestServer(t)
	a, b := ts.user("ama"), ts.user("kofi")

	id := ts.startConversation(a.ID, b.ID)
	assert.Equal(t, id, ts.startConversation(b.ID, a.ID))

	rr := ts.do("POST", "/conversations", a.ID, map[string]int64{"participant_id": a.ID})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = ts.do("POST", "/conversations", a.ID, map[string]int64{"participant_id": 9999})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.do("POST", "/conversations", a.ID, map[string]string{"participant_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do("POST", "/conversations", a.ID, map[string]int64{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do("POST", "/conversations", a.ID, map[string]int64{"participant": b.ID})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION", decode[errorBody](t, rr).Code)
}

func TestCreateConversation_CamelCaseBody(t *testing.T) {
	ts := newTestServer(t)
	a, b, c := ts.user("ama"), ts.user("kofi"), ts.user("yaw")
	id := ts.startConversation(a.ID, b.ID)

	rr := ts.do("POST", "/conversations", b.ID, map[string]int64{"participantId": a.ID})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, id, decode[map[string]int64](t, rr)["conversation_id"])

	rr = ts.do("POST", "/conversations", a.ID, map[string]int64{"participant_id": b.ID, "participantId": c.ID})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do("POST", "/conversations", a.ID, map[string]int64{"participant_id": b.ID, "participantId": b.ID})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, id, decode[map[string]int64](t, rr)["conversation_id"])
}

func TestGetConversation(t *testing.T) {
	ts := newTestServer(t)
	a, b, c := ts.user("ama"), ts.user("kofi"), ts.user("yaw")
	id := ts.startConversation(a.ID, b.ID)
	ts.send(id, a.ID, "hello")

	rr := ts.do("GET", fmt.Sprintf("/conversations/%d", id), b.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	summary := decode[models.ConversationSummary](t, rr)
	assert.Equal(t, id, summary.ID)
	assert.Equal(t, 1, summary.UnreadCount)
	require.Len(t, summary.Participants, 2)
	assert.Equal(t, "ama", summary.Participants[0].Username)
	require.NotNil(t, summary.LastMessage)
	assert.Equal(t, "hello", summary.LastMessage.Content)

	assert.Equal(t, http.StatusNotFound, ts.do("GET", fmt.Sprintf("/conversations/%d", id), c.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do("GET", "/conversations/9999", a.ID, nil).Code)
}

func TestSendMessage(t *testing.T) {
	ts := newTestServer(t)
	a, b, c := ts.user("ama"), ts.user("kofi"), ts.user("yaw")
	id := ts.startConversation(a.ID, b.ID)
	path := fmt.Sprintf("/conversations/%d/messages", id)

	first := ts.send(id, a.ID, "  hello  ")
	assert.Equal(t, "hello", first.Content)
	assert.Equal(t, "ama", first.Username)

	tests := []struct {
		name   string
		sender int64
		body   map[string]any
		status int
		code   string
	}{
		{"empty", a.ID, map[string]any{"content": "   "}, http.StatusBadRequest, "VALIDATION"},
		{"too long", a.ID, map[string]any{"content": "this message is far too long"}, http.StatusBadRequest, "VALIDATION"},
		{"bad kind", a.ID, map[string]any{"content": "hi", "kind": "video"}, http.StatusBadRequest, "VALIDATION"},
		{"outsider", c.ID, map[string]any{"content": "hi"}, http.StatusForbidden, "UNAUTHORIZED"},
		{"missing reply", b.ID, map[string]any{"content": "re", "reply_to_id": 9999}, http.StatusUnprocessableEntity, "INVALID_REPLY"},
		{"missing reply camel case", b.ID, map[string]any{"content": "re", "replyToId": 9999}, http.StatusUnprocessableEntity, "INVALID_REPLY"},
		{"conflicting reply fields", b.ID, map[string]any{"content": "re", "reply_to_id": first.ID, "replyToId": 9999}, http.StatusBadRequest, "VALIDATION"},
		{"unknown field", b.ID, map[string]any{"content": "re", "replyTo": first.ID}, http.StatusBadRequest, "VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do("POST", path, tt.sender, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Equal(t, tt.code, decode[errorBody](t, rr).Code)
		})
	}

	rr := ts.do("POST", path, b.ID, map[string]any{"content": "re", "reply_to_id": first.ID})
	require.Equal(t, http.StatusCreated, rr.Code)
	reply := decode[models.Message](t, rr)
	require.NotNil(t, reply.ReplyTo)
	assert.Equal(t, first.ID, reply.ReplyTo.ID)

	rr = ts.do("POST", path, b.ID, map[string]any{"content": "re again", "kind": "text", "replyToId": first.ID})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	reply = decode[models.Message](t, rr)
	require.NotNil(t, reply.ReplyToID)
	assert.Equal(t, first.ID, *reply.ReplyToID)
	require.NotNil(t, reply.ReplyTo)
	assert.Equal(t, "hello", reply.ReplyTo.Content)

	assert.Equal(t, http.StatusNotFound, ts.do("POST", "/conversations/9999/messages", a.ID, map[string]any{"content": "hi"}).Code)
}

func TestSendMessage_MediaSkipsContentPolicy(t *testing.T) {
	ts := newTestServer(t)
	a, b := ts.user("ama"), ts.user("kofi")
	id := ts.startConversation(a.ID, b.ID)
	path := fmt.Sprintf("/conversations/%d/messages", id)

	for _, kind := range []models.MessageKind{models.KindImage, models.KindAudio, models.KindFile} {
		t.Run(string(kind), func(t *testing.T) {
			payload := " https://cdn.example.com/uploads/" + string(kind) + "/0001.bin "
			rr := ts.do("POST", path, a.ID, map[string]any{"content": payload, "kind": kind})
			require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
			msg := decode[models.Message](t, rr)
			assert.Equal(t, payload, msg.Content)
			assert.Equal(t, kind, msg.Kind)
		})
	}

	rr := ts.do("POST", path, a.ID, map[string]any{"content": "this text is well over twenty runes", "kind": "text"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListMessages_MarksRead(t *testing.T) {
	ts := newTestServer(t)
	a, b := ts.user("ama"), ts.user("kofi")
	id := ts.startConversation(a.ID, b.ID)
	ts.send(id, a.ID, "one")
	ts.send(id, a.ID, "two")
	path := fmt.Sprintf("/conversations/%d/messages", id)

	rr := ts.do("GET", path, b.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	msgs := decode[[]models.Message](t, rr)
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[0].Content)
	assert.Equal(t, "two", msgs[1].Content)

	assert.Zero(t, ts.inbox(b.ID)[0].UnreadCount)
}

func TestDeleteMessages(t *testing.T) {
	ts := newTestServer(t)
	a, b := ts.user("ama"), ts.user("kofi")
	id := ts.startConversation(a.ID, b.ID)
	m := ts.send(id, a.ID, "oops")
	other := ts.send(id, b.ID, "ok")

	assert.Equal(t, http.StatusForbidden, ts.do("DELETE", fmt.Sprintf("/messages/%d", m.ID), b.ID, nil).Code)
	assert.Equal(t, http.StatusNoContent, ts.do("DELETE", fmt.Sprintf("/messages/%d", m.ID), a.ID, nil).Code)
	assert.Equal(t, http.StatusNoContent, ts.do("DELETE", fmt.Sprintf("/messages/%d/for-me", other.ID), a.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do("DELETE", "/messages/9999", a.ID, nil).Code)

	msgs := decode[[]models.Message](t, ts.do("GET", fmt.Sprintf("/conversations/%d/messages", id), a.ID, nil))
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].IsTombstoned)
	assert.Equal(t, "This message was deleted", msgs[0].Content)

	msgs = decode[[]models.Message](t, ts.do("GET", fmt.Sprintf("/conversations/%d/messages", id), b.ID, nil))
	assert.Len(t, msgs, 2)
}

func TestBlocks(t *testing.T) {
	ts := newTestServer(t)
	a, b := ts.user("ama"), ts.user("kofi")
	id := ts.startConversation(a.ID, b.ID)

	assert.Equal(t, http.StatusCreated, ts.do("POST", fmt.Sprintf("/users/%d/block", b.ID), a.ID, nil).Code)
	assert.Equal(t, http.StatusConflict, ts.do("POST", fmt.Sprintf("/users/%d/block", b.ID), a.ID, nil).Code)
	assert.Equal(t, http.StatusConflict, ts.do("POST", fmt.Sprintf("/users/%d/block", a.ID), a.ID, nil).Code)

	rr := ts.do("POST", fmt.Sprintf("/conversations/%d/messages", id), b.ID, map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "FORBIDDEN", decode[errorBody](t, rr).Code)

	blocked := decode[[]models.User](t, ts.do("GET", "/blocked-users", a.ID, nil))
	require.Len(t, blocked, 1)
	assert.Equal(t, b.ID, blocked[0].ID)
	assert.Empty(t, decode[[]models.User](t, ts.do("GET", "/blocked-users", b.ID, nil)))

	assert.Equal(t, http.StatusNotFound, ts.do("DELETE", fmt.Sprintf("/users/%d/block", a.ID), b.ID, nil).Code)
	assert.Equal(t, http.StatusNoContent, ts.do("DELETE", fmt.Sprintf("/users/%d/block", b.ID), a.ID, nil).Code)
	ts.send(id, b.ID, "hi again")
}

func TestEndToEnd(t *testing.T) {
	ts := newTestServer(t)
	one, two := ts.user("one"), ts.user("two")

	id := ts.startConversation(one.ID, two.ID)
	ts.send(id, one.ID, "Hello")
	require.Len(t, ts.inbox(two.ID), 1)
	assert.Equal(t, 1, ts.inbox(two.ID)[0].UnreadCount)

	assert.Equal(t, http.StatusNoContent, ts.do("DELETE", fmt.Sprintf("/conversations/%d", id), two.ID, nil).Code)
	assert.Empty(t, ts.inbox(two.ID))
	assert.Len(t, ts.inbox(one.ID), 1)

	ts.send(id, one.ID, "Are you there?")
	inbox := ts.inbox(two.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, id, inbox[0].ID)
	assert.Equal(t, 2, inbox[0].UnreadCount)
	assert.Equal(t, "Are you there?", inbox[0].LastMessage.Content)

	assert.Equal(t, http.StatusCreated, ts.do("POST", fmt.Sprintf("/users/%d/block", one.ID), two.ID, nil).Code)
	rr := ts.do("POST", fmt.Sprintf("/conversations/%d/messages", id), one.ID, map[string]string{"content": "..."})
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
