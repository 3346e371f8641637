package review

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inkoverlay/internal/auth"
	"github.com/inamate/inkoverlay/internal/db/dbgen"
	"github.com/inamate/inkoverlay/internal/settings"
	"github.com/inamate/inkoverlay/internal/wire"
)

type memStore struct {
	mu       sync.Mutex
	sessions map[string]dbgen.ReviewSession
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string]dbgen.ReviewSession{}}
}

func (m *memStore) CreateReviewSession(_ context.Context, arg dbgen.CreateReviewSessionParams) (dbgen.ReviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := dbgen.ReviewSession{
		ID:        arg.ID,
		ProfileID: arg.ProfileID,
		CreatedAt: pgtype.Timestamptz{Time: time.Now(), Valid: true},
	}
	m.sessions[arg.ID] = row
	return row, nil
}

func (m *memStore) GetReviewSession(_ context.Context, id string) (dbgen.ReviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.sessions[id]
	if !ok {
		return dbgen.ReviewSession{}, pgx.ErrNoRows
	}
	return row, nil
}

func (m *memStore) UpdateReviewSessionStatus(_ context.Context, arg dbgen.UpdateReviewSessionStatusParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.sessions[arg.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	row.LastStatus = arg.LastStatus
	m.sessions[arg.ID] = row
	return nil
}

type staticTokens map[string]string

func (s staticTokens) ValidateToken(token string) (string, error) {
	id, ok := s[token]
	if !ok {
		return "", errors.New("unknown token")
	}
	return id, nil
}

var tokens = staticTokens{"tok-alice": "prof_alice", "tok-bob": "prof_bob"}

func bearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := tokens.ValidateToken(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithProfileID(r.Context(), id)))
	})
}

type fixture struct {
	srv   *httptest.Server
	hub   *Hub
	store *memStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	service := NewService(store)
	hub := NewHub(service.SaveStatus)
	go hub.Run()
	t.Cleanup(hub.Stop)

	h := NewHandler(service, hub, tokens, nil)
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(bearer)
	api.HandleFunc("/sessions", h.Create).Methods("POST")
	api.HandleFunc("/sessions/{sessionId}", h.Get).Methods("GET")
	api.HandleFunc("/sessions/{sessionId}/events", h.PostEvent).Methods("POST")
	r.HandleFunc("/ws/review/{sessionId}", h.ServeWS)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, hub: hub, store: store}
}

func (f *fixture) do(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f *fixture) createSession(t *testing.T, token string) string {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/sessions", token, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sess Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sess))
	return sess.ID
}

func (f *fixture) dial(t *testing.T, ctx context.Context, sessionID, token string) (*websocket.Conn, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws/review/" + sessionID + "?token=" + token
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err == nil {
		t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	}
	return conn, err
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) wire.Message {
	t.Helper()
	var msg wire.Message
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	return msg
}

func TestRelayLifecycleEvents(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sessionID := f.createSession(t, "tok-alice")
	conn, err := f.dial(t, ctx, sessionID, "tok-alice")
	require.NoError(t, err)

	welcome := readMessage(t, ctx, conn)
	require.Equal(t, wire.TypeWelcome, welcome.Type)
	var wp wire.WelcomePayload
	require.NoError(t, welcome.Decode(&wp))
	assert.Equal(t, sessionID, wp.SessionID)
	assert.NotEmpty(t, wp.ClientID)

	resp := f.do(t, http.MethodPost, "/api/sessions/"+sessionID+"/events", "tok-alice", `{"type":"question.shown"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var er eventResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&er))
	assert.Equal(t, 1, er.Delivered)

	msg := readMessage(t, ctx, conn)
	assert.Equal(t, wire.TypeContentReplaced, msg.Type)
	assert.Equal(t, sessionID, msg.SessionID)
	assert.Equal(t, int64(1), msg.Seq)
	var cp wire.ContentPayload
	require.NoError(t, msg.Decode(&cp))
	assert.Equal(t, wire.EventQuestionShown, cp.Event)

	f.do(t, http.MethodPost, "/api/sessions/"+sessionID+"/events", "tok-alice", `{"type":"content.resized"}`)
	msg = readMessage(t, ctx, conn)
	assert.Equal(t, wire.TypeContentResized, msg.Type)
	assert.Equal(t, int64(2), msg.Seq)
}

func TestOverlayStatusIsStored(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sessionID := f.createSession(t, "tok-alice")
	conn, err := f.dial(t, ctx, sessionID, "tok-alice")
	require.NoError(t, err)
	readMessage(t, ctx, conn)

	status := json.RawMessage(`{"enabled":true,"strokes":2}`)
	require.NoError(t, wsjson.Write(ctx, conn, wire.Message{Type: wire.TypeOverlayStatus, Payload: status}))

	assert.Eventually(t, func() bool {
		got, ok := f.hub.LastStatus(sessionID)
		return ok && string(got) == string(status)
	}, 2*time.Second, 10*time.Millisecond)

	resp := f.do(t, http.MethodGet, "/api/sessions/"+sessionID, "tok-alice", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sess Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sess))
	assert.JSONEq(t, string(status), string(sess.Status))
	assert.Equal(t, 1, sess.Clients)

	row, err := f.store.GetReviewSession(ctx, sessionID)
	require.NoError(t, err)
	assert.JSONEq(t, string(status), string(row.LastStatus))
}

func TestStatusOutlivesOverlay(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sessionID := f.createSession(t, "tok-alice")
	conn, err := f.dial(t, ctx, sessionID, "tok-alice")
	require.NoError(t, err)
	readMessage(t, ctx, conn)

	status := json.RawMessage(`{"enabled":false,"strokes":0}`)
	require.NoError(t, wsjson.Write(ctx, conn, wire.Message{Type: wire.TypeOverlayStatus, Payload: status}))
	require.Eventually(t, func() bool {
		_, ok := f.hub.LastStatus(sessionID)
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	require.Eventually(t, func() bool { return f.hub.Clients(sessionID) == 0 }, 2*time.Second, 10*time.Millisecond)

	_, ok := f.hub.LastStatus(sessionID)
	assert.False(t, ok, "hub keeps no status for a session without overlays")

	resp := f.do(t, http.MethodGet, "/api/sessions/"+sessionID, "tok-alice", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sess Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sess))
	assert.JSONEq(t, string(status), string(sess.Status))
	assert.Zero(t, sess.Clients)
}

func TestUnknownFrameGetsError(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sessionID := f.createSession(t, "tok-alice")
	conn, err := f.dial(t, ctx, sessionID, "tok-alice")
	require.NoError(t, err)
	readMessage(t, ctx, conn)

	require.NoError(t, wsjson.Write(ctx, conn, wire.Message{Type: "draw.stroke"}))
	assert.Equal(t, wire.TypeError, readMessage(t, ctx, conn).Type)
}

func TestSettingsChangedReachesProfileOverlays(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sessionID := f.createSession(t, "tok-alice")
	conn, err := f.dial(t, ctx, sessionID, "tok-alice")
	require.NoError(t, err)
	readMessage(t, ctx, conn)

	require.Eventually(t, func() bool { return f.hub.Clients(sessionID) == 1 }, time.Second, 5*time.Millisecond)

	f.hub.SettingsChanged("prof_bob", settings.Default())
	want := settings.Settings{Enabled: true, Color: "#ff0000", Width: 3, Opacity: 0.5}
	f.hub.SettingsChanged("prof_alice", want)

	msg := readMessage(t, ctx, conn)
	require.Equal(t, wire.TypeSettingsChanged, msg.Type)
	var got settings.Settings
	require.NoError(t, msg.Decode(&got))
	assert.Equal(t, want, got)
}

func TestAccessControl(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sessionID := f.createSession(t, "tok-alice")

	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/api/sessions/"+sessionID, "tok-bob", "").StatusCode)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/sessions/rev_nope", "tok-alice", "").StatusCode)
	assert.Equal(t, http.StatusForbidden,
		f.do(t, http.MethodPost, "/api/sessions/"+sessionID+"/events", "tok-bob", `{"type":"answer.shown"}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest,
		f.do(t, http.MethodPost, "/api/sessions/"+sessionID+"/events", "tok-alice", `{"type":"card.flipped"}`).StatusCode)

	_, err := f.dial(t, ctx, sessionID, "tok-bob")
	assert.Error(t, err)
	_, err = f.dial(t, ctx, sessionID, "")
	assert.Error(t, err)
}

func TestPublishWithoutOverlays(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	msg, err := wire.MessageForEvent(wire.EventAnswerShown)
	require.NoError(t, err)
	assert.Zero(t, hub.Publish("rev_empty", msg))
	_, ok := hub.LastStatus("rev_empty")
	assert.False(t, ok)
}
