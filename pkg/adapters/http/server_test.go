package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/sheetpilot"
	httpadapter "github.com/aretw0/sheetpilot/pkg/adapters/http"
	"github.com/aretw0/sheetpilot/pkg/adapters/memory"
	"github.com/aretw0/sheetpilot/pkg/domain"
	"github.com/aretw0/sheetpilot/pkg/dsl"
	"github.com/aretw0/sheetpilot/pkg/observability"
	"github.com/aretw0/sheetpilot/pkg/planner/scripted"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T, grid *memory.Grid, opts ...httpadapter.Option) http.Handler {
	t.Helper()
	planner := scripted.New(scripted.Reply("Done.", dsl.NewBatch().Select("A1").Set("planned").MustBuild()))
	agent, err := sheetpilot.New(grid, planner)
	require.NoError(t, err)
	return httpadapter.NewHandler(agent, opts...)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetHealth(t *testing.T) {
	w := do(t, newHandler(t, memory.NewGrid()), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestPostMessage(t *testing.T) {
	grid := memory.NewGrid()
	h := newHandler(t, grid)

	w := do(t, h, http.MethodPost, "/message", httpadapter.MessageRequest{SessionID: "s1", Message: "fill A1"})
	require.Equal(t, http.StatusOK, w.Code)

	var reply httpadapter.Reply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Equal(t, httpadapter.Reply{SessionID: "s1", Text: "Done."}, reply)

	v, err := grid.Cell(1, 1).Value(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "planned", v)
}

func TestPostMessage_AssignsSession(t *testing.T) {
	w := do(t, newHandler(t, memory.NewGrid()), http.MethodPost, "/message", httpadapter.MessageRequest{Message: "test api"})
	require.Equal(t, http.StatusOK, w.Code)

	var reply httpadapter.Reply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.NotEmpty(t, reply.SessionID)
	assert.Equal(t, domain.EchoGreeting+"test api", reply.Text)
}

func TestPostMessage_BadRequests(t *testing.T) {
	h := newHandler(t, memory.NewGrid())

	w := do(t, h, http.MethodPost, "/message", httpadapter.MessageRequest{Message: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/message", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostEcho(t *testing.T) {
	w := do(t, newHandler(t, memory.NewGrid()), http.MethodPost, "/echo", httpadapter.EchoMessage{Role: domain.RoleUser, Message: "ping"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":"assistant","message":"Hello, the server got your message: ping"}`, w.Body.String())
}

func TestPostExecute(t *testing.T) {
	grid := memory.NewGridFromRows([][]any{{"q?"}, {"a"}, {"b?"}})
	h := newHandler(t, grid)

	t.Run("actions", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/execute", map[string]any{
			"session_id": "s1",
			"actions": []any{
				map[string]any{"type": "Read", "col1": "A", "row1": 1, "row2": "-1", "reg": `\?$`},
				map[string]any{"type": "TellUser", "message": "read done"},
			},
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "s1", w.Header().Get("X-Session-Id"))

		var out domain.Outcome
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		assert.Equal(t, "read done", out.Message)
		assert.True(t, out.HadRead)
		assert.Equal(t, []string{"q?, b?"}, out.ReadMessages)
	})

	t.Run("program", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/execute", httpadapter.ExecuteRequest{
			Program: `REGEX ^.*$ | SELECT B1:B1 ; REGEX ^.*$ | SET hello`,
		})
		require.Equal(t, http.StatusOK, w.Code)
		v, err := grid.Cell(1, 2).Value(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "hello", v)
	})

	t.Run("empty", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/execute", httpadapter.ExecuteRequest{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed action", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/execute", map[string]any{"actions": []any{"not an object"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetRange(t *testing.T) {
	h := newHandler(t, memory.NewGridFromRows([][]any{{"a", 1.0}, {"b", 2.5}}))

	w := do(t, h, http.MethodGet, "/range?a1=A1:B-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got httpadapter.RangeValues
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, [][]string{{"a", "1"}, {"b", "2.5"}}, got.Values)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/range", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/range?a1=zz", nil).Code)
}

func TestListScenarios(t *testing.T) {
	w := do(t, newHandler(t, memory.NewGrid()), http.MethodGet, "/scenarios", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []httpadapter.ScenarioInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, dsl.ScenarioSimulate1, got[0].ID)
	assert.Equal(t, 7, got[0].Actions)
}

func TestMetricsAndSpec(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	agent, err := sheetpilot.New(memory.NewGrid(), nil, sheetpilot.WithMetrics(metrics))
	require.NoError(t, err)
	h := httpadapter.NewHandler(agent, httpadapter.WithGatherer(reg))

	do(t, h, http.MethodPost, "/message", httpadapter.MessageRequest{Message: "sim 1"})

	w := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `sheetpilot_requests_total{mode="sim"} 1`)

	doc := do(t, h, http.MethodGet, "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, doc.Code)
	assert.Contains(t, doc.Body.String(), "openapi: 3.0.3")
}

func TestCORSPreflight(t *testing.T) {
	w := do(t, newHandler(t, memory.NewGrid()), http.MethodOptions, "/message", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestChatSocket(t *testing.T) {
	agent, err := sheetpilot.New(memory.NewGrid(), nil)
	require.NoError(t, err)
	server := httpadapter.NewServer(agent)
	srv := httptest.NewServer(server.Routes())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?session_id=ws1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return server.Streams.Subscribers("ws1") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("sim 1")))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var event httpadapter.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, httpadapter.EventReply, event.Type)
	assert.Equal(t, "ws1", event.SessionID)
	assert.Equal(t, "Bold formatting applied to selected cells.", event.Text)

	// Direct execution in the same session is pushed too.
	body, _ := json.Marshal(httpadapter.ExecuteRequest{SessionID: "ws1", Program: "REGEX ^.*$ | TELLUSER pushed"})
	resp, err := http.Post(srv.URL+"/execute", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, httpadapter.EventOutcome, event.Type)
	require.NotNil(t, event.Outcome)
	assert.Equal(t, "pushed", event.Outcome.Message)
}

func TestStreamManager_Unsubscribe(t *testing.T) {
	sm := httpadapter.NewStreamManager()
	ch, cancel := sm.Subscribe("s")
	assert.Equal(t, 1, sm.Subscribers("s"))

	sm.Publish(httpadapter.Event{Type: httpadapter.EventReply, SessionID: "s", Text: "hi"})
	msg := <-ch
	assert.Contains(t, string(msg), `"text":"hi"`)

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers("s"))
	_, open := <-ch
	assert.False(t, open)
}
