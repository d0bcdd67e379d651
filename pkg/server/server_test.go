package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/floatkit/pkg/geom"
)

func TestIndexPage(t *testing.T) {
	srv := New(Config{})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`<!DOCTYPE html>`,
		`data-floating-reference="tip-bold"`,
		`id="tip-bold-reference"`,
		`data-on-pointerenter="true"`,
		`id="floating-root"`,
		`id="floating-demo-floating"`,
		`<script src="/client.js" defer></script>`,
		"Dark mode",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, `role="tooltip"`) {
		t.Error("closed tooltips must not render their content")
	}
}

func TestModeToggle(t *testing.T) {
	srv := New(Config{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/mode", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != modeCookie || cookies[0].Path != "/" {
		t.Fatalf("cookies = %+v", cookies)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	body := rec.Body.String()
	if !strings.Contains(body, `class="demo dark"`) || !strings.Contains(body, "Light mode") {
		t.Error("page should render in dark mode after toggling")
	}
}

func TestModeIgnoresBadCookie(t *testing.T) {
	srv := New(Config{})

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: modeCookie, Value: "%7Bnot-json"})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Dark mode") {
		t.Error("an unreadable cookie should fall back to the default mode")
	}
}

func TestStaticRoutes(t *testing.T) {
	srv := New(Config{})

	tests := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/client.js", "application/javascript", "new WebSocket"},
		{"/metrics", "text/plain", "floatkit_layout_sessions"},
		{"/healthz", "", "OK"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if tt.contentType != "" && !strings.HasPrefix(rec.Header().Get("Content-Type"), tt.contentType) {
				t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body missing %q", tt.contains)
			}
		})
	}
}

func TestMetricsNamespace(t *testing.T) {
	srv := New(Config{MetricsNamespace: "demo"})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "demo_layout_sessions") {
		t.Error("metrics should use the configured namespace")
	}
}

func readUntil(t *testing.T, conn *websocket.Conn, typ MessageType) Outbound {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg Outbound
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read %s: %v", typ, err)
		}
		if msg.Type == typ {
			return msg
		}
	}
}

func TestWebSocketSession(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	viewport := geom.R(0, 0, 800, 600)
	layout := Inbound{
		Type:     MessageLayout,
		Full:     true,
		Viewport: &viewport,
		Nodes: []LayoutNode{
			{ID: "toolbar", Rect: geom.R(0, 80, 800, 40)},
			{ID: "tip-bold-reference", Parent: "toolbar", Rect: geom.R(100, 100, 80, 20)},
		},
	}
	if err := conn.WriteJSON(layout); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(Inbound{Type: MessageEvent, Event: "focus", Target: "tip-bold-reference"}); err != nil {
		t.Fatal(err)
	}

	seen := map[MessageType]Outbound{}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for len(seen) < 2 {
		var msg Outbound
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Type == MessageOpen || msg.Type == MessagePresence {
			seen[msg.Type] = msg
		}
	}
	if p := seen[MessagePresence]; p.Tooltip != "tip-bold" || p.Mounted == nil || !*p.Mounted {
		t.Fatalf("presence = %+v", p)
	}
	if o := seen[MessageOpen]; o.Tooltip != "tip-bold" || !*o.Open || o.Reason != "focus" {
		t.Fatalf("open = %+v", o)
	}

	layout.Nodes = append(layout.Nodes, LayoutNode{ID: "floating-root", Rect: viewport},
		LayoutNode{ID: "tip-bold-floating", Parent: "floating-root", Rect: geom.R(0, 0, 120, 40)})
	if err := conn.WriteJSON(layout); err != nil {
		t.Fatal(err)
	}
	pos := readUntil(t, conn, MessagePosition)
	if pos.Tooltip != "tip-bold" || pos.Position.Placement != "top" || pos.Position.X != 80 || pos.Position.Y != 52 {
		t.Errorf("position = %+v", pos.Position)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{oops")); err != nil {
		t.Fatal(err)
	}
	if msg := readUntil(t, conn, MessageError); msg.Code != "F030" {
		t.Errorf("error = %+v", msg)
	}

	if srv.SessionCount() != 1 {
		t.Errorf("sessions = %d", srv.SessionCount())
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	deadline := time.Now().Add(5 * time.Second)
	for srv.SessionCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.SessionCount() != 0 {
		t.Error("session should end after the client closes")
	}
}

func TestShutdownEndsSessions(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for srv.SessionCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if srv.SessionCount() != 0 {
		t.Errorf("sessions after shutdown = %d", srv.SessionCount())
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("connection should be closed")
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/ws", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("upgrade after shutdown status = %d", rec.Code)
	}
}

func TestShutdownDuringUpgrades(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				conn, _, err := websocket.DefaultDialer.Dial(url, nil)
				if err == nil {
					conn.Close()
				}
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	close(stop)
	wg.Wait()

	if n := srv.SessionCount(); n != 0 {
		t.Errorf("sessions after shutdown = %d", n)
	}
	if conn, _, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		conn.Close()
		t.Error("upgrade should be refused after shutdown")
	}
}

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{`{"type":"layout","nodes":[{"id":"a","rect":{"x":1,"y":2,"width":3,"height":4}}]}`, false},
		{`{"type":"event","event":"focus","target":"a"}`, false},
		{`{"type":"unmount","tooltip":"a"}`, false},
		{`{"type":"bogus"}`, true},
		{`{}`, true},
		{`[`, true},
	}
	for _, tt := range tests {
		_, err := DecodeInbound([]byte(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("DecodeInbound(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestPositionMessageJSON(t *testing.T) {
	msg := Outbound{Type: MessagePosition, Tooltip: "a", Position: &PositionPayload{X: 1, Y: 2, Placement: "top", Visible: true}}
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if _, ok := decoded["open"]; ok {
		t.Error("unset fields should be omitted")
	}
	if decoded["position"].(map[string]any)["placement"] != "top" {
		t.Errorf("decoded = %v", decoded)
	}
}
