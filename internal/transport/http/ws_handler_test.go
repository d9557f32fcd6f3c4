package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"esg-assessment-service/internal/app"
	"esg-assessment-service/internal/domain"
	"esg-assessment-service/internal/infra/memory"
)

func TestWebSocketSubmitFlow(t *testing.T) {
	service := newTestAssessmentService()
	wsHandler := NewWSHandler(service, zap.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/results", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/results?companyId=acme"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	submit := map[string]any{
		"type": "submit",
		"payload": map[string]any{
			"answers": map[string]any{
				"1.1": "yes",
				"2.1": "no",
			},
		},
	}
	if err := conn.WriteJSON(submit); err != nil {
		t.Fatalf("write submit: %v", err)
	}

	// Expect the submission ack and the watch broadcast.
	submittedSeen := false
	resultSeen := false
	for i := 0; i < 3; i++ {
		typ, payload := readNext(conn, t, "")
		switch typ {
		case "submitted":
			submittedSeen = true
			if payload["finalGrade"] != "D" {
				t.Fatalf("expected grade D in submitted payload, got %v", payload["finalGrade"])
			}
		case "result":
			resultSeen = true
		}
		if submittedSeen && resultSeen {
			break
		}
	}
	if !submittedSeen || !resultSeen {
		t.Fatalf("expected submitted and result, got submitted=%v result=%v", submittedSeen, resultSeen)
	}
}

func TestWebSocketRejectsInvalidSubmit(t *testing.T) {
	service := newTestAssessmentService()
	wsHandler := NewWSHandler(service, zap.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/results", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/results?companyId=acme"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	submit := map[string]any{
		"type": "submit",
		"payload": map[string]any{
			"answers": map[string]any{"1.1": "maybe"},
		},
	}
	if err := conn.WriteJSON(submit); err != nil {
		t.Fatalf("write submit: %v", err)
	}

	typ, _ := readNext(conn, t, "error")
	if typ != "error" {
		t.Fatalf("expected error, got %s", typ)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func newTestAssessmentService() *app.AssessmentService {
	catalogs := memory.NewCatalogRepository(memory.NewStaticCatalogLoader([]domain.Question{
		{ID: "1.1", Category: "Human Rights", Weight: 5},
		{ID: "2.1", Category: "Labor Practices", Weight: 5,
			CriticalViolation: &domain.CriticalViolation{Grade: "D", Reason: "forced labor"}},
	}), time.Minute)
	return app.NewAssessmentService(catalogs, memory.NewResultStore(), memory.NewWatchRegistry(), zap.NewNop())
}
