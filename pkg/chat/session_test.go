package chat

import (
	"testing"
	"time"

	"github.com/semillaai/semilla/pkg/erpdb"
)

func TestSessionStoreWindow(t *testing.T) {
	s := NewSessionStore(time.Minute)
	for i := 0; i < 12; i++ {
		s.Append("conv", Message{Role: RoleUser, Content: string(rune('a' + i))})
	}
	h := s.History("conv")
	if len(h) != historyWindow {
		t.Fatalf("history length = %d, want %d", len(h), historyWindow)
	}
	if h[0].Content != "c" || h[len(h)-1].Content != "l" {
		t.Errorf("window kept wrong turns: first %q last %q", h[0].Content, h[len(h)-1].Content)
	}
}

func TestSessionStoreIsolation(t *testing.T) {
	s := NewSessionStore(time.Minute)
	s.Append("a", Message{Role: RoleUser, Content: "hola"})
	s.SetLastData("a", &LastData{Kind: "cliente"})

	if len(s.History("b")) != 0 {
		t.Error("conversation b sees a's history")
	}
	if s.LastData("b") != nil {
		t.Error("conversation b sees a's data")
	}
	if s.LastData("a") == nil {
		t.Error("conversation a lost its data")
	}
}

func TestSessionStoreLastData(t *testing.T) {
	s := NewSessionStore(time.Minute)
	s.SetLastData("conv", &LastData{
		Kind: "cliente",
		Rows: []erpdb.Row{{"CL_DENO": "X"}},
	})
	if d := s.LastData("conv"); d == nil || d.Kind != "cliente" {
		t.Fatalf("LastData = %+v", d)
	}
	s.ClearLastData("conv")
	if s.LastData("conv") != nil {
		t.Error("LastData survived Clear")
	}
}

func TestSessionStoreTTLEviction(t *testing.T) {
	s := NewSessionStore(time.Minute)
	current := time.Now()
	s.now = func() time.Time { return current }

	s.Append("conv", Message{Role: RoleUser, Content: "hola"})
	s.SetLastData("conv", &LastData{Kind: "dato"})

	current = current.Add(2 * time.Minute)
	if len(s.History("conv")) != 0 {
		t.Error("expired session kept its history")
	}
	if s.LastData("conv") != nil {
		t.Error("expired session kept its data")
	}
}

func TestSessionStoreTouchExtendsTTL(t *testing.T) {
	s := NewSessionStore(time.Minute)
	current := time.Now()
	s.now = func() time.Time { return current }

	s.Append("conv", Message{Role: RoleUser, Content: "hola"})
	current = current.Add(45 * time.Second)
	s.History("conv") // touch
	current = current.Add(45 * time.Second)
	if len(s.History("conv")) != 1 {
		t.Error("touched session was evicted")
	}
}
