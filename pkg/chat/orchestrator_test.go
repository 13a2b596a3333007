package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/semillaai/semilla/pkg/erpdb"
	"github.com/semillaai/semilla/pkg/format"
	"github.com/semillaai/semilla/pkg/retry"
	"github.com/semillaai/semilla/pkg/schema"
	"github.com/semillaai/semilla/pkg/sqlgen"
)

type fakeCompleter struct {
	responses []string
	err       error
	calls     [][]Message
}

func (f *fakeCompleter) Complete(_ context.Context, msgs []Message) (string, error) {
	f.calls = append(f.calls, msgs)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	r := f.responses[0]
	f.responses = f.responses[1:]
	return r, nil
}

type fakeRunner struct {
	results  map[string]*erpdb.ResultSet
	executed []string
}

func (f *fakeRunner) Query(_ context.Context, sql string) (*erpdb.ResultSet, error) {
	f.executed = append(f.executed, sql)
	if rs, ok := f.results[sql]; ok {
		return rs, nil
	}
	return &erpdb.ResultSet{}, nil
}

type fakeRecorder struct {
	err  error
	msgs []Message
}

func (f *fakeRecorder) Record(_ context.Context, _ string, msg Message) error {
	f.msgs = append(f.msgs, msg)
	return f.err
}

type fakeRetriever struct {
	notes []string
	err   error
}

func (f *fakeRetriever) Search(context.Context, string, int) ([]string, error) {
	return f.notes, f.err
}

func newTestOrchestrator(llm *fakeCompleter, runner *fakeRunner) *Orchestrator {
	reg := schema.Default()
	return &Orchestrator{
		LLM:       llm,
		Schema:    reg,
		Validator: sqlgen.NewValidator(reg),
		Guard:     sqlgen.NewGuard(reg),
		Runner:    runner,
		Cascade:   retry.New(runner, reg),
		Formatter: format.New(reg),
		Sessions:  NewSessionStore(time.Minute),
	}
}

func TestProcessConversational(t *testing.T) {
	llm := &fakeCompleter{responses: []string{"¡Hola! ¿En qué puedo ayudarte?"}}
	runner := &fakeRunner{}
	o := newTestOrchestrator(llm, runner)

	reply, err := o.Process(context.Background(), "c1", "hola, ¿cómo estás?")
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if reply != "¡Hola! ¿En qué puedo ayudarte?" {
		t.Errorf("reply = %q", reply)
	}
	if len(runner.executed) != 0 {
		t.Errorf("conversational turn ran SQL: %v", runner.executed)
	}
	if o.Sessions.LastData("c1") != nil {
		t.Error("conversational turn should clear retained data")
	}
}

func TestProcessDataTurn(t *testing.T) {
	sql := "SELECT CL_DENO, CL_TEL FROM clientes LIMIT 10"
	llm := &fakeCompleter{responses: []string{"Claro: <sql>" + sql + "</sql>"}}
	runner := &fakeRunner{results: map[string]*erpdb.ResultSet{
		sql: {
			Columns: []string{"CL_DENO", "CL_TEL"},
			Rows:    []erpdb.Row{{"CL_DENO": "SEMILLERO SUR SL", "CL_TEL": "968123456"}},
		},
	}}
	o := newTestOrchestrator(llm, runner)

	reply, err := o.Process(context.Background(), "c1", "dame el teléfono del semillero sur")
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if !strings.Contains(reply, "SEMILLERO SUR SL") {
		t.Errorf("reply missing data:\n%s", reply)
	}

	last := o.Sessions.LastData("c1")
	if last == nil || last.Kind != "cliente" || last.Table != "clientes" {
		t.Errorf("LastData = %+v", last)
	}
	h := o.Sessions.History("c1")
	if len(h) != 2 || h[0].Role != RoleUser || h[1].Role != RoleAssistant {
		t.Errorf("history = %+v", h)
	}
}

func TestProcessValidationFeedbackRetry(t *testing.T) {
	good := "SELECT CL_DENO FROM clientes LIMIT 10"
	llm := &fakeCompleter{responses: []string{
		"<sql>DELETE FROM clientes</sql>",
		"<sql>" + good + "</sql>",
	}}
	runner := &fakeRunner{results: map[string]*erpdb.ResultSet{
		good: {Columns: []string{"CL_DENO"}, Rows: []erpdb.Row{{"CL_DENO": "A"}}},
	}}
	o := newTestOrchestrator(llm, runner)

	reply, err := o.Process(context.Background(), "c1", "borra los clientes")
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if len(llm.calls) != 2 {
		t.Fatalf("LLM called %d times, want 2", len(llm.calls))
	}
	if sys := llm.calls[1][0].Content; !strings.Contains(sys, "falló") {
		t.Errorf("second round lacks feedback:\n%s", sys)
	}
	if !strings.Contains(reply, "A") {
		t.Errorf("reply = %q", reply)
	}
}

func TestProcessWildcardFeedbackListsColumns(t *testing.T) {
	llm := &fakeCompleter{responses: []string{
		"Aquí tienes: <sql>SELECT * FROM clientes</sql>",
		"<sql>SELECT * FROM clientes</sql>",
	}}
	o := newTestOrchestrator(llm, &fakeRunner{})

	if _, err := o.Process(context.Background(), "c1", "dame todo de clientes"); err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if len(llm.calls) != 2 {
		t.Fatalf("LLM called %d times, want 2", len(llm.calls))
	}
	if sys := llm.calls[1][0].Content; !strings.Contains(sys, "CL_DENO") {
		t.Errorf("feedback does not list columns:\n%s", sys)
	}
}

func TestProcessGenericFallbackAfterAttempts(t *testing.T) {
	llm := &fakeCompleter{responses: []string{
		"<sql>DROP TABLE clientes</sql>",
		"<sql>DELETE FROM clientes</sql>",
	}}
	o := newTestOrchestrator(llm, &fakeRunner{})
	o.Sessions.SetLastData("c1", &LastData{Kind: "cliente"})

	reply, err := o.Process(context.Background(), "c1", "haz algo raro")
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if reply != genericFailure {
		t.Errorf("reply = %q", reply)
	}
	if o.Sessions.LastData("c1") != nil {
		t.Error("failed round should clear retained data")
	}
}

func TestProcessPhoneFollowUp(t *testing.T) {
	lookup := "SELECT CL_TEL FROM clientes WHERE CL_DENO = 'SEMILLERO SUR SL' LIMIT 1"
	llm := &fakeCompleter{}
	runner := &fakeRunner{results: map[string]*erpdb.ResultSet{
		lookup: {Columns: []string{"CL_TEL"}, Rows: []erpdb.Row{{"CL_TEL": "968123456"}}},
	}}
	o := newTestOrchestrator(llm, runner)
	o.Sessions.SetLastData("c1", &LastData{
		Kind:  "cliente",
		Table: "clientes",
		Rows:  []erpdb.Row{{"CL_DENO": "SEMILLERO SUR SL"}},
	})

	reply, err := o.Process(context.Background(), "c1", "¿y su teléfono?")
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	want := "El teléfono de \"SEMILLERO SUR SL\" es: 968123456"
	if reply != want {
		t.Errorf("reply = %q, want %q", reply, want)
	}
	if len(llm.calls) != 0 {
		t.Errorf("follow-up invoked the LLM %d times", len(llm.calls))
	}
}

func TestProcessPhoneFollowUpNotFound(t *testing.T) {
	llm := &fakeCompleter{}
	o := newTestOrchestrator(llm, &fakeRunner{})
	o.Sessions.SetLastData("c1", &LastData{
		Kind: "cliente",
		Rows: []erpdb.Row{{"CL_DENO": "VIVEROS NORTE"}},
	})

	reply, err := o.Process(context.Background(), "c1", "cuál es su teléfono")
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if !strings.Contains(reply, "No encontré el teléfono de \"VIVEROS NORTE\"") {
		t.Errorf("reply = %q", reply)
	}
}

func TestProcessPhoneFollowUpWithoutClientGoesToLLM(t *testing.T) {
	llm := &fakeCompleter{responses: []string{"¿De qué cliente necesitas el teléfono?"}}
	o := newTestOrchestrator(llm, &fakeRunner{})

	reply, err := o.Process(context.Background(), "c1", "¿y su teléfono?")
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if len(llm.calls) != 1 {
		t.Errorf("expected the LLM round-trip, got %d calls", len(llm.calls))
	}
	if reply != "¿De qué cliente necesitas el teléfono?" {
		t.Errorf("reply = %q", reply)
	}
}

func TestProcessLLMFailure(t *testing.T) {
	llm := &fakeCompleter{err: errors.New("connection refused")}
	o := newTestOrchestrator(llm, &fakeRunner{})

	reply, err := o.Process(context.Background(), "c1", "hola")
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if reply != llmFailure {
		t.Errorf("reply = %q", reply)
	}
}

func TestProcessRecorderFailureSwallowed(t *testing.T) {
	llm := &fakeCompleter{responses: []string{"hola"}}
	o := newTestOrchestrator(llm, &fakeRunner{})
	o.Recorder = &fakeRecorder{err: errors.New("disk full")}

	reply, err := o.Process(context.Background(), "c1", "hola")
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if reply != "hola" {
		t.Errorf("reply = %q", reply)
	}
}

func TestProcessKnowledgeInPrompt(t *testing.T) {
	llm := &fakeCompleter{responses: []string{"claro"}}
	o := newTestOrchestrator(llm, &fakeRunner{})
	o.Knowledge = &fakeRetriever{notes: []string{"Los partes de siembra viven en p-siembras."}}

	if _, err := o.Process(context.Background(), "c1", "explícame las siembras"); err != nil {
		t.Fatalf("Process error: %v", err)
	}
	sys := llm.calls[0][0].Content
	if !strings.Contains(sys, "CONTEXTO") || !strings.Contains(sys, "p-siembras") {
		t.Errorf("system prompt lacks retrieved context:\n%s", sys)
	}
	if !strings.Contains(sys, "ESQUEMA") {
		t.Errorf("system prompt lacks schema excerpt:\n%s", sys)
	}
}

func TestProcessKnowledgeFailureSwallowed(t *testing.T) {
	llm := &fakeCompleter{responses: []string{"claro"}}
	o := newTestOrchestrator(llm, &fakeRunner{})
	o.Knowledge = &fakeRetriever{err: errors.New("pgvector down")}

	reply, err := o.Process(context.Background(), "c1", "hola")
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if reply != "claro" {
		t.Errorf("reply = %q", reply)
	}
}

func TestProcessPreviousDataInPrompt(t *testing.T) {
	llm := &fakeCompleter{responses: []string{"claro"}}
	o := newTestOrchestrator(llm, &fakeRunner{})
	o.Sessions.SetLastData("c1", &LastData{
		Kind: "cliente",
		Rows: []erpdb.Row{{"CL_DENO": "SEMILLERO SUR SL"}},
	})

	if _, err := o.Process(context.Background(), "c1", "¿de qué provincia es?"); err != nil {
		t.Fatalf("Process error: %v", err)
	}
	sys := llm.calls[0][0].Content
	if !strings.Contains(sys, "DATOS PREVIOS") || !strings.Contains(sys, "SEMILLERO SUR SL") {
		t.Errorf("system prompt lacks previous data:\n%s", sys)
	}
}

func TestProcessAnalyzeNarratesRows(t *testing.T) {
	sql := "SELECT CL_DENO FROM clientes LIMIT 10"
	llm := &fakeCompleter{responses: []string{
		"<sql>" + sql + "</sql>",
		"Tenemos un cliente llamado A.",
	}}
	runner := &fakeRunner{results: map[string]*erpdb.ResultSet{
		sql: {Columns: []string{"CL_DENO"}, Rows: []erpdb.Row{{"CL_DENO": "A"}}},
	}}
	o := newTestOrchestrator(llm, runner)
	o.Analyze = true

	reply, err := o.Process(context.Background(), "c1", "qué clientes hay")
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if reply != "Tenemos un cliente llamado A." {
		t.Errorf("reply = %q", reply)
	}
	if len(llm.calls) != 2 {
		t.Errorf("LLM called %d times, want 2", len(llm.calls))
	}
}
