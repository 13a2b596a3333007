// Package chat orchestrates one conversation turn: prompt assembly, the LLM
// round-trip, SQL validation, execution with the retry cascade and response
// formatting. All conversation state lives in a per-ID SessionStore.
package chat

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/semillaai/semilla/pkg/format"
	"github.com/semillaai/semilla/pkg/retry"
	"github.com/semillaai/semilla/pkg/schema"
	"github.com/semillaai/semilla/pkg/sqlgen"
)

// Completer produces one chat completion. Implemented by pkg/llm.
type Completer interface {
	Complete(ctx context.Context, msgs []Message) (string, error)
}

// Retriever looks up related knowledge notes for prompt context. Failures are
// swallowed: the turn proceeds without extra context.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// Recorder persists conversation turns. Failures are logged, never surfaced.
type Recorder interface {
	Record(ctx context.Context, conversationID string, msg Message) error
}

const (
	// maxAttempts bounds the LLM round-trips per turn when validation fails.
	maxAttempts = 2

	genericFailure = "No he podido procesar tu consulta. ¿Puedes reformularla con otras palabras?"
	llmFailure     = "Ahora mismo no puedo responder, inténtalo de nuevo en un momento."
)

// Orchestrator wires the pipeline for one deployment. Knowledge and Recorder
// are optional; nil disables retrieval and persistence.
type Orchestrator struct {
	LLM       Completer
	Schema    *schema.Registry
	Validator *sqlgen.Validator
	Guard     *sqlgen.Guard
	Runner    retry.Runner
	Cascade   *retry.Cascade
	Formatter *format.Formatter
	Sessions  *SessionStore
	Knowledge Retriever
	Recorder  Recorder

	// Analyze enables the second completion that narrates query results.
	Analyze bool
}

// Process handles one user message and returns the assistant's reply. The
// returned error is reserved for context cancellation; every other failure
// becomes a Spanish-language reply.
func (o *Orchestrator) Process(ctx context.Context, conversationID, message string) (string, error) {
	o.record(ctx, conversationID, Message{Role: RoleUser, Content: message})

	if reply, ok := o.phoneFollowUp(ctx, conversationID, message); ok {
		o.finish(ctx, conversationID, message, reply)
		return reply, nil
	}

	prompt := o.composePrompt(ctx, conversationID, message)
	history := o.Sessions.History(conversationID)

	feedback := ""
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		system := prompt
		if feedback != "" {
			system += "\n\nTu consulta anterior falló: " + feedback + " Genera una consulta corregida."
		}

		msgs := make([]Message, 0, len(history)+2)
		msgs = append(msgs, Message{Role: RoleSystem, Content: system})
		msgs = append(msgs, history...)
		msgs = append(msgs, Message{Role: RoleUser, Content: message})

		text, err := o.LLM.Complete(ctx, msgs)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			log.Error().Err(err).Msg("Completion failed")
			return llmFailure, nil
		}

		sql, err := sqlgen.Extract(text)
		if errors.Is(err, sqlgen.ErrEmptySQL) {
			sql = ""
		}
		if sql == "" {
			reply := strings.TrimSpace(sqlgen.Strip(text))
			if reply == "" {
				reply = genericFailure
			}
			o.Sessions.ClearLastData(conversationID)
			o.finish(ctx, conversationID, message, reply)
			return reply, nil
		}

		validated, err := o.Validator.Validate(sql)
		if err != nil {
			log.Debug().Err(err).Int("attempt", attempt).Msg("Validation rejected the statement")
			feedback = err.Error()
			continue
		}
		if err := o.Guard.Check(validated); err != nil {
			log.Debug().Err(err).Int("attempt", attempt).Msg("Guard rejected the statement")
			feedback = err.Error()
			continue
		}

		res, err := o.Cascade.Run(ctx, validated)
		if err != nil {
			return "", err
		}

		if res.Exhausted {
			o.Sessions.ClearLastData(conversationID)
		} else {
			o.Sessions.SetLastData(conversationID, &LastData{
				Kind:  classifyKind(res),
				Table: res.Table,
				Rows:  res.Set.Rows,
			})
		}

		reply := o.Formatter.Format(message, res)
		if o.Analyze && !res.Exhausted {
			reply = o.analyze(ctx, message, reply)
		}
		o.finish(ctx, conversationID, message, reply)
		return reply, nil
	}

	o.Sessions.ClearLastData(conversationID)
	o.finish(ctx, conversationID, message, genericFailure)
	return genericFailure, nil
}

// finish appends the turn to the session history and persists it.
func (o *Orchestrator) finish(ctx context.Context, conversationID, message, reply string) {
	o.Sessions.Append(conversationID,
		Message{Role: RoleUser, Content: message},
		Message{Role: RoleAssistant, Content: reply},
	)
	o.record(ctx, conversationID, Message{Role: RoleAssistant, Content: reply})
}

func (o *Orchestrator) record(ctx context.Context, conversationID string, msg Message) {
	if o.Recorder == nil {
		return
	}
	if err := o.Recorder.Record(ctx, conversationID, msg); err != nil {
		log.Warn().Err(err).Msg("Failed to persist conversation turn")
	}
}

// analyze issues the second completion that narrates the rows. On failure the
// formatted reply stands.
func (o *Orchestrator) analyze(ctx context.Context, question, formatted string) string {
	text, err := o.LLM.Complete(ctx, []Message{
		{Role: RoleSystem, Content: analysisPrompt},
		{Role: RoleUser, Content: "Pregunta: " + question + "\n\nDatos:\n" + formatted},
	})
	if err != nil {
		log.Warn().Err(err).Msg("Analysis completion failed, returning formatted data")
		return formatted
	}
	if text = strings.TrimSpace(text); text == "" {
		return formatted
	}
	return text
}

var phoneFollowUpRE = regexp.MustCompile(`(?i)^\s*¿?\s*(y\s+)?(cu[aá]l\s+es\s+)?su\s+(tel[eé]fono|n[uú]mero de tel[eé]fono)\s*\??\s*$`)

// phoneFollowUp answers "¿y su teléfono?" style follow-ups straight from the
// retained client data, without an LLM round-trip.
func (o *Orchestrator) phoneFollowUp(ctx context.Context, conversationID, message string) (string, bool) {
	if !phoneFollowUpRE.MatchString(message) {
		return "", false
	}
	last := o.Sessions.LastData(conversationID)
	if last == nil || last.Kind != "cliente" || len(last.Rows) == 0 {
		return "", false
	}
	name, _ := last.Rows[0]["CL_DENO"].(string)
	if name == "" {
		return "", false
	}

	sql := fmt.Sprintf("SELECT CL_TEL FROM clientes WHERE CL_DENO = '%s' LIMIT 1",
		strings.ReplaceAll(name, "'", "''"))
	rs, err := o.Runner.Query(ctx, sql)
	if err != nil || rs.Empty() {
		return fmt.Sprintf("No encontré el teléfono de \"%s\" en la base de datos.", name), true
	}
	phone, _ := rs.Rows[0]["CL_TEL"].(string)
	if phone == "" {
		return fmt.Sprintf("No encontré el teléfono de \"%s\" en la base de datos.", name), true
	}
	return fmt.Sprintf("El teléfono de \"%s\" es: %s", name, phone), true
}

// classifyKind tags the retained result by the entity its columns denote.
func classifyKind(res *retry.Result) string {
	for _, col := range res.Set.Columns {
		switch col {
		case "CL_DENO":
			return "cliente"
		case "AR_DENO":
			return "articulo"
		}
	}
	return "dato"
}
