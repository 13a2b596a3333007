package chat

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
)

const basePrompt = `Eres el asistente interno del semillero. Respondes siempre en español, de forma
cercana y profesional, a preguntas sobre los datos del ERP (clientes, proveedores,
artículos, bandejas, siembras, albaranes y acciones comerciales).

Cuando la pregunta requiera datos, genera UNA consulta SQL de solo lectura (SELECT)
sobre las tablas descritas más abajo y devuélvela entre etiquetas <sql></sql>.
No inventes tablas ni columnas: usa exclusivamente las del esquema. Si la pregunta
es conversacional y no necesita datos, responde sin ninguna etiqueta <sql>.`

const analysisPrompt = `Eres el asistente interno del semillero. Te paso la pregunta de un usuario y los
datos reales obtenidos de la base de datos. Redacta una respuesta breve en español
que interprete esos datos para el usuario. No inventes valores que no estén en los
datos.`

const ragResults = 3

// composePrompt builds the system prompt for one round: base contract, the
// schema excerpt for the question, optional retrieved knowledge and the
// previous result context.
func (o *Orchestrator) composePrompt(ctx context.Context, conversationID, question string) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\nESQUEMA:\n")
	b.WriteString(o.Schema.Excerpt(question))

	if o.Knowledge != nil {
		notes, err := o.Knowledge.Search(ctx, question, ragResults)
		if err != nil {
			log.Debug().Err(err).Msg("Knowledge search failed, continuing without context")
		} else if len(notes) > 0 {
			b.WriteString("\n\nCONTEXTO:\n")
			b.WriteString(strings.Join(notes, "\n"))
		}
	}

	if last := o.Sessions.LastData(conversationID); last != nil {
		if data, err := json.Marshal(last.Rows); err == nil {
			b.WriteString("\n\nDATOS PREVIOS (")
			b.WriteString(last.Kind)
			b.WriteString("): ")
			b.Write(data)
		}
	}
	return b.String()
}
