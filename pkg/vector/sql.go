package vector

const (
	knowledgeSchemaSQL = `
CREATE TABLE IF NOT EXISTS erp_knowledge (
	id SERIAL PRIMARY KEY,
	content TEXT NOT NULL,
	embedding VECTOR(%d) NOT NULL
)
`
	storeKnowledgeSQL = `
INSERT INTO erp_knowledge
	(content, embedding)
VALUES
    ($1, $2)
`
	queryKnowledgeSQL = `
SELECT
	content
FROM erp_knowledge
ORDER BY
	embedding <-> $1
LIMIT $2
`
	truncateKnowledgeSQL = `
DELETE FROM erp_knowledge
`
	historySchemaSQL = `
CREATE TABLE IF NOT EXISTS chat_history (
	id SERIAL PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMP WITHOUT TIME ZONE NOT NULL,
	embedding VECTOR(%d) NOT NULL
)
`
	storeHistorySQL = `
INSERT INTO chat_history
	(conversation_id, role, content, created_at, embedding)
VALUES
	(:conversation_id, :role, :content, :created_at, :embedding)
`
)
