package sqlgen

import (
	"regexp"
	"strings"
)

var (
	sqlTagRE   = regexp.MustCompile(`(?s)<sql>(.*?)</sql>`)
	sqlFenceRE = regexp.MustCompile("(?s)```sql\\s*(.*?)```")
)

// Extract locates the SQL statement embedded in a model reply. It returns the
// empty string when the reply is purely conversational, and ErrEmptySQL when
// delimiters are present but hold nothing. Fenced ```sql blocks are
// normalized to the <sql> convention before extraction so both conventions
// share one code path.
func Extract(response string) (string, error) {
	m := sqlTagRE.FindStringSubmatch(response)
	if m == nil {
		if sqlFenceRE.MatchString(response) {
			response = sqlFenceRE.ReplaceAllString(response, "<sql>$1</sql>")
			m = sqlTagRE.FindStringSubmatch(response)
		}
	}
	if m == nil {
		return "", nil
	}
	sql := strings.TrimSpace(m[1])
	if sql == "" {
		return "", ErrEmptySQL
	}
	return sql, nil
}

// Strip removes every SQL block from a model reply, leaving the
// conversational text around it.
func Strip(response string) string {
	response = sqlTagRE.ReplaceAllString(response, "")
	response = sqlFenceRE.ReplaceAllString(response, "")
	return strings.TrimSpace(response)
}
