package api

import "github.com/leapstack-labs/asksql/internal/schema"

// PromptRequest is the body of POST /process_prompt.
type PromptRequest struct {
	Prompt string `json:"prompt"`
	Token  string `json:"token"`
}

// Generation is the data returned for a processed prompt.
type Generation struct {
	DBStructure schema.Result `json:"db_structure"`
	Message     string        `json:"gemini_message"`
	DBFilePath  string        `json:"db_file_path"`
	Prompt      string        `json:"prompt,omitempty"`
}

type promptResponse struct {
	Data  *Generation `json:"data"`
	Error string      `json:"error"`
}

// LogsRequest is the body of POST /fetch-logs.
type LogsRequest struct {
	Token string `json:"token"`
}

// HistoryRecord is one past prompt/response pair.
type HistoryRecord struct {
	ID         int64         `json:"id"`
	Token      string        `json:"token"`
	Prompt     string        `json:"prompt"`
	Message    string        `json:"gemini_message"`
	Schema     schema.Result `json:"schema"`
	CreatedAt  string        `json:"created_at"`
	DBFilePath string        `json:"db_file_path,omitempty"`
}

type logsResponse struct {
	Logs  []HistoryRecord `json:"logs"`
	Count int             `json:"count"`
	Error string          `json:"error"`
}

type errorResponse struct {
	Error string `json:"error"`
}
