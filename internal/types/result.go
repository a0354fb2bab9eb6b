// Package types defines the result structures shared by the CLI and the MCP server.
package types

type (
	// SearchResult contains the outcome of a parent search.
	SearchResult struct {
		Start  string `json:"start"`
		Target string `json:"target"`
		Found  string `json:"found"`
	}

	// OperationResult contains the result of a mutating operation.
	OperationResult struct {
		Success bool     `json:"success"`
		Path    string   `json:"path"`
		Message string   `json:"message,omitempty"`
		Paths   []string `json:"paths,omitempty"`
	}
)
