package main

import "github.com/modelcontextprotocol/go-sdk/mcp"

type (
	// ReaddirInput contains parameters for listing a directory.
	ReaddirInput struct {
		Path        string `json:"path" jsonschema:"Directory to list"`
		Slash       bool   `json:"slash,omitempty" jsonschema:"Append / to directory names (default: false)"`
		Files       string `json:"files,omitempty" jsonschema:"'no' drops non-directories; 'yes' or empty keeps them"`
		Directories string `json:"directories,omitempty" jsonschema:"'no' drops directories; 'yes' or empty keeps them"`
		Exe         string `json:"exe,omitempty" jsonschema:"'yes' keeps only executable files, 'no' only non-executable files; directories are not affected"`
	}

	// ParentSearchInput contains parameters for an upward search.
	ParentSearchInput struct {
		Start  string `json:"start" jsonschema:"Directory to start from, or a path to split when target is empty"`
		Target string `json:"target,omitempty" jsonschema:"Relative path to look for in each ancestor"`
	}

	// EnsurePathInput contains parameters for creating a directory.
	EnsurePathInput struct {
		Path string `json:"path" jsonschema:"Directory to create, with any missing parents"`
		Mode string `json:"mode,omitempty" jsonschema:"Octal permission bits (default: 0777, before umask)"`
	}

	// DeltreeInput contains parameters for a recursive delete.
	DeltreeInput struct {
		Pattern     string `json:"pattern" jsonschema:"Path or glob pattern to delete"`
		DisableGlob bool   `json:"disableGlob,omitempty" jsonschema:"Treat pattern as a literal path (default: false)"`
		Confirm     string `json:"confirm" jsonschema:"Must be set to 'yes' to confirm deletion"`
	}

	// TouchInput contains parameters for touching a file.
	TouchInput struct {
		Path      string `json:"path" jsonschema:"File to create or update"`
		NoCreate  bool   `json:"noCreate,omitempty" jsonschema:"Do not create a missing file (default: false)"`
		ATimeOnly bool   `json:"atimeOnly,omitempty" jsonschema:"Change only the access time"`
		MTimeOnly bool   `json:"mtimeOnly,omitempty" jsonschema:"Change only the modification time"`
		Time      string `json:"time,omitempty" jsonschema:"RFC 3339 time to set (default: now)"`
		Reference string `json:"reference,omitempty" jsonschema:"File whose times are copied"`
		Force     bool   `json:"force,omitempty" jsonschema:"Add the owner write bit if the update is refused"`
	}

	// CopyInput contains parameters for copying a file or tree.
	CopyInput struct {
		Source      string   `json:"source" jsonschema:"File or directory to copy"`
		Destination string   `json:"destination" jsonschema:"Target path"`
		Exclude     []string `json:"exclude,omitempty" jsonschema:"Glob patterns of paths to skip"`
		Include     []string `json:"include,omitempty" jsonschema:"Glob patterns of files to copy; others are skipped"`
		NoClobber   bool     `json:"noClobber,omitempty" jsonschema:"Keep existing destination files (default: false)"`
		Dereference bool     `json:"dereference,omitempty" jsonschema:"Copy symlink targets instead of links"`
	}
)

func registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "readdir",
		Description: "List a directory. Optional filters drop files or directories (files=no, directories=no) and select files by executability (exe=yes|no); filtered listings skip entries whose metadata cannot be read.",
	}, handleReaddir)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "parent_search",
		Description: "Find the nearest ancestor of start, start itself included, that contains target. Without target, start is split into a directory and a name.",
	}, handleParentSearch)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ensure_path",
		Description: "Create a directory and any missing parents.",
	}, handleEnsurePath)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "deltree",
		Description: "Delete every file and directory tree matching a glob pattern. Requires confirm='yes' for safety.",
	}, handleDeltree)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "touch",
		Description: "Create a file if missing and update its access and modification times.",
	}, handleTouch)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "copy",
		Description: "Copy a file or a directory tree, optionally filtered by exclude and include globs. Per-entry failures are reported without aborting.",
	}, handleCopy)
}
