package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/taigrr/fskit/internal/filesystem"
	"github.com/taigrr/fskit/internal/parentsearch"
	"github.com/taigrr/fskit/internal/pathfilter"
	"github.com/taigrr/fskit/internal/types"
)

func handleReaddir(ctx context.Context, req *mcp.CallToolRequest, input ReaddirInput) (*mcp.CallToolResult, types.DirectoryListing, error) {
	path := strings.TrimSpace(input.Path)

	opts, err := listOptions(input.Slash, input.Files, input.Directories, input.Exe)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, types.DirectoryListing{Path: path}, err
	}

	names, err := lister.Readdir(ctx, path, opts)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, types.DirectoryListing{Path: path}, err
	}

	return nil, types.DirectoryListing{Path: path, Entries: names, Count: len(names)}, nil
}

func handleParentSearch(ctx context.Context, req *mcp.CallToolRequest, input ParentSearchInput) (*mcp.CallToolResult, types.SearchResult, error) {
	start := strings.TrimSpace(input.Start)
	target := strings.TrimSpace(input.Target)

	var (
		found string
		err   error
	)
	if target == "" {
		found, err = finder.SearchPath(ctx, start)
		start, target = parentsearch.Split(start)
	} else {
		found, err = finder.Search(ctx, start, target)
	}

	result := types.SearchResult{Start: start, Target: target}
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, result, err
	}

	result.Found = found
	return nil, result, nil
}

func handleEnsurePath(ctx context.Context, req *mcp.CallToolRequest, input EnsurePathInput) (*mcp.CallToolResult, types.OperationResult, error) {
	path := strings.TrimSpace(input.Path)

	var opts filesystem.EnsureOptions
	if input.Mode != "" {
		perm, err := parseMode(input.Mode)
		if err != nil {
			return &mcp.CallToolResult{IsError: true}, types.OperationResult{Path: path}, err
		}
		opts.Mode = perm
	}

	if err := fileSystem.EnsurePath(path, opts); err != nil {
		return &mcp.CallToolResult{IsError: true}, types.OperationResult{Path: path}, err
	}
	return nil, types.OperationResult{Success: true, Path: path}, nil
}

func handleDeltree(ctx context.Context, req *mcp.CallToolRequest, input DeltreeInput) (*mcp.CallToolResult, types.OperationResult, error) {
	pattern := strings.TrimSpace(input.Pattern)

	if input.Confirm != "yes" {
		return &mcp.CallToolResult{IsError: true}, types.OperationResult{Path: pattern},
			fmt.Errorf("deletion not confirmed: set confirm='yes' to proceed")
	}

	removed, err := fileSystem.Deltree(ctx, pattern, filesystem.DeltreeOptions{
		MaxBusyTries: cfg.Deltree.MaxBusyTries,
		EMFILEWait:   cfg.Deltree.EMFILEWait,
		DisableGlob:  input.DisableGlob,
	})
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, types.OperationResult{Path: pattern, Paths: removed}, err
	}

	return nil, types.OperationResult{
		Success: true,
		Path:    pattern,
		Message: fmt.Sprintf("removed %d path(s)", len(removed)),
		Paths:   removed,
	}, nil
}

func handleTouch(ctx context.Context, req *mcp.CallToolRequest, input TouchInput) (*mcp.CallToolResult, types.OperationResult, error) {
	path := strings.TrimSpace(input.Path)

	opts := filesystem.TouchOptions{
		Force:     input.Force,
		NoCreate:  input.NoCreate,
		ATimeOnly: input.ATimeOnly,
		MTimeOnly: input.MTimeOnly,
		Reference: strings.TrimSpace(input.Reference),
	}
	if input.Time != "" {
		t, err := time.Parse(time.RFC3339, input.Time)
		if err != nil {
			return &mcp.CallToolResult{IsError: true}, types.OperationResult{Path: path},
				fmt.Errorf("invalid time: %s - %w", input.Time, err)
		}
		opts.Time = t
	}

	if err := fileSystem.Touch(path, opts); err != nil {
		return &mcp.CallToolResult{IsError: true}, types.OperationResult{Path: path}, err
	}
	return nil, types.OperationResult{Success: true, Path: path}, nil
}

func handleCopy(ctx context.Context, req *mcp.CallToolRequest, input CopyInput) (*mcp.CallToolResult, types.OperationResult, error) {
	src := strings.TrimSpace(input.Source)
	dst := strings.TrimSpace(input.Destination)

	filter := pathfilter.New(&types.PathFilterConfig{IgnoredPatterns: input.Exclude, IncludedPatterns: input.Include})
	if err := filter.Validate(); err != nil {
		return &mcp.CallToolResult{IsError: true}, types.OperationResult{Path: dst}, err
	}

	var report strings.Builder
	opts := filesystem.CopyOptions{
		Filter:      filter,
		Clobber:     cfg.Copy.Clobber && !input.NoClobber,
		Dereference: cfg.Copy.Dereference || input.Dereference,
		Errors:      &report,
	}

	info, err := os.Stat(src)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, types.OperationResult{Path: dst},
			fmt.Errorf("failed to stat source: %s - %w", src, err)
	}
	if info.IsDir() {
		err = fileSystem.CopyDir(ctx, src, dst, opts)
	} else {
		err = fileSystem.CopyFile(src, dst, opts)
	}
	if err != nil {
		return &mcp.CallToolResult{IsError: true},
			types.OperationResult{Path: dst, Message: strings.TrimSpace(report.String())}, err
	}

	return nil, types.OperationResult{Success: true, Path: dst}, nil
}
