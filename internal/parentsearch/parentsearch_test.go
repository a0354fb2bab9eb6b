package parentsearch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// setupTree creates root/a/b/c and root/a/.config and returns the resolved root.
func setupTree(t *testing.T) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to resolve temp dir: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "a", "b", "c"), 0o755); err != nil {
		t.Fatalf("Failed to create tree: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "a", ".config"), []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	return root
}

func TestFinder_Search_FindsNearestAncestor(t *testing.T) {
	root := setupTree(t)

	var tested []string
	f := New(WithExists(func(path string) bool {
		tested = append(tested, path)
		return pathExists(path)
	}))

	got, err := f.Search(context.Background(), filepath.Join(root, "a", "b", "c"), ".config")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	want := filepath.Join(root, "a", ".config")
	if got != want {
		t.Errorf("Search() = %q, want %q", got, want)
	}

	wantTested := []string{
		filepath.Join(root, "a", "b", "c", ".config"),
		filepath.Join(root, "a", "b", ".config"),
		filepath.Join(root, "a", ".config"),
	}
	if len(tested) != len(wantTested) {
		t.Fatalf("tested %v, want %v", tested, wantTested)
	}
	for i := range wantTested {
		if tested[i] != wantTested[i] {
			t.Errorf("tested[%d] = %q, want %q", i, tested[i], wantTested[i])
		}
	}
}

func TestFinder_Search_PrefersNearest(t *testing.T) {
	root := setupTree(t)
	os.WriteFile(filepath.Join(root, ".config"), []byte("far"), 0o644)
	os.WriteFile(filepath.Join(root, "a", "b", ".config"), []byte("near"), 0o644)

	got, err := New().Search(context.Background(), filepath.Join(root, "a", "b", "c"), ".config")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if want := filepath.Join(root, "a", "b", ".config"); got != want {
		t.Errorf("Search() = %q, want %q", got, want)
	}
}

func TestFinder_Search_StartItself(t *testing.T) {
	root := setupTree(t)

	got, err := New().Search(context.Background(), filepath.Join(root, "a"), ".config")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if want := filepath.Join(root, "a", ".config"); got != want {
		t.Errorf("Search() = %q, want %q", got, want)
	}
}

func TestFinder_Search_NestedTarget(t *testing.T) {
	root := setupTree(t)

	got, err := New().Search(context.Background(), filepath.Join(root, "a", "b", "c"), "b/c/../c")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if want := filepath.Join(root, "a", "b", "c"); got != want {
		t.Errorf("Search() = %q, want %q", got, want)
	}
}

func TestFinder_Search_Idempotent(t *testing.T) {
	root := setupTree(t)
	f := New()
	start := filepath.Join(root, "a", "b", "c")

	first, err := f.Search(context.Background(), start, ".config")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	second, err := f.Search(context.Background(), start, ".config")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if first != second {
		t.Errorf("Search() = %q then %q, want identical results", first, second)
	}
}

func TestFinder_Search_NotFound(t *testing.T) {
	root := setupTree(t)

	var last string
	f := New(WithExists(func(path string) bool {
		last = path
		return false
	}))

	_, err := f.Search(context.Background(), filepath.Join(root, "a", "b", "c"), "missing.txt")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Search() error = %v, want ErrNotFound", err)
	}

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Search() error = %T, want *NotFoundError", err)
	}
	if notFound.Target != "missing.txt" {
		t.Errorf("NotFoundError.Target = %q, want missing.txt", notFound.Target)
	}

	// The root itself is tested before giving up.
	volumeRoot := filepath.VolumeName(root) + string(filepath.Separator)
	if want := filepath.Join(volumeRoot, "missing.txt"); last != want {
		t.Errorf("last candidate = %q, want %q", last, want)
	}
}

func TestFinder_Search_UnresolvableStart(t *testing.T) {
	root := setupTree(t)

	_, err := New().Search(context.Background(), filepath.Join(root, "nope"), ".config")
	var resolveErr *PathResolutionError
	if !errors.As(err, &resolveErr) {
		t.Fatalf("Search() error = %v, want PathResolutionError", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Search() error = %v, want fs.ErrNotExist", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("resolution failure should not match ErrNotFound")
	}
}

func TestFinder_Search_RelativeStart(t *testing.T) {
	root := setupTree(t)

	f := New(WithWorkingDir(root))
	got, err := f.Search(context.Background(), filepath.Join("a", "b"), ".config")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if want := filepath.Join(root, "a", ".config"); got != want {
		t.Errorf("Search() = %q, want %q", got, want)
	}
}

func TestFinder_Search_ResolvesSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := setupTree(t)
	link := filepath.Join(root, "shortcut")
	if err := os.Symlink(filepath.Join(root, "a", "b", "c"), link); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	got, err := New().Search(context.Background(), link, ".config")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if want := filepath.Join(root, "a", ".config"); got != want {
		t.Errorf("Search() = %q, want %q", got, want)
	}
}

func TestFinder_Search_Canceled(t *testing.T) {
	root := setupTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Search(ctx, filepath.Join(root, "a"), ".config")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Search() error = %v, want context.Canceled", err)
	}
}

func TestSearchPath(t *testing.T) {
	root := setupTree(t)

	t.Run("splits into directory and base name", func(t *testing.T) {
		got, err := SearchPath(filepath.Join(root, "a", "b", "c", ".config"))
		if err != nil {
			t.Fatalf("SearchPath() error = %v", err)
		}
		if want := filepath.Join(root, "a", ".config"); got != want {
			t.Errorf("SearchPath() = %q, want %q", got, want)
		}
	})

	t.Run("two argument form does not split", func(t *testing.T) {
		_, err := Search(filepath.Join(root, "a", "b", "c", ".config"), "c")
		if err == nil {
			t.Fatal("Search() should fail when the literal start does not exist")
		}
		var resolveErr *PathResolutionError
		if !errors.As(err, &resolveErr) {
			t.Errorf("Search() error = %v, want PathResolutionError", err)
		}
	})
}

func TestSearchPath_TrailingSeparator(t *testing.T) {
	root := setupTree(t)
	sep := string(filepath.Separator)

	got, err := SearchPath(filepath.Join(root, "a", ".config") + sep)
	if err != nil {
		t.Fatalf("SearchPath() error = %v", err)
	}
	if want := filepath.Join(root, "a", ".config"); got != want {
		t.Errorf("SearchPath() = %q, want %q", got, want)
	}

	_, err = SearchPath(filepath.Join(root, "a", "b", "missing") + sep + sep)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("SearchPath() error = %v, want ErrNotFound", err)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		path       string
		wantStart  string
		wantTarget string
	}{
		{"a/b/c", "a/b", "c"},
		{"a/.config/", "a", ".config"},
		{"a/b//", "a", "b"},
		{"x/", ".", "x"},
		{"name", ".", "name"},
		{"/", "/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			start, target := Split(filepath.FromSlash(tt.path))
			if start != filepath.FromSlash(tt.wantStart) || target != filepath.FromSlash(tt.wantTarget) {
				t.Errorf("Split(%q) = (%q, %q), want (%q, %q)", tt.path, start, target, tt.wantStart, tt.wantTarget)
			}
		})
	}
}
