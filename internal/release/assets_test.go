package release

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newAssetServer serves a release whose assets are downloadable from the same server.
func newAssetServer(t *testing.T, files map[string]string, order []string) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/repos/o/r/releases/latest" || r.URL.Path == "/repos/o/r/releases/tags/v1.0.0":
			var parts []string
			for _, name := range order {
				parts = append(parts, fmt.Sprintf(`{"name":%q,"browser_download_url":"%s/dl/%s","size":%d}`,
					name, srv.URL, name, len(files[name])))
			}
			fmt.Fprintf(w, `{"tag_name":"v1.0.0","name":"v1","body":"","assets":[%s]}`, strings.Join(parts, ","))
		case strings.HasPrefix(r.URL.Path, "/dl/"):
			name := strings.TrimPrefix(r.URL.Path, "/dl/")
			content, ok := files[name]
			if !ok {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, content)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadLatestAssets_All(t *testing.T) {
	files := map[string]string{"a.txt": "alpha", "b.txt": "bravo!"}
	srv := newAssetServer(t, files, []string{"a.txt", "b.txt"})
	c := newTestClient(srv)
	dir := t.TempDir()

	started := map[string]bool{}
	paths, err := c.DownloadLatestAssets(context.Background(), "o", "r", dir, DownloadOptions{
		Progress: func(a Asset) ProgressFunc {
			started[a.Name] = true
			return nil
		},
	})
	if err != nil {
		t.Fatalf("DownloadLatestAssets() error = %v", err)
	}

	want := []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("paths[%d] = %s, want %s", i, paths[i], p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		if name := filepath.Base(p); string(data) != files[name] {
			t.Errorf("%s = %q, want %q", name, data, files[name])
		}
	}
	if !started["a.txt"] || !started["b.txt"] {
		t.Errorf("progress factory not called for every asset: %v", started)
	}
}

func TestDownloadAssets_ByName(t *testing.T) {
	files := map[string]string{"a.txt": "alpha", "b.txt": "bravo"}
	srv := newAssetServer(t, files, []string{"a.txt", "b.txt"})
	c := newTestClient(srv)
	dir := t.TempDir()

	paths, err := c.DownloadAssets(context.Background(), "o", "r", "v1.0.0", dir, DownloadOptions{Name: "b.txt"})
	if err != nil {
		t.Fatalf("DownloadAssets() error = %v", err)
	}
	if len(paths) != 1 || paths[0] != filepath.Join(dir, "b.txt") {
		t.Errorf("paths = %v", paths)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.txt")); !os.IsNotExist(err) {
		t.Error("a.txt should not be downloaded")
	}
}

func TestDownloadAssets_UnknownName(t *testing.T) {
	srv := newAssetServer(t, map[string]string{"a.txt": "alpha"}, []string{"a.txt"})
	c := newTestClient(srv)

	_, err := c.DownloadAssets(context.Background(), "o", "r", "v1.0.0", t.TempDir(), DownloadOptions{Name: "nope"})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want *NotFoundError", err)
	}
}

func TestDownloadSelected_StopsAtFirstFailure(t *testing.T) {
	files := map[string]string{"a.txt": "alpha", "c.txt": "charlie"}
	// b.txt is listed but not served
	srv := newAssetServer(t, files, []string{"a.txt", "b.txt", "c.txt"})
	c := newTestClient(srv)
	dir := t.TempDir()

	paths, err := c.DownloadLatestAssets(context.Background(), "o", "r", dir, DownloadOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "b.txt") {
		t.Errorf("error %q does not name the failing asset", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("error = %v, want wrapped *NotFoundError", err)
	}
	if len(paths) != 1 || paths[0] != filepath.Join(dir, "a.txt") {
		t.Errorf("paths = %v, want only a.txt", paths)
	}
	if _, err := os.Stat(filepath.Join(dir, "c.txt")); !os.IsNotExist(err) {
		t.Error("c.txt should not be downloaded after a failure")
	}
}

func TestDownloadSelected_TokenSentToAPIHost(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		fmt.Fprint(w, "alpha")
	}))
	defer srv.Close()

	c := New(Options{APIBase: srv.URL + "/repos", Token: "tok", HTTP: srv.Client()})
	assets := []Asset{{Name: "a.txt", BrowserDownloadURL: srv.URL + "/dl/a.txt"}}
	if _, err := c.DownloadSelected(context.Background(), assets, t.TempDir(), nil); err != nil {
		t.Fatalf("DownloadSelected() error = %v", err)
	}
	if auth != "Bearer tok" {
		t.Errorf("Authorization = %q, want Bearer tok", auth)
	}
}

func TestDownloadLatestAssets_RejectsUnsafeNames(t *testing.T) {
	for _, name := range []string{"../escaped.txt", "sub/inner.txt", "/abs.txt", "..", ""} {
		t.Run(name, func(t *testing.T) {
			var srv *httptest.Server
			served := false
			srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/repos/o/r/releases/latest" {
					fmt.Fprintf(w, `{"tag_name":"v1","name":"v1","body":"","assets":[{"name":"ok.txt","browser_download_url":"%s/dl/ok","size":2},{"name":%q,"browser_download_url":"%s/dl/x","size":1}]}`,
						srv.URL, name, srv.URL)
					return
				}
				served = true
				fmt.Fprint(w, "x")
			}))
			defer srv.Close()

			root := t.TempDir()
			dest := filepath.Join(root, "dest")
			if err := os.Mkdir(dest, 0o755); err != nil {
				t.Fatal(err)
			}

			paths, err := newTestClient(srv).DownloadLatestAssets(context.Background(), "o", "r", dest, DownloadOptions{})
			if !errors.Is(err, ErrUnsafeAssetName) {
				t.Fatalf("error = %v, want ErrUnsafeAssetName", err)
			}
			if len(paths) != 0 || served {
				t.Errorf("paths = %v, served = %v; want nothing downloaded", paths, served)
			}
			if entries, _ := os.ReadDir(dest); len(entries) != 0 {
				t.Errorf("dest not empty: %v", entries)
			}
			if entries, _ := os.ReadDir(root); len(entries) != 1 {
				t.Errorf("file written outside dest: %v", entries)
			}
		})
	}
}

func TestListAssets_MissingURL(t *testing.T) {
	c := New(Options{HTTP: &mockHTTPDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"name":"t","body":"","assets":[{"name":"a"}]}`), nil
	}}})

	_, err := c.ListAssets(context.Background(), "o", "r", "")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want *NotFoundError", err)
	}
	if !strings.Contains(nf.Reason, "browser_download_url") {
		t.Errorf("Reason = %q", nf.Reason)
	}
}

func TestSelectAssets(t *testing.T) {
	all := []Asset{{Name: "a"}, {Name: "b"}}

	tests := []struct {
		name    string
		want    []string
		wantErr bool
	}{
		{"", []string{"a", "b"}, false},
		{"b", []string{"b"}, false},
		{"c", nil, true},
	}
	for _, tt := range tests {
		got, err := SelectAssets(all, tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("SelectAssets(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("SelectAssets(%q) = %v, want %v", tt.name, got, tt.want)
			continue
		}
		for i := range got {
			if got[i].Name != tt.want[i] {
				t.Errorf("SelectAssets(%q)[%d] = %s, want %s", tt.name, i, got[i].Name, tt.want[i])
			}
		}
	}
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	removed, err := RemoveIfExists(path)
	if err != nil || !removed {
		t.Fatalf("RemoveIfExists(existing) = %v, %v; want true, nil", removed, err)
	}
	removed, err = RemoveIfExists(path)
	if err != nil || removed {
		t.Fatalf("RemoveIfExists(missing) = %v, %v; want false, nil", removed, err)
	}
}
