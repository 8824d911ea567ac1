package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/pierrec/lz4/v4"
)

type entry struct {
	name     string
	content  string
	typeflag byte
	linkname string
}

func writeTar(t *testing.T, w io.Writer, entries []entry) {
	t.Helper()
	tw := tar.NewWriter(w)
	for _, e := range entries {
		typeflag := e.typeflag
		if typeflag == 0 {
			typeflag = tar.TypeReg
		}
		mode := int64(0o644)
		if typeflag == tar.TypeDir {
			mode = 0o755
		}
		hdr := &tar.Header{
			Name:     e.name,
			Mode:     mode,
			Size:     int64(len(e.content)),
			Typeflag: typeflag,
			Linkname: e.linkname,
		}
		if typeflag != tar.TypeReg {
			hdr.Size = 0
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write tar header: %v", err)
		}
		if typeflag == tar.TypeReg && e.content != "" {
			if _, err := tw.Write([]byte(e.content)); err != nil {
				t.Fatalf("write tar content: %v", err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
}

func createArchive(t *testing.T, path string, entries []entry) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	defer f.Close()

	switch detect(path) {
	case formatTarGz:
		gz := gzip.NewWriter(f)
		writeTar(t, gz, entries)
		if err := gz.Close(); err != nil {
			t.Fatalf("close gzip: %v", err)
		}
	case formatTarLz4:
		zw := lz4.NewWriter(f)
		writeTar(t, zw, entries)
		if err := zw.Close(); err != nil {
			t.Fatalf("close lz4: %v", err)
		}
	case formatTar:
		writeTar(t, f, entries)
	case formatZip:
		zw := zip.NewWriter(f)
		for _, e := range entries {
			w, err := zw.Create(e.name)
			if err != nil {
				t.Fatalf("zip create: %v", err)
			}
			if _, err := w.Write([]byte(e.content)); err != nil {
				t.Fatalf("zip write: %v", err)
			}
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("close zip: %v", err)
		}
	default:
		t.Fatalf("unknown test archive format: %s", path)
	}
}

func TestExtract_Formats(t *testing.T) {
	entries := []entry{
		{name: "tool/", typeflag: tar.TypeDir},
		{name: "tool/bin/tool", content: "#!/bin/sh\necho hi\n"},
		{name: "tool/README.md", content: "readme"},
	}
	zipEntries := []entry{
		{name: "tool/bin/tool", content: "#!/bin/sh\necho hi\n"},
		{name: "tool/README.md", content: "readme"},
	}

	for _, name := range []string{"a.tar.gz", "a.tgz", "a.tar.lz4", "a.tar", "a.zip"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			archivePath := filepath.Join(dir, name)
			if detect(name) == formatZip {
				createArchive(t, archivePath, zipEntries)
			} else {
				createArchive(t, archivePath, entries)
			}

			dest := filepath.Join(dir, "out")
			var seen []string
			err := Extract(archivePath, dest, func(current, total int64, entryName string) {
				seen = append(seen, entryName)
			})
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}

			got, err := os.ReadFile(filepath.Join(dest, "tool", "README.md"))
			if err != nil {
				t.Fatalf("read extracted file: %v", err)
			}
			if string(got) != "readme" {
				t.Errorf("README.md = %q", got)
			}
			if _, err := os.Stat(filepath.Join(dest, "tool", "bin", "tool")); err != nil {
				t.Errorf("nested file missing: %v", err)
			}
			if len(seen) == 0 {
				t.Error("progress callback never called")
			}
		})
	}
}

func TestExtract_ZipProgressTotal(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "a.zip")
	createArchive(t, archivePath, []entry{{name: "a", content: "1"}, {name: "b", content: "2"}})

	var totals []int64
	var names []string
	err := Extract(archivePath, filepath.Join(dir, "out"), func(current, total int64, name string) {
		totals = append(totals, total)
		names = append(names, name)
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	for _, total := range totals {
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
	}
	sort.Strings(names)
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("names = %v", names)
	}
}

func TestExtract_Unsupported(t *testing.T) {
	for _, name := range []string{"tool.exe", "tool.7z", "checksums.txt", "tool.gz"} {
		err := Extract(filepath.Join(t.TempDir(), name), t.TempDir(), nil)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Extract(%s) error = %v, want ErrUnsupportedFormat", name, err)
		}
		if IsArchive(name) {
			t.Errorf("IsArchive(%s) = true", name)
		}
	}
}

func TestExtract_PathTraversal(t *testing.T) {
	tests := []struct {
		name    string
		archive string
		entries []entry
	}{
		{
			name:    "dotdot tar",
			archive: "evil.tar.gz",
			entries: []entry{{name: "../escape.txt", content: "x"}},
		},
		{
			name:    "nested dotdot tar",
			archive: "evil.tar.lz4",
			entries: []entry{{name: "a/../../escape.txt", content: "x"}},
		},
		{
			name:    "absolute tar",
			archive: "evil.tgz",
			entries: []entry{{name: "/tmp/escape.txt", content: "x"}},
		},
		{
			name:    "absolute symlink",
			archive: "evil.tar",
			entries: []entry{{name: "link", typeflag: tar.TypeSymlink, linkname: "/etc/passwd"}},
		},
		{
			name:    "escaping symlink",
			archive: "evil2.tar",
			entries: []entry{{name: "a/link", typeflag: tar.TypeSymlink, linkname: "../../outside"}},
		},
		{
			name:    "dotdot zip",
			archive: "evil.zip",
			entries: []entry{{name: "../escape.txt", content: "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			archivePath := filepath.Join(dir, tt.archive)
			createArchive(t, archivePath, tt.entries)

			dest := filepath.Join(dir, "out")
			if err := Extract(archivePath, dest, nil); err == nil {
				t.Fatal("expected error for unsafe entry")
			}
			if _, err := os.Stat(filepath.Join(dir, "escape.txt")); !os.IsNotExist(err) {
				t.Error("file escaped the destination directory")
			}
		})
	}
}

func TestExtract_Symlink(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "links.tar.gz")
	createArchive(t, archivePath, []entry{
		{name: "bin/tool-1.0", content: "binary"},
		{name: "bin/tool", typeflag: tar.TypeSymlink, linkname: "tool-1.0"},
	})

	dest := filepath.Join(dir, "out")
	if err := Extract(archivePath, dest, nil); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	target, err := os.Readlink(filepath.Join(dest, "bin", "tool"))
	if err != nil {
		t.Fatalf("Readlink() error = %v", err)
	}
	if target != "tool-1.0" {
		t.Errorf("link target = %q", target)
	}
}

func TestExtract_CorruptArchive(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "broken.tar.gz")
	if err := os.WriteFile(archivePath, []byte("not gzip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Extract(archivePath, filepath.Join(dir, "out"), nil); err == nil {
		t.Error("expected error for corrupt archive")
	}
}
