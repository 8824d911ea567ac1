package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// ErrUnsupportedFormat is returned for files whose extension is not a known archive type.
var ErrUnsupportedFormat = errors.New("unsupported archive format")

// ProgressFunc reports extraction progress.
// current: entries extracted so far
// total: total entries (-1 if unknown)
// name: current entry being extracted
type ProgressFunc func(current, total int64, name string)

type format int

const (
	formatUnknown format = iota
	formatTarGz
	formatTarLz4
	formatTar
	formatZip
)

func detect(name string) format {
	n := strings.ToLower(name)
	switch {
	case strings.HasSuffix(n, ".tar.gz"), strings.HasSuffix(n, ".tgz"):
		return formatTarGz
	case strings.HasSuffix(n, ".tar.lz4"):
		return formatTarLz4
	case strings.HasSuffix(n, ".tar"):
		return formatTar
	case strings.HasSuffix(n, ".zip"):
		return formatZip
	default:
		return formatUnknown
	}
}

// IsArchive reports whether Extract knows how to unpack name.
func IsArchive(name string) bool {
	return detect(name) != formatUnknown
}

// Extract unpacks the archive at path into destDir, creating destDir if
// needed. The format is chosen from the file extension.
func Extract(path, destDir string, progress ProgressFunc) error {
	f := detect(path)
	if f == formatUnknown {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if f == formatZip {
		return extractZip(path, destDir, progress)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	switch f {
	case formatTarGz:
		gz, err := gzip.NewReader(file)
		if err != nil {
			return fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	case formatTarLz4:
		r = lz4.NewReader(file)
	}
	return extractTar(r, destDir, progress)
}

// targetPath resolves an archive entry name under destDir, rejecting names
// that would land outside it.
func targetPath(destDir, name string) (string, string, error) {
	cleanName := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleanName) || cleanName == ".." || strings.HasPrefix(cleanName, ".."+string(os.PathSeparator)) {
		return "", "", fmt.Errorf("invalid path in archive: %s", name)
	}

	target := filepath.Join(destDir, cleanName)
	root := filepath.Clean(destDir)
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", "", fmt.Errorf("path traversal detected: %s", name)
	}
	return target, cleanName, nil
}

func extractTar(r io.Reader, destDir string, progress ProgressFunc) error {
	tarReader := tar.NewReader(r)

	var count int64
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		target, cleanName, err := targetPath(destDir, header.Name)
		if err != nil {
			return err
		}

		count++
		if progress != nil {
			progress(count, -1, cleanName)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create dir %s: %w", cleanName, err)
			}

		case tar.TypeReg:
			if err := writeFile(target, tarReader, os.FileMode(header.Mode).Perm(), header.Size); err != nil {
				return fmt.Errorf("extract %s: %w", cleanName, err)
			}

		case tar.TypeSymlink:
			if filepath.IsAbs(header.Linkname) {
				return fmt.Errorf("absolute symlink not allowed: %s -> %s", cleanName, header.Linkname)
			}
			resolved := filepath.Join(filepath.Dir(cleanName), header.Linkname)
			if _, _, err := targetPath(destDir, resolved); err != nil {
				return fmt.Errorf("symlink escapes destination: %s -> %s", cleanName, header.Linkname)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", cleanName, err)
			}
			_ = os.Remove(target)
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("create symlink %s: %w", cleanName, err)
			}

		case tar.TypeLink:
			linkTarget, _, err := targetPath(destDir, header.Linkname)
			if err != nil {
				return err
			}
			if err := os.Link(linkTarget, target); err != nil {
				return fmt.Errorf("create hard link %s: %w", cleanName, err)
			}

		default:
			// Skip other types (char devices, block devices, etc.)
			continue
		}
	}
	return nil
}

func extractZip(path, destDir string, progress ProgressFunc) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()

	total := int64(len(zr.File))
	for i, zf := range zr.File {
		target, cleanName, err := targetPath(destDir, zf.Name)
		if err != nil {
			return err
		}
		if progress != nil {
			progress(int64(i+1), total, cleanName)
		}

		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create dir %s: %w", cleanName, err)
			}
			continue
		}

		rc, err := zf.Open()
		if err != nil {
			return fmt.Errorf("open %s: %w", cleanName, err)
		}
		err = writeFile(target, rc, zf.Mode().Perm(), int64(zf.UncompressedSize64))
		rc.Close()
		if err != nil {
			return fmt.Errorf("extract %s: %w", cleanName, err)
		}
	}
	return nil
}

// writeFile copies r to path, creating parent directories, and checks that
// size bytes were written when size is positive.
func writeFile(path string, r io.Reader, mode os.FileMode, size int64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if mode == 0 {
		mode = 0o644
	}

	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	written, copyErr := io.Copy(out, r)
	closeErr := out.Close()
	if copyErr != nil {
		return copyErr
	}
	if size > 0 && written != size {
		return fmt.Errorf("wrote %d of %d bytes (disk full?)", written, size)
	}
	return closeErr
}
