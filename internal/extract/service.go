package extract

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// innerLogName is the raw log file name the POS terminals write inside their
// rotated archives.
const innerLogName = "000000"

// Service unpacks compressed transaction-log archives into a flat directory
// of plain-text .log files the pipeline can consume.
type Service struct {
	log *slog.Logger
}

func NewService(log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{log: log}
}

// ExtractAll scans srcDir recursively for .gz archives (plain gzip or
// tar.gz), extracts each, and places the inner raw log into destDir as
// <sourceFolder>__<innerName>.log. destDir is cleared first so every run
// starts from fresh logs. Returns the extracted file paths in lexicographic
// order.
func (s *Service) ExtractAll(srcDir, destDir string) ([]string, error) {
	if _, err := os.Stat(srcDir); err != nil {
		return nil, fmt.Errorf("logs directory: %w", err)
	}

	if err := os.RemoveAll(destDir); err != nil {
		return nil, fmt.Errorf("clearing extracted directory: %w", err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating extracted directory: %w", err)
	}

	var archives []string

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(d.Name(), ".gz") {
			archives = append(archives, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", srcDir, err)
	}

	sort.Strings(archives)

	var extracted []string

	for _, archive := range archives {
		dest, err := s.extractOne(archive, destDir)
		if err != nil {
			// A corrupt archive degrades report completeness, not
			// availability; the remaining archives still run.
			s.log.Error("failed to extract archive", "archive", archive, "error", err)
			continue
		}

		s.log.Info("extracted archive", "archive", archive, "dest", dest)
		extracted = append(extracted, dest)
	}

	sort.Strings(extracted)

	return extracted, nil
}

// extractOne unpacks a single archive into a scratch directory and moves the
// inner log into destDir.
func (s *Service) extractOne(archive, destDir string) (string, error) {
	scratch, err := os.MkdirTemp("", "txreport-extract-")
	if err != nil {
		return "", fmt.Errorf("scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	payload, err := gunzip(archive, scratch)
	if err != nil {
		return "", err
	}

	// A gzipped tarball decompresses to a tar stream; unpack it in place.
	if isTar(payload) {
		if err := untar(payload, scratch); err != nil {
			return "", err
		}

		if err := os.Remove(payload); err != nil {
			return "", fmt.Errorf("removing tar payload: %w", err)
		}
	}

	inner := findInner(scratch)
	if inner == "" {
		return "", fmt.Errorf("archive %s contains no files", archive)
	}

	sourceFolder := filepath.Base(filepath.Dir(archive))
	dest := filepath.Join(destDir, fmt.Sprintf("%s__%s.log", sourceFolder, filepath.Base(inner)))

	if err := moveFile(inner, dest); err != nil {
		return "", fmt.Errorf("placing %s: %w", dest, err)
	}

	return dest, nil
}

// gunzip decompresses a .gz file into dir and returns the payload path.
func gunzip(archive, dir string) (string, error) {
	f, err := os.Open(archive)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("gzip %s: %w", archive, err)
	}
	defer zr.Close()

	payload := filepath.Join(dir, strings.TrimSuffix(filepath.Base(archive), ".gz"))

	out, err := os.Create(payload)
	if err != nil {
		return "", fmt.Errorf("create payload: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, zr); err != nil {
		return "", fmt.Errorf("decompress %s: %w", archive, err)
	}

	return payload, nil
}

// isTar sniffs the ustar magic at offset 257.
func isTar(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	magic := make([]byte, 5)
	if _, err := f.ReadAt(magic, 257); err != nil {
		return false
	}

	return string(magic) == "ustar"
}

// untar unpacks a tar stream into dir, rejecting members whose resolved path
// would escape it.
func untar(path, dir string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open tar: %w", err)
	}
	defer f.Close()

	tr := tar.NewReader(f)

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}

		if err != nil {
			return fmt.Errorf("read tar: %w", err)
		}

		target := filepath.Join(dir, hdr.Name)
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(dir)+string(os.PathSeparator)) {
			return fmt.Errorf("unsafe tar member path: %s", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("tar mkdir: %w", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("tar mkdir: %w", err)
			}

			out, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("tar create: %w", err)
			}

			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("tar write: %w", err)
			}

			if err := out.Close(); err != nil {
				return fmt.Errorf("tar close: %w", err)
			}
		}
	}
}

// findInner locates the raw log within an unpacked archive: the file named
// 000000 if present, otherwise the largest file.
func findInner(dir string) string {
	var (
		exact   string
		largest string
		size    int64 = -1
	)

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		if d.Name() == innerLogName && exact == "" {
			exact = path
		}

		if info, err := d.Info(); err == nil && info.Size() > size {
			largest = path
			size = info.Size()
		}

		return nil
	})

	if exact != "" {
		return exact
	}

	return largest
}

// moveFile renames when possible and falls back to copying across
// filesystems (the scratch dir may live on a different mount).
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}

	return out.Close()
}
