package compressor

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

type Logger interface {
	Warnf(template string, args ...interface{})
}

type ZipCompressor struct {
	logger Logger
}

func NewZip(logger Logger) *ZipCompressor {
	return &ZipCompressor{logger: logger}
}

// Archive writes the contents of sourceDir to destDir/<base name of sourceDir>.zip.
// Entry names are relative to sourceDir. A symlinked sourceDir is archived
// through its target. If destDir lives inside sourceDir it is left out of the
// archive.
func (z *ZipCompressor) Archive(sourceDir, destDir string) (string, error) {
	sourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve source dir: %w", err)
	}

	info, err := os.Stat(sourceDir)
	if err != nil {
		return "", fmt.Errorf("failed to stat source dir: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("source is not a directory: %s", sourceDir)
	}

	root, err := filepath.EvalSymlinks(sourceDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve source dir: %w", err)
	}

	destPath := filepath.Join(destDir, filepath.Base(sourceDir)+".zip")

	destFile, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create dest file: %w", err)
	}

	if err := z.writeZip(destFile, root, resolveDir(destDir)); err != nil {
		destFile.Close()
		os.Remove(destPath)
		return "", err
	}

	if err := destFile.Close(); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to close archive: %w", err)
	}

	return destPath, nil
}

// resolveDir returns dir as an absolute path with symlinks resolved, or as
// close to that as the filesystem allows.
func resolveDir(dir string) string {
	dir, _ = filepath.Abs(dir)
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		return resolved
	}
	return dir
}

func (z *ZipCompressor) writeZip(w io.Writer, root, skipDir string) error {
	zw := zip.NewWriter(w)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == root {
			return nil
		}

		if d.IsDir() && path == skipDir {
			return filepath.SkipDir
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		if d.IsDir() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			header, err := zip.FileInfoHeader(info)
			if err != nil {
				return err
			}
			header.Name = name + "/"
			_, err = zw.CreateHeader(header)
			return err
		}

		// os.Stat follows file symlinks, so a linked file is stored with
		// its target's content.
		info, err := os.Stat(path)
		if err != nil {
			z.warnf("Skipping %s: dangling link: %v", path, err)
			return nil
		}

		switch {
		case info.Mode().IsRegular():
			return addFile(zw, path, name, info)
		case info.IsDir():
			z.warnf("Skipping %s: directory links are not followed", path)
		default:
			z.warnf("Skipping %s: not a regular file (%s)", path, info.Mode().Type())
		}
		return nil
	})
	if err != nil {
		zw.Close()
		return fmt.Errorf("failed to compress: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	return nil
}

func (z *ZipCompressor) warnf(template string, args ...interface{}) {
	if z.logger != nil {
		z.logger.Warnf(template, args...)
	}
}

func addFile(zw *zip.Writer, path, name string, info fs.FileInfo) error {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy %s: %w", name, err)
	}

	return nil
}
