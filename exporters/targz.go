package exporters

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// TarGzExporter produces a gzipped tarball for tooling that consumes
// tarballs rather than Lambda's zip format. Same staging contract as zip.
type TarGzExporter struct{}

func init() {
	RegisterExporter("targz", &TarGzExporter{})
}

func (e *TarGzExporter) Name() string {
	return "targz"
}

func (e *TarGzExporter) Export(stagingDir, outputPath string) (int64, error) {
	err := atomicWrite(outputPath, func(f *os.File) error {
		gzWriter := gzip.NewWriter(f)
		tarWriter := tar.NewWriter(gzWriter)

		if err := e.addDirectoryToTar(tarWriter, stagingDir); err != nil {
			tarWriter.Close()
			gzWriter.Close()
			return fmt.Errorf("failed to add staging directory to tar: %v", err)
		}

		if err := tarWriter.Close(); err != nil {
			gzWriter.Close()
			return fmt.Errorf("failed to close tar writer: %v", err)
		}

		if err := gzWriter.Close(); err != nil {
			return fmt.Errorf("failed to close gzip writer: %v", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to stat archive: %v", err)
	}

	return info.Size(), nil
}

func (e *TarGzExporter) addDirectoryToTar(tarWriter *tar.Writer, srcDir string) error {
	return filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		if relPath == "." {
			return nil
		}

		tarPath := filepath.ToSlash(relPath)

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}

		header.Name = tarPath

		if info.IsDir() {
			header.Name += "/"
			return tarWriter.WriteHeader(header)
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(tarWriter, file)
		return err
	})
}
