package exporters

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

type ZipExporter struct{}

func init() {
	RegisterExporter("zip", &ZipExporter{})
}

func (e *ZipExporter) Name() string {
	return "zip"
}

func (e *ZipExporter) Export(stagingDir, outputPath string) (int64, error) {
	err := atomicWrite(outputPath, func(f *os.File) error {
		zipWriter := zip.NewWriter(f)

		if err := e.addDirectoryToZip(zipWriter, stagingDir); err != nil {
			zipWriter.Close()
			return fmt.Errorf("failed to add staging directory to zip: %v", err)
		}

		if err := zipWriter.Close(); err != nil {
			return fmt.Errorf("failed to close zip writer: %v", err)
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

func (e *ZipExporter) addDirectoryToZip(zipWriter *zip.Writer, srcDir string) error {
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

		zipPath := filepath.ToSlash(relPath)

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}

		header.Name = zipPath

		if info.IsDir() {
			header.Name += "/"
			if _, err := zipWriter.CreateHeader(header); err != nil {
				return err
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		header.Method = zip.Deflate

		writer, err := zipWriter.CreateHeader(header)
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(writer, file)
		return err
	})
}
