package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/servak/fabric-manager/pkg/logger"
)

// FileWriter writes rendered artifacts under <outputDir>/<podName>/
type FileWriter struct {
	outputDir string
	log       *logger.Logger
}

func NewFileWriter(outputDir string, log *logger.Logger) *FileWriter {
	if outputDir == "" {
		outputDir = "out"
	}
	return &FileWriter{
		outputDir: outputDir,
		log:       log.WithComponent("output"),
	}
}

// WriteDeviceConfig writes one device's configuration file
func (w *FileWriter) WriteDeviceConfig(podName, deviceName string, config []byte) error {
	path, err := w.podFile(podName, deviceName+".conf")
	if err != nil {
		return err
	}

	w.log.Info("writing device config", "device", deviceName, "path", path)
	if err := os.WriteFile(path, config, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteCabling writes the pod's DOT cabling diagram
func (w *FileWriter) WriteCabling(podName string, dot []byte) error {
	path, err := w.podFile(podName, "cabling.dot")
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, dot, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (w *FileWriter) podFile(podName, fileName string) (string, error) {
	dir := filepath.Join(w.outputDir, podName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	return filepath.Join(dir, fileName), nil
}
