package rules

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

type format string

const (
	formatJSON format = "json"
	formatYAML format = "yaml"
)

// maxRuleFileSize bounds the decompressed size of a rule file.
const maxRuleFileSize = 16 << 20

// readRuleFile reads the whole file and closes it before returning. A .gz or
// .br suffix is decompressed transparently; the remaining extension selects
// the document format.
func readRuleFile(path string) ([]byte, format, error) {
	cleanPath := filepath.Clean(path)
	file, err := os.Open(cleanPath)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = file.Close() }()

	name := strings.ToLower(filepath.Base(cleanPath))
	var reader io.Reader = file
	switch {
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, "", fmt.Errorf("invalid gzip stream: %w", err)
		}
		defer func() { _ = gz.Close() }()
		reader = gz
		name = strings.TrimSuffix(name, ".gz")
	case strings.HasSuffix(name, ".br"):
		reader = brotli.NewReader(file)
		name = strings.TrimSuffix(name, ".br")
	}

	data, err := io.ReadAll(io.LimitReader(reader, maxRuleFileSize+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > maxRuleFileSize {
		return nil, "", fmt.Errorf("rule file exceeds %d bytes", maxRuleFileSize)
	}

	return data, detectFormat(name, data), nil
}

func detectFormat(name string, data []byte) format {
	switch filepath.Ext(name) {
	case ".json":
		return formatJSON
	case ".yaml", ".yml":
		return formatYAML
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return formatJSON
	}
	return formatYAML
}
