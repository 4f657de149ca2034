package exclusion

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Load reads the denylist at path. Each non-comment line is "id|notes"; only
// the id is kept. A missing or unreadable file yields an empty set.
func Load(path string, logger *slog.Logger) mapset.Set[string] {
	resolved, err := expandHome(path)
	if err != nil {
		logger.Warn("could not resolve exclusion path", "path", path, "error", err)
		return mapset.NewSet[string]()
	}

	f, err := os.Open(resolved)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("no exclusion list found", "path", resolved)
		return mapset.NewSet[string]()
	}
	if err != nil {
		logger.Warn("could not read exclusion list", "path", resolved, "error", err)
		return mapset.NewSet[string]()
	}
	defer f.Close()

	ids, err := Parse(f)
	if err != nil {
		logger.Warn("could not read exclusion list", "path", resolved, "error", err)
		return mapset.NewSet[string]()
	}

	logger.Info("loaded exclusion list", "path", resolved, "count", ids.Cardinality())
	return ids
}

// Parse reads exclusion entries from r. Lines of any length are accepted.
func Parse(r io.Reader) (mapset.Set[string], error) {
	ids := mapset.NewSet[string]()
	br := bufio.NewReader(r)
	for {
		raw, err := br.ReadString('\n')
		if line := strings.TrimSpace(raw); line != "" && !strings.HasPrefix(line, "#") {
			id, _, _ := strings.Cut(line, "|")
			if id = strings.TrimSpace(id); id != "" {
				ids.Add(id)
			}
		}
		if errors.Is(err, io.EOF) {
			return ids, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read exclusions: %w", err)
		}
	}
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
