package backup

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dominopro/dominopro-server/internal/domain"
	"github.com/dominopro/dominopro-server/internal/logger"
)

const (
	filePrefix = "domino-pro-"
	fileSuffix = ".json"
)

// validName matches domino-pro-<unix ms>.json and nothing else, so names taken
// from requests can never point outside the backup directory.
var validName = regexp.MustCompile(`^domino-pro-\d+\.json$`)

// Info describes one backup file.
type Info struct {
	Name      string    `json:"name"`
	Path      string    `json:"-"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// Counts summarizes an exported document.
type Counts struct {
	Players        int `json:"players"`
	Games          int `json:"games"`
	ActiveSessions int `json:"activeSessions"`
}

// CountsOf summarizes state.
func CountsOf(state *domain.LeagueState) Counts {
	return Counts{
		Players:        len(state.Players),
		Games:          len(state.Games),
		ActiveSessions: len(state.ActiveSessions),
	}
}

// Result is returned by Export.
type Result struct {
	Info
	Counts Counts `json:"counts"`
	Data   []byte `json:"-"`
}

// Service manages backup files in one directory.
type Service struct {
	dir    string
	logger *slog.Logger
	clock  func() time.Time
}

// NewService creates a Service. A nil clock uses time.Now.
func NewService(dir string, log *slog.Logger, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{dir: dir, logger: logger.OrDiscard(log), clock: clock}
}

// Dir returns the backup directory.
func (s *Service) Dir() string { return s.dir }

// Export writes state as domino-pro-<unix ms>.json.
func (s *Service) Export(state *domain.LeagueState) (*Result, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal league state: %w", err)
	}

	now := s.clock()
	name := filePrefix + strconv.FormatInt(now.UnixMilli(), 10) + fileSuffix
	path := filepath.Join(s.dir, name)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return nil, fmt.Errorf("write backup: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("finalize backup: %w", err)
	}

	res := &Result{
		Info: Info{Name: name, Path: path, Size: int64(len(data)), CreatedAt: time.UnixMilli(now.UnixMilli())},
		Counts: CountsOf(state),
		Data:   data,
	}

	s.logger.Info("league exported",
		"path", path,
		"size", res.Size,
		"players", res.Counts.Players,
		"games", res.Counts.Games)
	return res, nil
}

// List returns all backups, newest first.
func (s *Service) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() || !validName.MatchString(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Name:      entry.Name(),
			Path:      filepath.Join(s.dir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: createdAt(entry.Name(), info.ModTime()),
		})
	}

	slices.SortFunc(backups, func(a, b Info) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return backups, nil
}

// Read returns the raw document stored under name.
func (s *Service) Read(name string) ([]byte, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //#nosec G304 -- name validated against validName
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}
	return data, nil
}

// Delete removes a backup.
func (s *Service) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrBackupNotFound
		}
		return err
	}
	return nil
}

func (s *Service) path(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// createdAt reads the timestamp embedded in the file name.
func createdAt(name string, fallback time.Time) time.Time {
	digits := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	ms, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return fallback
	}
	return time.UnixMilli(ms)
}
