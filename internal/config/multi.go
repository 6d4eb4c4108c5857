package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const DefaultLabel = "Default"

var ErrNoConfig = errors.New("no config selected")

// Root is the per-user noveld config directory.
func Root() string {
	// Windows
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "noveld")
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "noveld")
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "noveld")
}

// Store manages labelled YAML profiles under a root directory:
// <root>/configs/<label>.yaml plus <root>/current_config naming the active
// one.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) ConfigsDir() string {
	return filepath.Join(s.root, "configs")
}

func (s *Store) currentFile() string {
	return filepath.Join(s.root, "current_config")
}

func (s *Store) pathFor(label string) string {
	return filepath.Join(s.ConfigsDir(), label+".yaml")
}

// Path returns the file of an existing profile.
func (s *Store) Path(label string) (string, error) {
	if err := checkLabel(label); err != nil {
		return "", err
	}

	path := s.pathFor(label)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("config %q does not exist", label)
	}
	return path, nil
}

func (s *Store) ensureDirs() error {
	return os.MkdirAll(s.ConfigsDir(), 0o755)
}

func checkLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return errors.New("label cannot be empty")
	}
	if strings.ContainsAny(label, `/\`) {
		return fmt.Errorf("label %q must not contain path separators", label)
	}
	return nil
}

func (s *Store) CurrentLabel() (string, error) {
	b, err := os.ReadFile(s.currentFile())
	if os.IsNotExist(err) {
		return "", ErrNoConfig
	}
	if err != nil {
		return "", err
	}

	label := strings.TrimSpace(string(b))
	if label == "" {
		return "", ErrNoConfig
	}
	return label, nil
}

func (s *Store) setCurrent(label string) error {
	return os.WriteFile(s.currentFile(), []byte(label), 0o644)
}

// ActivePath is the file of the active profile, or ErrNoConfig.
func (s *Store) ActivePath() (string, error) {
	label, err := s.CurrentLabel()
	if err != nil {
		return "", err
	}
	return s.pathFor(label), nil
}

type ConfigInfo struct {
	Label  string
	Path   string
	Active bool
}

func (s *Store) List() ([]ConfigInfo, error) {
	if err := s.ensureDirs(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.ConfigsDir())
	if err != nil {
		return nil, err
	}

	active, _ := s.CurrentLabel()
	var out []ConfigInfo

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}

		label := strings.TrimSuffix(name, ".yaml")
		out = append(out, ConfigInfo{
			Label:  label,
			Path:   filepath.Join(s.ConfigsDir(), name),
			Active: label == active,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (s *Store) Switch(label string) error {
	if err := checkLabel(label); err != nil {
		return err
	}
	if _, err := os.Stat(s.pathFor(label)); err != nil {
		return fmt.Errorf("config %q does not exist", label)
	}
	return s.setCurrent(label)
}

// Add imports an existing YAML file as a new profile. The file must parse.
func (s *Store) Add(label, srcPath string) error {
	if err := checkLabel(label); err != nil {
		return err
	}
	if err := s.ensureDirs(); err != nil {
		return err
	}

	dst := s.pathFor(label)
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("config %q already exists", label)
	}

	if _, err := LoadYAML(srcPath); err != nil {
		return fmt.Errorf("invalid config %s: %w", srcPath, err)
	}

	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, raw, 0o644)
}

// Create writes a new profile holding DefaultConfig.
func (s *Store) Create(label string) (string, error) {
	if err := checkLabel(label); err != nil {
		return "", err
	}
	if err := s.ensureDirs(); err != nil {
		return "", err
	}

	path := s.pathFor(label)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config %q already exists", label)
	}

	if err := SaveYAML(DefaultConfig(), path); err != nil {
		return "", err
	}

	return path, nil
}

func (s *Store) Rename(oldLabel, newLabel string) error {
	if err := checkLabel(newLabel); err != nil {
		return err
	}

	oldPath, newPath := s.pathFor(oldLabel), s.pathFor(newLabel)

	if _, err := os.Stat(oldPath); err != nil {
		return fmt.Errorf("config %q does not exist", oldLabel)
	}
	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("config %q already exists", newLabel)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return err
	}

	if active, _ := s.CurrentLabel(); active == oldLabel {
		return s.setCurrent(newLabel)
	}

	return nil
}

// Remove deletes a profile. Removing the active one switches back to
// Default and reports switched = true.
func (s *Store) Remove(label string) (switched bool, err error) {
	if err := checkLabel(label); err != nil {
		return false, err
	}
	if label == DefaultLabel {
		return false, errors.New("cannot remove the Default config")
	}

	path := s.pathFor(label)
	if _, err := os.Stat(path); err != nil {
		return false, fmt.Errorf("config %q does not exist", label)
	}

	if active, _ := s.CurrentLabel(); active == label {
		if err := s.Switch(DefaultLabel); err != nil {
			return false, fmt.Errorf("failed switching to Default: %w", err)
		}
		switched = true
	}

	return switched, os.Remove(path)
}

// Init creates the Default profile if missing and makes it active. It
// returns os.ErrExist, with the path, when Default was already there.
func (s *Store) Init() (string, error) {
	if err := s.ensureDirs(); err != nil {
		return "", err
	}

	path := s.pathFor(DefaultLabel)

	if _, err := os.Stat(path); err == nil {
		return path, errors.Join(os.ErrExist, s.setCurrent(DefaultLabel))
	}

	if err := SaveYAML(DefaultConfig(), path); err != nil {
		return "", err
	}

	return path, s.setCurrent(DefaultLabel)
}

// Reset overwrites the active profile with DefaultConfig.
func (s *Store) Reset() (string, error) {
	path, err := s.ActivePath()
	if err != nil {
		return "", err
	}
	return path, SaveYAML(DefaultConfig(), path)
}
