package render

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gonum.org/v1/plot/vg"
)

// Default figure size, matching a 15 × 15 inch canvas.
const (
	DefaultWidth  = 15 * vg.Inch
	DefaultHeight = 15 * vg.Inch

	filePrefix = "coriolis_f_value_id"
	idLayout   = "20060102T150405"
)

// Saver writes figures into an existing directory.
type Saver struct {
	Dir    string // Must exist; it is not created.
	Format string // Default: png.
	Width  vg.Length
	Height vg.Length
	Now    func() time.Time
}

// NewSaver creates a saver for dir with default size and format.
func NewSaver(dir string) *Saver {
	return &Saver{
		Dir:    dir,
		Format: "png",
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Now:    time.Now,
	}
}

// DefaultFiguresDir returns <cwd>/figures.
func DefaultFiguresDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(wd, "figures"), nil
}

// FileName returns the file name used for id. An empty id is replaced by
// the current UTC time.
func (s *Saver) FileName(id string) string {
	if id == "" {
		id = s.Now().UTC().Format(idLayout)
	}
	return filePrefix + id + "." + s.format()
}

// Save writes fig and returns the file path.
func (s *Saver) Save(fig *Figure, id string) (string, error) {
	info, err := os.Stat(s.Dir)
	if err != nil {
		return "", fmt.Errorf("figures directory %s: %w", s.Dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("figures path %s is not a directory", s.Dir)
	}

	path := filepath.Join(s.Dir, s.FileName(id))
	//nolint:gosec // G304: Directory comes from configuration, name is generated.
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create figure file: %w", err)
	}

	if _, err := fig.WriteTo(file, s.Width, s.Height, s.format()); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to write figure %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close figure %s: %w", path, err)
	}

	return path, nil
}

func (s *Saver) format() string {
	if s.Format == "" {
		return "png"
	}
	return strings.ToLower(s.Format)
}

// Displayer shows a figure and returns once the viewer is done with it.
type Displayer interface {
	Display(fig *Figure) error
}

// NopDisplay skips displaying.
type NopDisplay struct{}

// Display does nothing.
func (NopDisplay) Display(*Figure) error { return nil }

// CommandDisplay writes the figure to a temporary PNG and runs an external
// viewer on it, waiting for the viewer command to exit.
//
// The PNG is left in place afterwards: openers such as xdg-open hand the
// file to another process and return at once, so the file must outlive the
// command. It lives in Dir (default: the system temp directory).
type CommandDisplay struct {
	Command string
	Args    []string
	Dir     string
	Width   vg.Length
	Height  vg.Length
}

// NewCommandDisplay parses a viewer command line such as "open -W".
// An empty command selects the platform default.
func NewCommandDisplay(cmdline string) (*CommandDisplay, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		fields = defaultViewer(exec.LookPath)
	}
	if len(fields) == 0 {
		return nil, errors.New("no figure viewer available for " + runtime.GOOS)
	}
	return &CommandDisplay{
		Command: fields[0],
		Args:    fields[1:],
		Width:   DefaultWidth,
		Height:  DefaultHeight,
	}, nil
}

// Display writes the figure and blocks until the viewer command exits.
func (d *CommandDisplay) Display(fig *Figure) error {
	_, err := d.show(fig)
	return err
}

func (d *CommandDisplay) show(fig *Figure) (string, error) {
	tmp, err := os.CreateTemp(d.Dir, filePrefix+"*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary figure: %w", err)
	}

	if _, err := fig.WriteTo(tmp, d.Width, d.Height, "png"); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write temporary figure: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	args := append(append([]string{}, d.Args...), tmp.Name())
	//nolint:gosec // G204: Viewer command is chosen by the user.
	cmd := exec.Command(d.Command, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return tmp.Name(), fmt.Errorf("viewer %s failed: %w", d.Command, err)
	}
	return tmp.Name(), nil
}

// Viewers tried on Unix desktops, in order. The first ones stay in the
// foreground until their window is closed; xdg-open is the fallback and
// returns as soon as it has handed the file off.
var unixViewers = [][]string{
	{"feh"},
	{"display"},
	{"eog", "--new-instance"},
	{"xdg-open"},
}

func defaultViewer(lookPath func(string) (string, error)) []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open", "-W"}
	case "windows":
		return []string{"cmd", "/c", "start", "/wait", ""}
	case "linux", "freebsd", "openbsd", "netbsd":
		for _, v := range unixViewers {
			if _, err := lookPath(v[0]); err == nil {
				return v
			}
		}
		return nil
	default:
		return nil
	}
}
