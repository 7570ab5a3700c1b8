package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// Ext is the only file extension offered for selection.
const Ext = ".mp4"

var ErrCanceled = errors.New("selection canceled")

type Adapter struct {
	dir string
	in  io.Reader
	out io.Writer
}

func New(dir string, in io.Reader, out io.Writer) *Adapter {
	if dir == "" {
		dir = "."
	}
	return &Adapter{dir: dir, in: in, out: out}
}

// Pick shows the videos in the adapter's directory and returns the chosen
// paths. With nothing toggled, enter picks the highlighted file.
func (a *Adapter) Pick(ctx context.Context) ([]string, error) {
	files, err := ListVideos(a.dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files in %s", Ext, a.dir)
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if a.in != nil {
		opts = append(opts, tea.WithInput(a.in))
	}
	if a.out != nil {
		opts = append(opts, tea.WithOutput(a.out))
	}
	final, err := tea.NewProgram(newModel(files), opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("file picker: %w", err)
	}
	m, ok := final.(model)
	if !ok || m.canceled {
		return nil, ErrCanceled
	}
	return m.chosen(), nil
}

// ListVideos returns absolute paths of the Ext files directly inside dir.
func ListVideos(dir string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), Ext) {
			out = append(out, filepath.Join(abs, e.Name()))
		}
	}
	return out, nil
}

type item struct {
	path     string
	selected bool
}

func (i item) Title() string {
	mark := "[ ]"
	if i.selected {
		mark = "[x]"
	}
	return mark + " " + filepath.Base(i.path)
}

func (i item) Description() string { return filepath.Dir(i.path) }
func (i item) FilterValue() string { return filepath.Base(i.path) }

type model struct {
	list     list.Model
	canceled bool
}

func newModel(files []string) model {
	items := make([]list.Item, 0, len(files))
	for _, f := range files {
		items = append(items, item{path: f})
	}
	l := list.New(items, list.NewDefaultDelegate(), 80, 20)
	l.Title = "Select videos (space: toggle, enter: start, q: quit)"
	l.SetFilteringEnabled(false)
	return model{list: l}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case " ", "space", "x":
			it, ok := m.list.SelectedItem().(item)
			if !ok {
				return m, nil
			}
			it.selected = !it.selected
			return m, m.list.SetItem(m.list.Index(), it)
		case "enter":
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			m.canceled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string { return m.list.View() }

func (m model) chosen() []string {
	var out []string
	for _, li := range m.list.Items() {
		if it, ok := li.(item); ok && it.selected {
			out = append(out, it.path)
		}
	}
	if len(out) == 0 {
		if it, ok := m.list.SelectedItem().(item); ok {
			out = append(out, it.path)
		}
	}
	return out
}
