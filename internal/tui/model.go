package tui

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/photowall-cli/internal/app"
	"github.com/glabrego/photowall-cli/internal/render/wall"
	"github.com/glabrego/photowall-cli/internal/tiles"
	tuiactions "github.com/glabrego/photowall-cli/internal/tui/actions"
	tuiplatform "github.com/glabrego/photowall-cli/internal/tui/platform"
	tuistate "github.com/glabrego/photowall-cli/internal/tui/state"
	tuitheme "github.com/glabrego/photowall-cli/internal/tui/theme"
	tuiview "github.com/glabrego/photowall-cli/internal/tui/view"
)

const defaultFPS = 30

type clearStatusMsg struct {
	id int
}

type preferenceSaveErrorMsg struct {
	err error
}

type Preferences struct {
	ShowMinimap bool
	ShowHelp    bool
	PixelScale  int
}

type Model struct {
	session           *app.Session
	theme             tuitheme.Theme
	fps               int
	scale             int
	width             int
	height            int
	lines             []string
	showMinimap       bool
	showHelp          bool
	jumping           bool
	jump              textinput.Model
	status            string
	statusID          int
	err               error
	snapshotDir       string
	openURLFn         func(string) error
	copyURLFn         func(string) error
	nowFn             func() time.Time
	savePreferencesFn func(Preferences) error
	saveViewFn        func(wall.View) error
}

func NewModel(session *app.Session, fps int) Model {
	if fps < 1 {
		fps = defaultFPS
	}
	jump := textinput.New()
	jump.Placeholder = "12,34"
	jump.CharLimit = 16
	jump.Width = 16
	jump.Prompt = ""

	return Model{
		session:     session,
		theme:       tuitheme.Default(),
		fps:         fps,
		scale:       tuistate.DefaultScale,
		showMinimap: true,
		jump:        jump,
		snapshotDir: ".",
		openURLFn:   tuiplatform.OpenURLInBrowser,
		copyURLFn:   tuiplatform.CopyURLToClipboard,
		nowFn:       time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	if m.session == nil {
		return nil
	}
	m.session.Start()
	return tuiactions.FrameCmd(m.fps)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeCanvas()
		return m, nil
	case tuiactions.FrameMsg:
		if m.session == nil {
			return m, nil
		}
		if m.session.Frame() || m.lines == nil {
			m.encode()
		}
		return m, tuiactions.FrameCmd(m.fps)
	case tea.MouseMsg:
		if m.jumping || m.showHelp {
			return m, nil
		}
		return m.handleMouse(msg)
	case tea.KeyMsg:
		if m.jumping {
			return m.handleJumpKey(msg)
		}
		return m.handleKey(msg)
	case tuiactions.SnapshotSuccessMsg:
		m.err = nil
		m.status = fmt.Sprintf("Saved snapshot to %s", msg.Path)
		m.statusID++
		return m, clearStatusCmd(m.statusID, 4*time.Second)
	case tuiactions.SnapshotErrorMsg:
		m.status = ""
		m.err = msg.Err
		return m, nil
	case tuiactions.OpenURLSuccessMsg:
		m.err = nil
		m.status = msg.Status
		m.statusID++
		return m, clearStatusCmd(m.statusID, 3*time.Second)
	case tuiactions.OpenURLErrorMsg:
		m.err = nil
		m.status = msg.Err.Error()
		m.statusID++
		return m, clearStatusCmd(m.statusID, 4*time.Second)
	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil
	case preferenceSaveErrorMsg:
		m.err = msg.err
		m.status = "Could not persist UI preferences"
		return m, nil
	}

	if m.jumping {
		var cmd tea.Cmd
		m.jump, cmd = m.jump.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "?":
		m.showHelp = !m.showHelp
		return m, persistPreferencesCmd(m.savePreferencesFn, m.preferences())
	case "ctrl+c", "q":
		return m.quit()
	}
	if m.showHelp {
		if msg.String() == "esc" {
			m.showHelp = false
			return m, persistPreferencesCmd(m.savePreferencesFn, m.preferences())
		}
		return m, nil
	}
	if m.session == nil {
		return m, nil
	}

	r := m.session.Renderer()
	w, h := r.Size()
	switch msg.String() {
	case "left", "h":
		r.PanBy(r.CellSize(), 0)
	case "right", "l":
		r.PanBy(-r.CellSize(), 0)
	case "up", "k":
		r.PanBy(0, r.CellSize())
	case "down", "j":
		r.PanBy(0, -r.CellSize())
	case "+", "=":
		r.ZoomAt(float64(w)/2, float64(h)/2, wall.WheelStep)
	case "-", "_":
		r.ZoomAt(float64(w)/2, float64(h)/2, 1/wall.WheelStep)
	case "0":
		r.SetView(wall.InitialView(r.Layout()))
	case "/":
		m.jumping = true
		m.jump.SetValue("")
		return m, m.jump.Focus()
	case "o":
		return m.openCenterPost()
	case "y":
		return m.copyCenterPost()
	case "s":
		return m.snapshot()
	case "m":
		m.showMinimap = !m.showMinimap
		m.encode()
		return m, persistPreferencesCmd(m.savePreferencesFn, m.preferences())
	case "[":
		return m.setScale(m.scale - 1)
	case "]":
		return m.setScale(m.scale + 1)
	case "r":
		st := m.session.State()
		if st.Done {
			m.status = "Post listing already complete"
		} else {
			m.session.Start()
			m.status = "Resuming post listing"
		}
		m.statusID++
		return m, clearStatusCmd(m.statusID, 3*time.Second)
	}
	return m, nil
}

func (m Model) handleJumpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m.quit()
	case tea.KeyEsc:
		m.jumping = false
		m.jump.Blur()
		return m, nil
	case tea.KeyEnter:
		input := m.jump.Value()
		m.jumping = false
		m.jump.Blur()
		if m.session == nil || !m.session.JumpToCell(input) {
			return m, nil
		}
		m.status = fmt.Sprintf("Jumped to %s", strings.ReplaceAll(strings.TrimSpace(input), " ", ""))
		m.statusID++
		return m, clearStatusCmd(m.statusID, 3*time.Second)
	}
	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.session == nil {
		return m, nil
	}
	g := m.session.Gestures()
	p, inside := tuistate.CanvasPoint(msg.X, msg.Y, m.width, m.height, m.scale)

	switch {
	case msg.Button == tea.MouseButtonWheelUp && inside:
		g.Wheel(p, -1)
	case msg.Button == tea.MouseButtonWheelDown && inside:
		g.Wheel(p, 1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && inside:
		g.PointerDown(p)
	case msg.Action == tea.MouseActionMotion:
		if !inside {
			g.PointerLeave()
			return m, nil
		}
		g.PointerMove(p)
	case msg.Action == tea.MouseActionRelease:
		g.PointerUp()
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.saveViewFn != nil && m.session != nil {
		if err := m.saveViewFn(m.session.Renderer().View()); err != nil {
			m.err = fmt.Errorf("save view: %w", err)
		}
	}
	return m, tea.Quit
}

func (m Model) openCenterPost() (tea.Model, tea.Cmd) {
	url, err := m.centerImageURL()
	if err != nil {
		m.status = err.Error()
		m.statusID++
		return m, clearStatusCmd(m.statusID, 4*time.Second)
	}
	return m, tuiactions.OpenURLCmd(url, m.openURLFn, m.copyURLFn)
}

func (m Model) copyCenterPost() (tea.Model, tea.Cmd) {
	url, err := m.centerImageURL()
	if err != nil {
		m.status = err.Error()
		m.statusID++
		return m, clearStatusCmd(m.statusID, 4*time.Second)
	}
	return m, tuiactions.CopyURLCmd(url, m.copyURLFn)
}

func (m Model) centerImageURL() (string, error) {
	post, ok := m.session.CenterPost()
	if !ok {
		return "", fmt.Errorf("no post under the centre of the wall")
	}
	return tuiplatform.ValidateImageURL(m.session.ImageURL(post))
}

func (m Model) snapshot() (tea.Model, tea.Cmd) {
	var buf bytes.Buffer
	if err := m.session.Snapshot(&buf); err != nil {
		m.err = err
		return m, nil
	}
	path := tuiplatform.SnapshotPath(m.snapshotDir, m.nowFn())
	return m, tuiactions.SnapshotCmd(buf.Bytes(), path)
}

func (m Model) setScale(scale int) (tea.Model, tea.Cmd) {
	scale = tuistate.ClampScale(scale)
	if scale == m.scale {
		return m, nil
	}
	m.scale = scale
	m.resizeCanvas()
	m.status = fmt.Sprintf("Pixel scale %d", m.scale)
	m.statusID++
	return m, tea.Batch(
		persistPreferencesCmd(m.savePreferencesFn, m.preferences()),
		clearStatusCmd(m.statusID, 3*time.Second),
	)
}

func (m *Model) resizeCanvas() {
	if m.session == nil || m.width <= 0 || m.height <= 0 {
		return
	}
	w, h := tuistate.CanvasSize(m.width, m.height, m.scale)
	if err := m.session.Renderer().Resize(w, h); err != nil {
		m.err = err
		return
	}
	m.lines = nil
}

// encode turns the current canvas into terminal lines.
func (m *Model) encode() {
	if m.session == nil {
		return
	}
	img := m.session.WallImage()
	if img == nil {
		return
	}
	if m.showMinimap {
		img = tuiview.Compose(img, m.session.MinimapImage())
	}
	m.lines = tuiview.EncodeHalfBlocks(img, m.scale)
}

func (m Model) View() string {
	var b strings.Builder
	var st app.State
	var ts tiles.Stats
	if m.session != nil {
		st = m.session.State()
		ts = m.session.TileStats()
	}

	b.WriteString(tuiview.HUD(tuiview.HUDInfo{
		ZoomPercent: st.ZoomPercent,
		Posts:       st.TotalPosts,
		CachedTiles: ts.Cached,
		CachedBytes: ts.Bytes,
		Fetching:    st.Fetching,
		Done:        st.Done,
	}, m.theme))
	b.WriteString("\n")

	rows := tuistate.CanvasRows(m.height)
	body := m.lines
	if m.showHelp {
		body = append([]string{"Help (? to close)", ""}, tuiview.HelpLines(m.theme)...)
	}
	for i := 0; i < rows; i++ {
		if i < len(body) {
			b.WriteString(body[i])
		}
		b.WriteString("\n")
	}

	switch {
	case m.jumping:
		b.WriteString(tuiview.JumpPrompt(m.jump.View(), m.theme))
	default:
		b.WriteString(tuiview.ProgressBar(st.Loaded, st.Visible, tuistate.ProgressWidth(m.width), m.theme))
	}
	b.WriteString("\n")
	b.WriteString(tuiview.Message(st.Fetching || st.Loaded < st.Visible, m.status, m.err, m.theme))
	b.WriteString("\n")
	b.WriteString(tuiview.Toolbar(m.jumping))
	return b.String()
}

func clearStatusCmd(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

func persistPreferencesCmd(saveFn func(Preferences) error, prefs Preferences) tea.Cmd {
	if saveFn == nil {
		return nil
	}
	return func() tea.Msg {
		if err := saveFn(prefs); err != nil {
			return preferenceSaveErrorMsg{err: err}
		}
		return nil
	}
}

func (m *Model) ApplyPreferences(prefs Preferences) {
	m.showMinimap = prefs.ShowMinimap
	m.showHelp = prefs.ShowHelp
	if prefs.PixelScale > 0 {
		m.scale = tuistate.ClampScale(prefs.PixelScale)
	}
}

func (m *Model) SetPreferencesSaver(saveFn func(Preferences) error) {
	m.savePreferencesFn = saveFn
}

// SetViewSaver is called with the final view when the user quits.
func (m *Model) SetViewSaver(saveFn func(wall.View) error) {
	m.saveViewFn = saveFn
}

func (m *Model) SetSnapshotDir(dir string) {
	m.snapshotDir = dir
}

func (m *Model) SetPixelScale(scale int) {
	m.scale = tuistate.ClampScale(scale)
}

func (m Model) preferences() Preferences {
	return Preferences{
		ShowMinimap: m.showMinimap,
		ShowHelp:    m.showHelp,
		PixelScale:  m.scale,
	}
}
