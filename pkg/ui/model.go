package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vanderheijden86/sectionview/pkg/config"
	"github.com/vanderheijden86/sectionview/pkg/expansion"
	"github.com/vanderheijden86/sectionview/pkg/loader"
	"github.com/vanderheijden86/sectionview/pkg/model"
)

// SplitViewThreshold is the terminal width from which the detail pane is
// shown next to the list instead of over it.
const SplitViewThreshold = 120

type focus int

const (
	focusList focus = iota
	focusDetail
)

// Options configures NewModel.
type Options struct {
	Catalog     *model.Catalog
	CatalogPath string // Reloaded on "r" and watched when data.watch is on
	CatalogHash string
	Fetcher     RowFetcher
	Config      *config.Config
	Logger      *zap.Logger
	Registry    prometheus.Registerer // nil disables metrics
	Renderer    *lipgloss.Renderer    // nil uses the default renderer
	Clipboard   func(string) error    // nil uses the system clipboard
}

// background holds the goroutine-backed services started by Start.
type background struct {
	worker  *DownloadWorker
	watcher *CatalogWatcher
}

// Model is the root bubbletea model. The list, controller and source are
// shared pointers, so copies of Model made by bubbletea stay consistent.
type Model struct {
	cfg   *config.Config
	log   *zap.Logger
	theme Theme
	keys  KeyMap

	list    *SectionList
	source  *CatalogSource
	ctrl    *expansion.Controller
	bg      *background
	metrics *WorkerMetrics

	help     help.Model
	spinner  spinner.Model
	spinning bool
	viewport viewport.Model
	md       *MarkdownRenderer
	confirm  *huh.Form
	copy     func(string) error

	catalogPath string
	catalogHash string

	focused     focus
	showHelp    bool
	showDetail  bool
	isSplitView bool
	ready       bool
	width       int
	height      int

	status    string
	statusErr bool
}

// NewModel builds the UI and the expansion controller behind it. The list
// starts with every section collapsed; Start restores persisted state.
func NewModel(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	r := opts.Renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	cat := opts.Catalog
	if cat == nil {
		cat = &model.Catalog{}
	}

	var ctrlMetrics *expansion.Metrics
	var workerMetrics *WorkerMetrics
	if opts.Registry != nil {
		ctrlMetrics = expansion.NewMetrics(opts.Registry)
		workerMetrics = NewWorkerMetrics(opts.Registry)
	}

	theme := DefaultTheme(r)
	worker := NewDownloadWorker(DownloadConfig{
		Fetcher:       opts.Fetcher,
		MaxConcurrent: cfg.Data.MaxConcurrentDownloads,
		Delay:         cfg.Data.FetchDelay,
		Logger:        log.Named("download"),
		Metrics:       workerMetrics,
	})

	state, statePath := NewExpansionState(), ""
	if cfg.State.Persist {
		statePath = cfg.State.File
		state = LoadExpansionState(statePath, log)
	}
	source := NewCatalogSource(cat, worker, state, statePath, log.Named("source"))

	list := NewSectionList(theme, cfg.List.AnimationFrame)
	ctrl := expansion.NewController(source, source, list,
		expansion.WithConfig(cfg.Expansion()),
		expansion.WithLogger(log.Named("expansion")),
		expansion.WithMetrics(ctrlMetrics),
	)
	list.Attach(ctrl.DataSource(), ctrl.Delegate(true))
	list.SetTitle(catalogTitle(cat))

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = r.NewStyle().Foreground(theme.Primary)

	m := Model{
		cfg:         cfg,
		log:         log,
		theme:       theme,
		keys:        DefaultKeyMap(),
		list:        list,
		source:      source,
		ctrl:        ctrl,
		bg:          &background{worker: worker},
		metrics:     workerMetrics,
		help:        help.New(),
		spinner:     sp,
		viewport:    viewport.New(0, 0),
		md:          NewMarkdownRendererWithTheme(60, theme),
		copy:        copyFn,
		catalogPath: opts.CatalogPath,
		catalogHash: opts.CatalogHash,
	}
	ctrl.Reload(false)
	m.updateFooter()
	return m
}

// Start connects background work to the running program, restores the
// persisted expansion state and starts the catalog watcher. Call it before
// the program runs.
func (m Model) Start(sender Sender) error {
	m.bg.worker.SetSender(sender)
	m.restoreExpanded()
	m.updateFooter()

	if m.cfg.Data.Watch && m.catalogPath != "" {
		w, err := NewCatalogWatcher(m.catalogPath, m.catalogHash, sender, m.log.Named("watch"))
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			w.Stop()
			return err
		}
		m.bg.watcher = w
	}
	return nil
}

// Stop shuts down background work and saves the expansion state.
func (m Model) Stop() {
	if m.bg.watcher != nil {
		m.bg.watcher.Stop()
	}
	m.bg.worker.Stop()
	m.source.SaveState()
}

// Controller exposes the expansion controller.
func (m Model) Controller() *expansion.Controller { return m.ctrl }

// List exposes the host surface.
func (m Model) List() *SectionList { return m.list }

// Source exposes the catalog source.
func (m Model) Source() *CatalogSource { return m.source }

// Status returns the status line message.
func (m Model) Status() string { return m.status }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.list.TickCmd(), tea.SetWindowTitle("sv: "+catalogTitle(m.source.Catalog())))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.isSplitView = msg.Width >= SplitViewThreshold
		m.layout()

	case ListTickMsg:
		m.list.Tick()

	case spinner.TickMsg:
		if m.source.PendingDownloads() == 0 {
			m.spinning = false
			m.list.SetSpinner("")
			break
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.list.SetSpinner(m.spinner.View())
		cmds = append(cmds, cmd)

	case DownloadDoneMsg:
		section, ok := m.source.HandleDownload(msg)
		if !ok {
			break
		}
		if msg.Err != nil {
			m.ctrl.DownloadFailed(section)
			m.setError(fmt.Errorf("loading %s: %w", msg.SectionID, msg.Err))
		} else {
			m.ctrl.DownloadCompleted(section)
			m.setStatus(fmt.Sprintf("Loaded %d rows into %s", len(msg.Rows), msg.SectionID))
		}

	case CatalogChangedMsg:
		m.catalogHash = msg.Hash
		m.applyCatalog(msg.Catalog, "watch")
		m.setStatus("Catalog reloaded")

	case CatalogErrorMsg:
		m.setError(fmt.Errorf("catalog: %w", msg.Err))

	case tea.KeyMsg:
		if cmd, quit := m.handleKey(msg); quit {
			return m, tea.Quit
		} else if cmd != nil {
			cmds = append(cmds, cmd)
		}

	default:
		if m.confirm != nil {
			cmds = append(cmds, m.updateConfirm(msg))
		}
	}

	m.updateFooter()
	cmds = append(cmds, m.list.TickCmd())
	if m.source.PendingDownloads() > 0 && !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

// handleKey routes a key press. It reports whether the program should quit.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.confirm != nil {
		if msg.String() == "esc" {
			m.confirm = nil
			m.setStatus("Reset cancelled")
			return nil, false
		}
		return m.updateConfirm(msg), false
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || msg.String() == "esc" {
			m.showHelp = false
		}
		if key.Matches(msg, m.keys.Quit) {
			return nil, true
		}
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.showDetail && !m.isSplitView {
			m.showDetail = false
			m.focused = focusList
			return nil, false
		}
		return nil, true
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return nil, false
	case key.Matches(msg, m.keys.Detail):
		m.toggleDetail()
		return nil, false
	case key.Matches(msg, m.keys.Copy):
		m.copySelected()
		return nil, false
	case msg.String() == "esc" && m.showDetail:
		m.showDetail = false
		m.focused = focusList
		m.layout()
		return nil, false
	}

	if m.focused == focusDetail {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd, false
	}

	m.status, m.statusErr = "", false
	switch {
	case key.Matches(msg, m.keys.Up):
		m.list.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.list.MoveDown()
	case key.Matches(msg, m.keys.PageUp):
		m.list.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.list.PageDown()
	case key.Matches(msg, m.keys.Top):
		m.list.Top()
	case key.Matches(msg, m.keys.Bottom):
		m.list.Bottom()
	case key.Matches(msg, m.keys.Select):
		m.selectCursor()
	case key.Matches(msg, m.keys.Expand):
		m.expandCursor()
	case key.Matches(msg, m.keys.Collapse):
		m.collapseCursor()
	case key.Matches(msg, m.keys.ExpandAll):
		n := m.ctrl.ExpandAll(true)
		m.setStatus(fmt.Sprintf("Expanding %d %s", n, plural(n, "section")))
	case key.Matches(msg, m.keys.CollapseAll):
		n := m.ctrl.CollapseAll(true)
		m.setStatus(fmt.Sprintf("Collapsing %d %s", n, plural(n, "section")))
	case key.Matches(msg, m.keys.Refresh):
		m.reloadCatalog()
	case key.Matches(msg, m.keys.Reset):
		m.confirm = newResetConfirm(m.width)
		return m.confirm.Init(), false
	}
	m.updateDetail()
	return nil, false
}

// selectCursor toggles a header or opens the detail pane for a row.
func (m *Model) selectCursor() {
	if err := m.list.Select(); err != nil {
		m.report(err)
		return
	}
	selected, ok := m.source.Selected()
	if !ok {
		return
	}
	if cur, ok := m.selectedRow(); ok && cur.ID == selected.ID && !m.showDetail {
		m.showDetail = true
		m.focused = focusList
		m.layout()
	}
}

// expandCursor expands the section under the cursor.
func (m *Model) expandCursor() {
	path, ok := m.list.CursorPath()
	if !ok || !m.ctrl.CanExpand(path.Section) {
		return
	}
	if m.ctrl.State(path.Section) == expansion.StateExpanded {
		return
	}
	m.report(m.ctrl.Expand(path.Section, true))
}

// collapseCursor collapses the section under the cursor, or cancels its
// download, and moves the cursor to the header.
func (m *Model) collapseCursor() {
	path, ok := m.list.CursorPath()
	if !ok || !m.ctrl.CanExpand(path.Section) {
		return
	}
	switch m.ctrl.State(path.Section) {
	case expansion.StateDownloading:
		m.report(m.ctrl.CancelDownload(path.Section))
	case expansion.StateExpanded:
		m.report(m.ctrl.Collapse(path.Section, true))
	}
	m.list.SelectPath(expansion.IndexPath{Section: path.Section, Row: 0})
}

// reloadCatalog re-reads the catalog file on request.
func (m *Model) reloadCatalog() {
	if m.catalogPath == "" {
		m.ctrl.Reload(false)
		m.setStatus("Reloaded")
		return
	}
	cat, hash, err := loader.LoadCatalog(m.catalogPath)
	if err != nil {
		m.setError(fmt.Errorf("reload: %w", err))
		return
	}
	m.catalogHash = hash
	if m.bg.watcher != nil {
		m.bg.watcher.SetLastHash(hash)
	}
	m.applyCatalog(cat, "manual")
	m.setStatus(fmt.Sprintf("Reloaded %d %s", len(cat.Sections), plural(len(cat.Sections), "section")))
}

// applyCatalog swaps in a new catalog. Expansion state is reset, then the
// persisted expanded sections are reopened by ID.
func (m *Model) applyCatalog(cat *model.Catalog, trigger string) {
	m.source.SetCatalog(cat)
	m.ctrl.Reload(true)
	m.restoreExpanded()
	m.list.SetTitle(catalogTitle(cat))
	m.metrics.reload(trigger)
	m.updateDetail()
}

// resetAll collapses everything, forgets downloads and the persisted state.
func (m *Model) resetAll() {
	m.source.ResetCache()
	if m.source.State().Clear() {
		m.source.SaveState()
	}
	m.ctrl.Reload(true)
	m.metrics.reload("reset")
	m.setStatus("Expansion state reset")
	m.updateDetail()
}

func (m *Model) restoreExpanded() {
	for _, section := range m.source.ExpandedSections() {
		if err := m.ctrl.Expand(section, false); err != nil {
			m.log.Debug("cannot restore section", zap.Int("section", section), zap.Error(err))
		}
	}
}

func (m *Model) updateConfirm(msg tea.Msg) tea.Cmd {
	f, cmd := m.confirm.Update(msg)
	if form, ok := f.(*huh.Form); ok {
		m.confirm = form
	}
	switch m.confirm.State {
	case huh.StateCompleted:
		reset := m.confirm.GetBool("reset")
		m.confirm = nil
		if reset {
			m.resetAll()
		} else {
			m.setStatus("Reset cancelled")
		}
		return nil
	case huh.StateAborted:
		m.confirm = nil
		m.setStatus("Reset cancelled")
		return nil
	}
	return cmd
}

func newResetConfirm(width int) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Key("reset").
			Title("Reset expansion state?").
			Description("Collapses every section and drops downloaded rows.").
			Affirmative("Reset").
			Negative("Cancel"),
	)).WithShowHelp(false).WithWidth(min(max(width-8, 30), 60))
}

func (m *Model) toggleDetail() {
	switch {
	case !m.showDetail:
		m.showDetail = true
		m.focused = focusDetail
	case m.focused == focusDetail && m.isSplitView:
		m.focused = focusList
	case m.focused == focusList:
		m.focused = focusDetail
	default:
		m.showDetail = false
		m.focused = focusList
	}
	m.layout()
	m.updateDetail()
}

// selectedRow returns the application row under the cursor.
func (m *Model) selectedRow() (model.Row, bool) {
	path, ok := m.list.CursorPath()
	if !ok {
		return model.Row{}, false
	}
	conceptual, header := m.ctrl.Translator().ToConceptual(path)
	if header {
		return model.Row{}, false
	}
	return m.source.RowAt(conceptual)
}

func (m *Model) copySelected() {
	row, ok := m.selectedRow()
	if !ok {
		m.setStatus("Nothing to copy")
		return
	}
	if err := m.copy(row.Title); err != nil {
		m.setError(fmt.Errorf("copy: %w", err))
		return
	}
	m.setStatus("Copied " + row.ID)
}

func (m *Model) layout() {
	if !m.ready {
		return
	}
	bodyHeight := max(m.height-1, 1)
	listWidth := m.width
	detailWidth := m.width
	if m.showDetail && m.isSplitView {
		listWidth = m.width * 2 / 5
		detailWidth = m.width - listWidth - 2
	}
	m.list.SetSize(listWidth, bodyHeight)
	m.viewport.Width = max(detailWidth-2, 10)
	m.viewport.Height = max(bodyHeight-2, 1)
	m.md.SetWidth(m.viewport.Width)
	m.help.Width = m.width
	m.updateDetail()
}

// updateDetail renders the row under the cursor into the detail pane.
func (m *Model) updateDetail() {
	if !m.showDetail {
		return
	}
	row, ok := m.selectedRow()
	if !ok {
		m.viewport.SetContent(m.theme.Renderer.NewStyle().Foreground(m.theme.Muted).Render("Select a row to see its details."))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", row.Title)
	if len(row.Tags) > 0 {
		fmt.Fprintf(&sb, "`%s`\n\n", strings.Join(row.Tags, "` `"))
	}
	if !row.UpdatedAt.IsZero() {
		fmt.Fprintf(&sb, "*Updated %s*\n\n", row.UpdatedAt.Format("2006-01-02 15:04"))
	}
	sb.WriteString(row.Body)

	out, err := m.md.Render(sb.String())
	if err != nil {
		out = sb.String()
	}
	m.viewport.SetContent(out)
	m.viewport.GotoTop()
}

func (m *Model) updateFooter() {
	cat := m.source.Catalog()
	expanded := 0
	for s := 0; s < m.ctrl.SectionCount(); s++ {
		if m.ctrl.IsExpanded(s) {
			expanded++
		}
	}
	footer := fmt.Sprintf("%d %s · %d expanded", len(cat.Sections), plural(len(cat.Sections), "section"), expanded)
	if n := m.source.PendingDownloads(); n > 0 {
		footer += fmt.Sprintf(" · %d loading", n)
	}
	m.list.SetFooter(footer)
}

func (m *Model) report(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, expansion.ErrInvalidOperation) {
		m.log.Debug("operation rejected", zap.Error(err))
	}
	m.setError(err)
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(err error) {
	m.status, m.statusErr = err.Error(), true
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	r := m.theme.Renderer

	if m.confirm != nil {
		modal := r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(m.theme.Error).
			Padding(1, 2).
			Render(m.confirm.View())
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
	}
	if m.showHelp {
		ctx := ContextList
		if m.focused == focusDetail {
			ctx = ContextDetail
		}
		return RenderContextHelp(ctx, m.theme, m.width, m.height)
	}

	var body string
	switch {
	case m.showDetail && m.isSplitView:
		listStyle := r.NewStyle().Width(m.list.width)
		border := m.theme.Border
		if m.focused == focusDetail {
			border = m.theme.Primary
		}
		detailStyle := r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Width(m.viewport.Width).
			Height(m.viewport.Height)
		body = lipgloss.JoinHorizontal(lipgloss.Top, listStyle.Render(m.list.View()), " ", detailStyle.Render(m.viewport.View()))
	case m.showDetail:
		body = m.viewport.View()
	default:
		body = m.list.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatus())
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return m.help.View(m.keys)
	}
	style := m.theme.Renderer.NewStyle().Foreground(m.theme.Subtext)
	if m.statusErr {
		style = style.Foreground(m.theme.Error)
	}
	return style.Render(truncate(m.status, m.width))
}

func catalogTitle(cat *model.Catalog) string {
	if cat == nil || cat.Title == "" {
		return "sections"
	}
	return cat.Title
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
