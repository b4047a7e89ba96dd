package tui

import (
	"fmt"
	"strings"
	"time"

	"aurum-life/internal/model"
	"aurum-life/internal/mutate"
	"aurum-life/internal/nav"
	"aurum-life/internal/score"
	"aurum-life/internal/store"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// snapshotChangedMsg arrives when another process (or a CLI command in a
// second terminal) rewrites the on-disk state.
type snapshotChangedMsg struct{}

type appModel struct {
	s      store.Store
	db     *store.DB
	userID string

	// ctx is the drill-down position; the level decides which list is active.
	ctx nav.Context

	width  int
	height int

	pillars  list.Model
	areas    list.Model
	projects list.Model
	tasks    list.Model

	changes <-chan store.Change

	// status is a transient footer notice (errors, completion feedback).
	status string
}

func newAppModel(s store.Store, db *store.DB, userID string, changes <-chan store.Change) appModel {
	m := appModel{
		s:       s,
		db:      db,
		userID:  userID,
		ctx:     nav.Dashboard(),
		changes: changes,
	}

	m.pillars = newList(list.NewDefaultDelegate())
	m.areas = newList(list.NewDefaultDelegate())
	m.projects = newList(list.NewDefaultDelegate())
	m.tasks = newList(newRowDelegate())

	// Resume where the user left off, if that position still exists.
	if st, err := s.LoadSettings(userID); err == nil && st != nil {
		c, _ := nav.Normalize(db, userID, nav.FromUIState(st.UIState))
		m.ctx = c
	}
	m.refreshAll()
	return m
}

func newList(delegate list.ItemDelegate) list.Model {
	l := list.New(nil, delegate, 0, 0)
	// The appModel renders its own breadcrumb header and footer.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	// The list quits on ESC by default; here ESC means "up one level".
	l.KeyMap.Quit.SetKeys("q")
	cursorUp := append(l.KeyMap.CursorUp.Keys(), "ctrl+p")
	l.KeyMap.CursorUp.SetKeys(cursorUp...)
	cursorDown := append(l.KeyMap.CursorDown.Keys(), "ctrl+n")
	l.KeyMap.CursorDown.SetKeys(cursorDown...)
	return l
}

func (m appModel) Init() tea.Cmd { return waitForChange(m.changes) }

func waitForChange(ch <-chan store.Change) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return snapshotChangedMsg{}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case snapshotChangedMsg:
		m.reloadFromDisk()
		return m, waitForChange(m.changes)

	case tea.KeyMsg:
		// While the user is typing a filter, every key belongs to the list.
		if m.activeList().FilterState() == list.Filtering {
			return m.updateActiveList(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			// Manual reload, for dirs where the change watcher is unavailable.
			m.reloadFromDisk()
			return m, nil
		case "esc", "backspace":
			if !m.ctx.IsDashboard() {
				m.ctx = nav.Up(m.db, m.ctx)
				m.refreshAll()
			}
			return m, nil
		case "enter":
			return m.drillDown()
		case "c":
			if m.ctx.Level == nav.LevelProject {
				m.toggleComplete()
				return m, nil
			}
		}
	}

	return m.updateActiveList(msg)
}

func (m appModel) updateActiveList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.ctx.Level {
	case nav.LevelPillar:
		m.areas, cmd = m.areas.Update(msg)
	case nav.LevelArea:
		m.projects, cmd = m.projects.Update(msg)
	case nav.LevelProject:
		m.tasks, cmd = m.tasks.Update(msg)
	default:
		m.pillars, cmd = m.pillars.Update(msg)
	}
	return m, cmd
}

func (m *appModel) activeList() *list.Model {
	switch m.ctx.Level {
	case nav.LevelPillar:
		return &m.areas
	case nav.LevelArea:
		return &m.projects
	case nav.LevelProject:
		return &m.tasks
	default:
		return &m.pillars
	}
}

func (m appModel) drillDown() (tea.Model, tea.Cmd) {
	var (
		next nav.Context
		err  error
	)
	switch m.ctx.Level {
	case nav.LevelPillar:
		it, ok := m.areas.SelectedItem().(areaItem)
		if !ok {
			return m, nil
		}
		next, err = nav.ToArea(m.db, m.userID, it.area.ID)
	case nav.LevelArea:
		it, ok := m.projects.SelectedItem().(projectItem)
		if !ok {
			return m, nil
		}
		next, err = nav.ToProject(m.db, m.userID, it.project.ID)
	case nav.LevelProject:
		// Deepest level; the detail pane already shows the selection.
		return m, nil
	default:
		it, ok := m.pillars.SelectedItem().(pillarItem)
		if !ok {
			return m, nil
		}
		next, err = nav.ToPillar(m.db, m.userID, it.pillar.ID)
	}
	if err != nil {
		// The target vanished under us; redraw the current level.
		m.status = err.Error()
		m.refreshAll()
		return m, nil
	}
	m.ctx = next
	m.status = ""
	m.refreshAll()
	return m, nil
}

func (m *appModel) toggleComplete() {
	it, ok := m.tasks.SelectedItem().(taskItem)
	if !ok {
		return
	}

	var (
		res mutate.TaskResult
		err error
		typ string
	)
	if it.task.Status == model.TaskStatusDone {
		res, err = mutate.UncompleteTask(m.db, m.userID, it.task.ID)
		typ = "task.uncompleted"
	} else {
		res, err = mutate.CompleteTask(m.db, m.userID, it.task.ID)
		typ = "task.completed"
	}
	if err != nil {
		m.status = err.Error()
		return
	}
	if res.Changed {
		if err := m.s.Save(m.db); err != nil {
			m.status = err.Error()
			return
		}
		_ = m.s.AppendEvent(m.userID, typ, it.task.ID, res.EventPayload)
		if typ == "task.completed" {
			if u, ok := m.db.FindUser(m.userID); ok {
				m.status = fmt.Sprintf("✓ %s  ·  level %d, %d points, streak %d",
					res.Task.Name, u.Level, u.TotalPoints, u.CurrentStreak)
			}
		} else {
			m.status = "reopened " + res.Task.Name
		}
	}
	m.refreshTasks()
}

func (m appModel) View() string {
	header := m.viewHeader()

	var body string
	switch m.ctx.Level {
	case nav.LevelPillar:
		body = m.areas.View()
	case nav.LevelArea:
		body = m.projects.View()
	case nav.LevelProject:
		body = m.viewProject()
	default:
		body = m.pillars.View()
	}

	return strings.Join([]string{header, body, m.viewFooter()}, "\n\n")
}

func (m appModel) viewHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorGold).Render("Aurum")

	crumbs := []string{"dashboard"}
	for _, c := range nav.Breadcrumbs(m.db, m.ctx) {
		crumbs = append(crumbs, c.Name)
	}
	trail := styleCrumb().Render(strings.Join(crumbs, " › "))

	head := title + "  " + trail
	if m.ctx.IsDashboard() {
		st := score.Dashboard(m.db, m.userID, time.Now())
		stats := styleMuted().Render(fmt.Sprintf(
			"level %d  ·  %d points  ·  streak %d  ·  %d due today, %d overdue",
			st.Level, st.TotalPoints, st.CurrentStreak, st.DueToday, st.Overdue))
		head += "\n" + stats
	}
	return head
}

func (m appModel) viewFooter() string {
	help := "enter: open  esc: back  c: toggle done  /: filter  r: reload  q: quit"
	if m.ctx.IsDashboard() {
		help = "enter: open  /: filter  r: reload  q: quit"
	}
	f := styleMuted().Render(help)
	if m.status != "" {
		f = m.status + "\n" + f
	}
	return f
}

// viewProject splits the body: task list left, selected-task detail right.
func (m appModel) viewProject() string {
	bodyHeight := m.height - 6
	if bodyHeight < 8 {
		bodyHeight = 8
	}
	leftWidth := m.width / 2
	if leftWidth < 40 {
		leftWidth = 40
	}
	rightWidth := m.width - leftWidth - 2
	if rightWidth < 30 {
		rightWidth = 30
	}

	m.tasks.SetSize(leftWidth, bodyHeight)
	left := m.tasks.View()

	var right string
	if it, ok := m.tasks.SelectedItem().(taskItem); ok {
		right = renderTaskDetail(m.db, it.task, rightWidth, bodyHeight)
	} else {
		right = lipgloss.NewStyle().Width(rightWidth).Height(bodyHeight).Render("No task selected.")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m *appModel) resizeLists() {
	h := m.height - 6
	if h < 8 {
		h = 8
	}
	w := m.width
	if w < 40 {
		w = 40
	}
	m.pillars.SetSize(w, h)
	m.areas.SetSize(w, h)
	m.projects.SetSize(w, h)
	m.tasks.SetSize(w/2, h)
}

func (m *appModel) reloadFromDisk() {
	db, err := m.s.Load()
	if err != nil {
		m.status = err.Error()
		return
	}
	m.db = db
	// The position may have been deleted out from under us.
	if c, moved := nav.Normalize(m.db, m.userID, m.ctx); moved {
		m.ctx = c
	}
	m.refreshAll()
}

func (m *appModel) refreshAll() {
	switch m.ctx.Level {
	case nav.LevelPillar:
		m.refreshAreas()
	case nav.LevelArea:
		m.refreshProjects()
	case nav.LevelProject:
		m.refreshTasks()
	default:
		m.refreshPillars()
	}
}

func (m *appModel) refreshPillars() {
	cur := selectedID(&m.pillars)
	items := make([]list.Item, 0, len(m.db.Pillars))
	for _, ref := range m.db.RankedSiblings(m.db.PillarsForUser(m.userID)) {
		p, ok := m.db.FindPillar(ref.ID)
		if !ok || p.Archived {
			continue
		}
		items = append(items, pillarItem{pillar: *p, areas: len(activeAreas(m.db, p.ID))})
	}
	m.pillars.SetItems(items)
	selectByID(&m.pillars, cur)
}

func (m *appModel) refreshAreas() {
	cur := selectedID(&m.areas)
	var items []list.Item
	for _, a := range activeAreas(m.db, m.ctx.PillarID) {
		items = append(items, areaItem{area: a, projects: len(activeProjects(m.db, a.ID))})
	}
	m.areas.SetItems(items)
	selectByID(&m.areas, cur)
}

func (m *appModel) refreshProjects() {
	cur := selectedID(&m.projects)
	var items []list.Item
	for _, p := range activeProjects(m.db, m.ctx.AreaID) {
		tasks := activeTasks(m.db, p.ID)
		done := 0
		for _, t := range tasks {
			if t.Status == model.TaskStatusDone {
				done++
			}
		}
		items = append(items, projectItem{project: p, done: done, total: len(tasks)})
	}
	m.projects.SetItems(items)
	selectByID(&m.projects, cur)
}

func (m *appModel) refreshTasks() {
	cur := selectedID(&m.tasks)
	now := time.Now()
	var items []list.Item
	for _, t := range activeTasks(m.db, m.ctx.ProjectID) {
		items = append(items, taskItem{task: t, score: score.TaskScore(t, now)})
	}
	m.tasks.SetItems(items)
	selectByID(&m.tasks, cur)
}

// Rank-ordered, unarchived child listings; the same ordering the CLI and the
// web API serve.

func activeAreas(db *store.DB, pillarID string) []model.Area {
	refs := db.RankedSiblings(db.AreasOf(pillarID))
	out := make([]model.Area, 0, len(refs))
	for _, ref := range refs {
		if a, ok := db.FindArea(ref.ID); ok && !a.Archived {
			out = append(out, *a)
		}
	}
	return out
}

func activeProjects(db *store.DB, areaID string) []model.Project {
	refs := db.RankedSiblings(db.ProjectsOf(areaID))
	out := make([]model.Project, 0, len(refs))
	for _, ref := range refs {
		if p, ok := db.FindProject(ref.ID); ok && !p.Archived {
			out = append(out, *p)
		}
	}
	return out
}

func activeTasks(db *store.DB, projectID string) []model.Task {
	refs := db.RankedSiblings(db.TasksOf(projectID))
	out := make([]model.Task, 0, len(refs))
	for _, ref := range refs {
		if t, ok := db.FindTask(ref.ID); ok && !t.Archived {
			out = append(out, *t)
		}
	}
	return out
}

func selectedID(l *list.Model) string {
	switch it := l.SelectedItem().(type) {
	case pillarItem:
		return it.pillar.ID
	case areaItem:
		return it.area.ID
	case projectItem:
		return it.project.ID
	case taskItem:
		return it.task.ID
	default:
		return ""
	}
}

func selectByID(l *list.Model, id string) {
	if id == "" {
		return
	}
	for i, item := range l.Items() {
		var itemID string
		switch it := item.(type) {
		case pillarItem:
			itemID = it.pillar.ID
		case areaItem:
			itemID = it.area.ID
		case projectItem:
			itemID = it.project.ID
		case taskItem:
			itemID = it.task.ID
		}
		if itemID == id {
			l.Select(i)
			return
		}
	}
}
