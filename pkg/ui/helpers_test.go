package ui

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/sectionview/pkg/expansion"
	"github.com/vanderheijden86/sectionview/pkg/model"
)

func testTheme() Theme {
	return DefaultTheme(lipgloss.DefaultRenderer())
}

func testRows(prefix string, n int) []model.Row {
	rows := make([]model.Row, n)
	for i := range rows {
		rows[i] = model.Row{
			ID:    fmt.Sprintf("%s-%d", prefix, i+1),
			Title: fmt.Sprintf("%s row %d", prefix, i+1),
			Body:  "Some *markdown*.",
		}
	}
	return rows
}

// testCatalog returns a static section (0), an expandable section with three
// inline rows (1) and a remote section (2).
func testCatalog() *model.Catalog {
	return &model.Catalog{
		Title: "Test",
		Sections: []model.Section{
			{ID: "pinned", Title: "Pinned", Kind: model.KindStatic, Rows: testRows("p", 2)},
			{ID: "inbox", Title: "Inbox", Kind: model.KindExpandable, Rows: testRows("i", 3)},
			{ID: "archive", Title: "Archive", Kind: model.KindRemote},
		},
	}
}

// fakeDownloader records calls and hands out predictable tickets.
type fakeDownloader struct {
	started   []string
	cancelled []string
	cancelAll int
}

func (d *fakeDownloader) Start(_ int, sectionID string) string {
	d.started = append(d.started, sectionID)
	return fmt.Sprintf("t%d", len(d.started))
}

func (d *fakeDownloader) Cancel(sectionID string) bool {
	d.cancelled = append(d.cancelled, sectionID)
	return true
}

func (d *fakeDownloader) CancelAll() { d.cancelAll++ }

// chanSender collects messages sent by background goroutines.
type chanSender chan tea.Msg

func (c chanSender) Send(msg tea.Msg) { c <- msg }

func (c chanSender) wait(t *testing.T) tea.Msg {
	t.Helper()
	select {
	case msg := <-c:
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func (c chanSender) none(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case msg := <-c:
		t.Fatalf("unexpected message %#v", msg)
	case <-time.After(d):
	}
}

// listHarness wires a CatalogSource, SectionList and Controller together the
// way Model does.
type listHarness struct {
	src  *CatalogSource
	list *SectionList
	ctrl *expansion.Controller
	dl   *fakeDownloader
}

func newListHarness(t *testing.T, cat *model.Catalog, cfg expansion.Config) *listHarness {
	t.Helper()
	dl := &fakeDownloader{}
	src := NewCatalogSource(cat, dl, nil, "", nil)
	list := NewSectionList(testTheme(), time.Millisecond)
	ctrl := expansion.NewController(src, src, list, expansion.WithConfig(cfg))
	list.Attach(ctrl.DataSource(), ctrl.Delegate(true))
	ctrl.Reload(false)
	return &listHarness{src: src, list: list, ctrl: ctrl, dl: dl}
}

// settle ticks until every animation has finished.
func (h *listHarness) settle(t *testing.T) {
	t.Helper()
	for i := 0; i < 100 && h.list.Animating(); i++ {
		h.list.Tick()
	}
	if h.list.Animating() {
		t.Fatal("animations did not finish")
	}
}

// lines describes the laid out lines, e.g. "title:Pinned", "header:inbox",
// "row:i-1", "ghost:i-2".
func (h *listHarness) lines() []string {
	out := make([]string, 0, len(h.list.lines))
	for _, line := range h.list.lines {
		switch line.kind {
		case lineTitle:
			out = append(out, "title:"+line.title)
		case lineGhost:
			if rc, ok := line.cell.(*RowCell); ok {
				out = append(out, "ghost:"+rc.Row.ID)
			} else {
				out = append(out, "ghost")
			}
		default:
			switch c := line.cell.(type) {
			case *HeaderCell:
				out = append(out, "header:"+c.SectionID)
			case *RowCell:
				out = append(out, "row:"+c.Row.ID)
			default:
				out = append(out, fmt.Sprint(c))
			}
		}
	}
	return out
}

func (h *listHarness) rowCell(t *testing.T, id string) *RowCell {
	t.Helper()
	for _, line := range h.list.lines {
		if rc, ok := line.cell.(*RowCell); ok && line.kind == lineCell && rc.Row.ID == id {
			return rc
		}
	}
	t.Fatalf("row %s not laid out", id)
	return nil
}

func (h *listHarness) header(t *testing.T, id string) *HeaderCell {
	t.Helper()
	for _, line := range h.list.lines {
		if hc, ok := line.cell.(*HeaderCell); ok && hc.SectionID == id {
			return hc
		}
	}
	t.Fatalf("header %s not laid out", id)
	return nil
}
