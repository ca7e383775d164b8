package expansion

import (
	"fmt"

	"go.uber.org/zap"
)

// Controller is the expansion state machine for one list.
//
// Per section the states are Collapsed, Downloading, Expanding, Expanded and
// Collapsing. Only Collapsed and Expanded accept new requests; everything
// else rejects them with *InvalidOperationError until the matching Did*
// callback (or download signal) arrives. Nothing is queued.
type Controller struct {
	provider DataProvider
	sink     EventSink
	host     HostSurface

	store *SectionStateStore
	trans *IndexTranslator
	anim  *AnimationOrchestrator

	cfg     Config
	log     *zap.Logger
	metrics *Metrics

	sections   int          // Section count as of the last reload
	generation int          // Bumped by every reload; stale completions are dropped
	pending    map[int]bool // Requested animation of expands waiting on a download
	revealed   map[int]int  // Application rows currently inserted per expanded section
}

// NewController wires a controller to its collaborators. The controller does
// not own provider, sink or host. Call Reload once the host is ready to
// populate it.
func NewController(provider DataProvider, sink EventSink, host HostSurface, opts ...Option) *Controller {
	c := &Controller{
		provider: provider,
		sink:     sink,
		host:     host,
		store:    NewSectionStateStore(),
		cfg:      DefaultConfig(),
		log:      zap.NewNop(),
		pending:  make(map[int]bool),
		revealed: make(map[int]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.trans = NewIndexTranslator(c.store, provider, c.CanExpand)
	c.anim = NewAnimationOrchestrator(host, c.cfg.AnimationRowThreshold, c.cfg.RowAnimation)
	c.sections = c.sectionCount()
	return c
}

// Config returns the active configuration.
func (c *Controller) Config() Config { return c.cfg }

// Translator exposes the index translator used by the proxies.
func (c *Controller) Translator() *IndexTranslator { return c.trans }

// SectionCount is the number of sections as of the last reload.
func (c *Controller) SectionCount() int { return c.sections }

// Facts returns a copy of the stored facts for a section.
func (c *Controller) Facts(section int) SectionFacts { return c.store.Get(section) }

// State returns the current state of a section.
func (c *Controller) State(section int) SectionState { return c.store.Get(section).State() }

// CanExpand reports whether a section is expandable. The provider is asked
// the first time; the answer is cached until the next reload.
func (c *Controller) CanExpand(section int) bool {
	if section < 0 || section >= c.sections {
		return false
	}
	f := c.store.Get(section)
	if f.Expandable == Unknown {
		f = c.store.Update(section, func(f *SectionFacts) {
			f.Expandable = TriOf(c.provider.CanExpand(section))
		})
	}
	return f.Expandable == Yes
}

// IsExpanded reports whether a section is expanded or expanding.
func (c *Controller) IsExpanded(section int) bool {
	return c.store.Get(section).Expanded
}

// IsDownloading reports whether a section waits on its download.
func (c *Controller) IsDownloading(section int) bool {
	return c.store.Get(section).Downloading
}

// IsAnimating reports whether a row mutation for the section is in flight.
func (c *Controller) IsAnimating(section int) bool {
	return c.store.Get(section).Animating
}

// Expand opens a section. If the provider needs to download the section's
// content first, the section moves to Downloading, the sink is asked to
// fetch, and the call returns; the expansion resumes on DownloadCompleted.
func (c *Controller) Expand(section int, animated bool) (err error) {
	defer func() { c.metrics.operation("expand", err) }()

	if err := c.checkRange("expand", section); err != nil {
		return err
	}
	if !c.CanExpand(section) {
		return c.reject("expand", section, "section is not expandable")
	}
	if st := c.State(section); st != StateCollapsed {
		return c.reject("expand", section, "section is already "+st.String())
	}

	if c.provider.NeedsDownload(section) {
		c.store.Update(section, func(f *SectionFacts) { f.Downloading = true })
		c.pending[section] = animated
		c.setHeaderLoading(section, true)
		c.log.Debug("section download requested", zap.Int("section", section))
		c.sink.DownloadRequested(section)
		return nil
	}

	c.beginExpand(section, animated)
	return nil
}

// Collapse closes an expanded section.
func (c *Controller) Collapse(section int, animated bool) (err error) {
	defer func() { c.metrics.operation("collapse", err) }()

	if err := c.checkRange("collapse", section); err != nil {
		return err
	}
	if st := c.State(section); st != StateExpanded {
		return c.reject("collapse", section, "section is not expanded")
	}

	gen := c.generation
	b := c.anim.Run(Mutation{Section: section, Kind: MutationDelete, Requested: animated},
		func() []int {
			c.sink.WillCollapse(section, animated)
			count := c.trans.applicationRows(section)
			if prev, ok := c.revealed[section]; ok && prev != count {
				panic(&ProviderContractError{
					Section: section,
					Detail:  fmt.Sprintf("row count changed from %d to %d without a reload", prev, count),
				})
			}
			c.store.Update(section, func(f *SectionFacts) {
				f.Expanded = false
				f.Animating = true
			})
			delete(c.revealed, section)
			c.setHeaderStyle(section, ExpansionStyleCollapsedRow, animated)
			return c.trans.RevealedRows(section, count)
		},
		func(b Batch) {
			if gen != c.generation {
				c.log.Debug("collapse abandoned by reload", zap.Int("section", section))
				return
			}
			c.store.Update(section, func(f *SectionFacts) { f.Animating = false })
			c.updateChrome()
			c.log.Debug("section collapsed", zap.Int("section", section), zap.Int("rows", len(b.Rows)))
			c.sink.DidCollapse(section, animated)
		})
	c.metrics.mutation(b)
	return nil
}

// CancelDownload abandons a pending download. The sink is told to stop, but
// the controller does not wait for it; a late completion is ignored.
func (c *Controller) CancelDownload(section int) (err error) {
	defer func() { c.metrics.operation("cancel_download", err) }()

	if err := c.checkRange("cancel_download", section); err != nil {
		return err
	}
	if !c.store.Get(section).Downloading {
		return c.reject("cancel_download", section, "section is not downloading")
	}

	c.store.Update(section, func(f *SectionFacts) { f.Downloading = false })
	delete(c.pending, section)
	c.setHeaderLoading(section, false)
	c.metrics.download("cancelled")
	c.log.Debug("section download cancelled", zap.Int("section", section))
	c.sink.DownloadCancelled(section)
	return nil
}

// DownloadCompleted resumes the expansion suspended by a download.
func (c *Controller) DownloadCompleted(section int) {
	if !c.store.Get(section).Downloading {
		c.log.Debug("ignoring download completion", zap.Int("section", section),
			zap.Stringer("state", c.State(section)))
		return
	}
	animated := c.pending[section]
	delete(c.pending, section)
	c.store.Update(section, func(f *SectionFacts) { f.Downloading = false })
	c.setHeaderLoading(section, false)
	c.metrics.download("completed")
	c.beginExpand(section, animated)
}

// DownloadFailed reverts a downloading section to Collapsed. No error is
// raised; the section can be expanded again.
func (c *Controller) DownloadFailed(section int) {
	if !c.store.Get(section).Downloading {
		c.log.Debug("ignoring download failure", zap.Int("section", section),
			zap.Stringer("state", c.State(section)))
		return
	}
	delete(c.pending, section)
	c.store.Update(section, func(f *SectionFacts) { f.Downloading = false })
	c.setHeaderLoading(section, false)
	c.metrics.download("failed")
	c.log.Debug("section download failed", zap.Int("section", section))
}

// Reload re-reads section and row counts and reloads the host. With
// resetExpansionStates every section starts over as unknown and collapsed;
// otherwise expanded sections stay expanded with fresh row counts. Animations
// in flight are abandoned either way: their Did* callbacks never fire.
func (c *Controller) Reload(resetExpansionStates bool) {
	c.generation++
	c.sections = c.sectionCount()

	if resetExpansionStates {
		c.store.ClearAll()
		clear(c.pending)
		clear(c.revealed)
	} else {
		c.store.Prune(c.sections)
		for section := range c.pending {
			if section >= c.sections {
				delete(c.pending, section)
			}
		}
		clear(c.revealed)
		for _, section := range c.store.Sections() {
			f := c.store.Get(section)
			f.Animating = false
			switch {
			case f.Expanded:
				if !c.provider.CanExpand(section) {
					panic(&ProviderContractError{Section: section, Detail: "expanded section is no longer expandable"})
				}
				f.Expandable = Yes
			case !f.Downloading:
				f.Expandable = Unknown
			}
			c.store.Set(section, f)
			if f.Expanded {
				c.revealed[section] = c.trans.applicationRows(section)
			}
		}
	}

	c.log.Debug("reloaded", zap.Int("sections", c.sections), zap.Bool("reset", resetExpansionStates))
	c.host.ReloadData()
	c.updateChrome()
}

// ExpandAll starts expanding every collapsed, expandable section and returns
// how many expansions (or downloads) were started.
func (c *Controller) ExpandAll(animated bool) int {
	started := 0
	for section := 0; section < c.sections; section++ {
		state := c.State(section)
		if !state.Steady() || state == StateExpanded || !c.CanExpand(section) {
			continue
		}
		if err := c.Expand(section, animated); err == nil {
			started++
		}
	}
	return started
}

// CollapseAll collapses every expanded section and returns how many
// collapses were started.
func (c *Controller) CollapseAll(animated bool) int {
	started := 0
	for section := 0; section < c.sections; section++ {
		if state := c.State(section); !state.Steady() || state == StateCollapsed {
			continue
		}
		if err := c.Collapse(section, animated); err == nil {
			started++
		}
	}
	return started
}

// Toggle performs the header-row action for a section: collapse when
// expanded, cancel when downloading, expand when collapsed. Sections in the
// middle of an animation are left alone.
func (c *Controller) Toggle(section int, animated bool) error {
	switch c.State(section) {
	case StateExpanded:
		return c.Collapse(section, animated)
	case StateDownloading:
		return c.CancelDownload(section)
	case StateCollapsed:
		return c.Expand(section, animated)
	default:
		return nil
	}
}

func (c *Controller) beginExpand(section int, animated bool) {
	gen := c.generation
	b := c.anim.Run(Mutation{Section: section, Kind: MutationInsert, Requested: animated},
		func() []int {
			c.sink.WillExpand(section, animated)
			count := c.trans.applicationRows(section)
			c.store.Update(section, func(f *SectionFacts) {
				f.Expanded = true
				f.Animating = true
			})
			c.revealed[section] = count
			c.setHeaderStyle(section, ExpansionStyleExpandedRow, animated)
			return c.trans.RevealedRows(section, count)
		},
		func(b Batch) {
			if gen != c.generation {
				c.log.Debug("expand abandoned by reload", zap.Int("section", section))
				return
			}
			c.store.Update(section, func(f *SectionFacts) { f.Animating = false })
			c.updateChrome()
			c.log.Debug("section expanded", zap.Int("section", section),
				zap.Int("rows", len(b.Rows)), zap.Stringer("animation", b.Animation))
			c.sink.DidExpand(section, animated)
		})
	c.metrics.mutation(b)
}

func (c *Controller) sectionCount() int {
	n := c.provider.SectionCount()
	if n < 0 {
		panic(&ProviderContractError{Section: -1, Detail: "negative section count"})
	}
	return n
}

func (c *Controller) checkRange(op string, section int) error {
	if section < 0 || section >= c.sections {
		return &InvalidOperationError{
			Op:      op,
			Section: section,
			State:   StateCollapsed,
			Reason:  fmt.Sprintf("section out of range [0,%d)", c.sections),
		}
	}
	return nil
}

func (c *Controller) reject(op string, section int, reason string) error {
	err := &InvalidOperationError{Op: op, Section: section, State: c.State(section), Reason: reason}
	c.log.Debug("rejected", zap.Error(err))
	return err
}

func (c *Controller) headerCell(section int) (HeaderCell, bool) {
	cell, ok := c.host.VisibleCell(IndexPath{Section: section, Row: 0})
	if !ok {
		return nil, false
	}
	hc, ok := cell.(HeaderCell)
	return hc, ok
}

func (c *Controller) setHeaderLoading(section int, loading bool) {
	if hc, ok := c.headerCell(section); ok {
		hc.SetLoading(loading)
	}
}

func (c *Controller) setHeaderStyle(section int, style ExpansionStyle, animated bool) {
	if hc, ok := c.headerCell(section); ok {
		hc.SetExpansionStyle(style, animated)
	}
}

// updateChrome hides the host's header and footer while there is nothing to
// show, when configured to.
func (c *Controller) updateChrome() {
	if !c.cfg.SuppressHeaderFooterWhenEmpty {
		return
	}
	empty := true
	for section := 0; section < c.sections; section++ {
		if c.trans.RowCount(section) > 0 {
			empty = false
			break
		}
	}
	c.host.SetChromeVisible(!empty)
}
