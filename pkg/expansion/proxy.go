package expansion

// ProxyDataSource answers host-surface queries on behalf of the application's
// DataProvider. All paths it receives are physical.
type ProxyDataSource struct {
	c *Controller
}

// DataSource returns the proxy the host should query for content.
func (c *Controller) DataSource() *ProxyDataSource {
	return &ProxyDataSource{c: c}
}

// NumberOfSections is the section count as of the last reload.
func (p *ProxyDataSource) NumberOfSections() int {
	return p.c.sections
}

// NumberOfRows is the physical row count, header included.
func (p *ProxyDataSource) NumberOfRows(section int) int {
	return p.c.trans.RowCount(section)
}

// CellAt returns the cell for a physical row. Header rows are served by the
// provider's HeaderCellFor, configured to match the section's state; other
// rows go to CellFor with the application's row index.
func (p *ProxyDataSource) CellAt(path IndexPath) Cell {
	conceptual, header := p.c.trans.ToConceptual(path)
	if !header {
		return p.c.provider.CellFor(conceptual)
	}

	hc := p.c.provider.HeaderCellFor(path.Section)
	if hc == nil {
		return nil
	}
	f := p.c.store.Get(path.Section)
	hc.SetLoading(f.Downloading)
	style := ExpansionStyleCollapsedRow
	if f.Expanded {
		style = ExpansionStyleExpandedRow
	}
	if hc.ExpansionStyle() != style {
		hc.SetExpansionStyle(style, false)
	}
	return hc
}

// TitleForSection passes through to the provider.
func (p *ProxyDataSource) TitleForSection(section int) string {
	return p.c.provider.TitleForSection(section)
}

// IsHeader reports whether a physical row is a synthetic section header.
func (p *ProxyDataSource) IsHeader(path IndexPath) bool {
	return p.c.trans.IsHeader(path)
}

// ProxyDelegate forwards host-surface interaction events to the EventSink.
type ProxyDelegate struct {
	c        *Controller
	animated bool
}

// Delegate returns the proxy the host should report interaction events to.
// animated is used for expand/collapse triggered by selecting a header.
func (c *Controller) Delegate(animated bool) *ProxyDelegate {
	return &ProxyDelegate{c: c, animated: animated}
}

// WillDisplayCell is called by the host right before a row is shown.
func (d *ProxyDelegate) WillDisplayCell(cell Cell, path IndexPath) {
	if d.c.store.Get(path.Section).Animating {
		d.c.sink.WillDisplayDuringAnimation(cell, path)
		return
	}
	conceptual, header := d.c.trans.ToConceptual(path)
	if header {
		return
	}
	d.c.sink.WillDisplayCell(cell, conceptual)
}

// DidSelectRow toggles the section when its header is selected and forwards
// every other selection with the application's row index.
func (d *ProxyDelegate) DidSelectRow(path IndexPath) error {
	conceptual, header := d.c.trans.ToConceptual(path)
	if !header {
		d.c.sink.DidSelectRow(conceptual)
		return nil
	}
	return d.c.Toggle(path.Section, d.animated)
}
