package expansion

// IndexTranslator converts between conceptual addressing (what the
// DataProvider sees) and physical addressing (what the host renders).
//
// An expandable section always renders a header at physical row 0, followed
// by the application's rows when it is expanded. Non-expandable sections are
// passed through unchanged. No other type reasons about the header shift.
type IndexTranslator struct {
	store     *SectionStateStore
	provider  DataProvider
	canExpand func(section int) bool
}

// NewIndexTranslator builds a translator. canExpand must return the cached
// expandability of a section; the translator never writes to the store.
func NewIndexTranslator(store *SectionStateStore, provider DataProvider, canExpand func(int) bool) *IndexTranslator {
	return &IndexTranslator{store: store, provider: provider, canExpand: canExpand}
}

// headerRows is the number of synthetic rows at the top of a section.
func (t *IndexTranslator) headerRows(section int) int {
	if t.canExpand(section) {
		return 1
	}
	return 0
}

// ToPhysical maps an application row to the row the host renders.
func (t *IndexTranslator) ToPhysical(path IndexPath) IndexPath {
	return IndexPath{Section: path.Section, Row: path.Row + t.headerRows(path.Section)}
}

// ToConceptual maps a host row back to an application row. isHeader is true
// for the synthetic header row, in which case the returned path is not an
// application row and must not be forwarded.
func (t *IndexTranslator) ToConceptual(path IndexPath) (conceptual IndexPath, isHeader bool) {
	offset := t.headerRows(path.Section)
	if offset == 1 && path.Row == 0 {
		return IndexPath{Section: path.Section, Row: -1}, true
	}
	return IndexPath{Section: path.Section, Row: path.Row - offset}, false
}

// IsHeader reports whether a physical path is a synthetic header row.
func (t *IndexTranslator) IsHeader(path IndexPath) bool {
	_, header := t.ToConceptual(path)
	return header
}

// RowCount is the number of physical rows the host should render.
func (t *IndexTranslator) RowCount(section int) int {
	if !t.canExpand(section) {
		return t.applicationRows(section)
	}
	if !t.store.Get(section).Expanded {
		return 1
	}
	return 1 + t.applicationRows(section)
}

// RevealedRows lists the physical rows shown only while the section is
// expanded, given the application's row count.
func (t *IndexTranslator) RevealedRows(section, count int) []int {
	rows := make([]int, count)
	for i := range rows {
		rows[i] = t.ToPhysical(IndexPath{Section: section, Row: i}).Row
	}
	return rows
}

func (t *IndexTranslator) applicationRows(section int) int {
	n := t.provider.RowCount(section)
	if n < 0 {
		panic(&ProviderContractError{Section: section, Detail: "negative row count"})
	}
	return n
}
