package expansion

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyDataSourceCounts(t *testing.T) {
	f := newFixture(DefaultConfig(),
		fakeSection{rows: 2},
		fakeSection{expandable: true, rows: 3},
	)
	ds := f.c.DataSource()

	assert.Equal(t, 2, ds.NumberOfSections())
	assert.Equal(t, 2, ds.NumberOfRows(0))
	assert.Equal(t, 1, ds.NumberOfRows(1))

	require.NoError(t, f.c.Expand(1, false))
	assert.Equal(t, 4, ds.NumberOfRows(1))
	assert.True(t, ds.IsHeader(IndexPath{1, 0}))
	assert.False(t, ds.IsHeader(IndexPath{0, 0}))
}

func TestProxyDataSourceCellAt(t *testing.T) {
	f := newFixture(DefaultConfig(),
		fakeSection{rows: 2},
		fakeSection{expandable: true, needsDownload: true, rows: 3},
	)
	ds := f.c.DataSource()

	assert.Equal(t, "cell 0/1", ds.CellAt(IndexPath{0, 1}))

	header, ok := ds.CellAt(IndexPath{1, 0}).(*fakeHeader)
	require.True(t, ok)
	assert.False(t, header.Loading())
	assert.Equal(t, ExpansionStyleCollapsedRow, header.ExpansionStyle())

	require.NoError(t, f.c.Expand(1, true))
	header = ds.CellAt(IndexPath{1, 0}).(*fakeHeader)
	assert.True(t, header.Loading(), "downloading header shows the spinner")

	f.c.DownloadCompleted(1)
	header = ds.CellAt(IndexPath{1, 0}).(*fakeHeader)
	assert.False(t, header.Loading())
	assert.Equal(t, ExpansionStyleExpandedRow, header.ExpansionStyle())

	// Physical row 1 is the application's row 0.
	assert.Equal(t, "cell 1/0", ds.CellAt(IndexPath{1, 1}))
	assert.Equal(t, "cell 1/2", ds.CellAt(IndexPath{1, 3}))
}

func TestProxyDataSourceDoesNotRestyleUnchangedHeader(t *testing.T) {
	f := newFixture(DefaultConfig(), fakeSection{expandable: true, rows: 1})
	ds := f.c.DataSource()

	ds.CellAt(IndexPath{0, 0})
	ds.CellAt(IndexPath{0, 0})
	assert.Empty(t, f.provider.headers[0].styled)
}

func TestProxyDelegateWillDisplayCell(t *testing.T) {
	f := newFixture(DefaultConfig(),
		fakeSection{rows: 2},
		fakeSection{expandable: true, rows: 3},
	)
	d := f.c.Delegate(true)

	d.WillDisplayCell("x", IndexPath{0, 1})
	d.WillDisplayCell("h", IndexPath{1, 0})
	assert.Equal(t, []string{"willDisplayCell(0,1)"}, f.sink.events, "headers are not forwarded")

	f.host.deferred = true
	require.NoError(t, f.c.Expand(1, true))
	f.sink.reset()

	d.WillDisplayCell("x", IndexPath{1, 2})
	assert.Equal(t, []string{"willDisplayDuringAnimation(1,2)"}, f.sink.events,
		"animating sections report physical paths")

	f.host.finish()
	f.sink.reset()
	d.WillDisplayCell("x", IndexPath{1, 2})
	assert.Equal(t, []string{"willDisplayCell(1,1)"}, f.sink.events)
}

func TestProxyDelegateDidSelectRow(t *testing.T) {
	f := newFixture(DefaultConfig(),
		fakeSection{rows: 2},
		fakeSection{expandable: true, rows: 3},
		fakeSection{expandable: true, needsDownload: true, rows: 1},
	)
	d := f.c.Delegate(false)

	require.NoError(t, d.DidSelectRow(IndexPath{0, 1}))
	assert.Equal(t, []string{"didSelectRow(0,1)"}, f.sink.events)

	require.NoError(t, d.DidSelectRow(IndexPath{1, 0}))
	assert.Equal(t, StateExpanded, f.c.State(1))

	f.sink.reset()
	require.NoError(t, d.DidSelectRow(IndexPath{1, 3}))
	assert.Equal(t, []string{"didSelectRow(1,2)"}, f.sink.events)

	require.NoError(t, d.DidSelectRow(IndexPath{1, 0}))
	assert.Equal(t, StateCollapsed, f.c.State(1))

	require.NoError(t, d.DidSelectRow(IndexPath{2, 0}))
	assert.Equal(t, StateDownloading, f.c.State(2))
	require.NoError(t, d.DidSelectRow(IndexPath{2, 0}), "second tap cancels the download")
	assert.Equal(t, StateCollapsed, f.c.State(2))
	assert.Contains(t, f.sink.events, "downloadCancelled(2)")
}

func TestProxyDelegateHeaderOfUnexpandableSection(t *testing.T) {
	f := newFixture(DefaultConfig(), fakeSection{rows: 2})

	// Without a header, physical row 0 is plain application content.
	require.NoError(t, f.c.Delegate(true).DidSelectRow(IndexPath{0, 0}))
	assert.Equal(t, []string{"didSelectRow(0,0)"}, f.sink.events)

	err := f.c.Expand(0, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOperation))
}
