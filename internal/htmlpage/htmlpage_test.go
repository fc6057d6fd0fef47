package htmlpage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshot = `<!DOCTYPE html>
<html>
<head>
  <title>Weekly sync - Microsoft Stream</title>
  <link rel="canonical" href="https://contoso.sharepoint.com/sites/team/stream.aspx?id=42">
</head>
<body>
  <div class="subTitleBar-7">Grabado el 17 de octubre de 2026</div>
  <div data-is-scrollable="true">
    <div id="listItem-0">
      <div class="itemHeader-3"><span class="speakerName-1">Ana Gómez | Contoso</span><span class="timestamp-2">0:05</span></div>
      <div class="entryText-4">  Hola a todos  </div>
    </div>
    <div id="listItem-1">
      <div class="entryText_4">seguimos</div>
    </div>
    <div id="listItem-2">
      <div class="itemHeader_3"><span>Luis Pérez | Acme</span><span>1:10</span></div>
    </div>
    <div id="other-3"><div class="entryText-4">ignored</div></div>
  </div>
</body>
</html>`

func TestPageReadsSnapshot(t *testing.T) {
	ctx := context.Background()
	p, err := Parse(strings.NewReader(snapshot))
	require.NoError(t, err)

	info, err := p.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://contoso.sharepoint.com/sites/team/stream.aspx?id=42", info.URL)
	assert.Equal(t, "Weekly sync - Microsoft Stream", info.Title)
	assert.Equal(t, "Grabado el 17 de octubre de 2026", info.DateText)

	items, err := p.RenderedItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "listItem-0", items[0].ID)
	require.NotNil(t, items[0].Header)
	assert.Equal(t, "Ana Gómez | Contoso", items[0].Header.Name)
	assert.Equal(t, "0:05", items[0].Header.Time)
	assert.Equal(t, []string{"Ana Gómez | Contoso", "0:05"}, items[0].Header.Fragments)
	assert.Equal(t, "Ana Gómez | Contoso0:05", items[0].Header.Text)
	require.NotNil(t, items[0].Body)
	assert.Equal(t, "  Hola a todos  ", *items[0].Body)

	assert.Nil(t, items[1].Header)
	require.NotNil(t, items[1].Body)
	assert.Equal(t, "seguimos", *items[1].Body)

	require.NotNil(t, items[2].Header)
	assert.Empty(t, items[2].Header.Name)
	assert.Equal(t, []string{"Luis Pérez | Acme", "1:10"}, items[2].Header.Fragments)
	assert.Nil(t, items[2].Body)
}

func TestPageHasNoRegion(t *testing.T) {
	p, err := Parse(strings.NewReader(snapshot))
	require.NoError(t, err)

	region, err := p.LocateRegion(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, region)
}

func TestWithURLOverridesSnapshot(t *testing.T) {
	p, err := Parse(strings.NewReader(snapshot), WithURL("https://teams.microsoft.com/x"))
	require.NoError(t, err)

	info, err := p.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://teams.microsoft.com/x", info.URL)
}
