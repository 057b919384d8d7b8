package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/Aman-CERP/indsearch/internal/catalog"
)

func byID(n *html.Node, id string) *html.Node {
	found := findAll(n, func(n *html.Node) bool {
		v, ok := attr(n, "id")
		return ok && v == id
	})
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

func TestPage_ContainsInputAndResults(t *testing.T) {
	// Given: rendered results
	r := MustNew(Options{})
	results, err := r.Render([]*catalog.Indicator{scenario(t)})
	require.NoError(t, err)

	// When: rendering the live page
	out, err := r.Page(PageData{Query: "max", Results: results, Count: 1, Live: true})
	require.NoError(t, err)
	doc := parse(t, string(out))

	// Then: the query input carries the query and the container holds the results
	input := byID(doc, QueryInputID)
	require.NotNil(t, input)
	value, _ := attr(input, "value")
	assert.Equal(t, "max", value)

	table := byID(doc, TableID)
	require.NotNil(t, table)
	assert.Len(t, byClass(table, "indElem"), 1)

	// And: the script talks to the websocket
	scripts := findAll(doc, func(n *html.Node) bool { return n.Data == "script" })
	require.Len(t, scripts, 1)
	assert.Contains(t, text(scripts[0]), "/ws")
	assert.Contains(t, text(scripts[0]), "search?q=")
}

func TestPage_StaticHasNoScript(t *testing.T) {
	out, err := MustNew(Options{}).Page(PageData{})
	require.NoError(t, err)
	doc := parse(t, string(out))

	assert.Empty(t, findAll(doc, func(n *html.Node) bool { return n.Data == "script" }))
	assert.Equal(t, "Climate indicators", text(findAll(doc, func(n *html.Node) bool { return n.Data == "title" })[0]))
}

func TestPage_Unavailable(t *testing.T) {
	out, err := MustNew(Options{}).Page(PageData{Unavailable: true, Reason: "catalog not found", Live: true})
	require.NoError(t, err)
	doc := parse(t, string(out))

	banners := byClass(doc, "unavailable")
	require.Len(t, banners, 1)
	assert.Equal(t, "Search unavailable: catalog not found", text(banners[0]))

	_, disabled := attr(byID(doc, QueryInputID), "disabled")
	assert.True(t, disabled)
	assert.Empty(t, findAll(doc, func(n *html.Node) bool { return n.Data == "script" }))
}
