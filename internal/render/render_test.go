package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/Aman-CERP/indsearch/internal/catalog"
	inderrors "github.com/Aman-CERP/indsearch/internal/errors"
)

const scenarioCatalog = `{"TX_MAX": {"title": "Maximum Tx", "abstract": "desc", "vars": {"tas": "Temp"}, "realm": "atmos", "module": "temp", "name": "tx_max", "keywords": ["heat"]}}`

func scenario(t *testing.T) *catalog.Indicator {
	t.Helper()
	inds, err := catalog.Decode(strings.NewReader(scenarioCatalog))
	require.NoError(t, err)
	require.Len(t, inds, 1)
	return inds[0]
}

// parse returns the body children of markup.
func parse(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	v, _ := attr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func byClass(n *html.Node, class string) []*html.Node {
	return findAll(n, func(n *html.Node) bool { return hasClass(n, class) })
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func fragment(t *testing.T, r *Renderer, ind *catalog.Indicator) *html.Node {
	t.Helper()
	out, err := r.Fragment(ind)
	require.NoError(t, err)
	return parse(t, string(out))
}

func TestFragment_Scenario(t *testing.T) {
	// Given: the single-record catalog
	r := MustNew(Options{})
	ind := scenario(t)

	// When: rendering it
	doc := fragment(t, r, ind)

	// Then: one element with id tx_max
	elems := byClass(doc, "indElem")
	require.Len(t, elems, 1)
	id, _ := attr(elems[0], "id")
	assert.Equal(t, "tx_max", id)

	// And: the link points at the API anchor and shows module.name
	links := byClass(doc, "indName")
	require.Len(t, links, 1)
	href, _ := attr(links[0], "href")
	assert.Equal(t, "api.html#xclim.indicators.temp.tx_max", href)
	title, _ := attr(links[0], "title")
	assert.Equal(t, "temp.tx_max", title)
	assert.Equal(t, "temp.tx_max", strings.TrimSpace(text(links[0])))
	assert.True(t, hasClass(links[0], "reference_internal"))

	// And: one variable label "tas" with tooltip "Temp"
	vars := byClass(doc, "indVarname")
	require.Len(t, vars, 1)
	assert.Equal(t, "button", vars[0].Data)
	assert.Equal(t, "tas", text(vars[0]))
	tip, _ := attr(vars[0], "title")
	alt, _ := attr(vars[0], "alt")
	assert.Equal(t, "Temp", tip)
	assert.Equal(t, "Temp", alt)

	// And: one keyword label "heat"
	kws := byClass(doc, "keywordlabel")
	require.Len(t, kws, 1)
	assert.Equal(t, "heat", text(kws[0]))

	// And: the title, abstract and ID lines
	assert.Equal(t, "Maximum Tx", text(byClass(doc, "indTitle")[0]))
	assert.Equal(t, "desc", text(byClass(doc, "indDesc")[0]))
	assert.Equal(t, "Yaml ID: tx_max", text(byClass(doc, "indID")[0]))
	assert.Contains(t, text(byClass(doc, "indVars")[0]), "Uses: ")
}

func TestFragment_KeywordsLine(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		expect   []string
	}{
		{"single empty keyword omits line", []string{""}, nil},
		{"trailing empty keyword renders two labels", []string{"foo", ""}, []string{"foo", ""}},
		{"keywords are trimmed", []string{"  heat ", "wave"}, []string{"heat", "wave"}},
		{"whitespace first keyword still renders", []string{" "}, []string{""}},
		{"no keywords omits line", nil, nil},
	}

	r := MustNew(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := &catalog.Indicator{ID: "x", Module: "m", Name: "x", Keywords: tt.keywords}

			doc := fragment(t, r, ind)

			lines := byClass(doc, "keywords")
			labels := byClass(doc, "keywordlabel")
			if tt.expect == nil {
				assert.Empty(t, lines)
				assert.Empty(t, labels)
				return
			}
			require.Len(t, lines, 1)
			got := make([]string, len(labels))
			for i, l := range labels {
				got[i] = text(l)
			}
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestFragment_VariablesInMappingOrder(t *testing.T) {
	// Given: variables in non-alphabetical document order
	inds, err := catalog.Decode(strings.NewReader(`{"DRY": {"title": "Dry", "abstract": "a", "module": "m", "name": "dry",
		"keywords": ["k"], "vars": {"tasmin": "Minimum \"daily\" temperature", "pr": "Precipitation & snow", "tas": "Mean <temp>"}}}`))
	require.NoError(t, err)

	// When: rendering
	doc := fragment(t, MustNew(Options{}), inds[0])

	// Then: labels follow the mapping order and tooltips match exactly
	vars := byClass(doc, "indVarname")
	require.Len(t, vars, 3)
	expect := []struct{ name, desc string }{
		{"tasmin", `Minimum "daily" temperature`},
		{"pr", "Precipitation & snow"},
		{"tas", "Mean <temp>"},
	}
	for i, e := range expect {
		assert.Equal(t, e.name, text(vars[i]))
		tip, _ := attr(vars[i], "title")
		alt, _ := attr(vars[i], "alt")
		assert.Equal(t, e.desc, tip)
		assert.Equal(t, e.desc, alt)
	}
}

func TestFragment_RoundTrip(t *testing.T) {
	ind := &catalog.Indicator{
		ID:       "snd_max_doy",
		Title:    "Day of year of maximum snow depth <cm>",
		Abstract: "Day & month",
		Vars:     catalog.Variables{{Name: "snd", Description: "Snow depth"}},
		Realm:    "land",
		Module:   "land",
		Name:     "snd_max_doy",
		Keywords: []string{"snow", ""},
	}

	doc := fragment(t, MustNew(Options{}), ind)

	elem := byClass(doc, "indElem")[0]
	id, _ := attr(elem, "id")
	assert.Equal(t, ind.ID, id)
	assert.Equal(t, ind.Title, text(byClass(doc, "indTitle")[0]))

	ref := strings.TrimSpace(text(byClass(doc, "indName")[0]))
	module, name, ok := strings.Cut(ref, ".")
	require.True(t, ok)
	assert.Equal(t, ind.Module, module)
	assert.Equal(t, ind.Name, name)

	var keywords []string
	for _, l := range byClass(doc, "keywordlabel") {
		keywords = append(keywords, text(l))
	}
	assert.Equal(t, ind.Keywords, keywords)
	assert.Equal(t, "Yaml ID: "+ind.ID, text(byClass(doc, "indID")[0]))
}

func TestFragment_EscapesMarkup(t *testing.T) {
	ind := &catalog.Indicator{
		ID:       "x",
		Title:    `<script>alert(1)</script>`,
		Abstract: `<b>bold</b>`,
		Module:   "m",
		Name:     "x",
		Keywords: []string{"k"},
	}

	out, err := MustNew(Options{}).Fragment(ind)

	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script>")
	assert.Contains(t, string(out), "&lt;b&gt;bold&lt;/b&gt;")
}

func TestFragment_AllowMarkupSanitises(t *testing.T) {
	ind := &catalog.Indicator{
		ID:       "x",
		Abstract: `Uses <em>daily</em> data<script>alert(1)</script>`,
		Module:   "m",
		Name:     "x",
		Keywords: []string{"k"},
	}

	out, err := MustNew(Options{AllowMarkup: true}).Fragment(ind)

	require.NoError(t, err)
	assert.Contains(t, string(out), "<em>daily</em>")
	assert.NotContains(t, string(out), "<script>")
}

func TestFragment_CustomDocBase(t *testing.T) {
	r := MustNew(Options{DocBase: "https://docs.example.org/api.html#xclim.indicators."})

	doc := fragment(t, r, scenario(t))

	href, _ := attr(byClass(doc, "indName")[0], "href")
	assert.Equal(t, "https://docs.example.org/api.html#xclim.indicators.temp.tx_max", href)
	assert.Equal(t, "https://docs.example.org/api.html#xclim.indicators.", r.DocBase())
}

func TestFragment_Nil(t *testing.T) {
	_, err := MustNew(Options{}).Fragment(nil)
	assert.Equal(t, inderrors.ErrCodeRenderFailed, inderrors.GetCode(err))
}

func TestRender_ConcatenatesInOrder(t *testing.T) {
	r := MustNew(Options{})
	inds := []*catalog.Indicator{
		{ID: "b", Module: "m", Name: "b", Keywords: []string{""}},
		{ID: "a", Module: "m", Name: "a", Keywords: []string{""}},
		{ID: "c", Module: "m", Name: "c", Keywords: []string{""}},
	}

	out, err := r.Render(inds)
	require.NoError(t, err)

	var ids []string
	for _, e := range byClass(parse(t, string(out)), "indElem") {
		id, _ := attr(e, "id")
		ids = append(ids, id)
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
}

func TestRender_IsIdempotent(t *testing.T) {
	r := MustNew(Options{})
	inds := []*catalog.Indicator{scenario(t)}

	first, err := r.Render(inds)
	require.NoError(t, err)
	second, err := r.Render(inds)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRender_Empty(t *testing.T) {
	out, err := MustNew(Options{}).Render(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
