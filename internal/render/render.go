// Package render turns indicator records into the HTML shown by the search
// page. Rendering is a pure function of the records; writing the markup into
// a page or a socket is left to the caller.
package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Aman-CERP/indsearch/internal/catalog"
	inderrors "github.com/Aman-CERP/indsearch/internal/errors"
)

// DefaultDocBase is prepended to "<module>.<name>" to link API documentation.
const DefaultDocBase = "api.html#xclim.indicators."

// Options configures a Renderer.
type Options struct {
	// DocBase is the link prefix. Empty means DefaultDocBase.
	DocBase string

	// AllowMarkup emits abstracts as sanitised HTML instead of escaped text.
	AllowMarkup bool
}

// Renderer renders indicators to HTML. It is safe for concurrent use.
type Renderer struct {
	docBase  string
	policy   *bluemonday.Policy
	fragment *template.Template
	page     *template.Template
}

// New creates a Renderer.
func New(opts Options) (*Renderer, error) {
	r := &Renderer{docBase: opts.DocBase}
	if r.docBase == "" {
		r.docBase = DefaultDocBase
	}
	if opts.AllowMarkup {
		r.policy = bluemonday.UGCPolicy()
	}

	var err error
	r.fragment, err = template.New("fragment").Parse(fragmentTemplate)
	if err != nil {
		return nil, inderrors.New(inderrors.ErrCodeRenderFailed, "failed to parse fragment template", err)
	}
	r.page, err = template.New("page").Parse(pageTemplate)
	if err != nil {
		return nil, inderrors.New(inderrors.ErrCodeRenderFailed, "failed to parse page template", err)
	}
	return r, nil
}

// MustNew is New for callers with static options.
func MustNew(opts Options) *Renderer {
	r, err := New(opts)
	if err != nil {
		panic(err)
	}
	return r
}

// DocBase returns the link prefix in use.
func (r *Renderer) DocBase() string {
	return r.docBase
}

type variableView struct {
	Name        string
	Description string
}

type fragmentView struct {
	ID           string
	Title        string
	Href         string
	Ref          string
	Vars         []variableView
	Abstract     any
	ShowKeywords bool
	Keywords     []string
}

// ShowKeywords reports whether the keywords line is rendered: only when the
// first keyword is non-empty. Later empty keywords still render as labels.
func ShowKeywords(ind *catalog.Indicator) bool {
	return len(ind.Keywords) > 0 && len(ind.Keywords[0]) > 0
}

func (r *Renderer) view(ind *catalog.Indicator) fragmentView {
	ref := ind.Reference()
	v := fragmentView{
		ID:           ind.ID,
		Title:        ind.Title,
		Href:         r.docBase + ref,
		Ref:          ref,
		Vars:         make([]variableView, 0, len(ind.Vars)),
		Abstract:     ind.Abstract,
		ShowKeywords: ShowKeywords(ind),
	}
	for _, variable := range ind.Vars {
		v.Vars = append(v.Vars, variableView{Name: variable.Name, Description: variable.Description})
	}
	if r.policy != nil {
		v.Abstract = template.HTML(r.policy.Sanitize(ind.Abstract))
	}
	if v.ShowKeywords {
		v.Keywords = make([]string, len(ind.Keywords))
		for i, kw := range ind.Keywords {
			v.Keywords[i] = strings.TrimSpace(kw)
		}
	}
	return v
}

// Fragment renders one indicator.
func (r *Renderer) Fragment(ind *catalog.Indicator) (template.HTML, error) {
	if ind == nil {
		return "", inderrors.New(inderrors.ErrCodeRenderFailed, "cannot render nil indicator", nil)
	}
	var buf bytes.Buffer
	if err := r.fragment.Execute(&buf, r.view(ind)); err != nil {
		return "", inderrors.New(inderrors.ErrCodeRenderFailed, "failed to render "+ind.ID, err)
	}
	return template.HTML(buf.String()), nil
}

// Render concatenates the fragments of inds in order. The result is the
// complete replacement content of the results container.
func (r *Renderer) Render(inds []*catalog.Indicator) (template.HTML, error) {
	var sb strings.Builder
	for _, ind := range inds {
		frag, err := r.Fragment(ind)
		if err != nil {
			return "", err
		}
		sb.WriteString(string(frag))
	}
	return template.HTML(sb.String()), nil
}

const fragmentTemplate = `
<div class="indElem" id="{{.ID}}">
  <div class="indHeader">
    <b class="indTitle">{{.Title}}</b>
    <a class="reference_internal indName" href="{{.Href}}" title="{{.Ref}}">
      <code>{{.Ref}}</code>
    </a>
  </div>
  <div class="indVars">Uses: {{range .Vars}}<button class="indVarname" title="{{.Description}}" alt="{{.Description}}">{{.Name}}</button>{{end}}</div>
  <div class="indDesc"><p>{{.Abstract}}</p></div>
  {{- if .ShowKeywords}}
  <div class="keywords">Keywords: {{range .Keywords}}<code class="keywordlabel">{{.}}</code>{{end}}</div>
  {{- end}}
  <div class="indID">Yaml ID: <code>{{.ID}}</code></div>
</div>
`
