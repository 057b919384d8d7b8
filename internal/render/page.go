package render

import (
	"bytes"
	"html/template"

	inderrors "github.com/Aman-CERP/indsearch/internal/errors"
)

// Element identifiers shared by the page and its script.
const (
	QueryInputID = "queryInput"
	TableID      = "indTable"
)

// PageData is the input of Page.
type PageData struct {
	Title string
	Query string

	// Results is the initial content of the results container.
	Results template.HTML

	// Count is the number of rendered indicators.
	Count int

	// Unavailable replaces the results with an error banner.
	Unavailable bool
	Reason      string

	// Live adds the script that re-renders on every keystroke through the
	// server's websocket, falling back to GET /search.
	Live bool
}

// Page renders a complete HTML document.
func (r *Renderer) Page(data PageData) ([]byte, error) {
	if data.Title == "" {
		data.Title = "Climate indicators"
	}
	view := struct {
		PageData
		QueryInputID string
		TableID      string
	}{data, QueryInputID, TableID}

	var buf bytes.Buffer
	if err := r.page.Execute(&buf, view); err != nil {
		return nil, inderrors.New(inderrors.ErrCodeRenderFailed, "failed to render page", err)
	}
	return buf.Bytes(), nil
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  .indElem { margin: 0.8em 0; padding: 0.5em; border-bottom: 1px solid #ddd; }
  .indHeader { display: flex; justify-content: space-between; }
  .indVarname { margin-right: 0.3em; }
  .keywordlabel { margin-right: 0.3em; }
  .unavailable { padding: 1em; background: #fdecea; color: #611a15; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<input type="text" id="{{.QueryInputID}}" value="{{.Query}}" placeholder="Search indicators" autocomplete="off"{{if .Unavailable}} disabled{{end}}>
{{- if .Unavailable}}
<div class="unavailable" role="alert">Search unavailable{{with .Reason}}: {{.}}{{end}}</div>
{{- end}}
<div id="{{.TableID}}">{{.Results}}</div>
{{- if and .Live (not .Unavailable)}}
<script>
(function () {
  const input = document.getElementById({{.QueryInputID}});
  const table = document.getElementById({{.TableID}});
  let socket = null;

  function replace(markup) {
    table.innerHTML = markup;
  }

  function viaHTTP(q) {
    fetch("search?q=" + encodeURIComponent(q))
      .then(function (r) { return r.text(); })
      .then(replace);
  }

  function connect() {
    const scheme = location.protocol === "https:" ? "wss://" : "ws://";
    const ws = new WebSocket(scheme + location.host + "/ws");
    ws.onmessage = function (ev) { replace(ev.data); };
    ws.onopen = function () { socket = ws; };
    ws.onclose = function () { socket = null; };
  }

  input.addEventListener("input", function () {
    if (socket !== null && socket.readyState === WebSocket.OPEN) {
      socket.send(input.value);
    } else {
      viaHTTP(input.value);
    }
  });
  connect();
})();
</script>
{{- end}}
</body>
</html>
`
