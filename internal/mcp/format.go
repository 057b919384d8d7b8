package mcp

import (
	"fmt"
	"strings"
)

// FormatResults formats search results as markdown.
func FormatResults(query string, out SearchIndicatorsOutput) string {
	if len(out.Results) == 0 {
		if strings.TrimSpace(query) == "" {
			return "The catalog is empty."
		}
		return fmt.Sprintf("No indicators found for \"%s\"", query)
	}

	var sb strings.Builder
	if strings.TrimSpace(query) == "" {
		sb.WriteString("## Indicator catalog\n\n")
	} else {
		sb.WriteString(fmt.Sprintf("## Indicators matching \"%s\"\n\n", query))
	}
	sb.WriteString(fmt.Sprintf("Showing %d of %d\n\n", len(out.Results), out.Total))

	for i, r := range out.Results {
		sb.WriteString(fmt.Sprintf("### %d. %s (`%s`)\n\n", i+1, r.Title, r.Reference))
		if len(r.Variables) > 0 {
			names := make([]string, len(r.Variables))
			for j, v := range r.Variables {
				names[j] = fmt.Sprintf("`%s` (%s)", v.Name, v.Description)
			}
			sb.WriteString("**Uses:** " + strings.Join(names, ", ") + "\n\n")
		}
		if r.Abstract != "" {
			sb.WriteString(r.Abstract + "\n\n")
		}
		if len(r.Keywords) > 0 && r.Keywords[0] != "" {
			sb.WriteString("**Keywords:** " + strings.Join(r.Keywords, ", ") + "\n\n")
		}
		sb.WriteString(fmt.Sprintf("ID: `%s` | [API reference](%s)\n\n", r.ID, r.Link))
	}
	return sb.String()
}

// FormatStatus formats catalog status as markdown.
func FormatStatus(st CatalogStatusOutput) string {
	var sb strings.Builder
	sb.WriteString("## Catalog status\n\n")
	if !st.Available {
		sb.WriteString("**Search unavailable**\n\n")
	}
	sb.WriteString(fmt.Sprintf("- State: %s\n", st.State))
	sb.WriteString(fmt.Sprintf("- Indicators: %d\n", st.Count))
	sb.WriteString(fmt.Sprintf("- Source: %s\n", st.Source))
	if st.LoadedAt != "" {
		sb.WriteString(fmt.Sprintf("- Loaded: %s\n", st.LoadedAt))
	}
	if st.Error != "" {
		sb.WriteString(fmt.Sprintf("- Error: %s\n", st.Error))
	}
	if st.Queries != nil {
		sb.WriteString(fmt.Sprintf("- Queries: %d (%.1f%% without results)\n",
			st.Queries.TotalQueries, st.Queries.ZeroResultPct))
	}
	return sb.String()
}
