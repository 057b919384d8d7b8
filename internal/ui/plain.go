package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// RunPlain is the line-oriented browser for pipes and CI: each input line is
// a query answered with a full listing.
func RunPlain(ctx context.Context, querier Querier, in io.Reader, out io.Writer, styles Styles) error {
	listing := NewListing(out, styles, 0)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		results, err := querier.Query(ctx, scanner.Text())
		if err != nil {
			_, _ = fmt.Fprintln(out, styles.Error.Render("Search unavailable: "+reason(err)))
			continue
		}
		if err := listing.Render(results); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, styles.Dim.Render("---"))
	}
	return scanner.Err()
}
