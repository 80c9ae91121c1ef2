package interact

import (
	"context"

	"lineup-runner/internal/surface"
)

// RowSpec describes a list of rows and the cell within each row that holds
// the display name. An empty NameCell reads the row itself.
type RowSpec struct {
	Row      surface.Query
	NameCell surface.Query
}

// FindRowByExactFirstLine returns the row whose name cell's first line
// equals target, ignoring case and whitespace. Visible rows are checked
// first; then every row is scrolled into view and read, which covers
// virtualized lists.
func FindRowByExactFirstLine(ctx context.Context, container surface.Finder, spec RowSpec, target string) (surface.Element, bool) {
	if container == nil {
		return nil, false
	}
	rows, err := container.Find(ctx, spec.Row)
	if err != nil || len(rows) == 0 {
		return nil, false
	}
	want := FoldKey(target)
	if want == "" {
		return nil, false
	}

	for _, row := range rows {
		if !row.Visible(ctx) {
			continue
		}
		if FoldKey(rowName(ctx, row, spec.NameCell)) == want {
			return row, true
		}
	}

	for _, row := range rows {
		_ = row.ScrollIntoView(ctx)
		if FoldKey(rowName(ctx, row, spec.NameCell)) == want {
			return row, true
		}
	}
	return nil, false
}

func rowName(ctx context.Context, row surface.Element, cell surface.Query) string {
	target := row
	if !cell.IsZero() {
		el, ok := First(ctx, row, cell)
		if !ok {
			return ""
		}
		target = el
	}
	raw, err := target.Text(ctx)
	if err != nil {
		return ""
	}
	return FirstLine(raw)
}
