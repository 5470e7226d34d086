package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"school-job-scout/internal/scraper"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type Count struct {
	Name  string
	Count int
}

// CountBy tallies jobs per key, sorted by key.
func CountBy(jobs []scraper.Job, key func(scraper.Job) string) []Count {
	m := map[string]int{}
	for _, j := range jobs {
		m[key(j)]++
	}
	out := make([]Count, 0, len(m))
	for name, n := range m {
		out = append(out, Count{Name: name, Count: n})
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}

// Summary renders totals by district and by source.
func Summary(jobs []scraper.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total jobs found: %d\n\n", len(jobs))
	b.WriteString(countTable("District", CountBy(jobs, func(j scraper.Job) string { return j.District })))
	b.WriteString("\n\n")
	b.WriteString(countTable("Source", CountBy(jobs, func(j scraper.Job) string { return string(j.Source) })))
	b.WriteString("\n")
	return b.String()
}

// Listing prints every job grouped by district.
func Listing(jobs []scraper.Job) string {
	sorted := append([]scraper.Job(nil), jobs...)
	sort.SliceStable(sorted, func(i, k int) bool { return sorted[i].District < sorted[k].District })

	var b strings.Builder
	current := ""
	for i, j := range sorted {
		if i == 0 || j.District != current {
			current = j.District
			fmt.Fprintf(&b, "\n--- %s ---\n", current)
		}
		fmt.Fprintf(&b, "  * %s\n    %s\n", j.Title, j.URL)
	}
	return b.String()
}

// Table renders rows under headers with left-aligned columns.
func Table(headers []string, rows [][]string) string {
	return renderTable(headers, rows, nil)
}

func countTable(label string, counts []Count) string {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Name, strconv.Itoa(c.Count)})
	}
	return renderTable([]string{label, "Jobs"}, rows, []text.Align{text.AlignLeft, text.AlignRight})
}

func renderTable(headers []string, rows [][]string, aligns []text.Align) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) {
			align = aligns[i]
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
