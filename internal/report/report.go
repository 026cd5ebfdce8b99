// Package report renders the human and machine readable artifacts written next
// to the train and test tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"solarprep/domain/core"
	"solarprep/domain/dataset"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Artifact file names inside the output directory.
const (
	ShapeInfoFile = "shape_info.txt"
	SummaryFile   = "summary.json"
	MarkdownFile  = "report.md"
	HTMLFile      = "report.html"
)

// WriteShapeInfo writes the row and column counts of both tables.
func WriteShapeInfo(w io.Writer, train, test, columns int) error {
	_, err := fmt.Fprintf(w, "train shape: (%d, %d)\ntest shape: (%d, %d)\n", train, columns, test, columns)
	return err
}

// WriteSummary writes the run summary as indented JSON.
func WriteSummary(w io.Writer, summary *dataset.RunSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// Markdown renders the run summary as a Markdown document.
func Markdown(summary *dataset.RunSummary, schema dataset.Schema) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# Dataset build %s\n\n", summary.RunID)
	fmt.Fprintf(&b, "Status: **%s**", summary.Status)
	if summary.ErrorMessage != "" {
		fmt.Fprintf(&b, " (%s)", summary.ErrorMessage)
	}
	b.WriteString("\n\n")

	b.WriteString("## Parameters\n\n")
	b.WriteString("| Parameter | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Target | %s |\n", escape(summary.Params.Target))
	fmt.Fprintf(&b, "| Horizons (days) | %s |\n", joinInts(summary.Params.Horizons))
	fmt.Fprintf(&b, "| Test period (days) | %d |\n", summary.Params.TestPeriodDays)
	fmt.Fprintf(&b, "| Fingerprint | `%s` |\n\n", summary.Fingerprint)

	b.WriteString("## Inputs\n\n")
	b.WriteString("| Measure | Rows |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Plant readings | %d |\n", summary.ReadingRows)
	fmt.Fprintf(&b, "| Units | %d |\n", summary.UnitCount)
	fmt.Fprintf(&b, "| Repaired hourly slots | %d |\n", summary.RepairedSlots)
	fmt.Fprintf(&b, "| Labeled rows | %d |\n", summary.LabeledRows)
	fmt.Fprintf(&b, "| Sites | %d |\n", summary.SiteCount)
	fmt.Fprintf(&b, "| Weather observations | %d |\n\n", summary.WeatherRows)

	b.WriteString("## Site name mapping\n\n")
	fmt.Fprintf(&b, "%d rows mapped, %d rows passed through unmapped.\n\n", summary.KeyMap.MappedRows, summary.KeyMap.UnmappedRows)
	for _, name := range summary.KeyMap.UnmappedNames {
		fmt.Fprintf(&b, "- `%s`\n", name)
	}
	if len(summary.KeyMap.UnmappedNames) > 0 {
		b.WriteString("\n")
	}

	j := summary.Join
	b.WriteString("## Joins\n\n")
	b.WriteString("| Step | Rows |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Labeled | %d |\n", j.LabeledRows)
	fmt.Fprintf(&b, "| After site join | %d (%d without site metadata) |\n", j.AfterSiteJoin, j.UnmatchedSiteRows)
	fmt.Fprintf(&b, "| After weather join | %d (%d dropped) |\n", j.AfterWeatherJoin, j.WeatherLoss())
	fmt.Fprintf(&b, "| Duplicates removed | %d |\n", j.DuplicatesRemoved)
	fmt.Fprintf(&b, "| Final | %d |\n\n", j.FinalRows)

	b.WriteString("## Split\n\n")
	fmt.Fprintf(&b, "%d train rows, %d test rows, %d columns.\n\n", summary.Split.TrainRows, summary.Split.TestRows, len(schema.Headers()))
	if len(summary.Split.Months) > 0 {
		b.WriteString("| Month | Test window | Slots | Test rows |\n|---|---|---:|---:|\n")
		for _, m := range summary.Split.Months {
			fmt.Fprintf(&b, "| %s | %s to %s | %d | %d |\n", m.Month,
				core.FormatTimestamp(m.WindowStart), core.FormatTimestamp(m.WindowEnd), m.TestSlots, m.TestRows)
		}
		b.WriteString("\n")
	}

	if len(summary.Profile) > 0 {
		b.WriteString("## Label profile\n\n")
		b.WriteString("| Column | Count | Mean | Std | Min | Median | Max | Corr. with target |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|\n")
		for _, p := range summary.Profile {
			corr := "-"
			if p.Correlation != nil {
				corr = fmt.Sprintf("%.4f", *p.Correlation)
			}
			fmt.Fprintf(&b, "| %s | %d | %.4f | %.4f | %.4f | %.4f | %.4f | %s |\n",
				escape(p.Name), p.Count, p.Mean, p.StdDev, p.Min, p.Median, p.Max, corr)
		}
		b.WriteString("\n")
	}

	if len(summary.Outputs) > 0 {
		b.WriteString("## Outputs\n\n")
		for _, o := range summary.Outputs {
			fmt.Fprintf(&b, "- `%s`\n", o)
		}
	}

	return []byte(b.String())
}

// HTML renders Markdown output as a standalone HTML page.
func HTML(md []byte, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: title,
	})
	return markdown.ToHTML(md, p, renderer)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprintf("%d", x)
	}
	return strings.Join(parts, ", ")
}
