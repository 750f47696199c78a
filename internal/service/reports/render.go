package reports

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

// renderCSV writes the header and rows. encoding/csv quotes fields containing separators,
// quotes or newlines.
func renderCSV(table models.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(table.Columns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(table.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderJSON(entities interface{}) ([]byte, error) {
	return json.MarshalIndent(entities, "", "  ")
}

// renderPDF lays the table out landscape with one grid column per report column.
func renderPDF(table models.Table, generatedAt time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithMaxGridSize(len(table.Columns)).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(len(table.Columns), table.Title+" report", props.Text{Size: 16, Style: fontstyle.Bold}),
	)
	m.AddRow(8,
		text.NewCol(len(table.Columns), "Generated "+generatedAt.UTC().Format(models.DateLayout), props.Text{Size: 9}),
	)

	header := make([]core.Col, 0, len(table.Columns))
	for _, column := range table.Columns {
		header = append(header, text.NewCol(1, column, props.Text{Size: 9, Style: fontstyle.Bold}))
	}
	m.AddRow(10, header...)

	for _, row := range table.Rows {
		cols := make([]core.Col, 0, len(row))
		for _, value := range row {
			cols = append(cols, text.NewCol(1, value, props.Text{Size: 8}))
		}
		m.AddRow(8, cols...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}
