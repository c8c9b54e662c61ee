package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

const defaultTitle = "Price list"

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GeneratePriceList(ctx context.Context, data PriceListData) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(data.Title)
	if title == "" {
		title = defaultTitle
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, title, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	generated := ""
	if !data.GeneratedAt.IsZero() {
		generated = "Generated " + data.GeneratedAt.UTC().Format("2006-01-02 15:04 MST")
	}
	m.AddRow(8,
		text.NewCol(8, generated, props.Text{Size: 9}),
		text.NewCol(4, fmt.Sprintf("%d products", len(data.Items)), props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRow(10,
		text.NewCol(5, "Name", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "SKU", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Missing", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Center}),
	)

	if len(data.Items) == 0 {
		m.AddRow(10,
			col.New(12).Add(text.New("No products.", props.Text{Size: 9, Style: fontstyle.Italic})),
		)
	}

	for _, item := range data.Items {
		m.AddRow(8,
			text.NewCol(5, item.Name, props.Text{Size: 9}),
			text.NewCol(3, item.SKU, props.Text{Size: 9}),
			text.NewCol(2, item.Price, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.MissingLetter, props.Text{Size: 9, Align: align.Center}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
