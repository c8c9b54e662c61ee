package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	productdomain "github.com/smallbiznis/catalog/internal/product/domain"
	"github.com/smallbiznis/catalog/internal/providers/pdf"
)

// ExportPriceList renders every product, ordered by name, as a PDF download.
func (s *Server) ExportPriceList(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := s.productSvc.List(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	generatedAt := s.clock.Now()
	title := s.cfg.AppName + " price list"
	data := pdf.PriceListData{
		Title:       title,
		GeneratedAt: generatedAt,
		Items:       make([]pdf.PriceListItem, 0, len(items)),
	}
	for _, item := range items {
		data.Items = append(data.Items, pdf.PriceListItem{
			Name:          item.Name,
			SKU:           item.SKU,
			Price:         item.Price.StringFixed(2),
			MissingLetter: productdomain.MissingLetter(item.Name),
		})
	}

	doc, err := s.pdf.GeneratePriceList(ctx, data)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	body, err := io.ReadAll(doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.pdf", slug.Make(title), generatedAt.UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", body)
}
