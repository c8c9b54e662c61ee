package server

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	productdomain "github.com/smallbiznis/catalog/internal/product/domain"
)

// productPayload keeps price raw so a non-numeric value reaches validation
// instead of failing the decode.
type productPayload struct {
	Name  *string         `json:"name"`
	Price json.RawMessage `json:"price"`
	SKU   *string         `json:"sku"`
}

type productResponse struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	Price         json.Number `json:"price"`
	SKU           string      `json:"sku"`
	MissingLetter string      `json:"missingLetter,omitempty"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	req, ok := bindProductPayload(c)
	if !ok {
		return
	}

	product, err := s.productSvc.Create(c.Request.Context(), productdomain.CreateRequest{
		Name:  req.Name,
		Price: parsePrice(req.Price),
		SKU:   req.SKU,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toProductResponse(product, false))
}

func (s *Server) ListProducts(c *gin.Context) {
	items, err := s.productSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := make([]productResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toProductResponse(&items[i], true))
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetProduct(c *gin.Context) {
	product, err := s.productSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(product, true))
}

func (s *Server) UpdateProduct(c *gin.Context) {
	req, ok := bindProductPayload(c)
	if !ok {
		return
	}

	product, err := s.productSvc.Update(c.Request.Context(), c.Param("id"), productdomain.UpdateRequest{
		Name:  req.Name,
		Price: parsePrice(req.Price),
		SKU:   req.SKU,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(product, false))
}

func (s *Server) DeleteProduct(c *gin.Context) {
	if err := s.productSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// bindProductPayload treats an empty body as an empty object.
func bindProductPayload(c *gin.Context) (productPayload, bool) {
	var req productPayload
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, invalidRequestError())
		return req, false
	}
	return req, true
}

// parsePrice returns nil when the price is absent and NaN when it is not a JSON number.
func parsePrice(raw json.RawMessage) *float64 {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		v = math.NaN()
	}
	return &v
}

func toProductResponse(p *productdomain.Product, withMissingLetter bool) productResponse {
	resp := productResponse{
		ID:    p.ID,
		Name:  p.Name,
		Price: json.Number(p.Price.StringFixed(2)),
		SKU:   p.SKU,
	}
	if withMissingLetter {
		resp.MissingLetter = productdomain.MissingLetter(p.Name)
	}
	return resp
}
