package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"github.com/afandal/storeadmin/app/models"
	khttp "github.com/afandal/storeadmin/pkg/http"
)

// ProductUpload is a product ready to be sent as multipart form data.
// Images fill slots image1..image4 in order.
type ProductUpload struct {
	models.NewProduct
	Files []khttp.File
}

// ListProducts fetches the catalog. The credential is sent when present.
func (c *Client) ListProducts(ctx context.Context, sess Session) ([]models.Product, error) {
	env, err := c.do(ctx, sess, "products.list", authOptional, khttp.Get(c.url("/api/product/list")))
	if err != nil {
		return nil, err
	}
	if env.Products != nil {
		return env.Products, nil
	}
	return decodeProductField(env.Product)
}

// decodeProductField handles backends that return the list under "product".
func decodeProductField(raw json.RawMessage) ([]models.Product, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return []models.Product{}, nil
	}
	var out []models.Product
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &APIError{Op: "products.list", Status: 200, Message: "malformed product list"}
	}
	return out, nil
}

// AddProduct uploads a new product.
func (c *Client) AddProduct(ctx context.Context, sess Session, p ProductUpload) (string, error) {
	sizes, err := json.Marshal(nonNil(p.Sizes))
	if err != nil {
		return "", err
	}

	req := khttp.Post(c.url("/api/product/add")).
		Field("name", p.Name).
		Field("description", p.Description).
		Field("price", p.Price.String()).
		Field("sizes", string(sizes)).
		Field("bestseller", strconv.FormatBool(p.Bestseller)).
		Field("stock", strconv.Itoa(p.Stock))
	for i, f := range p.Files {
		if i >= models.MaxImages {
			break
		}
		f.Field = "image" + strconv.Itoa(i+1)
		req = req.Attach(f)
	}

	env, err := c.do(ctx, sess, "products.add", authRequired, req)
	if err != nil {
		return "", err
	}
	return messageOr(env, "Product added"), nil
}

// RemoveProduct deletes a product by id.
func (c *Client) RemoveProduct(ctx context.Context, sess Session, id string) (string, error) {
	env, err := c.do(ctx, sess, "products.remove", authRequired,
		khttp.Post(c.url("/api/product/remove")).Body(map[string]string{"id": id}))
	if err != nil {
		return "", err
	}
	return messageOr(env, "Product removed"), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
