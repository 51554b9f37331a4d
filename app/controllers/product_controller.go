package controllers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/afandal/storeadmin/app/models"
	"github.com/afandal/storeadmin/app/services"
	"github.com/afandal/storeadmin/pkg/ctx"
	khttp "github.com/afandal/storeadmin/pkg/http"
)

const maxUploadBytes = 32 << 20

type ProductController struct {
	service *services.CatalogService
}

func NewProductController(service *services.CatalogService) *ProductController {
	return &ProductController{service: service}
}

func (ctl *ProductController) Index(c *ctx.Context) {
	products, err := ctl.service.List(c.Context(), Credential(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(products)
}

// Store accepts multipart form data: name, description, price, stock,
// sizes (JSON array or repeated field), bestseller and image1..image4.
func (ctl *ProductController) Store(c *ctx.Context) {
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, maxUploadBytes)
	if err := c.R.ParseMultipartForm(maxUploadBytes); err != nil {
		c.Error(http.StatusBadRequest, "Expected multipart form data")
		return
	}
	defer c.R.MultipartForm.RemoveAll()

	in, errs := productForm(c.R.MultipartForm)
	if len(errs) > 0 {
		c.ValidationError(errs)
		return
	}

	files, closeAll, err := formImages(c.R.MultipartForm)
	defer closeAll()
	if err != nil {
		c.Error(http.StatusBadRequest, "Could not read uploaded image")
		return
	}

	msg, err := ctl.service.AddUpload(c.Context(), Credential(c), in, files)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusCreated, msg, nil)
}

func (ctl *ProductController) Destroy(c *ctx.Context) {
	msg, err := ctl.service.Remove(c.Context(), Credential(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, msg, nil)
}

func productForm(form *multipart.Form) (models.NewProduct, map[string]string) {
	get := func(k string) string {
		if v := form.Value[k]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}
	errs := map[string]string{}

	in := models.NewProduct{
		Name:        get("name"),
		Description: get("description"),
		Bestseller:  get("bestseller") == "true",
	}

	// A zero price is valid, so presence is checked on the raw field.
	if raw := get("price"); raw == "" {
		errs["price"] = "The price field is required."
	} else if price, err := decimal.NewFromString(raw); err != nil {
		errs["price"] = "The price must be a number."
	} else {
		in.Price = price
	}
	if raw := get("stock"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			errs["stock"] = "The stock must be an integer."
		}
		in.Stock = stock
	}

	sizes := form.Value["sizes"]
	if len(sizes) == 1 && strings.HasPrefix(strings.TrimSpace(sizes[0]), "[") {
		if err := json.Unmarshal([]byte(sizes[0]), &in.Sizes); err != nil {
			errs["sizes"] = "The sizes must be a JSON array."
		}
	} else {
		in.Sizes = sizes
	}
	return in, errs
}

// formImages opens image1..image4 in slot order.
func formImages(form *multipart.Form) ([]khttp.File, func(), error) {
	var (
		files   []khttp.File
		closers []io.Closer
	)
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}
	for i := 1; i <= models.MaxImages+1; i++ {
		headers := form.File["image"+strconv.Itoa(i)]
		if len(headers) == 0 {
			continue
		}
		f, err := headers[0].Open()
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, f)
		files = append(files, khttp.File{Filename: headers[0].Filename, Content: f})
	}
	return files, closeAll, nil
}
