package services

import (
	"context"
	"fmt"
	"io"

	"github.com/afandal/storeadmin/app/models"
	"github.com/afandal/storeadmin/app/storefront"
	khttp "github.com/afandal/storeadmin/pkg/http"
	"github.com/afandal/storeadmin/pkg/storage"
	"github.com/afandal/storeadmin/pkg/validate"
)

// ImageOpener resolves an image reference to its content and file name.
type ImageOpener func(ctx context.Context, ref string) (io.ReadCloser, string, error)

type CatalogService struct {
	client *storefront.Client
	audit  Auditor
	open   ImageOpener
}

// NewCatalogService reads image references through pkg/storage.
func NewCatalogService(client *storefront.Client, audit Auditor) *CatalogService {
	return &CatalogService{client: client, audit: audit, open: storage.Open}
}

// WithOpener replaces the image resolver.
func (s *CatalogService) WithOpener(open ImageOpener) *CatalogService {
	s.open = open
	return s
}

func (s *CatalogService) List(ctx context.Context, sess storefront.Session) ([]models.Product, error) {
	return s.client.ListProducts(ctx, sess)
}

// Add creates a product whose Images are storage references.
func (s *CatalogService) Add(ctx context.Context, sess storefront.Session, in models.NewProduct) (string, error) {
	if err := check(&in); err != nil {
		return "", err
	}

	files := make([]khttp.File, 0, len(in.Images))
	defer func() {
		for _, f := range files {
			if c, ok := f.Content.(io.Closer); ok {
				c.Close()
			}
		}
	}()
	for i, ref := range in.Images {
		rc, name, err := s.open(ctx, ref)
		if err != nil {
			return "", invalid("images", fmt.Sprintf("Image %d could not be read: %v", i+1, err))
		}
		files = append(files, khttp.File{Filename: name, Content: rc})
	}

	return s.upload(ctx, sess, in, files)
}

// AddUpload creates a product from already-received image files.
func (s *CatalogService) AddUpload(ctx context.Context, sess storefront.Session, in models.NewProduct, files []khttp.File) (string, error) {
	in.Images = nil
	if err := check(&in); err != nil {
		return "", err
	}
	if len(files) > models.MaxImages {
		return "", invalid("images", fmt.Sprintf("The images may not have more than %d items.", models.MaxImages))
	}
	return s.upload(ctx, sess, in, files)
}

func (s *CatalogService) upload(ctx context.Context, sess storefront.Session, in models.NewProduct, files []khttp.File) (string, error) {
	msg, err := s.client.AddProduct(ctx, sess, storefront.ProductUpload{NewProduct: in, Files: files})
	record(ctx, s.audit, ActionProductAdd, in.Name, err)
	return msg, err
}

func (s *CatalogService) Remove(ctx context.Context, sess storefront.Session, id string) (string, error) {
	if !validate.ObjectID(id) {
		return "", invalid("id", "The id must be a valid id.")
	}
	msg, err := s.client.RemoveProduct(ctx, sess, id)
	record(ctx, s.audit, ActionProductRemove, id, err)
	return msg, err
}
