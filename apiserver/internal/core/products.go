package core

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/dextrolabs/dextro/sdk/meta"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

// Product represents a single product listing: seller-supplied metadata plus
// an optional public URL for a picture held in the blob store.
type Product struct {
	meta.ObjectMeta `json:"metadata" bson:",inline"`
	ProductName     string  `json:"productName" bson:"productName"`
	Description     string  `json:"description,omitempty" bson:"description,omitempty"` // nolint: lll
	Mobile          string  `json:"mobile,omitempty" bson:"mobile,omitempty"`
	Price           float64 `json:"price" bson:"price"`
	Category        string  `json:"category" bson:"category"`
	ProductPicture  string  `json:"productPicture,omitempty" bson:"productPicture,omitempty"` // nolint: lll
	UserID          string  `json:"userId" bson:"userId"`
}

// MarshalJSON amends Product instances with type metadata.
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(
		struct {
			meta.TypeMeta `json:",inline"`
			Alias         `json:",inline"`
		}{
			TypeMeta: meta.TypeMeta{
				APIVersion: meta.APIVersion,
				Kind:       "Product",
			},
			Alias: (Alias)(p),
		},
	)
}

// ProductList is an ordered list of Products.
type ProductList struct {
	// Items is a slice of Products.
	Items []Product `json:"items,omitempty"`
}

// MarshalJSON amends ProductList instances with type metadata.
func (p ProductList) MarshalJSON() ([]byte, error) {
	type Alias ProductList
	return json.Marshal(
		struct {
			meta.TypeMeta `json:",inline"`
			Alias         `json:",inline"`
		}{
			TypeMeta: meta.TypeMeta{
				APIVersion: meta.APIVersion,
				Kind:       "ProductList",
			},
			Alias: (Alias)(p),
		},
	)
}

// ImageUpload carries the bytes and content type of a product picture
// submitted alongside a new Product.
type ImageUpload struct {
	// Filename is the name the picture was uploaded under.
	Filename string
	// ContentType is the picture's MIME type.
	ContentType string
	// Data is the picture's bytes.
	Data io.Reader
}

// ProductsService is the specialized interface for managing Products. It's
// decoupled from underlying technology choices (e.g. data store) to keep
// business logic reusable and consistent while the underlying tech stack
// remains free to change.
type ProductsService interface {
	// Create stores a new Product. If an image is provided it is written to
	// the blob store first and the Product records its public URL.
	Create(
		ctx context.Context,
		product Product,
		image *ImageUpload,
	) (Product, error)
	// List returns Products whose category matches the one provided.
	List(ctx context.Context, category string) (ProductList, error)
	// ServeImage writes the bytes of a previously stored product picture to w
	// and returns its content type.
	ServeImage(ctx context.Context, name string, w io.Writer) (string, error)
}

type productsService struct {
	productsStore ProductsStore
	blobStore     BlobStore
}

// NewProductsService returns a specialized interface for managing Products.
func NewProductsService(
	productsStore ProductsStore,
	blobStore BlobStore,
) ProductsService {
	return &productsService{
		productsStore: productsStore,
		blobStore:     blobStore,
	}
}

func (p *productsService) Create(
	ctx context.Context,
	product Product,
	image *ImageUpload,
) (Product, error) {
	now := time.Now()
	product.ID = uuid.NewV4().String()
	product.Created = &now
	if image != nil {
		imageURL, err := p.blobStore.Put(
			ctx,
			product.ID+"-"+image.Filename,
			image.ContentType,
			image.Data,
		)
		if err != nil {
			return product, errors.Wrapf(
				err,
				"error storing picture for new product %q",
				product.ID,
			)
		}
		product.ProductPicture = imageURL
	}
	if err := p.productsStore.Create(ctx, product); err != nil {
		return product, errors.Wrapf(
			err,
			"error storing new product %q",
			product.ID,
		)
	}
	return product, nil
}

func (p *productsService) List(
	ctx context.Context,
	category string,
) (ProductList, error) {
	if category == "" {
		category = "cycles"
	}
	products, err := p.productsStore.ListByCategory(ctx, category)
	if err != nil {
		return products, errors.Wrapf(
			err,
			"error retrieving products in category %q from store",
			category,
		)
	}
	return products, nil
}

func (p *productsService) ServeImage(
	ctx context.Context,
	name string,
	w io.Writer,
) (string, error) {
	contentType, err := p.blobStore.Get(ctx, name, w)
	if err != nil {
		return "", errors.Wrapf(err, "error retrieving image %q", name)
	}
	return contentType, nil
}

// ProductsStore is the interface for components that persist Products.
type ProductsStore interface {
	// Create stores the provided Product.
	Create(context.Context, Product) error
	// ListByCategory returns Products whose category matches the one provided.
	ListByCategory(context.Context, string) (ProductList, error)
}

// BlobStore is the interface for components that store opaque blobs (product
// pictures) and hand back a public URL for each.
type BlobStore interface {
	// Put stores the provided bytes under the provided name and returns a
	// public URL from which they can be retrieved.
	Put(
		ctx context.Context,
		name string,
		contentType string,
		data io.Reader,
	) (string, error)
	// Get writes the bytes stored under the provided name to w and returns
	// their content type. Implementations MUST return a *meta.ErrNotFound when
	// no such blob exists.
	Get(ctx context.Context, name string, w io.Writer) (string, error)
}
