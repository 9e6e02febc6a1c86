package mongodb

import (
	"context"
	"time"

	"github.com/dextrolabs/dextro/apiserver/internal/core"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const createIndexTimeout = 5 * time.Second

type productsStore struct {
	collection *mongo.Collection
}

// NewProductsStore returns a MongoDB-based implementation of the
// core.ProductsStore interface.
func NewProductsStore(database *mongo.Database) (core.ProductsStore, error) {
	ctx, cancel :=
		context.WithTimeout(context.Background(), createIndexTimeout)
	defer cancel()
	collection := database.Collection("products")
	if _, err := collection.Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys: bson.M{
				"category": 1,
			},
		},
	); err != nil {
		return nil, errors.Wrap(
			err,
			"error adding indexes to products collection",
		)
	}
	return &productsStore{
		collection: collection,
	}, nil
}

func (p *productsStore) Create(
	ctx context.Context,
	product core.Product,
) error {
	if _, err := p.collection.InsertOne(ctx, product); err != nil {
		return errors.Wrapf(err, "error inserting new product %q", product.ID)
	}
	return nil
}

func (p *productsStore) ListByCategory(
	ctx context.Context,
	category string,
) (core.ProductList, error) {
	products := core.ProductList{}
	findOptions := options.Find()
	findOptions.SetSort(bson.M{"created": -1})
	cur, err := p.collection.Find(
		ctx,
		bson.M{"category": category},
		findOptions,
	)
	if err != nil {
		return products, errors.Wrap(err, "error finding products")
	}
	if err := cur.All(ctx, &products.Items); err != nil {
		return products, errors.Wrap(err, "error decoding products")
	}
	return products, nil
}
