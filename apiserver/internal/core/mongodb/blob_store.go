package mongodb

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dextrolabs/dextro/apiserver/internal/core"
	"github.com/dextrolabs/dextro/sdk/meta"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	imagesBucketName = "productImages"
	blobIOTimeout    = 30 * time.Second
)

type blobStore struct {
	bucket          *gridfs.Bucket
	filesCollection *mongo.Collection
	publicURLBase   string
}

// NewBlobStore returns a GridFS-based implementation of the core.BlobStore
// interface. Stored blobs are publicly retrievable at
// <publicURLBase>/<name>; serving those requests lands back on this same
// store's Get.
func NewBlobStore(
	database *mongo.Database,
	publicURLBase string,
) (core.BlobStore, error) {
	bucket, err := gridfs.NewBucket(
		database,
		options.GridFSBucket().SetName(imagesBucketName),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating product images bucket")
	}
	return &blobStore{
		bucket:          bucket,
		filesCollection: database.Collection(imagesBucketName + ".files"),
		publicURLBase:   publicURLBase,
	}, nil
}

func (b *blobStore) Put(
	_ context.Context,
	name string,
	contentType string,
	data io.Reader,
) (string, error) {
	if err := b.bucket.SetWriteDeadline(
		time.Now().Add(blobIOTimeout),
	); err != nil {
		return "", errors.Wrap(err, "error setting bucket write deadline")
	}
	if _, err := b.bucket.UploadFromStream(
		name,
		data,
		options.GridFSUpload().SetMetadata(
			bson.M{"contentType": contentType},
		),
	); err != nil {
		return "", errors.Wrapf(err, "error uploading blob %q", name)
	}
	return fmt.Sprintf("%s/%s", b.publicURLBase, name), nil
}

func (b *blobStore) Get(
	ctx context.Context,
	name string,
	w io.Writer,
) (string, error) {
	fileDoc := struct {
		Metadata struct {
			ContentType string `bson:"contentType"`
		} `bson:"metadata"`
	}{}
	res := b.filesCollection.FindOne(ctx, bson.M{"filename": name})
	if res.Err() == mongo.ErrNoDocuments {
		return "", &meta.ErrNotFound{
			Type: "ProductImage",
			ID:   name,
		}
	}
	if res.Err() != nil {
		return "", errors.Wrapf(res.Err(), "error finding blob %q", name)
	}
	if err := res.Decode(&fileDoc); err != nil {
		return "", errors.Wrapf(err, "error decoding blob metadata %q", name)
	}
	if err := b.bucket.SetReadDeadline(
		time.Now().Add(blobIOTimeout),
	); err != nil {
		return "", errors.Wrap(err, "error setting bucket read deadline")
	}
	if _, err := b.bucket.DownloadToStreamByName(name, w); err != nil {
		if err == gridfs.ErrFileNotFound {
			return "", &meta.ErrNotFound{
				Type: "ProductImage",
				ID:   name,
			}
		}
		return "", errors.Wrapf(err, "error downloading blob %q", name)
	}
	return fileDoc.Metadata.ContentType, nil
}
