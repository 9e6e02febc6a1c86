package rest

import (
	"bytes"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/dextrolabs/dextro/apiserver/internal/authx"
	"github.com/dextrolabs/dextro/apiserver/internal/core"
	"github.com/dextrolabs/dextro/apiserver/internal/lib/restmachinery"
	"github.com/dextrolabs/dextro/sdk/meta"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// maxUploadBytes bounds in-memory buffering of multipart uploads.
const maxUploadBytes = 10 << 20

const productSchema = `
{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "Product",
	"type": "object",
	"required": ["productName", "price", "category"],
	"additionalProperties": false,
	"properties": {
		"productName": { "type": "string", "minLength": 1 },
		"description": { "type": "string" },
		"mobile": { "type": "string" },
		"price": { "type": "number", "minimum": 0 },
		"category": { "type": "string", "minLength": 1 }
	}
}`

// ProductsEndpoints implements restmachinery.Endpoints to provide the product
// HTTP surface.
type ProductsEndpoints struct {
	*restmachinery.BaseEndpoints
	Service core.ProductsService
}

// Register is used to register these endpoints with an HTTP router.
func (p *ProductsEndpoints) Register(router *mux.Router) {
	// Create product
	router.HandleFunc(
		"/api/products",
		p.AuthFilter.Decorate(p.create),
	).Methods(http.MethodPost)

	// List products by category
	router.HandleFunc(
		"/api/products",
		p.list, // No filters applied to this request
	).Methods(http.MethodGet)

	// Serve a stored product picture
	router.HandleFunc(
		"/api/products/images/{name}",
		p.serveImage, // No filters applied to this request
	).Methods(http.MethodGet)
}

type productSubmission struct {
	ProductName string  `json:"productName"`
	Description string  `json:"description"`
	Mobile      string  `json:"mobile"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

func (p *ProductsEndpoints) create(w http.ResponseWriter, r *http.Request) {
	principal, ok := authx.PrincipalFromContext(r.Context())
	if !ok {
		// The auth filter always precedes this handler.
		p.WriteAPIResponse(
			w,
			http.StatusInternalServerError,
			&meta.ErrInternalServer{},
		)
		return
	}

	if strings.HasPrefix(
		r.Header.Get("Content-Type"),
		"multipart/form-data",
	) {
		p.createFromMultipart(w, r, principal)
		return
	}

	submission := productSubmission{}
	p.ServeRequest(
		restmachinery.InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: gojsonschema.NewStringLoader(productSchema),
			ReqBodyObj:          &submission,
			EndpointLogic: func() (interface{}, error) {
				product, err := p.Service.Create(
					r.Context(),
					submissionToProduct(submission, principal),
					nil,
				)
				if err != nil {
					return nil, err
				}
				return productCreatedResponse(product), nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (p *ProductsEndpoints) createFromMultipart(
	w http.ResponseWriter,
	r *http.Request,
	principal authx.Principal,
) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		p.WriteAPIResponse(
			w,
			http.StatusBadRequest,
			&meta.ErrBadRequest{
				Reason: "Could not parse multipart request body.",
			},
		)
		return
	}
	submission := productSubmission{
		ProductName: r.FormValue("productName"),
		Description: r.FormValue("description"),
		Mobile:      r.FormValue("mobile"),
		Category:    r.FormValue("category"),
	}
	if priceStr := r.FormValue("price"); priceStr != "" {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			p.WriteAPIResponse(
				w,
				http.StatusBadRequest,
				&meta.ErrBadRequest{
					Reason: "The price field must be a number.",
				},
			)
			return
		}
		submission.Price = price
	}

	var image *core.ImageUpload
	file, header, err := r.FormFile("productPicture")
	if err == nil {
		defer file.Close() // nolint: errcheck
		buf := &bytes.Buffer{}
		if _, err := buf.ReadFrom(file); err != nil {
			log.Println(errors.Wrap(err, "error reading uploaded picture"))
			p.WriteAPIResponse(
				w,
				http.StatusBadRequest,
				&meta.ErrBadRequest{
					Reason: "Could not read the uploaded picture.",
				},
			)
			return
		}
		image = &core.ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        buf,
		}
	}

	p.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				if submission.ProductName == "" || submission.Category == "" {
					return nil, &meta.ErrBadRequest{
						Reason: "The productName and category fields are required.",
					}
				}
				product, err := p.Service.Create(
					r.Context(),
					submissionToProduct(submission, principal),
					image,
				)
				if err != nil {
					return nil, err
				}
				return productCreatedResponse(product), nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (p *ProductsEndpoints) list(w http.ResponseWriter, r *http.Request) {
	p.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return p.Service.List(
					r.Context(),
					r.URL.Query().Get("category"),
				)
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (p *ProductsEndpoints) serveImage(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	buf := &bytes.Buffer{}
	contentType, err := p.Service.ServeImage(r.Context(), name, buf)
	if err != nil {
		if _, ok := errors.Cause(err).(*meta.ErrNotFound); ok {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		log.Println(err)
		http.Error(
			w,
			(&meta.ErrInternalServer{}).Error(),
			http.StatusInternalServerError,
		)
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Println(errors.Wrap(err, "error writing response body"))
	}
}

func submissionToProduct(
	submission productSubmission,
	principal authx.Principal,
) core.Product {
	return core.Product{
		ProductName: submission.ProductName,
		Description: submission.Description,
		Mobile:      submission.Mobile,
		Price:       submission.Price,
		Category:    submission.Category,
		UserID:      principal.Subject,
	}
}

func productCreatedResponse(product core.Product) interface{} {
	return map[string]interface{}{
		"message":   "Product submitted successfully",
		"productId": product.ID,
	}
}
