package api

import (
	"context"
	"crypto/tls"
	"net/http"

	"github.com/dextrolabs/dextro/sdk/core"
)

// ProductsClient is the specialized client for managing Products with the
// API server.
type ProductsClient interface {
	// Create submits a new Product listing.
	Create(context.Context, core.NewProduct) (string, error)
	// List returns Products in the specified category. The server applies its
	// default category when none is specified.
	List(ctx context.Context, category string) (core.ProductList, error)
}

type productsClient struct {
	*baseClient
}

// NewProductsClient returns a specialized client for managing Products with
// the API server.
func NewProductsClient(
	apiAddress string,
	apiToken string,
	allowInsecure bool,
) ProductsClient {
	return &productsClient{
		baseClient: &baseClient{
			apiAddress: apiAddress,
			apiToken:   apiToken,
			httpClient: &http.Client{
				Transport: &http.Transport{
					TLSClientConfig: &tls.Config{
						InsecureSkipVerify: allowInsecure, // nolint: gosec
					},
				},
			},
		},
	}
}

func (p *productsClient) Create(
	_ context.Context,
	product core.NewProduct,
) (string, error) {
	respBody := struct {
		ProductID string `json:"productId"`
	}{}
	if err := p.ExecuteRequest(
		OutboundRequest{
			Method:      http.MethodPost,
			Path:        "api/products",
			AuthHeaders: p.BearerTokenAuthHeaders(),
			Headers:     map[string]string{"Content-Type": "application/json"},
			ReqBodyObj:  product,
			SuccessCode: http.StatusOK,
			RespObj:     &respBody,
		},
	); err != nil {
		return "", err
	}
	return respBody.ProductID, nil
}

func (p *productsClient) List(
	_ context.Context,
	category string,
) (core.ProductList, error) {
	products := core.ProductList{}
	queryParams := map[string]string{}
	if category != "" {
		queryParams["category"] = category
	}
	return products, p.ExecuteRequest(
		OutboundRequest{
			Method:      http.MethodGet,
			Path:        "api/products",
			QueryParams: queryParams,
			SuccessCode: http.StatusOK,
			RespObj:     &products,
		},
	)
}
