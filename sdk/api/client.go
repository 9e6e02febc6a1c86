package api

// Client is the general interface for working with the API server. It wraps
// more specialized clients scoped to particular concerns.
type Client interface {
	// Auth returns a specialized client for identity concerns.
	Auth() AuthClient
	// Products returns a specialized client for Product management.
	Products() ProductsClient
}

type client struct {
	authClient     AuthClient
	productsClient ProductsClient
}

// NewClient returns a general client for working with the API server.
func NewClient(apiAddress string, apiToken string, allowInsecure bool) Client {
	return &client{
		authClient:     NewAuthClient(apiAddress, apiToken, allowInsecure),
		productsClient: NewProductsClient(apiAddress, apiToken, allowInsecure),
	}
}

func (c *client) Auth() AuthClient {
	return c.authClient
}

func (c *client) Products() ProductsClient {
	return c.productsClient
}
