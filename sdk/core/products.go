package core

import "github.com/dextrolabs/dextro/sdk/meta"

// Product represents a single product listing.
type Product struct {
	meta.ObjectMeta `json:"metadata"`
	ProductName     string  `json:"productName"`
	Description     string  `json:"description,omitempty"`
	Mobile          string  `json:"mobile,omitempty"`
	Price           float64 `json:"price"`
	Category        string  `json:"category"`
	ProductPicture  string  `json:"productPicture,omitempty"`
	UserID          string  `json:"userId"`
}

// ProductList is an ordered list of Products.
type ProductList struct {
	// Items is a slice of Products.
	Items []Product `json:"items,omitempty"`
}

// NewProduct encapsulates the seller-supplied fields of a Product that has
// not yet been submitted to the API server.
type NewProduct struct {
	ProductName string  `json:"productName"`
	Description string  `json:"description,omitempty"`
	Mobile      string  `json:"mobile,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}
