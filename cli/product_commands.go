package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dextrolabs/dextro/sdk/core"
	"github.com/ghodss/yaml"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var productCommand = &cli.Command{
	Name:  "product",
	Usage: "Manage products",
	Subcommands: []*cli.Command{
		{
			Name:  "create",
			Usage: "Create a new product listing",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     flagName,
					Aliases:  []string{"n"},
					Usage:    "The product's name (required)",
					Required: true,
				},
				&cli.StringFlag{
					Name:    flagDescription,
					Aliases: []string{"d"},
					Usage:   "A description of the product",
				},
				&cli.StringFlag{
					Name:    flagMobile,
					Aliases: []string{"m"},
					Usage:   "A contact number for the seller",
				},
				&cli.Float64Flag{
					Name:     flagPrice,
					Aliases:  []string{"p"},
					Usage:    "The asking price (required)",
					Required: true,
				},
				&cli.StringFlag{
					Name:     flagCategory,
					Aliases:  []string{"c"},
					Usage:    "The category to list the product under (required)",
					Required: true,
				},
			},
			Action: productCreate,
		},
		{
			Name:  "list",
			Usage: "Retrieve products in a category",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    flagCategory,
					Aliases: []string{"c"},
					Usage:   "Retrieve products in the specified category",
				},
				cliFlagOutput,
			},
			Action: productList,
		},
	},
}

func productCreate(c *cli.Context) error {
	client, err := getClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting dextro client")
	}

	productID, err := client.Products().Create(
		c.Context,
		core.NewProduct{
			ProductName: c.String(flagName),
			Description: c.String(flagDescription),
			Mobile:      c.String(flagMobile),
			Price:       c.Float64(flagPrice),
			Category:    c.String(flagCategory),
		},
	)
	if err != nil {
		return err
	}

	fmt.Printf("Created product %q.\n", productID)

	return nil
}

func productList(c *cli.Context) error {
	category := c.String(flagCategory)
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	client, err := getClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting dextro client")
	}

	products, err := client.Products().List(c.Context, category)
	if err != nil {
		return err
	}

	if len(products.Items) == 0 {
		fmt.Println("No products found.")
		return nil
	}

	switch strings.ToLower(output) {
	case "table":
		table := uitable.New()
		table.AddRow("ID", "NAME", "PRICE", "CATEGORY", "LISTED")
		for _, product := range products.Items {
			table.AddRow(
				product.ID,
				product.ProductName,
				product.Price,
				product.Category,
				product.Created,
			)
		}
		fmt.Println(table)

	case "yaml":
		yamlBytes, err := yaml.Marshal(products)
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from list products operation",
			)
		}
		fmt.Println(string(yamlBytes))

	case "json":
		prettyJSON, err := json.MarshalIndent(products, "", "  ")
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from list products operation",
			)
		}
		fmt.Println(string(prettyJSON))
	}

	return nil
}
