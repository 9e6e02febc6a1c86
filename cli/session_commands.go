package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/ghodss/yaml"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var loginCommand = &cli.Command{
	Name:  "login",
	Usage: "Log in to the Dextro API server",
	Description: "Sign-in happens in a browser: visit the server's " +
		"/auth/google endpoint, complete the provider's consent flow, and " +
		"paste the token it hands back.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     flagServer,
			Aliases:  []string{"s"},
			Usage:    "Log in to the API server at the specified address (required)",
			Required: true,
		},
		&cli.StringFlag{
			Name:    flagToken,
			Aliases: []string{"t"},
			Usage:   "Use the specified token instead of prompting for one",
		},
		&cli.BoolFlag{
			Name:    flagBrowse,
			Aliases: []string{"b"},
			Usage:   "Print the URL where sign-in begins",
		},
	},
	Action: login,
}

var logoutCommand = &cli.Command{
	Name:   "logout",
	Usage:  "Log out of the Dextro API server",
	Action: logout,
}

var whoamiCommand = &cli.Command{
	Name:  "whoami",
	Usage: "Show the identity the API server currently recognizes",
	Flags: []cli.Flag{
		cliFlagOutput,
	},
	Action: whoami,
}

func login(c *cli.Context) error {
	apiAddress := c.String(flagServer)

	if c.Bool(flagBrowse) {
		fmt.Printf(
			"Open the following URL in a browser to begin sign-in:\n\n"+
				"  %s/auth/google\n\n",
			apiAddress,
		)
	}

	token := c.String(flagToken)
	if token == "" {
		if err := survey.AskOne(
			&survey.Password{
				Message: "Token",
			},
			&token,
			survey.WithValidator(survey.Required),
		); err != nil {
			return errors.Wrap(err, "error reading token")
		}
	}

	if err := saveConfig(
		&config{
			APIAddress: apiAddress,
			APIToken:   token,
		},
	); err != nil {
		return errors.Wrap(err, "error persisting configuration")
	}

	// Prove the token works before declaring victory.
	client, err := getClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting dextro client")
	}
	principal, err := client.Auth().CurrentUser(c.Context)
	if err != nil {
		// The saved token is useless; don't leave it lying around.
		if err := deleteConfig(); err != nil {
			fmt.Printf("error deleting config: %s\n", err)
		}
		return err
	}

	fmt.Printf("\nYou are logged in as %s.\n", principal.Email)

	return nil
}

func logout(c *cli.Context) error {
	client, err := getClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting dextro client")
	}

	// Best effort: the local token is discarded regardless.
	if err := client.Auth().Logout(c.Context); err != nil {
		fmt.Printf("error ending server-side session: %s\n", err)
	}

	if err := deleteConfig(); err != nil {
		return errors.Wrap(err, "error deleting configuration")
	}

	fmt.Println("Logout was successful.")

	return nil
}

func whoami(c *cli.Context) error {
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	client, err := getClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting dextro client")
	}

	principal, err := client.Auth().CurrentUser(c.Context)
	if err != nil {
		return err
	}

	switch strings.ToLower(output) {
	case "table":
		table := uitable.New()
		table.AddRow("SUBJECT", "EMAIL", "NAME", "EXPIRES")
		table.AddRow(
			principal.Subject,
			principal.Email,
			principal.Name,
			principal.ExpiresAt,
		)
		fmt.Println(table)

	case "yaml":
		yamlBytes, err := yaml.Marshal(principal)
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from whoami operation",
			)
		}
		fmt.Println(string(yamlBytes))

	case "json":
		prettyJSON, err := json.MarshalIndent(principal, "", "  ")
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from whoami operation",
			)
		}
		fmt.Println(string(prettyJSON))
	}

	return nil
}
