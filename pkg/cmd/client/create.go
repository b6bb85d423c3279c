/*
Copyright 2022-2023 EscherCloud.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package client

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eschercloudai/oauth2gate/pkg/oauth2"
	"github.com/eschercloudai/oauth2gate/pkg/oauth2store/memory"
)

// createOptions holds the "client create" subcommand's flags.
type createOptions struct {
	clientsFile string
	client      oauth2.Client
}

// addFlags registers the subcommand's flags.
func (o *createOptions) addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVar(&o.clientsFile, "clients-file", "oauth2gate-clients.ini", "INI file of registered clients.")
	flags.StringVar(&o.client.Secret, "secret", "", "Client secret.")
	flags.StringVar(&o.client.RedirectURI, "redirect-uri", "", "Pre-registered redirect URI. Unset accepts any absolute URI at request time.")
	flags.StringVar(&o.client.DisplayName, "display-name", "", "Human-readable name shown in the consent view.")
}

// complete fills in any options not handled automatically by flag parsing.
func (o *createOptions) complete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected exactly one argument, the client id", ErrIncorrectArgumentNum)
	}

	o.client.ID = args[0]

	return nil
}

// run executes the command.
func (o *createOptions) run() error {
	store := memory.NewClientStore()

	if err := store.LoadClientsFile(o.clientsFile); err != nil && !isNotExist(err) {
		return err
	}

	store.Register(&o.client)

	if err := store.SaveClientsFile(o.clientsFile); err != nil {
		return err
	}

	fmt.Printf("client/%s created\n", o.client.ID)

	return nil
}

// newClientCreateCommand creates a command that registers a new client.
func newClientCreateCommand() *cobra.Command {
	o := &createOptions{}

	cmd := &cobra.Command{
		Use:   "create [flags] client-id",
		Short: "Register a new OAuth2 client.",
		Long:  "Register a new OAuth2 client in the clients file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.complete(args); err != nil {
				return err
			}

			return o.run()
		},
	}

	o.addFlags(cmd)

	return cmd
}
