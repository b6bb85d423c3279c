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
	"context"
	"fmt"
	"text/tabwriter"

	"os"

	"github.com/spf13/cobra"

	"github.com/eschercloudai/oauth2gate/pkg/oauth2store/memory"
)

// showOptions holds the "client show" subcommand's flags.
type showOptions struct {
	clientsFile string
}

// addFlags registers the subcommand's flags.
func (o *showOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.clientsFile, "clients-file", "oauth2gate-clients.ini", "INI file of registered clients.")
}

// run executes the command.
func (o *showOptions) run() error {
	store := memory.NewClientStore()

	if err := store.LoadClientsFile(o.clientsFile); err != nil && !isNotExist(err) {
		return err
	}

	clients := store.ListClients(context.Background())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush() //nolint:errcheck

	fmt.Fprintln(w, "ID\tDISPLAY NAME\tREDIRECT URI\tREVOKED")

	for _, c := range clients {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", c.ID, c.DisplayName, c.RedirectURI, c.Revoked)
	}

	return nil
}

// newClientShowCommand creates a command that lists registered clients.
func newClientShowCommand() *cobra.Command {
	o := &showOptions{}

	cmd := &cobra.Command{
		Use:   "show [flags]",
		Short: "List registered OAuth2 clients.",
		Long:  "List registered OAuth2 clients.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run()
		},
	}

	o.addFlags(cmd)

	return cmd
}
