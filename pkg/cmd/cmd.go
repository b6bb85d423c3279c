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

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/eschercloudai/oauth2gate/pkg/cmd/client"
	"github.com/eschercloudai/oauth2gate/pkg/cmd/serve"
	"github.com/eschercloudai/oauth2gate/pkg/constants"
)

// newRootCommand returns the root command and all its subordinates.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   constants.Application,
		Short: "OAuth2 authorization server administration.",
		Long: `OAuth2 authorization server administration.

This tool manages the client registry a oauth2gate-server instance reads
at startup, and can also run the server itself for local development.`,
	}

	commands := []*cobra.Command{
		newVersionCommand(),
		client.NewClientCommand(),
		serve.NewServeCommand(),
	}

	cmd.AddCommand(commands...)

	return cmd
}

// Generate creates a hierarchy of cobra commands for the application.
func Generate() *cobra.Command {
	return newRootCommand()
}
