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

// Package client implements the oauth2gatectl "client" subcommands, which
// manage the INI-file client registry an oauth2gate-server instance loads
// at startup.
package client

import (
	"errors"

	"github.com/spf13/cobra"
)

// ErrIncorrectArgumentNum is raised when a subcommand's positional
// arguments don't match what it expects.
var ErrIncorrectArgumentNum = errors.New("incorrect number of arguments specified")

// NewClientCommand creates a command that manages registered clients.
func NewClientCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage registered OAuth2 clients.",
		Long:  "Manage registered OAuth2 clients.",
	}

	commands := []*cobra.Command{
		newClientCreateCommand(),
		newClientShowCommand(),
	}

	cmd.AddCommand(commands...)

	return cmd
}
