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

// Package serve implements the oauth2gatectl "serve" subcommand, a thin
// cobra wrapper around pkg/oauth2server for local development.
package serve

import (
	"context"

	"github.com/spf13/cobra"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/eschercloudai/oauth2gate/pkg/constants"
	"github.com/eschercloudai/oauth2gate/pkg/oauth2"
	"github.com/eschercloudai/oauth2gate/pkg/oauth2server"
)

// NewServeCommand creates a command that runs the OAuth2 server in process,
// for local development against the same clients file "client create" and
// "client show" operate on.
func NewServeCommand() *cobra.Command {
	opts := oauth2server.NewOptions()
	config := oauth2.NewConfig()

	cmd := &cobra.Command{
		Use:   "serve [flags]",
		Short: "Run the OAuth2 server.",
		Long:  "Run the OAuth2 server against the in-memory store, for local development.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.SetLogger(zap.New())

			logger := log.Log.WithName(constants.Application)
			logger.Info("service starting", "application", constants.Application, "version", constants.Version, "revision", constants.Revision)

			return oauth2server.Run(context.Background(), logger, config, opts)
		},
	}

	opts.AddFlags(cmd.Flags())
	config.AddFlags(cmd.Flags())

	return cmd
}
