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

package main

import (
	"context"
	"flag"

	"github.com/spf13/pflag"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/eschercloudai/oauth2gate/pkg/constants"
	"github.com/eschercloudai/oauth2gate/pkg/oauth2"
	"github.com/eschercloudai/oauth2gate/pkg/oauth2server"
)

// start is the entry point to server.
func start() {
	zapOptions := &zap.Options{}
	zapOptions.BindFlags(flag.CommandLine)

	opts := oauth2server.NewOptions()
	opts.AddFlags(pflag.CommandLine)

	config := oauth2.NewConfig()
	config.AddFlags(pflag.CommandLine)

	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pflag.Parse()

	log.SetLogger(zap.New(zap.UseFlagOptions(zapOptions)))

	logger := log.Log.WithName(constants.Application)
	logger.Info("service starting", "application", constants.Application, "version", constants.Version, "revision", constants.Revision)

	if err := oauth2server.Run(context.Background(), logger, config, opts); err != nil {
		logger.Error(err, "server exited with an error")
	}
}

func main() {
	start()
}
