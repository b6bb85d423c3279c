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

package memory

import (
	"context"

	"gopkg.in/ini.v1"

	"github.com/eschercloudai/oauth2gate/pkg/oauth2"
)

// LoadClientsFile populates the store from an INI file where each client is
// a section named by its ID, in the style of Config.LoadFile. Used by
// oauth2gate-server to pick up clients registered by oauth2gatectl.
func (s *ClientStore) LoadClientsFile(path string) error {
	cfg, err := ini.Load(path)
	if err != nil {
		return err
	}

	for _, section := range cfg.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}

		s.Register(&oauth2.Client{
			ID:          section.Name(),
			Secret:      section.Key("secret").String(),
			RedirectURI: section.Key("redirect_uri").String(),
			DisplayName: section.Key("display_name").String(),
			Revoked:     section.Key("revoked").MustBool(false),
		})
	}

	return nil
}

// SaveClientsFile writes every registered client to path as an INI file
// readable by LoadClientsFile.
func (s *ClientStore) SaveClientsFile(path string) error {
	cfg := ini.Empty()

	s.clients.Range(func(key, value interface{}) bool {
		client := value.(*oauth2.Client)

		section, err := cfg.NewSection(client.ID)
		if err != nil {
			return false
		}

		section.Key("secret").SetValue(client.Secret)
		section.Key("redirect_uri").SetValue(client.RedirectURI)
		section.Key("display_name").SetValue(client.DisplayName)

		if client.Revoked {
			section.Key("revoked").SetValue("true")
		}

		return true
	})

	return cfg.SaveTo(path)
}

// ListClients returns every registered client, for oauth2gatectl's
// "client show" subcommand.
func (s *ClientStore) ListClients(_ context.Context) []*oauth2.Client {
	var clients []*oauth2.Client

	s.clients.Range(func(key, value interface{}) bool {
		clients = append(clients, value.(*oauth2.Client))
		return true
	})

	return clients
}
