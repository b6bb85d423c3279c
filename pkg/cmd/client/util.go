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
	"errors"
	"os"
)

// isNotExist reports whether err ultimately wraps a missing-file error, so
// "client create" can treat a not-yet-created clients file as empty rather
// than a failure.
func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
