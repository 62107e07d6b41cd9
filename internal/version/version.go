/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package version carries the build identity stamped in via ldflags.
package version

// Set at build time:
//
//	go build -ldflags "-X trisheet/internal/version.Version=1.2.0 -X trisheet/internal/version.Commit=abc1234"
var (
	Version = "0.0.0-dev"
	Commit  = ""
)

// String returns the human readable version, with the commit when known.
func String() string {
	if Commit == "" {
		return Version
	}
	return Version + "+" + Commit
}
