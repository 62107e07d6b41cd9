/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom is the triangle engine behind worksheet figures.
// It derives vertex coordinates from the standard SSS/SAS/ASA/AAS parameterizations
// (or raw coordinates), computes the classical centers, and produces render
// parameters for angle arcs, right-angle symbols, and auto-positioned labels.
// Everything here is pure arithmetic over value types: no I/O, no state, safe to
// call from any number of goroutines. Outputs are plain points and angles; turning
// them into TikZ or PDF drawing commands is the caller's job.
package geom
