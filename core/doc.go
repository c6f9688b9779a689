/* Copyright 2024 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package core checks that a service program's sessions can always
// be identified by correlation.
//
// The checker walks a Program and computes a TypingResult for each
// fragment: which paths are certainly initialized afterwards, which
// paths the fragment needs from its context, which paths can no
// longer be tracked because of aliasing, and whether each
// correlation path was initialized with a fresh (unguessable) value.
// The results of two fragments are combined with MergeSequence,
// MergeParallel, MergeChoice, or MergeHandler, depending on how the
// fragments are composed.
//
// Each definition's facts are computed once and memoized.  A call to
// a definition that's still being checked (recursion) contributes no
// facts.
//
// Problems are reported as Diagnostics.  The checker never stops at
// the first one.
//
// To use this package, make a Checker with NewChecker and call Check.
package core
