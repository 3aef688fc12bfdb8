// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package recommend turns a free-text hiring need, or a link to a job
// posting, into a ranked list of catalog assessments.
//
// A Recommender resolves the input to plain text, embeds it with the same
// model that built the index, and asks the collection for its nearest
// neighbours. Conditions the user should see rather than a failure, such as
// an unreadable link or an empty index, come back as sentinel results.
package recommend
