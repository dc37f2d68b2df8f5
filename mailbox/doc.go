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

// Package mailbox reads email archives and turns raw messages into parsed
// records ready for classification. Two source layouts are supported: a
// directory of .eml files, and a single mbox file.
//
// MIME decoding is handled by enmime. Recipient extraction goes through the
// RecipientExtractor interface so provider-specific header quirks can be
// handled by versioned adapters instead of ad hoc header poking.
package mailbox
