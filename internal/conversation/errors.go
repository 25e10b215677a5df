// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import "errors"

// errNoReply covers a sender that returns no error and no reply text.
var errNoReply = errors.New("no response received")
