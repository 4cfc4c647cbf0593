// SPDX-License-Identifier: MIT

package scenario

import "errors"

// ErrInvalidScenario indicates a file that parses but cannot describe a
// problem or a valid set of run settings.
var ErrInvalidScenario = errors.New("scenario: invalid scenario")
