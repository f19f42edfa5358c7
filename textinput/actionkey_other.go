//go:build !darwin && !ios

package textinput

import "github.com/gogpu/gpucontext"

// actionKey reports whether the platform's shortcut modifier is held.
func actionKey(m gpucontext.Modifiers) bool { return m.HasControl() }

const lineBindings = false
