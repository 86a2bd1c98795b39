package coherence

import "github.com/sarchlab/cohsim/hooking"

// Hook positions of a Hierarchy. The item of HookPosAccessStart is the
// Request; the item of the other two is the Outcome.
var (
	HookPosAccessStart    = &hooking.HookPos{Name: "AccessStart"}
	HookPosAccessDone     = &hooking.HookPos{Name: "AccessDone"}
	HookPosAccessRejected = &hooking.HookPos{Name: "AccessRejected"}
)
