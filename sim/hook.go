package sim

// HookPos names a place where hooks can be invoked.
type HookPos struct {
	Name string
}

// HookCtx describes the site where a hook is invoked.
type HookCtx struct {
	// Domain is the object that invokes the hook.
	Domain Hookable
	Pos    *HookPos

	// Item is the value being reported, for example an event or a record
	// defined by the package that owns Pos.
	Item any
}

// Hookable is an object that accepts hooks.
type Hookable interface {
	AcceptHook(hook Hook)

	// NumHooks returns the number of hooks registered. Callers can skip
	// building the hook context when it is zero.
	NumHooks() int
}

// HookPosBeforeEvent is invoked by the engine before an event is handled.
var HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent is invoked by the engine after an event is handled.
var HookPosAfterEvent = &HookPos{Name: "AfterEvent"}

// A Hook observes a Hookable.
type Hook interface {
	Func(ctx HookCtx)
}

// HookableBase implements Hookable and can be embedded.
type HookableBase struct {
	Hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	return len(h.Hooks)
}

// InvokeHook calls all the registered hooks in registration order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
