package fabric

import "errors"

// Error kinds surfaced to the caller of ProcessFabric, matchable via
// errors.Is. Store failures are wrapped with context and passed through
// verbatim. Pod validation, document read/parse and rendering failures are
// plain errors that match none of these sentinels.
var (
	// ErrPodNotFound is returned when a named pod does not exist in the store.
	ErrPodNotFound = errors.New("pod not found")

	// ErrAmbiguousPod indicates a name collision in the store, which should
	// never happen and points at store corruption.
	ErrAmbiguousPod = errors.New("multiple pods found with the same name")

	// ErrTopologyInvalid covers missing devices or ports referenced by a
	// link, and duplicate device names within a pod.
	ErrTopologyInvalid = errors.New("topology invalid")

	// ErrAddressSpaceExhausted means a configured prefix cannot fit the
	// block required by the device count. Widen the prefix.
	ErrAddressSpaceExhausted = errors.New("address space exhausted")

	// ErrUnknownDeviceFamily means a pod references a device family missing
	// from the port catalog.
	ErrUnknownDeviceFamily = errors.New("unknown device family")

	// ErrRecreateRequired is returned when a pod's structural attributes
	// changed but the caller did not request a recreate.
	ErrRecreateRequired = errors.New("structural change requires fabric recreate")
)
