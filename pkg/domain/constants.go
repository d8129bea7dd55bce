package domain

// Field constants for mapstructure and JSON standardization.
const (
	// KeyInitial is the map key holding the initial spin-state vector of a transition.
	KeyInitial = "initial"

	// KeyFinal is the map key holding the final spin-state vector of a transition.
	KeyFinal = "final"
)
