// Package method models NMR measurement methods.
//
// A Method owns ordered SpectralDimensions, each holding ordered Events.
// Every Event carries its field, spinning conditions, fraction and a
// TransitionQuery that selects the transitions active while it lasts.
// Methods are read-only during a simulation run.
package method
