/*
Package domain contains the core models of the simulator.

It defines the spin-system side of a simulation and the spectrum it produces.
This package is kept free of I/O and of any knowledge about methods or
orientation averaging.

# Key Entities

  - Transition: an immutable pair of Zeeman product states with the derived
    P (Δm per site) and D (m_f² - m_i² per site) symmetry vectors.
  - TransitionList: an ordered catalog of transitions with symmetry filtering.
  - Site, SpinSystem: tensor parameters and relative abundance.
  - Isotope: nuclear spin and gyromagnetic ratio lookup.
  - Spectrum, Axis: the binned intensity array and its frequency grid.
  - LifecycleHooks: callbacks fired around a simulation run.
*/
package domain
