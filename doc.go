/*
Package mrsim simulates solid-state NMR spectra of powder samples.

A simulation combines a Method (channels, spectral dimensions and the events
along them) with one or more spin systems. For every spin system the
transition query of each event is resolved into concrete transitions, the
per-event catalogs are combined into transition pathways, and the pathway
frequencies are averaged over an orientation grid into a binned spectrum.

# Concept

Each event of a method carries a transition query: a set of symmetry
targets, per channel, for the P (Δm) and D (m_f² - m_i²) functionals. The
query is expanded against the isotopes of each spin system by padding and
permutation, then used to filter every possible Zeeman transition. Spin
systems without a site on a method channel resolve to no pathways; this is
reported as a diagnostic, not an error.

Frequencies include the isotropic and anisotropic chemical shift and the
first- and second-order quadrupolar interaction. Under magic angle spinning
the rotor period is sampled and either time-averaged or, for
single-dimension methods, expanded into spinning sidebands.

# Usage

	sim, err := mrsim.New(mrsim.WithIntegrationDensity(40))
	if err != nil {
		log.Fatal(err)
	}

	m := method.BlochDecaySpectrum("29Si",
		method.SpectralDimension{Count: 2048, SpectralWidth: 25000, ReferenceOffset: -10000},
		method.WithFluxDensity(14.1),
		method.WithRotorFrequency(1500),
	)
	site := domain.Site{Isotope: "29Si", IsotropicChemicalShift: -89}

	res, err := sim.Run(ctx, mrsim.Simulation{
		Method:      m,
		SpinSystems: []domain.SpinSystem{domain.NewSpinSystem(site)},
	})

The CLI in cmd/mrsim reads the same simulation from a YAML or JSON document.
*/
package mrsim
