package method

// BlochDecaySpectrum is a one-pulse acquisition of single-quantum (p = -1)
// transitions on a single channel.
func BlochDecaySpectrum(channel string, dim SpectralDimension, opts ...EventOption) Method {
	ev := NewEvent(opts...)
	ev.TransitionQuery = DefaultQuery()
	dim.Events = []Event{ev}
	return Method{
		Name:               "BlochDecaySpectrum",
		Description:        "Simulate a 1D Bloch decay spectrum.",
		Channels:           []string{channel},
		SpectralDimensions: []SpectralDimension{dim},
	}
}

// BlochDecayCentralTransitionSpectrum is a Bloch decay restricted to the
// central (m = 1/2 → -1/2) transition of quadrupolar nuclei.
func BlochDecayCentralTransitionSpectrum(channel string, dim SpectralDimension, opts ...EventOption) Method {
	ev := NewEvent(opts...)
	ev.TransitionQuery = CentralTransitionQuery()
	dim.Events = []Event{ev}
	return Method{
		Name:               "BlochDecayCentralTransitionSpectrum",
		Description:        "Simulate a 1D Bloch decay central transition spectrum.",
		Channels:           []string{channel},
		SpectralDimensions: []SpectralDimension{dim},
	}
}
