package runtime

import (
	"math"

	"github.com/aretw0/mrsim/pkg/orientation"
)

// worker evaluates units of work into a private accumulator.
type worker struct {
	acc          *accumulator
	events       []eventModel
	sidebandMode bool
	solver       *sidebandSolver
	dims         int

	freqs       []float64
	samples     []float64
	intensities []float64
	// energy[event] holds samples × sites × levels values
	energy [][]float64
	crystals []crystallite

	faults int
}

func newWorker(acc *accumulator, events []eventModel, sidebandMode bool, samples, sidebands int) *worker {
	w := &worker{
		acc:          acc,
		events:       events,
		sidebandMode: sidebandMode,
		dims:         len(acc.axes),
		freqs:        make([]float64, len(acc.axes)),
		energy:       make([][]float64, len(events)),
	}
	if sidebandMode {
		w.solver = newSidebandSolver(samples)
		w.samples = make([]float64, samples)
		w.intensities = make([]float64, samples)
	}
	return w
}

// process adds the contribution of every pathway of sys at the given nodes.
func (w *worker) process(sys preparedSystem, nodes []orientation.Node) {
	nsites := len(sys.sites)
	maxLevels := 1
	for _, s := range sys.sites {
		maxLevels = max(maxLevels, s.levels)
	}
	if cap(w.crystals) < nsites {
		w.crystals = make([]crystallite, nsites)
	}
	w.crystals = w.crystals[:nsites]

	for _, node := range nodes {
		for si, s := range sys.sites {
			w.crystals[si] = s.orient(node)
		}
		w.evaluateEnergies(sys, nsites, maxLevels)

		weight := node.Weight * sys.fraction
		for _, p := range sys.paths {
			if w.sidebandMode {
				w.depositSidebands(p, nsites, maxLevels, weight*p.weight)
				continue
			}
			w.depositMean(p, nsites, maxLevels, weight*p.weight)
		}
	}
}

func (w *worker) evaluateEnergies(sys preparedSystem, nsites, maxLevels int) {
	for ei, ev := range w.events {
		size := ev.samples * nsites * maxLevels
		if cap(w.energy[ei]) < size {
			w.energy[ei] = make([]float64, size)
		}
		buf := w.energy[ei][:size]
		for j := 0; j < ev.samples; j++ {
			phase := 2 * math.Pi * float64(j) / float64(ev.samples)
			for si, s := range sys.sites {
				off := (j*nsites + si) * maxLevels
				s.energies(buf[off:off+s.levels], w.crystals[si], ev.rotor, phase, sys.larmor[ei][si])
			}
		}
		w.energy[ei] = buf
	}
}

// transitionFrequency sums e(initial) - e(final) over the sites at sample j.
func (w *worker) transitionFrequency(p preparedPath, ei, j, nsites, maxLevels int) float64 {
	buf := w.energy[ei]
	f := 0.0
	for si, lv := range p.levels[ei] {
		off := (j*nsites + si) * maxLevels
		f += buf[off+lv[0]] - buf[off+lv[1]]
	}
	return f
}

func (w *worker) depositMean(p preparedPath, nsites, maxLevels int, weight float64) {
	for d := range w.freqs {
		w.freqs[d] = 0
	}
	for ei, ev := range w.events {
		mean := 0.0
		for j := 0; j < ev.samples; j++ {
			mean += w.transitionFrequency(p, ei, j, nsites, maxLevels)
		}
		mean /= float64(ev.samples)
		w.freqs[ev.dim] += ev.fraction * mean
	}
	for _, f := range w.freqs {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			w.faults++
			return
		}
	}
	w.acc.deposit(w.freqs, weight)
}

// depositSidebands is used for spinning single-dimension methods, where
// every event shares the rotor frequency and sample count.
func (w *worker) depositSidebands(p preparedPath, nsites, maxLevels int, weight float64) {
	n := w.solver.n
	for j := range w.samples {
		w.samples[j] = 0
	}
	for ei, ev := range w.events {
		for j := 0; j < n; j++ {
			w.samples[j] += ev.fraction * w.transitionFrequency(p, ei, j, nsites, maxLevels)
		}
	}
	for _, f := range w.samples {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			w.faults++
			return
		}
	}

	rotorFrequency := w.events[0].rotorFrequency
	mean := w.solver.solve(w.samples, rotorFrequency, w.intensities)
	for k, intensity := range w.intensities {
		if intensity == 0 {
			continue
		}
		w.freqs[0] = mean + float64(sidebandOrder(k, n))*rotorFrequency
		w.acc.deposit(w.freqs, weight*intensity)
	}
}
