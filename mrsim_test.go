package mrsim_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mrsim"
	"github.com/aretw0/mrsim/pkg/adapters/memory"
	"github.com/aretw0/mrsim/pkg/domain"
	"github.com/aretw0/mrsim/pkg/method"
	"github.com/aretw0/mrsim/pkg/orientation"
	"github.com/aretw0/mrsim/pkg/pathway"
	"github.com/aretw0/mrsim/pkg/ports"
	"github.com/aretw0/mrsim/pkg/postsim"
	"github.com/aretw0/mrsim/pkg/schema"
)

func carbonMethod() method.Method {
	return method.BlochDecaySpectrum("13C", method.SpectralDimension{Count: 128, SpectralWidth: 12800})
}

func carbon(shift float64) domain.SpinSystem {
	return domain.NewSpinSystem(domain.Site{Isotope: "13C", IsotropicChemicalShift: shift})
}

func TestNew_Options(t *testing.T) {
	_, err := mrsim.New(mrsim.WithIntegrationDensity(0))
	assert.ErrorIs(t, err, orientation.ErrInvalidDensity)

	_, err = mrsim.New(mrsim.WithWorkers(-1))
	assert.Error(t, err)

	sim, err := mrsim.New()
	require.NoError(t, err)
	assert.Nil(t, sim.Store())
}

func TestSimulator_Run(t *testing.T) {
	sim, err := mrsim.New(mrsim.WithIntegrationDensity(8), mrsim.WithWorkers(2))
	require.NoError(t, err)

	res, err := sim.Run(context.Background(), mrsim.Simulation{
		Method:      carbonMethod(),
		SpinSystems: []domain.SpinSystem{carbon(0), carbon(50)},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 2, res.Pathways())
	assert.Zero(t, res.Faults)
	assert.InDelta(t, 2, res.Spectrum.Sum(), 1e-9)
	assert.Same(t, res.Raw, res.Spectrum)
	require.Len(t, res.Systems, 2)
	assert.Equal(t, "|1/2⟩ → |-1/2⟩", res.Systems[1].Pathways[0].String())
}

func TestSimulator_RunReportsDiagnostics(t *testing.T) {
	var (
		mu          sync.Mutex
		started     int
		ended       []*domain.RunEvent
		systems     []*domain.SystemEvent
		diagnostics []*domain.DiagnosticEvent
	)
	hooks := domain.LifecycleHooks{
		OnRunStart: func(context.Context, *domain.RunEvent) { mu.Lock(); started++; mu.Unlock() },
		OnRunEnd: func(_ context.Context, ev *domain.RunEvent) {
			mu.Lock()
			ended = append(ended, ev)
			mu.Unlock()
		},
		OnSystemDone: func(_ context.Context, ev *domain.SystemEvent) {
			mu.Lock()
			systems = append(systems, ev)
			mu.Unlock()
		},
		OnDiagnostic: func(_ context.Context, ev *domain.DiagnosticEvent) {
			mu.Lock()
			diagnostics = append(diagnostics, ev)
			mu.Unlock()
		},
	}
	sim, err := mrsim.New(mrsim.WithIntegrationDensity(4), mrsim.WithHooks(hooks))
	require.NoError(t, err)

	nitrogen := domain.NewSpinSystem(domain.Site{Isotope: "15N"})
	nitrogen.Name = "glycine N"
	res, err := sim.Run(context.Background(), mrsim.Simulation{
		Method:      carbonMethod(),
		SpinSystems: []domain.SpinSystem{carbon(0), nitrogen},
	})
	require.NoError(t, err)

	require.Len(t, res.Systems[1].Diagnostics, 1)
	assert.ErrorIs(t, res.Systems[1].Diagnostics[0], pathway.ErrChannelMismatch)
	assert.Empty(t, res.Systems[1].Pathways)
	assert.InDelta(t, 1, res.Spectrum.Sum(), 1e-9)

	assert.Equal(t, 1, started)
	require.Len(t, ended, 1)
	assert.Equal(t, 1, ended[0].Pathways)
	assert.NoError(t, ended[0].Err)
	require.Len(t, systems, 2)
	assert.Equal(t, "glycine N", systems[1].Name)
	require.Len(t, diagnostics, 1)
	assert.Equal(t, "channel_mismatch", diagnostics[0].Kind)
	assert.Equal(t, 1, diagnostics[0].System)
}

func TestSimulator_RunValidation(t *testing.T) {
	var endErr error
	sim, err := mrsim.New(mrsim.WithHooks(domain.LifecycleHooks{
		OnRunEnd: func(_ context.Context, ev *domain.RunEvent) { endErr = ev.Err },
	}))
	require.NoError(t, err)

	m := carbonMethod()
	m.SpectralDimensions[0].Count = 0
	bad := carbon(0)
	bad.Abundance = 150

	_, err = sim.Run(context.Background(), mrsim.Simulation{Method: m, SpinSystems: []domain.SpinSystem{bad}})
	require.Error(t, err)
	assert.Len(t, schema.ValidationErrors(err), 2)
	assert.NoError(t, endErr, "validation fails before the run starts")
}

func TestSimulator_PostSimulationAndStore(t *testing.T) {
	store := memory.NewStore()
	sim, err := mrsim.New(mrsim.WithIntegrationDensity(4), mrsim.WithStore(store))
	require.NoError(t, err)

	post := postsim.New(postsim.NewApodization(postsim.Lorentzian, 300))
	post.Scale = 2
	res, err := sim.Run(context.Background(), mrsim.Simulation{
		Method:         carbonMethod(),
		SpinSystems:    []domain.SpinSystem{carbon(0)},
		PostSimulation: &post,
		Key:            "carbon",
	})
	require.NoError(t, err)

	assert.InDelta(t, 1, res.Raw.Sum(), 1e-9)
	assert.InDelta(t, 2, res.Spectrum.Sum(), 1e-6)
	assert.Less(t, res.Spectrum.Data[64], res.Raw.Data[64])

	stored, err := store.Load(context.Background(), "carbon")
	require.NoError(t, err)
	assert.Equal(t, res.Spectrum.Data, stored.Data)
}

func TestSimulator_WidensVolumeForOrientedTensors(t *testing.T) {
	m := method.BlochDecayCentralTransitionSpectrum("27Al", method.SpectralDimension{Count: 256, SpectralWidth: 40000})
	sys := domain.NewSpinSystem(domain.Site{
		Isotope:            "27Al",
		ShieldingSymmetric: &domain.SymmetricShielding{Zeta: 50, Eta: 0.1},
		Quadrupolar: &domain.Quadrupolar{Cq: 3e6, Eta: 0.4,
			EulerAngles: domain.EulerAngles{Alpha: 0.7, Beta: 0.9, Gamma: 0.4}},
	})

	run := func(opts ...mrsim.Option) []float64 {
		sim, err := mrsim.New(append([]mrsim.Option{mrsim.WithIntegrationDensity(20)}, opts...)...)
		require.NoError(t, err)
		res, err := sim.Run(context.Background(), mrsim.Simulation{Method: m, SpinSystems: []domain.SpinSystem{sys}})
		require.NoError(t, err)
		return res.Spectrum.Data
	}

	sphere := run(mrsim.WithIntegrationVolume(orientation.Sphere))
	assert.InDeltaSlice(t, sphere, run(), 1e-9)
	assert.InDeltaSlice(t, sphere, run(mrsim.WithIntegrationVolume(orientation.Octant)), 1e-9)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Save(ctx context.Context, key string, spectrum *domain.Spectrum) error {
	return m.Called(ctx, key, spectrum).Error(0)
}

func (m *mockStore) Load(ctx context.Context, key string) (*domain.Spectrum, error) {
	args := m.Called(ctx, key)
	s, _ := args.Get(0).(*domain.Spectrum)
	return s, args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStore) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	keys, _ := args.Get(0).([]string)
	return keys, args.Error(1)
}

func TestSimulator_StoreFailure(t *testing.T) {
	boom := errors.New("disk full")
	store := &mockStore{}
	store.On("Save", mock.Anything, "carbon", mock.AnythingOfType("*domain.Spectrum")).Return(boom).Once()

	sim, err := mrsim.New(mrsim.WithIntegrationDensity(2), mrsim.WithStore(store))
	require.NoError(t, err)

	_, err = sim.Run(context.Background(), mrsim.Simulation{
		Method:      carbonMethod(),
		SpinSystems: []domain.SpinSystem{carbon(0)},
		Key:         "carbon",
	})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `storing spectrum "carbon"`)
	store.AssertExpectations(t)
}

type recordingLocker struct {
	locked, unlocked []string
}

func (l *recordingLocker) Lock(_ context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	l.locked = append(l.locked, key)
	return func(context.Context) error {
		l.unlocked = append(l.unlocked, key)
		return nil
	}, nil
}

func TestSimulator_LocksStoredRuns(t *testing.T) {
	locker := &recordingLocker{}
	sim, err := mrsim.New(
		mrsim.WithIntegrationDensity(2),
		mrsim.WithStore(memory.NewStore()),
		mrsim.WithLocker(locker),
	)
	require.NoError(t, err)

	run := mrsim.Simulation{Method: carbonMethod(), SpinSystems: []domain.SpinSystem{carbon(0)}}
	_, err = sim.Run(context.Background(), run)
	require.NoError(t, err)
	assert.Empty(t, locker.locked, "runs without a key are not locked")

	run.Key = "k1"
	_, err = sim.Run(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, []string{"k1"}, locker.locked)
	assert.Equal(t, []string{"k1"}, locker.unlocked)
}

func TestSimulator_Transitions(t *testing.T) {
	sim, err := mrsim.New()
	require.NoError(t, err)

	m := method.BlochDecayCentralTransitionSpectrum("23Na", method.SpectralDimension{Count: 64, SpectralWidth: 1e4})
	sodium := domain.NewSpinSystem(domain.Site{Isotope: "23Na"})

	out, err := sim.Transitions(context.Background(), m, []domain.SpinSystem{sodium})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].Pathways, 1)
	assert.Equal(t, "|1/2⟩ → |-1/2⟩", out[0].Pathways[0].String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sim.Transitions(ctx, m, []domain.SpinSystem{sodium})
	assert.ErrorIs(t, err, context.Canceled)
}
