package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/mrsim/pkg/domain"
	"github.com/aretw0/mrsim/pkg/method"
	"github.com/aretw0/mrsim/pkg/postsim"
	"github.com/aretw0/mrsim/pkg/schema"
)

var (
	siteSchema = schema.Schema{
		"isotope":                  schema.String(),
		"isotropic_chemical_shift": schema.Optional(schema.Dimensionless()),
	}
	shieldingSchema = withAngles(schema.Schema{
		"zeta": schema.Dimensionless(),
		"eta":  schema.Optional(schema.Float()),
	})
	quadrupolarSchema = withAngles(schema.Schema{
		"Cq":  schema.Frequency(),
		"eta": schema.Optional(schema.Float()),
	})
	systemSchema = schema.Schema{
		"abundance": schema.Optional(schema.Percent()),
	}
	dimensionSchema = schema.Schema{
		"count":            schema.Optional(schema.Int()),
		"spectral_width":   schema.Frequency(),
		"reference_offset": schema.Optional(schema.Frequency()),
	}
	eventSchema = schema.Schema{
		"fraction":              schema.Optional(schema.Float()),
		"magnetic_flux_density": schema.Optional(schema.MagneticFluxDensity()),
		"rotor_frequency":       schema.Optional(schema.Frequency()),
		"rotor_angle":           schema.Optional(schema.Angle()),
	}
	postSchema = schema.Schema{
		"scale": schema.Optional(schema.Float()),
	}
	apodizationSchema = schema.Schema{
		"function":  schema.String(),
		"args":      schema.Optional(schema.Slice(schema.Frequency())),
		"dimension": schema.Optional(schema.Int()),
		"fraction":  schema.Optional(schema.Float()),
	}
)

// Schemas returns the unit schema of each document section, keyed by the
// section's path pattern.
func Schemas() map[string]schema.Schema {
	return map[string]schema.Schema{
		"spin_systems[]":                             systemSchema,
		"spin_systems[].sites[]":                     siteSchema,
		"spin_systems[].sites[].shielding_symmetric": shieldingSchema,
		"spin_systems[].sites[].quadrupolar":         quadrupolarSchema,
		"method.spectral_dimensions[]":               dimensionSchema,
		"method.spectral_dimensions[].events[]":      eventSchema,
		"post_simulation":                            postSchema,
		"post_simulation.apodization[]":              apodizationSchema,
	}
}

func withAngles(s schema.Schema) schema.Schema {
	for _, k := range []string{"alpha", "beta", "gamma"} {
		s[k] = schema.Optional(schema.Angle())
	}
	return s
}

// decoder walks a raw document and collects every error with its path.
type decoder struct {
	errs []error
}

func (d *decoder) fail(path, reason string, err error) {
	d.errs = append(d.errs, &schema.ValidationError{Key: path, Reason: reason, Err: err})
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// normalize converts the quantity fields of m, prefixing error keys with path.
func (d *decoder) normalize(m map[string]any, path string, s schema.Schema) map[string]any {
	out, err := schema.Normalize(s, m)
	if err == nil {
		return out
	}
	for _, e := range schema.ValidationErrors(err) {
		var ve *schema.ValidationError
		if errors.As(e, &ve) {
			prefixed := *ve
			prefixed.Key = join(path, ve.Key)
			d.errs = append(d.errs, &prefixed)
			continue
		}
		d.errs = append(d.errs, e)
	}
	return nil
}

func (d *decoder) decode(m map[string]any, out any, path string) {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
		DecodeHook:  mapstructure.TextUnmarshallerHookFunc(),
	})
	if err != nil {
		d.fail(path, err.Error(), err)
		return
	}
	if err := dec.Decode(m); err != nil {
		var merr *mapstructure.Error
		if errors.As(err, &merr) {
			for _, msg := range merr.Errors {
				d.fail(path, msg, err)
			}
			return
		}
		d.fail(path, err.Error(), err)
	}
}

func (d *decoder) asMap(v any, path string) map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		d.fail(path, fmt.Sprintf("expected a mapping, got %T", v), nil)
		return nil
	}
	return m
}

// section returns m[key] as a map, or nil when absent.
func (d *decoder) section(m map[string]any, key string) map[string]any {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	return d.asMap(v, key)
}

// list removes key from m and returns it as a list.
func (d *decoder) list(m map[string]any, key, path string) ([]any, bool) {
	v, ok := m[key]
	delete(m, key)
	if !ok || v == nil {
		return nil, false
	}
	items, isList := v.([]any)
	if !isList {
		d.fail(path, fmt.Sprintf("expected a list, got %T", v), nil)
		return nil, false
	}
	return items, true
}

// pop removes key from m and returns it as a map.
func (d *decoder) pop(m map[string]any, key, path string) map[string]any {
	v, ok := m[key]
	delete(m, key)
	if !ok || v == nil {
		return nil
	}
	return d.asMap(v, path)
}

func (d *decoder) spinSystem(m map[string]any, path string) domain.SpinSystem {
	sys := domain.NewSpinSystem()
	m = d.normalize(m, path, systemSchema)
	if m == nil {
		return sys
	}
	sites, _ := d.list(m, "sites", join(path, "sites"))
	d.decode(m, &sys, path)
	for i, item := range sites {
		sitePath := fmt.Sprintf("%s.sites[%d]", path, i)
		if sm := d.asMap(item, sitePath); sm != nil {
			sys.Sites = append(sys.Sites, d.site(sm, sitePath))
		}
	}
	return sys
}

func (d *decoder) site(m map[string]any, path string) domain.Site {
	var site domain.Site
	m = d.normalize(m, path, siteSchema)
	if m == nil {
		return site
	}
	if sm := d.pop(m, "shielding_symmetric", join(path, "shielding_symmetric")); sm != nil {
		p := join(path, "shielding_symmetric")
		if sm = d.normalize(sm, p, shieldingSchema); sm != nil {
			site.ShieldingSymmetric = &domain.SymmetricShielding{}
			d.decode(sm, site.ShieldingSymmetric, p)
		}
	}
	if qm := d.pop(m, "quadrupolar", join(path, "quadrupolar")); qm != nil {
		p := join(path, "quadrupolar")
		if qm = d.normalize(qm, p, quadrupolarSchema); qm != nil {
			site.Quadrupolar = &domain.Quadrupolar{}
			d.decode(qm, site.Quadrupolar, p)
		}
	}
	d.decode(m, &site, path)
	return site
}

func (d *decoder) method(m map[string]any, path string) method.Method {
	var out method.Method
	dims, _ := d.list(m, "spectral_dimensions", join(path, "spectral_dimensions"))
	d.decode(m, &out, path)
	for i, item := range dims {
		dimPath := fmt.Sprintf("%s.spectral_dimensions[%d]", path, i)
		if dm := d.asMap(item, dimPath); dm != nil {
			dim, ppm := d.dimension(dm, dimPath)
			if len(ppm) > 0 {
				d.fromPPM(&dim, ppm, out.Channels, dimPath)
			}
			out.SpectralDimensions = append(out.SpectralDimensions, dim)
		}
	}
	return out
}

// relativeFields may be given in ppm of the channel Larmor frequency.
var relativeFields = []string{"spectral_width", "reference_offset"}

// popPPM removes the relativeFields of m written in a dimensionless unit and
// returns their values in ppm.
func popPPM(m map[string]any) map[string]float64 {
	out := map[string]float64{}
	for _, key := range relativeFields {
		s, ok := m[key].(string)
		if !ok {
			continue
		}
		if _, err := schema.ParseQuantity(s, schema.KindFrequency); !errors.Is(err, schema.ErrUnitMismatch) {
			continue
		}
		if v, err := schema.ParseQuantity(s, schema.KindDimensionless); err == nil {
			out[key] = v
			delete(m, key)
		}
	}
	return out
}

// fromPPM converts ppm values to Hz with the Larmor frequency of the first
// channel at the field of the dimension's first event.
func (d *decoder) fromPPM(dim *method.SpectralDimension, ppm map[string]float64, channels []string, path string) {
	if len(channels) == 0 {
		d.fail(path, "ppm values need a method channel", nil)
		return
	}
	iso, err := domain.LookupIsotope(channels[0])
	if err != nil {
		d.fail(path, err.Error(), err)
		return
	}
	field := method.DefaultFluxDensity
	if len(dim.Events) > 0 {
		field = dim.Events[0].MagneticFluxDensity
	}
	hzPerPPM := math.Abs(iso.LarmorFrequency(field)) * 1e-6
	if v, ok := ppm["spectral_width"]; ok {
		dim.SpectralWidth = v * hzPerPPM
	}
	if v, ok := ppm["reference_offset"]; ok {
		dim.ReferenceOffset = v * hzPerPPM
	}
}

func (d *decoder) dimension(m map[string]any, path string) (method.SpectralDimension, map[string]float64) {
	dim := method.SpectralDimension{Count: method.DefaultCount}
	ppm := popPPM(m)
	s := dimensionSchema
	if _, ok := ppm["spectral_width"]; ok {
		s = schema.Schema{}
		for k, v := range dimensionSchema {
			if k != "spectral_width" {
				s[k] = v
			}
		}
	}
	m = d.normalize(m, path, s)
	if m == nil {
		return dim, nil
	}
	events, _ := d.list(m, "events", join(path, "events"))
	d.decode(m, &dim, path)
	for i, item := range events {
		evPath := fmt.Sprintf("%s.events[%d]", path, i)
		if em := d.asMap(item, evPath); em != nil {
			dim.Events = append(dim.Events, d.event(em, evPath))
		}
	}
	return dim, ppm
}

func (d *decoder) event(m map[string]any, path string) method.Event {
	ev := method.NewEvent()
	m = d.normalize(m, path, eventSchema)
	if m == nil {
		return ev
	}
	if qm := d.pop(m, "transition_query", join(path, "transition_query")); qm != nil {
		q, err := method.ParseTransitionQuery(qm)
		if err != nil {
			d.fail(join(path, "transition_query"), err.Error(), err)
		} else {
			ev.TransitionQuery = q
		}
	}
	d.decode(m, &ev, path)
	return ev
}

func (d *decoder) postSimulation(m map[string]any, path string) postsim.PostSimulator {
	post := postsim.New()
	m = d.normalize(m, path, postSchema)
	if m == nil {
		return post
	}
	items, _ := d.list(m, "apodization", join(path, "apodization"))
	d.decode(m, &post, path)
	for i, item := range items {
		apPath := fmt.Sprintf("%s.apodization[%d]", path, i)
		am := d.asMap(item, apPath)
		if am == nil {
			continue
		}
		if am = d.normalize(am, apPath, apodizationSchema); am == nil {
			continue
		}
		a := postsim.Apodization{Args: []float64{0}, Fraction: 1}
		d.decode(am, &a, apPath)
		post.Apodization = append(post.Apodization, a)
	}
	return post
}
