// Package config reads channel construction options from a TOML file and
// MC1D_ environment variables, and writes them back out as TOML.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/notargets/ChannelModel/channel"
	"github.com/notargets/ChannelModel/discretization"
	"github.com/notargets/ChannelModel/model"
	"github.com/notargets/ChannelModel/properties"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment variable names, e.g.
// MC1D_FINITE_ELEMENTS or MC1D_PROPERTIES_SOLUTES
const EnvPrefix = "MC1D"

// File is the on-disk form of a channel configuration
type File struct {
	Name                 string     `mapstructure:"name" toml:"name"`
	Time                 []float64  `mapstructure:"time" toml:"time"`
	FlowDirection        string     `mapstructure:"flow_direction" toml:"flow_direction"`
	AreaDefinition       string     `mapstructure:"area_definition" toml:"area_definition"`
	TransformationMethod string     `mapstructure:"transformation_method" toml:"transformation_method"`
	TransformationScheme string     `mapstructure:"transformation_scheme" toml:"transformation_scheme"`
	FiniteElements       int        `mapstructure:"finite_elements" toml:"finite_elements"`
	CollocationPoints    int        `mapstructure:"collocation_points" toml:"collocation_points"`
	LengthDomainSet      []float64  `mapstructure:"length_domain_set" toml:"length_domain_set"`
	HasPressureChange    bool       `mapstructure:"has_pressure_change" toml:"has_pressure_change"`
	PressureChangeType   string     `mapstructure:"pressure_change_type" toml:"pressure_change_type"`
	Properties           Properties `mapstructure:"properties" toml:"properties"`
	Inlet                Inlet      `mapstructure:"inlet" toml:"inlet"`
}

// Properties configures the aqueous property package
type Properties struct {
	Solvent string   `mapstructure:"solvent" toml:"solvent"`
	Solutes []string `mapstructure:"solutes" toml:"solutes"`
	Ions    []string `mapstructure:"ions" toml:"ions"`
}

// Inlet is the state used to initialize the channel
type Inlet struct {
	Temperature float64 `mapstructure:"temperature" toml:"temperature"`
	Pressure    float64 `mapstructure:"pressure" toml:"pressure"`
	// a list rather than a table: configuration keys are case insensitive,
	// component names are not
	FlowMassComp []ComponentFlow `mapstructure:"flow_mass_comp" toml:"flow_mass_comp"`
}

type ComponentFlow struct {
	Component string  `mapstructure:"component" toml:"component"`
	FlowMass  float64 `mapstructure:"flow_mass" toml:"flow_mass"`
}

// DefaultFile is a seawater feed channel with the default discretization
func DefaultFile() File {
	return File{
		Name:                 "feed_side",
		Time:                 []float64{0},
		FlowDirection:        model.Forward.String(),
		AreaDefinition:       channel.Uniform.String(),
		TransformationMethod: "",
		TransformationScheme: "",
		FiniteElements:       20,
		CollocationPoints:    5,
		LengthDomainSet:      []float64{0, 1},
		HasPressureChange:    true,
		PressureChangeType:   channel.Calculated.String(),
		Properties: Properties{
			Solvent: "H2O",
			Solutes: []string{"NaCl"},
		},
		Inlet: Inlet{
			Temperature: 298.15,
			Pressure:    50.e5,
			FlowMassComp: []ComponentFlow{
				{Component: "H2O", FlowMass: 0.965},
				{Component: "NaCl", FlowMass: 0.035},
			},
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultFile()
	v.SetDefault("name", d.Name)
	v.SetDefault("time", d.Time)
	v.SetDefault("flow_direction", d.FlowDirection)
	v.SetDefault("area_definition", d.AreaDefinition)
	v.SetDefault("transformation_method", d.TransformationMethod)
	v.SetDefault("transformation_scheme", d.TransformationScheme)
	v.SetDefault("finite_elements", d.FiniteElements)
	v.SetDefault("collocation_points", d.CollocationPoints)
	v.SetDefault("length_domain_set", d.LengthDomainSet)
	v.SetDefault("has_pressure_change", d.HasPressureChange)
	v.SetDefault("pressure_change_type", d.PressureChangeType)
	v.SetDefault("properties.solvent", d.Properties.Solvent)
	v.SetDefault("properties.solutes", d.Properties.Solutes)
	v.SetDefault("properties.ions", d.Properties.Ions)
	v.SetDefault("inlet.temperature", d.Inlet.Temperature)
	v.SetDefault("inlet.pressure", d.Inlet.Pressure)
	v.SetDefault("inlet.flow_mass_comp", d.Inlet.FlowMassComp)
}

// Load reads the configuration file at path, if path is not empty, over the
// defaults. Environment variables take precedence over both.
func Load(path string) (*File, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("problem reading configuration file %s: %w", path, err)
		}
	}
	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &f, nil
}

// Write encodes f as TOML
func Write(w io.Writer, f *File) error {
	return toml.NewEncoder(w).Encode(f)
}

// PropertyPackage builds the aqueous property package described by f
func (f *File) PropertyPackage() (*properties.Aqueous, error) {
	return properties.NewAqueous(properties.AqueousConfig{
		Solvent: f.Properties.Solvent,
		Solutes: f.Properties.Solutes,
		Ions:    f.Properties.Ions,
	})
}

// ChannelConfig converts the option strings of f and returns the channel
// options using pkg
func (f *File) ChannelConfig(pkg properties.Package) (channel.Config, error) {
	cfg := channel.DefaultConfig(pkg)
	var err error
	if cfg.FlowDirection, err = model.ParseFlowDirection(f.FlowDirection); err != nil {
		return cfg, err
	}
	if cfg.AreaDefinition, err = channel.ParseAreaDefinition(f.AreaDefinition); err != nil {
		return cfg, err
	}
	if cfg.TransformationMethod, err = discretization.ParseMethod(f.TransformationMethod); err != nil {
		return cfg, err
	}
	if cfg.TransformationScheme, err = discretization.ParseScheme(f.TransformationScheme); err != nil {
		return cfg, err
	}
	if cfg.PressureChangeType, err = channel.ParsePressureChangeType(f.PressureChangeType); err != nil {
		return cfg, err
	}
	cfg.Time = append([]float64(nil), f.Time...)
	cfg.FiniteElements = f.FiniteElements
	cfg.CollocationPoints = f.CollocationPoints
	cfg.LengthDomainSet = append([]float64(nil), f.LengthDomainSet...)
	cfg.HasPressureChange = f.HasPressureChange
	return cfg, cfg.Validate()
}

// InletState returns the inlet as property state values
func (f *File) InletState() properties.StateValues {
	s := properties.StateValues{
		Temperature:  f.Inlet.Temperature,
		Pressure:     f.Inlet.Pressure,
		FlowMassComp: make(map[string]float64, len(f.Inlet.FlowMassComp)),
	}
	for _, c := range f.Inlet.FlowMassComp {
		s.FlowMassComp[c.Component] = c.FlowMass
	}
	return s
}
