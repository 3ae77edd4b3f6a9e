/*
Copyright © 2024 the mpdatax authors.
This file is part of mpdatax.

mpdatax is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

mpdatax is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with mpdatax.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package config loads a solver.Config from a TOML file (or any format
// viper supports) via github.com/spf13/viper, the same typed-accessor
// pattern inmaputil/config.go's VarGridConfig(cfg *viper.Viper) uses:
// pull fields off a *viper.Viper with defaults, and turn a malformed or
// unrecognized value into a *errs.ConfigurationError (spec §7 kind 1)
// naming the key it came from. Inconsistent combinations of otherwise
// valid values are reported by solver.Config.Validate, which FromViper
// calls before returning.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/spatialmodel/mpdatax/bcond"
	"github.com/spatialmodel/mpdatax/errs"
	"github.com/spatialmodel/mpdatax/numerics"
	"github.com/spatialmodel/mpdatax/pressure"
	"github.com/spatialmodel/mpdatax/solver"
)

var conditionNames = map[string]bcond.Condition{
	"cyclic": bcond.Cyclic,
	"open":   bcond.Open,
	"rigid":  bcond.Rigid,
	"polar":  bcond.Polar,
}

var rhsSchemeNames = map[string]solver.RHSScheme{
	"none":    solver.NoRHS,
	"euler_a": solver.EulerA,
	"euler_b": solver.EulerB,
	"trapez":  solver.Trapez,
}

var prsSchemeNames = map[string]pressure.Scheme{
	"none": pressure.None,
	"cg":   pressure.CGScheme,
	"cr":   pressure.CRScheme,
	"mr":   pressure.MRScheme,
}

// Load reads a TOML (or any viper-supported format) file at path and
// unmarshals it into a solver.Config, following VarGridConfig's
// typed-accessor-with-defaults shape.
func Load(path string) (solver.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("n_iters", 1)
	v.SetDefault("n_threads", 1)
	v.SetDefault("rhs_scheme", "none")
	v.SetDefault("prs_scheme", "none")
	if err := v.ReadInConfig(); err != nil {
		return solver.Config{}, fmt.Errorf("mpdatax: reading config %s: %w", path, err)
	}
	return FromViper(v)
}

// FromViper builds a solver.Config from an already-populated *viper.Viper,
// the split VarGridConfig(cfg *viper.Viper) uses so callers that build up
// their own Viper (flags plus file plus env) can still reuse the
// accessor logic.
func FromViper(v *viper.Viper) (solver.Config, error) {
	nDims := v.GetInt("n_dims")

	gridSize, err := toIntSlice(v.Get("grid_size"))
	if err != nil {
		return solver.Config{}, &errs.ConfigurationError{Reason: "grid_size: " + err.Error()}
	}
	spacing, err := toFloatSlice(v.Get("spacing"))
	if err != nil {
		return solver.Config{}, &errs.ConfigurationError{Reason: "spacing: " + err.Error()}
	}

	opts, err := parseOpts(v.GetStringSlice("opts"))
	if err != nil {
		return solver.Config{}, err
	}

	rhsScheme, ok := rhsSchemeNames[v.GetString("rhs_scheme")]
	if !ok {
		return solver.Config{}, &errs.ConfigurationError{Reason: "rhs_scheme: unrecognized value " + v.GetString("rhs_scheme")}
	}
	prsScheme, ok := prsSchemeNames[v.GetString("prs_scheme")]
	if !ok {
		return solver.Config{}, &errs.ConfigurationError{Reason: "prs_scheme: unrecognized value " + v.GetString("prs_scheme")}
	}

	bc, err := parseBCond(v, nDims)
	if err != nil {
		return solver.Config{}, err
	}

	outVars, err := parseOutVars(v)
	if err != nil {
		return solver.Config{}, err
	}

	cfg := solver.Config{
		NDims:           nDims,
		NEqns:           v.GetInt("n_eqns"),
		GridSize:        gridSize,
		D:               spacing,
		Dt:              v.GetFloat64("dt"),
		NIters:          v.GetInt("n_iters"),
		Opts:            opts,
		RHSScheme:       rhsScheme,
		PrsScheme:       prsScheme,
		PrsTol:          v.GetFloat64("prs_tol"),
		PrsMaxIter:      v.GetInt("prs_maxiter"),
		ProjectVelocity: v.GetBool("project_velocity"),
		BCond:           bc,
		OutFreq:         v.GetInt("outfreq"),
		OutVars:         outVars,
		NThreads:        v.GetInt("n_threads"),
	}
	if err := cfg.Validate(); err != nil {
		return solver.Config{}, err
	}
	return cfg, nil
}

func parseOpts(names []string) (numerics.Options, error) {
	var o numerics.Options
	for _, n := range names {
		switch n {
		case "fct":
			o |= numerics.FCT
		case "iga":
			o |= numerics.IGA
		case "tot":
			o |= numerics.TOT
		case "dfl":
			o |= numerics.DFL
		case "nug":
			o |= numerics.NUG
		default:
			return 0, &errs.ConfigurationError{Reason: "opts: unrecognized option " + n}
		}
	}
	return o, nil
}

func parseBCond(v *viper.Viper, nDims int) (bcond.Spec, error) {
	raw, ok := v.Get("bcond").([]interface{})
	if !ok {
		return nil, &errs.ConfigurationError{Reason: "bcond must be a list of {low,high} tables, one per axis"}
	}
	if len(raw) != nDims {
		return nil, &errs.ConfigurationError{Reason: "bcond must specify one edge pair per axis"}
	}
	spec := make(bcond.Spec, nDims)
	for i, r := range raw {
		m, ok := r.(map[string]interface{})
		if !ok {
			return nil, &errs.ConfigurationError{Reason: "bcond entries must be {low, high} tables"}
		}
		low, err := conditionOf(m["low"])
		if err != nil {
			return nil, err
		}
		high, err := conditionOf(m["high"])
		if err != nil {
			return nil, err
		}
		spec[i] = bcond.Edge{Low: low, High: high}
	}
	return spec, nil
}

func conditionOf(v interface{}) (bcond.Condition, error) {
	s, _ := v.(string)
	c, ok := conditionNames[s]
	if !ok {
		return 0, &errs.ConfigurationError{Reason: "bcond: unrecognized condition " + s}
	}
	return c, nil
}

func parseOutVars(v *viper.Viper) (map[int]solver.OutVar, error) {
	raw, ok := v.Get("outvars").(map[string]interface{})
	if !ok {
		return nil, nil
	}
	out := make(map[int]solver.OutVar, len(raw))
	for k, val := range raw {
		e, err := toInt(k)
		if err != nil {
			return nil, &errs.ConfigurationError{Reason: "outvars: " + err.Error()}
		}
		m, ok := val.(map[string]interface{})
		if !ok {
			return nil, &errs.ConfigurationError{Reason: "outvars entries must be {name, unit} tables"}
		}
		name, _ := m["name"].(string)
		unit, _ := m["unit"].(string)
		out[e] = solver.OutVar{Name: name, Unit: unit}
	}
	return out, nil
}

func toInt(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}

func toIntSlice(v interface{}) ([]int, error) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a list of integers")
	}
	out := make([]int, len(items))
	for i, it := range items {
		n, ok := it.(int)
		if !ok {
			n64, ok2 := it.(int64)
			if !ok2 {
				return nil, fmt.Errorf("element %d is not an integer", i)
			}
			n = int(n64)
		}
		out[i] = n
	}
	return out, nil
}

func toFloatSlice(v interface{}) ([]float64, error) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a list of numbers")
	}
	out := make([]float64, len(items))
	for i, it := range items {
		switch n := it.(type) {
		case float64:
			out[i] = n
		case int64:
			out[i] = float64(n)
		case int:
			out[i] = float64(n)
		default:
			return nil, fmt.Errorf("element %d is not a number", i)
		}
	}
	return out, nil
}

// defaultDoc is encoded with github.com/BurntSushi/toml, viper's own
// default TOML codec, rather than hand-formatted: its field order and
// quoting follow whatever the encoder produces, which is also what a
// user's hand-edited file will be re-read as.
type defaultDoc struct {
	NDims      int                 `toml:"n_dims"`
	NEqns      int                 `toml:"n_eqns"`
	GridSize   []int               `toml:"grid_size"`
	Spacing    []float64           `toml:"spacing"`
	Dt         float64             `toml:"dt"`
	NIters     int                 `toml:"n_iters"`
	Opts       []string            `toml:"opts"`
	RHSScheme  string              `toml:"rhs_scheme"`
	PrsScheme  string              `toml:"prs_scheme"`
	PrsTol     float64             `toml:"prs_tol"`
	PrsMaxIter int                 `toml:"prs_maxiter"`
	OutFreq    int                 `toml:"outfreq"`
	NThreads   int                 `toml:"n_threads"`
	BCond      []defaultDocBCEntry `toml:"bcond"`
}

type defaultDocBCEntry struct {
	Low  string `toml:"low"`
	High string `toml:"high"`
}

// WriteDefault writes an example TOML configuration to path, a starting
// point to edit rather than having to read this package's source to
// discover the key names Load expects.
func WriteDefault(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	doc := defaultDoc{
		NDims:      1,
		NEqns:      1,
		GridSize:   []int{100},
		Spacing:    []float64{1.0},
		Dt:         1.0,
		NIters:     2,
		Opts:       []string{},
		RHSScheme:  "none",
		PrsScheme:  "none",
		PrsTol:     1e-7,
		PrsMaxIter: 1000,
		OutFreq:    0,
		NThreads:   1,
		BCond:      []defaultDocBCEntry{{Low: "cyclic", High: "cyclic"}},
	}
	return toml.NewEncoder(f).Encode(doc)
}
