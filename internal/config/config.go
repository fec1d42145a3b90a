// Package config loads and validates the frozen VisibilityRequest a run
// of the pipeline executes against (spec.md §3, §9 "Dynamic config
// objects"). Upstream YAML/env layering is an external collaborator's
// job; this package only accepts an already-flat document and validates
// it into the struct the pipeline consumes.
package config

import (
	"math"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/sytelus/highpoint/internal/errs"
)

var validate = validator.New()

// VisibilityRequest is the frozen per-run config snapshot (spec.md §3).
// Defaults are set by Default(), not by zero values, so a caller
// assembling one by hand (e.g. in tests) must call Default() first or
// fill every field explicitly.
type VisibilityRequest struct {
	ObserverEyeHeightM float64 `yaml:"observer_eye_height_m" validate:"gte=0"`
	ObstructionStartM  float64 `yaml:"obstruction_start_m" validate:"gte=0"`
	ObstructionHeightM float64 `yaml:"obstruction_height_m" validate:"gte=0"`

	MinVisibilityM      float64 `yaml:"min_visibility_m" validate:"gt=0"`
	MinFOVDeg           float64 `yaml:"min_fov_deg" validate:"gte=1"`
	AzimuthDeg          float64 `yaml:"azimuth_deg" validate:"gte=0,lt=360"`
	AzimuthToleranceDeg float64 `yaml:"azimuth_tolerance_deg" validate:"gte=0,lte=180"`

	RaysFullCircle int     `yaml:"rays_full_circle" validate:"gte=4"`
	MaxVisibilityM float64 `yaml:"max_visibility_m" validate:"gt=0"`

	ClusterGridM    float64 `yaml:"cluster_grid_m" validate:"gt=0"`
	ResolutionScale float64 `yaml:"resolution_scale" validate:"gt=0"`

	WalkingSpeedKmh float64 `yaml:"walking_speed_kmh" validate:"gt=0"`
	DrivingSpeedKmh float64 `yaml:"driving_speed_kmh" validate:"gt=0"`
	MaxWalkMinutes  float64 `yaml:"max_walk_minutes" validate:"gt=0"`

	// MaxDriveMinutes is nullable per spec.md §3; nil means "no drive-time
	// cap".
	MaxDriveMinutes *float64 `yaml:"max_drive_minutes" validate:"omitempty,gt=0"`

	ResultsLimit int `yaml:"results_limit" validate:"gte=0"`
}

// Default returns the spec's stated defaults (spec.md §3): rays_full_circle
// 72, max_visibility_m 100000, cluster_grid_m 250, resolution_scale 1 (no
// resampling), a 3-cell detection neighborhood is applied separately by
// the candidate detector's own default.
func Default() VisibilityRequest {
	return VisibilityRequest{
		ObserverEyeHeightM:  1.8,
		ObstructionStartM:   0,
		ObstructionHeightM:  0,
		MinVisibilityM:      1609.34, // 1 mile
		MinFOVDeg:           30,
		AzimuthDeg:          0,
		AzimuthToleranceDeg: 180,
		RaysFullCircle:      72,
		MaxVisibilityM:      100000,
		ClusterGridM:        250,
		ResolutionScale:     1,
		WalkingSpeedKmh:     4.8,
		DrivingSpeedKmh:     40,
		MaxWalkMinutes:      20,
		MaxDriveMinutes:     nil,
		ResultsLimit:        20,
	}
}

// LoadYAML decodes a YAML document into a VisibilityRequest, seeded with
// Default() so an omitted field keeps its spec default rather than
// zeroing out, then validates the result.
func LoadYAML(data []byte) (VisibilityRequest, error) {
	req := Default()
	if err := yaml.Unmarshal(data, &req); err != nil {
		return VisibilityRequest{}, errs.Invalidf("config: invalid yaml: %v", err)
	}
	if err := req.Validate(); err != nil {
		return VisibilityRequest{}, err
	}
	return req, nil
}

// Validate checks struct-tag constraints and the cross-field rules
// spec.md §7 calls out explicitly (rays_full_circle < 4, min_fov_deg < 0).
// NaN fails the ordered gte/gt tag comparisons, but +Inf passes a lower
// bound, so the loop below rejects every non-finite value explicitly.
func (r VisibilityRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return errs.Invalidf("config: %v", err)
	}
	for name, v := range map[string]float64{
		"observer_eye_height_m":  r.ObserverEyeHeightM,
		"obstruction_start_m":    r.ObstructionStartM,
		"obstruction_height_m":   r.ObstructionHeightM,
		"min_visibility_m":       r.MinVisibilityM,
		"min_fov_deg":            r.MinFOVDeg,
		"azimuth_deg":            r.AzimuthDeg,
		"azimuth_tolerance_deg":  r.AzimuthToleranceDeg,
		"max_visibility_m":       r.MaxVisibilityM,
		"cluster_grid_m":         r.ClusterGridM,
		"resolution_scale":       r.ResolutionScale,
		"walking_speed_kmh":      r.WalkingSpeedKmh,
		"driving_speed_kmh":      r.DrivingSpeedKmh,
		"max_walk_minutes":       r.MaxWalkMinutes,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errs.Invalidf("config: %s must be a finite number", name)
		}
	}
	if r.MaxDriveMinutes != nil && (math.IsNaN(*r.MaxDriveMinutes) || math.IsInf(*r.MaxDriveMinutes, 0)) {
		return errs.Invalid("config: max_drive_minutes must be a finite number")
	}
	return nil
}
