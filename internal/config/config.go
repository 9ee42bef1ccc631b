package config

import (
	"fmt"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// FarmwareName is the name declared in the farmware manifest. Input values
// are delivered as environment variables namespaced by it.
const FarmwareName = "Plant Grid"

// Input keys declared in the farmware manifest
const (
	// KeyXNum is the number of plants along the x axis
	KeyXNum = "x_num"

	// KeyYNum is the number of plants along the y axis
	KeyYNum = "y_num"

	// KeyXStep is the distance between plants along the x axis (mm)
	KeyXStep = "x_step"

	// KeyYStep is the distance between plants along the y axis (mm)
	KeyYStep = "y_step"

	// KeyXStart is the x coordinate of the first plant (mm)
	KeyXStart = "x_start"

	// KeyYStart is the y coordinate of the first plant (mm)
	KeyYStart = "y_start"

	// KeyRadius is the plant radius shown in the farm designer (mm)
	KeyRadius = "radius"

	// KeyName is the display name of every plant created
	KeyName = "name"

	// KeySlug is the OpenFarm crop slug of every plant created
	KeySlug = "slug"
)

// MaxPlants bounds XNum*YNum. One create call is made per plant.
const MaxPlants = 10000

// Config represents the grid configuration
type Config struct {
	// XNum is the number of columns (must be positive)
	XNum int `json:"x_num"`

	// YNum is the number of rows (must be positive)
	YNum int `json:"y_num"`

	// XStep is the spacing between columns, may be negative or zero
	XStep int `json:"x_step"`

	// YStep is the spacing between rows, may be negative or zero
	YStep int `json:"y_step"`

	// XStart is the x coordinate of the first column
	XStart int `json:"x_start"`

	// YStart is the y coordinate of the first row
	YStart int `json:"y_start"`

	// Radius is the plant radius (non-negative)
	Radius float64 `json:"radius"`

	// Name is the plant name
	Name string `json:"name"`

	// Slug identifies the crop in OpenFarm
	Slug string `json:"slug"`
}

// DefaultConfig returns the manifest defaults
func DefaultConfig() *Config {
	return &Config{
		XNum:   2,
		YNum:   2,
		XStep:  100,
		YStep:  100,
		XStart: 100,
		YStart: 100,
		Radius: 25,
		Name:   "Radish",
		Slug:   "radish",
	}
}

// EnvKey returns the environment variable holding the given input of a farmware.
// "Plant Grid" and "x_num" become "plant_grid_x_num".
func EnvKey(farmwareName, key string) string {
	namespace := strings.NewReplacer(" ", "_", "-", "_").Replace(farmwareName)
	return strings.ToLower(namespace) + "_" + key
}

// Load reads the farmware inputs from the environment, starting from DefaultConfig.
// Keys that are unset keep their default. All malformed values are reported together.
func Load(farmwareName string, getenv func(key string) string) (*Config, error) {
	cfg := DefaultConfig()
	var errs field.ErrorList

	ints := []struct {
		key string
		dst *int
	}{
		{KeyXNum, &cfg.XNum},
		{KeyYNum, &cfg.YNum},
		{KeyXStep, &cfg.XStep},
		{KeyYStep, &cfg.YStep},
		{KeyXStart, &cfg.XStart},
		{KeyYStart, &cfg.YStart},
	}
	for _, in := range ints {
		envKey := EnvKey(farmwareName, in.key)
		raw := strings.TrimSpace(getenv(envKey))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, field.Invalid(field.NewPath(envKey), raw, "must be an integer"))
			continue
		}
		*in.dst = v
	}

	radiusKey := EnvKey(farmwareName, KeyRadius)
	if raw := strings.TrimSpace(getenv(radiusKey)); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, field.Invalid(field.NewPath(radiusKey), raw, "must be a number"))
		} else {
			cfg.Radius = v
		}
	}

	if v := getenv(EnvKey(farmwareName, KeyName)); v != "" {
		cfg.Name = v
	}
	if v := getenv(EnvKey(farmwareName, KeySlug)); v != "" {
		cfg.Slug = v
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid farmware inputs: %w", errs.ToAggregate())
	}
	return cfg, nil
}

// Validate checks the configuration bounds
func (c *Config) Validate() error {
	var errs field.ErrorList

	if c.XNum < 1 {
		errs = append(errs, field.Invalid(field.NewPath(KeyXNum), c.XNum, "must be positive"))
	}
	if c.YNum < 1 {
		errs = append(errs, field.Invalid(field.NewPath(KeyYNum), c.YNum, "must be positive"))
	}
	if c.XNum >= 1 && c.YNum >= 1 && c.XNum > MaxPlants/c.YNum {
		errs = append(errs, field.Invalid(field.NewPath(KeyXNum), c.XNum,
			fmt.Sprintf("%s*%s must not exceed %d (%s=%d)", KeyXNum, KeyYNum, MaxPlants, KeyYNum, c.YNum)))
	}
	if c.Radius < 0 {
		errs = append(errs, field.Invalid(field.NewPath(KeyRadius), c.Radius, "must not be negative"))
	}
	if c.Name == "" {
		errs = append(errs, field.Required(field.NewPath(KeyName), ""))
	}
	if c.Slug == "" {
		errs = append(errs, field.Required(field.NewPath(KeySlug), ""))
	}

	return errs.ToAggregate()
}
