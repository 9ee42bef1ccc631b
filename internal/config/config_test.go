package config

import (
	"math"
	"strings"
	"testing"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if cfg.XNum != 2 || cfg.YNum != 2 {
		t.Errorf("XNum, YNum = %v, %v, want 2, 2", cfg.XNum, cfg.YNum)
	}

	if cfg.XStep != 100 || cfg.YStep != 100 {
		t.Errorf("XStep, YStep = %v, %v, want 100, 100", cfg.XStep, cfg.YStep)
	}

	if cfg.Radius != 25 {
		t.Errorf("Radius = %v, want 25", cfg.Radius)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		name     string
		farmware string
		key      string
		want     string
	}{
		{
			name:     "manifest name",
			farmware: FarmwareName,
			key:      KeyXNum,
			want:     "plant_grid_x_num",
		},
		{
			name:     "dashes become underscores",
			farmware: "Plant-Grid",
			key:      KeySlug,
			want:     "plant_grid_slug",
		},
		{
			name:     "already lower case",
			farmware: "grid",
			key:      KeyRadius,
			want:     "grid_radius",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EnvKey(tt.farmware, tt.key); got != tt.want {
				t.Errorf("EnvKey(%q, %q) = %q, want %q", tt.farmware, tt.key, got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		want        *Config
		wantErr     bool
		errContains []string
	}{
		{
			name: "empty environment keeps defaults",
			env:  map[string]string{},
			want: DefaultConfig(),
		},
		{
			name: "all inputs set",
			env: map[string]string{
				"plant_grid_x_num":   "3",
				"plant_grid_y_num":   "4",
				"plant_grid_x_step":  "-50",
				"plant_grid_y_step":  "0",
				"plant_grid_x_start": "10",
				"plant_grid_y_start": " 20 ",
				"plant_grid_radius":  "12.5",
				"plant_grid_name":    "Carrot",
				"plant_grid_slug":    "carrot",
			},
			want: &Config{
				XNum:   3,
				YNum:   4,
				XStep:  -50,
				YStep:  0,
				XStart: 10,
				YStart: 20,
				Radius: 12.5,
				Name:   "Carrot",
				Slug:   "carrot",
			},
		},
		{
			name: "integer radius",
			env: map[string]string{
				"plant_grid_radius": "40",
			},
			want: func() *Config {
				cfg := DefaultConfig()
				cfg.Radius = 40
				return cfg
			}(),
		},
		{
			name: "non numeric values are all reported",
			env: map[string]string{
				"plant_grid_x_num":  "three",
				"plant_grid_y_step": "1.5",
				"plant_grid_radius": "wide",
			},
			wantErr: true,
			errContains: []string{
				"plant_grid_x_num",
				"plant_grid_y_step",
				"plant_grid_radius",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(FarmwareName, envFrom(tt.env))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				for _, s := range tt.errContains {
					if !strings.Contains(err.Error(), s) {
						t.Errorf("Load() error = %q, want it to contain %q", err.Error(), s)
					}
				}
				return
			}
			if *got != *tt.want {
				t.Errorf("Load() = %+v, want %+v", *got, *tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errContains string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:   "negative steps and starts are valid",
			mutate: func(c *Config) { c.XStep, c.YStep, c.XStart, c.YStart = -10, -20, -30, -40 },
		},
		{
			name:        "zero columns",
			mutate:      func(c *Config) { c.XNum = 0 },
			wantErr:     true,
			errContains: KeyXNum,
		},
		{
			name:        "negative rows",
			mutate:      func(c *Config) { c.YNum = -1 },
			wantErr:     true,
			errContains: KeyYNum,
		},
		{
			name:   "largest allowed grid",
			mutate: func(c *Config) { c.XNum, c.YNum = 100, MaxPlants/100 },
		},
		{
			name:        "grid larger than the plant limit",
			mutate:      func(c *Config) { c.XNum, c.YNum = 101, MaxPlants/100 },
			wantErr:     true,
			errContains: "must not exceed",
		},
		{
			name:        "counts whose product overflows int",
			mutate:      func(c *Config) { c.XNum, c.YNum = math.MaxInt/2+1, 3 },
			wantErr:     true,
			errContains: KeyXNum,
		},
		{
			name:        "negative radius",
			mutate:      func(c *Config) { c.Radius = -1 },
			wantErr:     true,
			errContains: KeyRadius,
		},
		{
			name:        "missing slug",
			mutate:      func(c *Config) { c.Slug = "" },
			wantErr:     true,
			errContains: KeySlug,
		},
		{
			name:        "missing name",
			mutate:      func(c *Config) { c.Name = "" },
			wantErr:     true,
			errContains: KeyName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.errContains)
			}
		})
	}
}
