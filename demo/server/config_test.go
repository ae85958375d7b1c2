package main

import (
	"strings"
	"testing"

	sfs "github.com/tingold/orb-sfs"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Geometry.SRID != 4326 {
		t.Errorf("expected SRID 4326, got %d", cfg.Geometry.SRID)
	}
	if cfg.Geometry.Tolerance != 1e-9 {
		t.Errorf("expected tolerance 1e-9, got %g", cfg.Geometry.Tolerance)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("SFS_SERVER_PORT", "9090")
	t.Setenv("SFS_GEOMETRY_BACKEND", "fallback")
	t.Setenv("SFS_GEOMETRY_LAYOUT", "xyz")
	t.Setenv("SFS_GEOMETRY_SRID", "3857")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}

	opts, err := cfg.Geometry.FactoryOptions()
	if err != nil {
		t.Fatalf("FactoryOptions failed: %v", err)
	}
	if opts.Backend != sfs.BackendFallback || opts.Layout != sfs.XYZ || opts.SRID != 3857 {
		t.Errorf("unexpected options %+v", opts)
	}

	f := sfs.NewFactory(opts)
	if f == nil || f.IsNative() {
		t.Fatal("expected a fallback factory")
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("SFS_SERVER_PORT", "0")
	t.Setenv("SFS_GEOMETRY_BACKEND", "geos")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "unknown backend"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %q, got %v", want, err)
		}
	}
}

func TestFactoryOptions(t *testing.T) {
	tests := []struct {
		name    string
		cfg     GeometryConfig
		backend sfs.Backend
		layout  sfs.Layout
		wantErr bool
	}{
		{"defaults", GeometryConfig{}, sfs.BackendAuto, sfs.XY, false},
		{"native", GeometryConfig{Backend: "Native", Layout: "XYZM"}, sfs.BackendNative, sfs.XYZM, false},
		{"measured", GeometryConfig{Layout: "xym"}, sfs.BackendAuto, sfs.XYM, false},
		{"bad backend", GeometryConfig{Backend: "geos"}, 0, 0, true},
		{"bad layout", GeometryConfig{Layout: "XZ"}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := tt.cfg.FactoryOptions()
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if err != nil {
				return
			}
			if opts.Backend != tt.backend || opts.Layout != tt.layout {
				t.Errorf("expected %v %v, got %v %v", tt.backend, tt.layout, opts.Backend, opts.Layout)
			}
			if opts.Engine == nil {
				t.Error("expected an engine")
			}
		})
	}
}
