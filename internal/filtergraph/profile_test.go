package filtergraph_test

import (
	"strings"
	"testing"

	"stereomax/internal/filtergraph"
)

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*filtergraph.Profile)
		want   string
	}{
		{"even frame", func(p *filtergraph.Profile) { p.Normalizer.FrameMS = 124 }, "dynaudnorm frame"},
		{"frame too small", func(p *filtergraph.Profile) { p.Normalizer.FrameMS = 9 }, "dynaudnorm frame"},
		{"frame too large", func(p *filtergraph.Profile) { p.Normalizer.FrameMS = 8001 }, "dynaudnorm frame"},
		{"limiter at one", func(p *filtergraph.Profile) { p.LimiterCeil = 1 }, "limiter ceiling"},
		{"limiter zero", func(p *filtergraph.Profile) { p.LimiterCeil = 0 }, "limiter ceiling"},
		{"ratio below one", func(p *filtergraph.Profile) { p.Compressor.Ratio = 0.5 }, "compressor ratio"},
		{"mix above one", func(p *filtergraph.Profile) { p.Compressor.Mix = 1.2 }, "compressor mix"},
		{"mono encode", func(p *filtergraph.Profile) { p.Encode.Channels = 1 }, "2 channels"},
		{"missing name", func(p *filtergraph.Profile) { p.Name = " " }, "name is required"},
		{"empty downmix", func(p *filtergraph.Profile) { p.Downmix71.Right = nil }, "7.1 downmix"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := filtergraph.StereoMaxV1
			tc.mutate(&p)
			err := p.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tc.want)
			}
		})
	}
	if err := filtergraph.StereoMaxV1.Validate(); err != nil {
		t.Fatalf("built-in profile invalid: %v", err)
	}
}

func TestRegistry(t *testing.T) {
	if got := filtergraph.Default().Name; got != filtergraph.DefaultProfileName {
		t.Fatalf("Default().Name = %q", got)
	}
	if _, ok := filtergraph.Lookup("missing/v0"); ok {
		t.Fatal("expected missing profile lookup to fail")
	}
	if err := filtergraph.Register(filtergraph.StereoMaxV1); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}

	custom := filtergraph.StereoMaxV1
	custom.Name = "test/registry"
	if err := filtergraph.Register(custom); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, ok := filtergraph.Lookup("test/registry"); !ok {
		t.Fatal("registered profile not found")
	}
	names := filtergraph.ProfileNames()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("profile names not sorted: %v", names)
		}
	}

	invalid := filtergraph.StereoMaxV1
	invalid.Name = "test/invalid"
	invalid.LimiterCeil = 2
	if err := filtergraph.Register(invalid); err == nil {
		t.Fatal("expected invalid profile to be rejected")
	}
}

func TestLookupReturnsIndependentCopy(t *testing.T) {
	p, ok := filtergraph.Lookup(filtergraph.DefaultProfileName)
	if !ok {
		t.Fatal("default profile not registered")
	}
	want51 := filtergraph.Default().Downmix51.Left[0]
	want71 := filtergraph.Default().Downmix71.Right[0]
	p.Downmix51.Left[0].Gain += 1
	p.Downmix71.Right[0].Channel = "LFE"

	again := filtergraph.Default()
	if again.Downmix51.Left[0] != want51 || again.Downmix71.Right[0] != want71 {
		t.Fatalf("registered profile changed through a lookup copy: %+v %+v", again.Downmix51.Left[0], again.Downmix71.Right[0])
	}
}
