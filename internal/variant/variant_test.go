package variant

import (
	"errors"
	"reflect"
	"testing"
)

func TestGetNormalizesNames(t *testing.T) {
	testCases := []struct {
		input    string
		expected Name
	}{
		{"tours", Tours},
		{" Viator ", Tours},
		{"", Tours},
		{"unknown", Tours},
		{"SEO", SEO},
		{"seo post", SEO},
		{"my-seo-thing", SEO},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if got := Get(tc.input).Name; got != tc.expected {
				t.Errorf("Get(%q).Name = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestBuiltinsDifferInOrderAndPlacement(t *testing.T) {
	tours, seo := Get("tours"), Get("seo")
	if !reflect.DeepEqual(tours.Stages, []Stage{StageRepair, StageTables, StageSanitize, StageImages, StageLinks, StageInject}) {
		t.Errorf("tours stages = %v", tours.Stages)
	}
	if !reflect.DeepEqual(seo.Stages, []Stage{StageTables, StageSanitize, StageRepair, StageImages, StageLinks, StageInject}) {
		t.Errorf("seo stages = %v", seo.Stages)
	}
	if tours.HeadingOrdinal != 2 || tours.MinMeaningful != 50 {
		t.Errorf("tours placement = %d/%d", tours.HeadingOrdinal, tours.MinMeaningful)
	}
	if seo.HeadingOrdinal != 1 || seo.MinMeaningful != 10 {
		t.Errorf("seo placement = %d/%d", seo.HeadingOrdinal, seo.MinMeaningful)
	}
	for _, v := range []Variant{tours, seo} {
		if err := v.Validate(); err != nil {
			t.Errorf("builtin %s invalid: %v", v.Name, err)
		}
	}
}

func TestBuiltinsAreIndependentCopies(t *testing.T) {
	a := Get("tours")
	a.Stages[0] = StageInject
	if Get("tours").Stages[0] != StageRepair {
		t.Fatal("mutating a returned variant leaked into the built-in")
	}
}

func TestParseStages(t *testing.T) {
	got, err := ParseStages([]string{"Decode", " structure", "images", "links", "inject"})
	if err != nil {
		t.Fatalf("ParseStages error = %v", err)
	}
	if len(got) != 5 || got[0] != StageDecode || !got[0].IsString() || got[1].IsString() {
		t.Errorf("ParseStages = %v", got)
	}
	if _, err := ParseStages([]string{"repair", "bogus"}); !errors.Is(err, ErrUnknownStage) {
		t.Errorf("expected ErrUnknownStage, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	v := Get("tours")
	v.HeadingOrdinal = 3
	if err := v.Validate(); !errors.Is(err, ErrOrdinal) {
		t.Errorf("expected ErrOrdinal, got %v", err)
	}
	v = Get("tours")
	v.Stages = []Stage{StageInject, StageSanitize}
	if err := v.Validate(); !errors.Is(err, ErrInjectOrder) {
		t.Errorf("expected ErrInjectOrder, got %v", err)
	}
	v = Get("tours")
	v.Stages = append([]Stage{"nope"}, v.Stages...)
	if err := v.Validate(); !errors.Is(err, ErrUnknownStage) {
		t.Errorf("expected ErrUnknownStage, got %v", err)
	}
}

func TestOptionsMapping(t *testing.T) {
	v := Get("seo")
	io := v.InjectOptions()
	if io.Ordinal != 1 || io.MinMeaningful != 10 || io.Heading != "h2" {
		t.Errorf("InjectOptions = %+v", io)
	}
	so := v.SanitizeOptions("https://img.test/a.jpg", "https://site.test/p")
	if so.MainImageURL != "https://img.test/a.jpg" || so.Permalink != "https://site.test/p" || so.TrimBoilerplate {
		t.Errorf("SanitizeOptions = %+v", so)
	}
	if !Get("tours").SanitizeOptions("", "").TrimBoilerplate {
		t.Errorf("tours trims boilerplate")
	}
}
