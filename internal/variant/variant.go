// Package variant describes the content variants the pipeline serves: the
// order of the processing stages and the per-variant cleanup and placement
// settings.
package variant

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperifyio/toursplice/internal/inject"
	"github.com/hyperifyio/toursplice/internal/sanitize"
)

// Name identifies a built-in variant.
type Name string

const (
	Tours Name = "tours"
	SEO   Name = "seo"
)

// Stage is one step of the content pipeline.
type Stage string

const (
	// String stages operate on serialized HTML.
	StageRepair Stage = "repair"
	StageTables Stage = "tables"
	StageDecode Stage = "decode"

	// DOM stages operate on the parsed fragment.
	StageSanitize  Stage = "sanitize"
	StageStructure Stage = "structure"
	StageImages    Stage = "images"
	StageLinks     Stage = "links"
	StageInject    Stage = "inject"
)

var stringStages = map[Stage]bool{StageRepair: true, StageTables: true, StageDecode: true}

var knownStages = map[Stage]bool{
	StageRepair: true, StageTables: true, StageDecode: true,
	StageSanitize: true, StageStructure: true, StageImages: true, StageLinks: true, StageInject: true,
}

// IsString reports whether s works on serialized HTML rather than the DOM.
func (s Stage) IsString() bool { return stringStages[s] }

var (
	ErrUnknownStage = errors.New("unknown stage")
	ErrOrdinal      = errors.New("heading ordinal must be 1 or 2")
	ErrInjectOrder  = errors.New("inject must be the last stage")
)

// Variant is a named pipeline configuration.
type Variant struct {
	Name   Name
	Stages []Stage

	Heading        string
	HeadingOrdinal int
	MinMeaningful  int
	MinSubstantial int

	Vendor          string
	TrimBoilerplate bool
	StripAttributes bool
	StyleTables     bool
}

// Get returns the built-in variant for name. Unknown names fall back to the
// tours variant.
func Get(name string) Variant {
	switch Name(normalizeName(name)) {
	case SEO:
		return seoVariant()
	default:
		return toursVariant()
	}
}

// Names lists the built-in variants.
func Names() []Name { return []Name{Tours, SEO} }

func normalizeName(s string) string {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "tours", "tour", "viator", "listings", "gen", "generated":
		return string(Tours)
	case "seo", "seo-post", "seo post", "article", "editorial":
		return string(SEO)
	default:
		if strings.Contains(v, "seo") {
			return string(SEO)
		}
		return string(Tours)
	}
}

// toursVariant repairs the raw export before anything else, then rebuilds
// tables and cleans up. Images and links are normalized again right before
// the marker goes in before the second section, since the repair fast path
// leaves partially hardened links alone.
func toursVariant() Variant {
	return Variant{
		Name:            Tours,
		Stages:          []Stage{StageRepair, StageTables, StageSanitize, StageImages, StageLinks, StageInject},
		Heading:         inject.DefaultHeading,
		HeadingOrdinal:  2,
		MinMeaningful:   inject.DefaultMinMeaningful,
		MinSubstantial:  inject.DefaultMinSubstantial,
		Vendor:          sanitize.DefaultVendor,
		TrimBoilerplate: true,
		StripAttributes: true,
		StyleTables:     true,
	}
}

// seoVariant sanitizes before repairing and places the marker before the
// first section with a low threshold, so short intros still count.
func seoVariant() Variant {
	return Variant{
		Name:            SEO,
		Stages:          []Stage{StageTables, StageSanitize, StageRepair, StageImages, StageLinks, StageInject},
		Heading:         inject.DefaultHeading,
		HeadingOrdinal:  1,
		MinMeaningful:   10,
		MinSubstantial:  inject.DefaultMinSubstantial,
		Vendor:          sanitize.DefaultVendor,
		StripAttributes: true,
		StyleTables:     true,
	}
}

// ParseStages converts stage names, validating each.
func ParseStages(names []string) ([]Stage, error) {
	out := make([]Stage, 0, len(names))
	for _, n := range names {
		s := Stage(strings.ToLower(strings.TrimSpace(n)))
		if !knownStages[s] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStage, n)
		}
		out = append(out, s)
	}
	return out, nil
}

// Validate checks stage names, the position of the inject stage and the
// heading ordinal.
func (v Variant) Validate() error {
	for i, s := range v.Stages {
		if !knownStages[s] {
			return fmt.Errorf("variant %s: %w: %q", v.Name, ErrUnknownStage, s)
		}
		// later stages drop the empty marker element
		if s == StageInject && i != len(v.Stages)-1 {
			return fmt.Errorf("variant %s: %w", v.Name, ErrInjectOrder)
		}
	}
	if v.HeadingOrdinal != 1 && v.HeadingOrdinal != 2 {
		return fmt.Errorf("variant %s: %w (got %d)", v.Name, ErrOrdinal, v.HeadingOrdinal)
	}
	if v.MinMeaningful < 0 || v.MinSubstantial < 0 {
		return fmt.Errorf("variant %s: thresholds must not be negative", v.Name)
	}
	return nil
}

// Has reports whether the variant runs stage s.
func (v Variant) Has(s Stage) bool {
	for _, x := range v.Stages {
		if x == s {
			return true
		}
	}
	return false
}

// InjectOptions returns the marker placement settings.
func (v Variant) InjectOptions() inject.Options {
	return inject.Options{
		Heading:        v.Heading,
		Ordinal:        v.HeadingOrdinal,
		MinMeaningful:  v.MinMeaningful,
		MinSubstantial: v.MinSubstantial,
	}
}

// SanitizeOptions returns the sanitizer settings for an article with the
// given featured image and canonical link.
func (v Variant) SanitizeOptions(mainImageURL, permalink string) sanitize.Options {
	return sanitize.Options{
		Vendor:          v.Vendor,
		MainImageURL:    mainImageURL,
		Permalink:       permalink,
		TrimBoilerplate: v.TrimBoilerplate,
		StripAttributes: v.StripAttributes,
		StyleTables:     v.StyleTables,
	}
}
