package compose

import (
    "html/template"
    "io"
    "math"
    "strings"

    "github.com/hyperifyio/toursplice/internal/listing"
)

// HTMLRenderer renders a listings block as a card grid with html/template.
type HTMLRenderer struct {
    tmpl *template.Template
}

// NewHTMLRenderer returns the default card renderer.
func NewHTMLRenderer() *HTMLRenderer {
    return &HTMLRenderer{tmpl: blockTemplate}
}

// Stars is the star breakdown of a rating rounded down to the nearest half.
type Stars struct {
    Rated             bool
    Full, Half, Empty int
}

// StarsFor clamps rating to [0,5] and splits it into full, half and empty
// stars.
func StarsFor(rating float64) Stars {
    r := math.Max(0, math.Min(5, rating))
    full := int(math.Floor(r))
    half := 0
    if r-float64(full) >= 0.5 {
        half = 1
    }
    return Stars{Rated: rating > 0, Full: full, Half: half, Empty: 5 - full - half}
}

type cardView struct {
    listing.Listing
    Stars       Stars
    Description template.HTML
}

type blockView struct {
    City  string
    Error string
    Cards []cardView
}

// Render writes nothing for a successful block without items.
func (r *HTMLRenderer) Render(w io.Writer, block listing.Block) error {
    v := blockView{City: block.City, Error: block.Error}
    name := "cards"
    switch block.Status {
    case listing.StatusNoDestination:
        name = "no-destination"
    case listing.StatusError, listing.StatusException:
        name = "error"
    default:
        if block.Empty() {
            return nil
        }
    }
    for _, it := range block.Items {
        // descriptions come from the listings API and may carry markup
        v.Cards = append(v.Cards, cardView{
            Listing:     it,
            Stars:       StarsFor(it.Rating),
            Description: template.HTML(it.ShortDescription),
        })
    }
    return r.tmpl.ExecuteTemplate(w, name, v)
}

var blockTemplate = template.Must(template.New("block").Funcs(template.FuncMap{
    "repeat": func(n int) []struct{} { return make([]struct{}, max(n, 0)) },
    "trim":   strings.TrimSpace,
}).Parse(`
{{- define "no-destination" -}}
<section class="my-10"><h2 class="text-2xl font-bold mb-4">Popular Tours in {{.City}}</h2><p class="text-sm text-gray-500">No destination mapping for this city.</p></section>
{{- end -}}

{{- define "error" -}}
<section class="my-10"><h2 class="text-2xl font-bold mb-4">Popular Tours in {{.City}}</h2><p class="text-sm text-red-600">Tours temporarily unavailable. {{with trim .Error}}{{.}}{{else}}Please try again later.{{end}}</p></section>
{{- end -}}

{{- define "stars" -}}
{{- if not .Rated -}}
<span class="inline-flex items-center gap-1 text-gray-400">No reviews</span>
{{- else -}}
<span class="inline-flex items-center gap-1" aria-label="rating">
{{- range repeat .Full}}<span class="star star-full">★</span>{{end -}}
{{- range repeat .Half}}<span class="star star-half">★</span>{{end -}}
{{- range repeat .Empty}}<span class="star star-empty">☆</span>{{end -}}
</span>
{{- end -}}
{{- end -}}

{{- define "card" -}}
<article class="group flex flex-col rounded-2xl border border-gray-200 bg-white shadow-sm overflow-hidden">
{{- if .Thumbnail}}<img src="{{.Thumbnail}}" alt="{{.Title}}" loading="lazy" class="h-full w-full object-cover"/>{{else}}<div class="h-full w-full grid place-items-center text-sm text-gray-400">No image</div>{{end -}}
<div class="p-4 sm:p-5 flex flex-col gap-3"><h3 class="font-semibold text-lg leading-snug">{{.Title}}</h3>
<div class="flex items-center gap-4 text-sm text-gray-600">{{template "stars" .Stars}}
{{- if gt .ReviewCount 0}}<span class="text-gray-500">({{.ReviewCount}} reviews)</span>{{end -}}
{{- with .Duration}}<span class="ml-auto whitespace-nowrap">{{.}}</span>{{end -}}
</div>
<p class="text-sm text-gray-700">{{.Description}}</p>
<div class="mt-2 flex items-center justify-between"><div class="text-sm text-gray-900">{{with .Price}}<span class="font-semibold">From: {{.}}</span>{{end}}</div>
{{- if .Link}}<a href="{{.Link}}" target="_blank" rel="nofollow noopener noreferrer sponsored" class="rounded-xl px-4 py-2 text-sm font-semibold bg-indigo-600 text-white">Book Now</a>{{else}}<span class="text-xs text-gray-400">Link unavailable</span>{{end -}}
</div></div></article>
{{- end -}}

{{- define "cards" -}}
<section class="my-12"><h2 class="text-3xl font-extrabold tracking-tight mb-6">Highest Rated Sight-Seeing Tours to Take in {{.City}}</h2><div class="grid gap-6 sm:grid-cols-2 lg:grid-cols-3">
{{- range .Cards}}{{template "card" .}}{{end -}}
</div></section>
{{- end -}}
`))
