// Package listing models the externally fetched listings block that is
// spliced into an article. The content pipeline treats it as opaque; only
// the renderer looks inside.
package listing

import (
    "bytes"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"

    yaml "gopkg.in/yaml.v3"
)

// Status is the outcome of the upstream listings fetch. Older exporters
// write "exception" for a failed fetch; it renders like "error".
type Status string

const (
    StatusSuccess       Status = "success"
    StatusMock          Status = "mock"
    StatusNoDestination Status = "no-destination"
    StatusError         Status = "error"
    StatusException     Status = "exception"
)

// Listing is one bookable product card.
type Listing struct {
    ProductCode      string  `yaml:"productCode" json:"productCode"`
    Title            string  `yaml:"title" json:"title"`
    ShortDescription string  `yaml:"shortDescription" json:"shortDescription"`
    Price            string  `yaml:"price" json:"price"`
    Rating           float64 `yaml:"rating" json:"rating"`
    ReviewCount      int     `yaml:"reviewCount" json:"reviewCount"`
    Duration         string  `yaml:"duration" json:"duration"`
    Thumbnail        string  `yaml:"thumbnail" json:"thumbnail"`
    Link             string  `yaml:"link" json:"link"`
}

// Block is the listings content rendered at the injection point.
type Block struct {
    City          string    `yaml:"city" json:"city"`
    DestinationID string    `yaml:"destinationId" json:"destinationId"`
    Status        Status    `yaml:"status" json:"status"`
    Error         string    `yaml:"error" json:"error"`
    Items         []Listing `yaml:"items" json:"items"`
}

// Empty reports whether the block has nothing to list.
func (b Block) Empty() bool { return len(b.Items) == 0 }

// Format is the serialization of a listings document.
type Format string

const (
    FormatAuto Format = ""
    FormatJSON Format = "json"
    FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for an unknown Format.
var ErrUnsupportedFormat = errors.New("unsupported listings format")

// FormatFromPath guesses the format from a file extension or URL path.
func FormatFromPath(p string) Format {
    if i := strings.IndexAny(p, "?#"); i >= 0 {
        p = p[:i]
    }
    switch strings.ToLower(filepath.Ext(p)) {
    case ".json":
        return FormatJSON
    case ".yaml", ".yml":
        return FormatYAML
    }
    return FormatAuto
}

// Decode parses a listings document. Both a full Block object and a bare
// array of listings are accepted; a bare array yields a block with status
// success. FormatAuto tries JSON first and then YAML.
func Decode(data []byte, format Format) (Block, error) {
    data = bytes.TrimSpace(data)
    if len(data) == 0 {
        return Block{}, nil
    }
    switch format {
    case FormatJSON:
        return decodeJSON(data)
    case FormatYAML:
        return decodeYAML(data)
    case FormatAuto:
        b, err := decodeJSON(data)
        if err == nil {
            return b, nil
        }
        b, yerr := decodeYAML(data)
        if yerr != nil {
            return Block{}, fmt.Errorf("parse listings: %v (json) / %v (yaml)", err, yerr)
        }
        return b, nil
    }
    return Block{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
}

func decodeJSON(data []byte) (Block, error) {
    var b Block
    if data[0] == '[' {
        if err := json.Unmarshal(data, &b.Items); err != nil {
            return Block{}, fmt.Errorf("parse json: %w", err)
        }
        b.Status = StatusSuccess
        return b, nil
    }
    if err := json.Unmarshal(data, &b); err != nil {
        return Block{}, fmt.Errorf("parse json: %w", err)
    }
    return b, nil
}

func decodeYAML(data []byte) (Block, error) {
    var node yaml.Node
    if err := yaml.Unmarshal(data, &node); err != nil {
        return Block{}, fmt.Errorf("parse yaml: %w", err)
    }
    var b Block
    if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
        if err := node.Content[0].Decode(&b.Items); err != nil {
            return Block{}, fmt.Errorf("parse yaml: %w", err)
        }
        b.Status = StatusSuccess
        return b, nil
    }
    if err := node.Decode(&b); err != nil {
        return Block{}, fmt.Errorf("parse yaml: %w", err)
    }
    return b, nil
}

// Load reads and decodes a listings file, picking the format by extension.
func Load(path string) (Block, error) {
    data, err := os.ReadFile(path)
    if err != nil {
        return Block{}, err
    }
    return Decode(data, FormatFromPath(path))
}
