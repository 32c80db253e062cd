package custom

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Info is the listing entry for a definition on disk.
type Info struct {
	Name        string `json:"name" msgpack:"name"`
	Author      string `json:"author" msgpack:"author"`
	Description string `json:"description" msgpack:"description"`
	Path        string `json:"path" msgpack:"path"`
	Uses        Uses   `json:"uses" msgpack:"uses"`
}

// LoadDir compiles every *.yaml / *.yml file in dir. Files that fail to
// parse or compile are logged and skipped. The directory is only read.
// A missing directory yields no drawers and no error.
func LoadDir(dir string, opts ...Option) ([]*Drawer, error) {
	paths, err := definitionFiles(dir)
	if err != nil {
		return nil, err
	}
	var out []*Drawer
	for _, p := range paths {
		src, err := os.ReadFile(p)
		if err != nil {
			log.Warn().Err(err).Str("path", p).Msg("custom drawer unreadable")
			continue
		}
		d, err := Load(src, opts...)
		if err != nil {
			log.Warn().Err(err).Str("path", p).Msg("custom drawer skipped")
			continue
		}
		log.Info().Str("name", d.Name()).Str("path", p).Msg("custom drawer loaded")
		out = append(out, d)
	}
	return out, nil
}

// List parses the metadata of every definition in dir without compiling.
func List(dir string) ([]Info, error) {
	paths, err := definitionFiles(dir)
	if err != nil {
		return nil, err
	}
	var out []Info
	for _, p := range paths {
		src, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		def, err := ParseDefinition(src)
		if err != nil {
			continue
		}
		out = append(out, Info{Name: def.Name, Author: def.Author, Description: def.Description, Path: p, Uses: def.Uses})
	}
	return out, nil
}

func definitionFiles(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// ExampleYAML is a complete definition drawing horizontal sine waves.
const ExampleYAML = `name: "Sine Waves"
author: "aurora"
description: "Horizontal sine waves drifting across the matrix"
uses:
  audio: false
  video: false
  canvas: false
settings:
  speed:
    type: float
    default: 1.0
    min: 0.1
    max: 5.0
    description: "Animation speed"
  frequency:
    type: float
    default: 2.0
    min: 0.5
    max: 10.0
    description: "Wave frequency"
code: |
  function draw(width, height, ctx, settings, palette_size)
    local out = zeros(height, width)
    local t = ctx.time * settings.speed
    for y = 1, height do
      local row = out[y]
      for x = 1, width do
        local v = math.sin((x - 1) / width * settings.frequency * 2 * math.pi + t)
        v = v + math.cos((y - 1) / height * math.pi + t * 0.5)
        row[x] = math.floor((v + 2) / 4 * (palette_size - 1))
      end
    end
    return out
  end
`
