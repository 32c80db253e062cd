package ws

import (
	"fmt"

	"github.com/coreman2200/funtimes-aurora/internal/diagnostics"
	"github.com/coreman2200/funtimes-aurora/internal/palette"
	"github.com/coreman2200/funtimes-aurora/internal/render"
	"github.com/coreman2200/funtimes-aurora/internal/render/scenes/custom"
	"github.com/coreman2200/funtimes-aurora/internal/tests"
)

// Command is one JSON message on /control. Only the fields relevant to
// Cmd are read.
type Command struct {
	Cmd      string             `json:"cmd"`
	Name     string             `json:"name,omitempty"`
	Mode     string             `json:"mode,omitempty"`
	Settings map[string]float64 `json:"settings,omitempty"`
	Colors   []string           `json:"colors,omitempty"`
	Index    int                `json:"index,omitempty"`
	Test     string             `json:"test,omitempty"`
	Hold     int                `json:"hold,omitempty"`
	Action   string             `json:"action,omitempty"`
	Source   string             `json:"source,omitempty"` // custom definition YAML
}

type Reply struct {
	Cmd   string `json:"cmd"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// Dispatch applies one command. Failures are returned in the reply and
// pushed to diagnostics; the engine is left as it was.
func (s *State) Dispatch(c Command) Reply {
	data, err := s.apply(c)
	if err != nil {
		s.Core.Diag.Push(diagnostics.Diagnostic{
			Severity: diagnostics.Warn,
			Code:     "CONTROL.REJECTED",
			Summary:  "Control command rejected",
			Detail:   err.Error(),
			Evidence: map[string]any{"cmd": c.Cmd},
		})
		return Reply{Cmd: c.Cmd, Error: err.Error()}
	}
	return Reply{Cmd: c.Cmd, OK: true, Data: data}
}

func (s *State) apply(c Command) (any, error) {
	m := s.Core.Mgr
	switch c.Cmd {
	case "list":
		return m.ListDrawers(), nil
	case "status":
		return m.Status(), nil
	case "set_mode":
		return nil, m.SetMode(render.Mode(c.Mode))
	case "set_drawer":
		return nil, m.SetActiveDrawer(c.Name)
	case "update_settings":
		return nil, m.UpdateActiveSettings(c.Settings)
	case "randomize":
		return nil, m.RandomizeActive()
	case "set_palette":
		colors, err := palette.ParseHex(c.Colors)
		if err != nil {
			return nil, err
		}
		return nil, m.SetPaletteColors(colors)
	case "set_curated":
		m.SetCuratedPalette(c.Index)
		return m.Palette().CuratedIndex(), nil
	case "run_test":
		return nil, s.Core.RunTest(tests.Kind(c.Test), c.Hold)
	case "playlist":
		p := s.Core.Seq
		switch c.Action {
		case "start":
			p.Start()
		case "pause":
			p.Pause()
		case "stop":
			p.Stop()
		case "next":
			p.Next()
		case "", "status":
		default:
			return nil, fmt.Errorf("unknown playlist action %q", c.Action)
		}
		return p.Status(), nil
	case "custom_list":
		infos, err := custom.List(s.Core.CustomDir())
		if err != nil {
			return nil, err
		}
		if infos == nil {
			infos = []custom.Info{}
		}
		return infos, nil
	case "custom_get":
		def, err := s.Core.CustomDefinition(c.Name)
		if err != nil {
			return nil, err
		}
		out, err := def.YAML()
		if err != nil {
			return nil, err
		}
		return string(out), nil
	case "custom_template":
		return custom.ExampleYAML, nil
	case "custom_validate":
		// compiled and dropped; nothing is registered
		d, err := custom.Load([]byte(c.Source))
		if err != nil {
			return nil, err
		}
		defer d.Close()
		return map[string]any{"name": d.Name(), "settings": d.Settings().Info()}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", c.Cmd)
	}
}
