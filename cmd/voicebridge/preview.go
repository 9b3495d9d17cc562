package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/voicebridge/pkg/glbridge"
	"github.com/james-see/voicebridge/pkg/glbridge/headless"
	"github.com/james-see/voicebridge/pkg/pattern"
	"github.com/james-see/voicebridge/pkg/surface"
	"github.com/spf13/cobra"
)

var (
	frameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#39FF14")).Bold(true)
	cycleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C0C0C0"))
)

// parseParams turns name=pattern arguments into patterns keyed by name.
func parseParams(args []string) (map[string]*pattern.Pattern, error) {
	pats := make(map[string]*pattern.Pattern, len(args))
	for _, arg := range args {
		name, src, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("parameter %q is not name=pattern", arg)
		}
		if _, dup := pats[name]; dup {
			return nil, fmt.Errorf("parameter %q given twice", name)
		}
		p, err := pattern.Mini(src)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		pats[name] = p
	}
	return pats, nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	pats, err := parseParams(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	stage := &surface.Canvas{ID: "stage", Width: 640, Height: 360}
	doc := surface.NewDocument(stage)
	bridge := glbridge.New(doc, surface.NewContext(stage), glbridge.RegistryLoader{},
		glbridge.WithRuntimeURL(cfg.RuntimeURL),
		glbridge.WithCanvasID(cfg.CanvasID),
		glbridge.WithClock(glbridge.NewCycleClock(cfg.CPS)),
		glbridge.WithLogger(log),
	)

	h, err := bridge.Init(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	params := h.ToGL(pats, nil)
	fmt.Printf("Previewing %d parameters on %s at %d fps\n", len(pats), h.Canvas(), cfg.FPS)

	return h.Loop(ctx, cfg.FPS, func(f glbridge.Frame) error {
		if frames > 0 && f.Index >= frames {
			return glbridge.ErrStopLoop
		}
		u, err := params.Eval()
		if errors.Is(err, glbridge.ErrNoEvent) {
			log.Debug().Err(err).Int("frame", f.Index).Msg("frame skipped")
			fmt.Println(formatFrame(f, nil))
			return nil
		}
		if err != nil {
			return err
		}
		if err := h.Render(u); err != nil {
			return err
		}
		fmt.Println(formatFrame(f, u))
		return nil
	})
}

func formatFrame(f glbridge.Frame, u glbridge.Uniforms) string {
	var b strings.Builder
	b.WriteString(frameStyle.Render(fmt.Sprintf("%4d", f.Index)))
	b.WriteString(" ")
	b.WriteString(cycleStyle.Render(fmt.Sprintf("%8.3f", f.Cycle.Float64())))
	if u == nil {
		b.WriteString(" ")
		b.WriteString(cycleStyle.Render("~"))
		return b.String()
	}
	for _, k := range headless.Keys(u) {
		b.WriteString(" ")
		b.WriteString(valueStyle.Render(fmt.Sprintf("%s=%v", k, u[k])))
	}
	return b.String()
}
