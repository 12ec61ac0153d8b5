// Package visualization renders the engine's state machines as Graphviz diagrams
package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/anggasct/trafficsim/pkg/core"
)

// DOTGenerator generates Graphviz DOT format representations of state machines
type DOTGenerator struct {
	machine core.MachineDescription
	options DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowTriggers  bool
	RankDirection string // "TB", "LR", "BT", "RL"
	NodeShape     string
	// ActiveCounts annotates states with a live population, e.g. the number
	// of vehicles currently in each state. States with a count are shaded.
	ActiveCounts map[string]int
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowTriggers:  true,
		RankDirection: "LR",
		NodeShape:     "box",
	}
}

// NewDOTGenerator creates a new DOT generator for the given machine
func NewDOTGenerator(machine core.MachineDescription, options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &DOTGenerator{
		machine: machine,
		options: opts,
	}
}

// Generate creates a DOT representation of the state machine
func (g *DOTGenerator) Generate() (string, error) {
	if len(g.machine.States) == 0 {
		return "", fmt.Errorf("machine %q has no states", g.machine.Name)
	}

	var dot strings.Builder
	dot.WriteString(fmt.Sprintf("digraph %s {\n", graphID(g.machine.Name)))
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString(fmt.Sprintf("  node [shape=%s];\n", g.options.NodeShape))
	dot.WriteString("  edge [fontsize=10];\n\n")

	known := make(map[string]bool, len(g.machine.States))
	dot.WriteString("  // States\n")
	for _, state := range g.machine.States {
		known[state] = true
		g.writeState(&dot, state)
	}

	dot.WriteString("\n  // Transitions\n")
	for _, t := range g.machine.Transitions {
		if !known[t.Source] || !known[t.Target] {
			return "", fmt.Errorf("transition %s -> %s references an undeclared state", t.Source, t.Target)
		}
		if g.options.ShowTriggers && t.Trigger != "" {
			dot.WriteString(fmt.Sprintf("  %q -> %q [label=%q];\n", t.Source, t.Target, t.Trigger))
		} else {
			dot.WriteString(fmt.Sprintf("  %q -> %q;\n", t.Source, t.Target))
		}
	}

	dot.WriteString("}\n")
	return dot.String(), nil
}

func (g *DOTGenerator) writeState(dot *strings.Builder, state string) {
	fillColor := "lightblue"
	label := state

	if state == g.machine.Initial {
		fillColor = "lightgreen"
		label += "\\n(initial)"
	}
	if count, ok := g.options.ActiveCounts[state]; ok && count > 0 {
		fillColor = "gold"
		label += fmt.Sprintf("\\n[%d]", count)
	}

	dot.WriteString(fmt.Sprintf("  %q [style=\"filled\" fillcolor=%s label=\"%s\"];\n", state, fillColor, label))
}

func graphID(name string) string {
	id := strings.Map(func(r rune) rune {
		if r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			return r
		}
		return '_'
	}, name)
	if id == "" || ('0' <= id[0] && id[0] <= '9') {
		id = "M" + id
	}
	return id
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

// GenerateSVG renders the diagram with the Graphviz dot command
func (g *DOTGenerator) GenerateSVG() (string, error) {
	dotContent, err := g.Generate()
	if err != nil {
		return "", err
	}

	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute dot command: %w (make sure Graphviz is installed)", err)
	}

	return out.String(), nil
}

// VehicleStateCounts converts vehicle snapshots into ActiveCounts
func VehicleStateCounts(vehicles []core.VehicleSnapshot) map[string]int {
	counts := make(map[string]int)
	for _, v := range vehicles {
		counts[v.State.String()]++
	}
	return counts
}
