// Package taint tracks configured taint flows on top of a finished
// pointer-analysis result: calls to source methods produce taint objects,
// transfer rules re-key them across calls, and taints reaching sink
// arguments are reported.
package taint

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kvistgaard/sift/ir"
)

// Positions a transfer can name besides argument indexes.
const (
	Base   = -1 // the receiver of the call
	Result = -2 // the call-result variable
)

type Source struct {
	Method *ir.Method
	Type   *ir.Type
}

type Sink struct {
	Method *ir.Method
	Index  int
}

type Transfer struct {
	Method   *ir.Method
	From, To int
	Type     *ir.Type
}

// Config is the resolved taint specification.
type Config struct {
	Sources   []Source
	Sinks     []Sink
	Transfers []Transfer
}

func (c *Config) String() string {
	return fmt.Sprintf("taint config: %d sources, %d sinks, %d transfers",
		len(c.Sources), len(c.Sinks), len(c.Transfers))
}

// Pos is a transfer endpoint in the YAML file: an argument index, "base" or
// "result".
type Pos int

func (p *Pos) UnmarshalYAML(node *yaml.Node) error {
	switch node.Value {
	case "base":
		*p = Base
		return nil
	case "result":
		*p = Result
		return nil
	default:
		var i int
		if err := node.Decode(&i); err != nil {
			return fmt.Errorf("bad taint position %q", node.Value)
		}
		if i < 0 {
			return fmt.Errorf("bad taint position %d", i)
		}
		*p = Pos(i)
		return nil
	}
}

type rawConfig struct {
	Sources []struct {
		Method string `yaml:"method"`
		Type   string `yaml:"type"`
	} `yaml:"sources"`
	Sinks []struct {
		Method string `yaml:"method"`
		Index  int    `yaml:"index"`
	} `yaml:"sinks"`
	Transfers []struct {
		Method string `yaml:"method"`
		From   Pos    `yaml:"from"`
		To     Pos    `yaml:"to"`
		Type   string `yaml:"type"`
	} `yaml:"transfers"`
}

// LoadConfig reads and resolves a YAML taint specification against a
// program. Unresolvable references are fatal.
func LoadConfig(path string, prog *ir.Program) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taint config: %w", err)
	}
	return ParseConfig(data, prog)
}

func ParseConfig(data []byte, prog *ir.Program) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing taint config: %w", err)
	}

	config := new(Config)
	for _, s := range raw.Sources {
		m, err := resolveMethod(prog, s.Method)
		if err != nil {
			return nil, err
		}
		t, err := resolveType(prog, s.Type)
		if err != nil {
			return nil, err
		}
		config.Sources = append(config.Sources, Source{Method: m, Type: t})
	}

	for _, s := range raw.Sinks {
		m, err := resolveMethod(prog, s.Method)
		if err != nil {
			return nil, err
		}
		if s.Index < 0 || s.Index >= len(m.Params) {
			return nil, fmt.Errorf("sink %v: argument index %d out of range", m, s.Index)
		}
		config.Sinks = append(config.Sinks, Sink{Method: m, Index: s.Index})
	}

	for _, s := range raw.Transfers {
		m, err := resolveMethod(prog, s.Method)
		if err != nil {
			return nil, err
		}
		t, err := resolveType(prog, s.Type)
		if err != nil {
			return nil, err
		}
		if s.From == Result {
			return nil, fmt.Errorf("transfer %v: from must be an argument index or base", m)
		}
		if int(s.From) >= len(m.Params) {
			return nil, fmt.Errorf("transfer %v: from %d out of range", m, s.From)
		}
		if s.To != Base && s.To != Result {
			return nil, fmt.Errorf("transfer %v: to must be base or result", m)
		}
		config.Transfers = append(config.Transfers,
			Transfer{Method: m, From: int(s.From), To: int(s.To), Type: t})
	}

	return config, nil
}

// resolveMethod resolves "Class.method".
func resolveMethod(prog *ir.Program, ref string) (*ir.Method, error) {
	dot := strings.LastIndex(ref, ".")
	if dot <= 0 || dot == len(ref)-1 {
		return nil, fmt.Errorf("bad method reference %q (want Class.method)", ref)
	}

	c, ok := prog.LookupClass(ref[:dot])
	if !ok {
		return nil, fmt.Errorf("unknown class in method reference %q", ref)
	}
	m := c.Method(ref[dot+1:])
	if m == nil {
		return nil, fmt.Errorf("unknown method %q", ref)
	}
	return m, nil
}

var primKinds = map[string]ir.TypeKind{
	"boolean": ir.Boolean,
	"byte":    ir.Byte,
	"short":   ir.Short,
	"char":    ir.Char,
	"int":     ir.IntKind,
	"long":    ir.Long,
	"float":   ir.Float,
	"double":  ir.Double,
}

func resolveType(prog *ir.Program, name string) (*ir.Type, error) {
	if kind, ok := primKinds[name]; ok {
		return prog.Type(kind), nil
	}
	if c, ok := prog.LookupClass(name); ok {
		return c.Type(), nil
	}
	return nil, fmt.Errorf("unknown type %q", name)
}
