package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	m "climb.dev/pkg/climb/internal/model"
	"climb.dev/pkg/climb/internal/sut"
)

// ErrUnknownProgram is returned for scenarios naming a program that is not bundled.
var ErrUnknownProgram = errors.New("unknown program")

// ScenarioStore loads and saves scenarios.
type ScenarioStore interface {
	// LoadScenarios reads every scenario file; directories contribute their *.yaml files.
	LoadScenarios(paths []m.Path) ([]m.Scenario, error)
	SaveScenario(path m.Path, scenario m.Scenario) error
}

// YAMLScenarioStore keeps scenarios as YAML documents.
type YAMLScenarioStore struct{}

// NewYAMLScenarioStore returns a YAMLScenarioStore.
func NewYAMLScenarioStore() *YAMLScenarioStore {
	return &YAMLScenarioStore{}
}

type scenarioDTO struct {
	Name        string         `yaml:"name"`
	Program     string         `yaml:"program"`
	TargetClass string         `yaml:"target_class,omitempty"`
	Seed        uint64         `yaml:"seed,omitempty"`
	Statements  []statementDTO `yaml:"statements"`
}

type statementDTO struct {
	Kind    string   `yaml:"kind"`
	Type    string   `yaml:"type,omitempty"`
	Value   any      `yaml:"value,omitempty"`
	Length  int      `yaml:"length,omitempty"`
	Callee  *int     `yaml:"callee,omitempty"`
	Params  []string `yaml:"params,omitempty"`
	Args    []*int   `yaml:"args,omitempty"`
	Index   int      `yaml:"index,omitempty"`
	Owner   string   `yaml:"owner,omitempty"`
	Member  string   `yaml:"member,omitempty"`
	Static  bool     `yaml:"static,omitempty"`
	Mutated string   `yaml:"mutated,omitempty"`
}

// LoadScenarios implements ScenarioStore.
func (s *YAMLScenarioStore) LoadScenarios(paths []m.Path) ([]m.Scenario, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(string(path))
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}

		if !info.IsDir() {
			files = append(files, string(path))
			continue
		}

		matches, err := filepath.Glob(filepath.Join(string(path), "*.yaml"))
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", path, err)
		}

		slices.Sort(matches)
		files = append(files, matches...)
	}

	scenarios := make([]m.Scenario, 0, len(files))

	for _, file := range files {
		scenario, err := s.load(file)
		if err != nil {
			slog.Error("Failed to load scenario", "path", file, "error", err)
			return nil, err
		}

		scenarios = append(scenarios, scenario)
	}

	slog.Debug("Loaded scenarios", "count", len(scenarios))

	return scenarios, nil
}

func (s *YAMLScenarioStore) load(file string) (m.Scenario, error) {
	content, err := os.ReadFile(file) //nolint:gosec // user-supplied scenario path
	if err != nil {
		return m.Scenario{}, fmt.Errorf("failed to read scenario: %w", err)
	}

	var dto scenarioDTO
	if err := yaml.Unmarshal(content, &dto); err != nil {
		return m.Scenario{}, fmt.Errorf("failed to parse scenario %s: %w", file, err)
	}

	scenario, err := dto.toModel()
	if err != nil {
		return m.Scenario{}, fmt.Errorf("invalid scenario %s: %w", file, err)
	}

	scenario.Origin = m.Path(file)

	return scenario, nil
}

// SaveScenario implements ScenarioStore.
func (s *YAMLScenarioStore) SaveScenario(path m.Path, scenario m.Scenario) error {
	content, err := yaml.Marshal(scenarioFromModel(scenario))
	if err != nil {
		return fmt.Errorf("failed to encode scenario: %w", err)
	}

	if err := os.WriteFile(string(path), content, 0o600); err != nil {
		slog.Error("Failed to write scenario", "path", path, "error", err)
		return fmt.Errorf("failed to write scenario: %w", err)
	}

	return nil
}

func (dto scenarioDTO) toModel() (m.Scenario, error) {
	program, ok := sut.Lookup(dto.Program)
	if !ok {
		return m.Scenario{}, fmt.Errorf("%w: %q", ErrUnknownProgram, dto.Program)
	}

	tc := m.NewTestCase()

	var history m.MutationHistory

	for i, st := range dto.Statements {
		statement, err := st.toModel(program)
		if err != nil {
			return m.Scenario{}, fmt.Errorf("statement %d: %w", i, err)
		}

		ref := tc.Add(statement)

		if st.Mutated != "" {
			kind, ok := m.ParseMutationKind(st.Mutated)
			if !ok {
				return m.Scenario{}, fmt.Errorf("statement %d: unknown mutation %q", i, st.Mutated)
			}

			history.Add(tc.Statement(int(ref)).ID, kind)
		}
	}

	if err := tc.Validate(); err != nil {
		return m.Scenario{}, err
	}

	return m.Scenario{
		Name:        dto.Name,
		Program:     dto.Program,
		TargetClass: dto.TargetClass,
		Seed:        dto.Seed,
		Test:        tc,
		History:     history,
	}, nil
}

func (dto statementDTO) toModel(program *sut.Program) (m.Statement, error) {
	t := program.ResolveType(dto.Type)
	if dto.Type == "" {
		t = m.PrimitiveType(m.Void)
	}

	params := make([]m.Type, len(dto.Params))
	for i, p := range dto.Params {
		params[i] = program.ResolveType(p)
	}

	args := make([]m.VarRef, len(dto.Args))
	for i, arg := range dto.Args {
		args[i] = refOf(arg, m.NullRef)
	}

	st := m.Statement{
		Type:   t,
		Length: dto.Length,
		Callee: refOf(dto.Callee, m.NoRef),
		Params: params,
		Args:   args,
		Index:  dto.Index,
		Owner:  dto.Owner,
		Member: dto.Member,
		Static: dto.Static,
	}

	switch dto.Kind {
	case "primitive":
		st.Kind = m.PrimitiveStatement

		value, err := decodeValue(t, dto.Value)
		if err != nil {
			return m.Statement{}, err
		}

		st.Value = value
	case "null":
		st.Kind = m.NullStatement
	case "array":
		st.Kind = m.ArrayStatement
	case "assignment":
		st.Kind = m.AssignmentStatement
	case "method":
		st.Kind = m.MethodStatement
	case "constructor":
		st.Kind = m.ConstructorStatement
		if dto.Type == "" {
			st.Type = m.ObjectType(dto.Owner)
		}
	case "field":
		st.Kind = m.FieldStatement
	default:
		return m.Statement{}, fmt.Errorf("unknown statement kind %q", dto.Kind)
	}

	if len(params) == 0 {
		st.Params = nil
	}

	if len(args) == 0 {
		st.Args = nil
	}

	return st, nil
}

func refOf(pos *int, absent m.VarRef) m.VarRef {
	if pos == nil {
		return absent
	}

	return m.VarRef(*pos)
}

func decodeValue(t m.Type, raw any) (m.Value, error) {
	var v m.Value

	if raw == nil {
		return v, nil
	}

	text := fmt.Sprint(raw)

	switch {
	case t.Kind == m.Boolean:
		b, err := strconv.ParseBool(text)
		v.Bool = b

		return v, err
	case t.Kind == m.Char:
		if s, ok := raw.(string); ok && len(s) == 1 {
			v.Int = int64(s[0])
			return v, nil
		}

		n, err := strconv.ParseInt(text, 10, 64)
		v.Int = t.Clamp(n)

		return v, err
	case t.Kind == m.Enum:
		if i := slices.Index(t.Constants, text); i >= 0 {
			v.Int = int64(i)
			return v, nil
		}

		return v, fmt.Errorf("unknown constant %q of %s", text, t)
	case t.IsIntegral():
		n, err := strconv.ParseInt(text, 10, 64)
		v.Int = t.Clamp(n)

		return v, err
	case t.IsFloating():
		f, err := strconv.ParseFloat(text, 64)
		v.Float = f

		return v, err
	default:
		v.Str = text
		return v, nil
	}
}

func scenarioFromModel(scenario m.Scenario) scenarioDTO {
	mutated := make(map[int]string, len(scenario.History))
	for _, entry := range scenario.History {
		mutated[entry.StatementID] = entry.Kind.String()
	}

	tc := scenario.Test
	statements := make([]statementDTO, tc.Size())

	for pos := range tc.Size() {
		st := tc.Statement(pos)
		dto := statementDTO{
			Kind:    st.Kind.String(),
			Length:  st.Length,
			Index:   st.Index,
			Owner:   st.Owner,
			Member:  st.Member,
			Static:  st.Static,
			Mutated: mutated[st.ID],
		}

		if st.Type.Kind != m.Void {
			dto.Type = st.Type.String()
		}

		if st.Callee >= 0 {
			callee := int(st.Callee)
			dto.Callee = &callee
		}

		for _, p := range st.Params {
			dto.Params = append(dto.Params, p.String())
		}

		for _, arg := range st.Args {
			if arg < 0 {
				dto.Args = append(dto.Args, nil)
				continue
			}

			ref := int(arg)
			dto.Args = append(dto.Args, &ref)
		}

		if st.Kind == m.PrimitiveStatement {
			dto.Value = encodeValue(st.Type, st.Value)
		}

		statements[pos] = dto
	}

	return scenarioDTO{
		Name:        scenario.Name,
		Program:     scenario.Program,
		TargetClass: scenario.TargetClass,
		Seed:        scenario.Seed,
		Statements:  statements,
	}
}

func encodeValue(t m.Type, v m.Value) any {
	switch {
	case t.Kind == m.Boolean:
		return v.Bool
	case t.Kind == m.Enum:
		if v.Int >= 0 && int(v.Int) < len(t.Constants) {
			return t.Constants[v.Int]
		}

		return v.Int
	case t.IsIntegral():
		return v.Int
	case t.IsFloating():
		return v.Float
	default:
		return v.Str
	}
}
