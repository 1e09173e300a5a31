package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUsage marks malformed command lines.
var ErrUsage = errors.New("usage error")

// Parser parses user-defined arguments into flags
type Parser struct {
	flagSet *CommandFlagSet

	long  map[string]string
	short map[string]string
}

func NewParser(flagSet *CommandFlagSet) *Parser {
	if flagSet == nil {
		flagSet = &CommandFlagSet{Flags: make(map[string]*CommandFlag)}
	}

	parser := &Parser{
		flagSet: flagSet,
		long:    make(map[string]string),
		short:   make(map[string]string),
	}

	for flagName, flag := range flagSet.Flags {
		parser.long[flag.Name] = flagName
		if flag.Short != "" {
			parser.short[flag.Short] = flagName
		}
	}

	return parser
}

func (p *Parser) Parse(raw []string) (*CommandArgs, error) {
	args := &CommandArgs{
		Flags: make(map[string]any),
		Raw:   raw,
	}

	for flagName, flag := range p.flagSet.Flags {
		if flag.Default != nil {
			args.Flags[flagName] = flag.Default
		}
	}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]

		switch {
		case arg == "--":
			args.Args = append(args.Args, raw[i+1:]...)
			i = len(raw)

		case strings.HasPrefix(arg, "--"):
			key, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
			flagName, exists := p.long[key]
			if !exists {
				return nil, fmt.Errorf("%w: unknown flag --%s", ErrUsage, key)
			}

			consumed, err := p.assign(args, flagName, value, hasValue, raw[i+1:])
			if err != nil {
				return nil, err
			}
			i += consumed

		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			consumed, err := p.parseShort(args, arg[1:], raw[i+1:])
			if err != nil {
				return nil, err
			}
			i += consumed

		default:
			args.Args = append(args.Args, arg)
		}
	}

	for flagName, flag := range p.flagSet.Flags {
		if _, ok := args.Flags[flagName]; flag.Required && !ok {
			return nil, fmt.Errorf("%w: required flag --%s", ErrUsage, flag.Name)
		}
	}

	return args, nil
}

// parseShort handles grouped shorthands such as "-fd" or "-tapplication/json".
func (p *Parser) parseShort(args *CommandArgs, group string, rest []string) (int, error) {
	for j, shortChar := range group {
		flagName, exists := p.short[string(shortChar)]
		if !exists {
			return 0, fmt.Errorf("%w: unknown flag -%c", ErrUsage, shortChar)
		}

		if p.flagSet.Flags[flagName].Type == "bool" {
			args.Flags[flagName] = true
			continue
		}

		// The remainder of the group is the value when present
		if inline := group[j+1:]; inline != "" {
			return p.assign(args, flagName, inline, true, rest)
		}
		return p.assign(args, flagName, "", false, rest)
	}

	return 0, nil
}

// assign stores the value of flagName and returns how many following
// arguments were consumed.
func (p *Parser) assign(args *CommandArgs, flagName, value string, hasValue bool, rest []string) (int, error) {
	flag := p.flagSet.Flags[flagName]

	if flag.Type == "bool" {
		if hasValue {
			args.Flags[flagName] = coerceBool(value)
		} else {
			args.Flags[flagName] = true
		}
		return 0, nil
	}

	consumed := 0
	if !hasValue {
		if len(rest) == 0 || strings.HasPrefix(rest[0], "-") {
			return 0, fmt.Errorf("%w: flag --%s requires a value", ErrUsage, flag.Name)
		}
		value = rest[0]
		consumed = 1
	}

	coerced, err := coerce(value, flag.Type)
	if err != nil {
		return 0, fmt.Errorf("%w: flag --%s: %v", ErrUsage, flag.Name, err)
	}

	args.Flags[flagName] = coerced
	return consumed, nil
}

func coerce(value string, typeStr string) (any, error) {
	switch typeStr {
	case "int":
		return strconv.ParseInt(value, 10, 64)
	case "bool":
		return coerceBool(value), nil
	default:
		return value, nil
	}
}

func coerceBool(value string) bool {
	return value == "true" || value == "1" || value == "yes"
}
