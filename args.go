package schematic

import "strings"

// ParseArgs converts CLI style tokens into a flag name to value map.
// Only double hyphen flags are recognized, either as "--name value"
// pairs or as "--name=value"; a trailing flag with no value is treated
// as the boolean "true". Single hyphen short flags are not supported
// and are skipped, as is anything after a bare "--" terminator.
func ParseArgs(tokens []string) map[string]string {
	args := make(map[string]string)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok == "--" {
			break
		}
		if !strings.HasPrefix(tok, "--") {
			continue
		}
		name := tok[2:]
		if j := strings.IndexByte(name, '='); j >= 0 {
			args[name[:j]] = name[j+1:]
			continue
		}
		if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "--") {
			args[name] = tokens[i+1]
			i++
			continue
		}
		args[name] = "true"
	}
	return args
}
