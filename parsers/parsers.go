// Package parsers provides ready-made file parsers for the schematic
// parser registry, one per supported data format. Register the ones the
// application needs:
//
//	schematic.AddParser(parsers.YAML, parsers.TOML, parsers.INI)
package parsers
