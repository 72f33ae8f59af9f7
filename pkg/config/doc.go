/*
Package config loads replacement tables for subst.

	            +-------------+
	            |   Config    |
	            | (Table)     |
	            +------+------+
	                   |
	   +--------+------+-----+--------+
	   |        |            |        |
	+--+---+ +--+---+    +---+--+ +---+--+
	| YAML | | JSON |    | HCL  | | TOML |
	+------+ +------+    +------+ +------+

🎯 Purpose:
- Reads a replacement table and the file selection it applies to
- Validates replacements, globs, comparison, language and timeout
- Hands the engine ready-made text.Options and text.ReplacementRule values

🔄 Flow:
1. Picks a parser by file extension (extensionless .subst tries YAML, then HCL)
2. Decodes strictly: unknown fields are errors in every format
3. Resolves a relative root against the config file's directory
4. Validates and fills defaults

🔍 Example:

	cfg, err := config.Load(ctx, ".subst.yaml")
	if err != nil {
		return err
	}
	r := text.NewSimultaneousReplacer(cfg.TextOptions())
	res, err := r.ReplaceText(ctx, f, text.RulesForFile(cfg.Rules(), path))
*/
package config
