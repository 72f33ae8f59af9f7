/*
Package text replaces many literal patterns in one pass.

	   pairs ──► Compile ──► Replacer (immutable, shareable)
	                             │
	   source ──────────► FindAll (scan) ──► []MatchSpan
	                             │
	                         Assemble ──► result

🎯 Purpose:
- Substitute every (old, new) pair simultaneously, so a replacement is never
  itself rewritten by a later pair
- Resolve overlaps deterministically: the leftmost match wins, and at the same
  start the pair listed first wins
- Keep the scan bounded in time (Options.Timeout, or the caller's context)

⚡ Matching:
Patterns are compiled into an Aho–Corasick automaton over rune keys. The key
of a rune depends on the Comparison: ordinal modes compare runes directly or
after simple case folding, cultural modes NFC-normalise patterns and lower
runes with the rules of Options.Language.

The replacement for a match is looked up by the case-folded pattern, whatever
the comparison. Two pairs whose old values fold to the same key share the
replacement of the one listed last.

🔍 Example:

	out, err := text.Replace(ctx, "cat dogma", []text.Pair{
		{Old: "cat", New: "dog"},
		{Old: "dogma", New: "X"},
	}, text.Ordinal)
	// out == "dog X"
*/
package text
