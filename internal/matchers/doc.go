// Package matchers implements the interchangeable hit-finding strategies
// behind search: Literal, WholeWord, Regex, TrigramAccelerated and WordAND.
//
// Every Matcher reports hits for a range of episodes of a Corpus, ordered by
// episode and then by ascending rune offset. A Corpus wraps one immutable
// TranscriptIndex snapshot together with the derived lowercase texts, word
// index and trigram index, each built at most once per snapshot.
//
// Case-insensitive matching lowercases text and query rune by rune, so rune
// offsets in lowered text equal rune offsets in the original.
package matchers
