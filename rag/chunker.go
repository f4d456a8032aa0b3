package rag

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// separators is the boundary hierarchy, coarsest first: paragraph break,
// line break, sentence end, word boundary. A raw rune window is the last
// resort when no separator fits.
var separators = []string{"\n\n", "\n", ". ", " "}

// Chunk splits text into overlapping segments of at most maxSize characters.
// Boundaries follow the separator hierarchy, and each separator stays
// attached to the piece before it, so concatenating all chunks minus their
// overlaps reproduces the input exactly. Every chunk after the first starts
// with the last overlap characters of its predecessor. Sizes are measured
// in runes so an overlap never begins inside a multi-byte character.
//
// Input at or under maxSize comes back as a single chunk. Empty or
// whitespace-only input yields nil. Invalid bounds are a programmer error
// and panic.
func Chunk(text string, maxSize, overlap int) []string {
	if maxSize <= 0 {
		panic(fmt.Sprintf("rag: invalid maxSize %d", maxSize))
	}
	if overlap < 0 || overlap >= maxSize {
		panic(fmt.Sprintf("rag: invalid overlap %d for maxSize %d", overlap, maxSize))
	}

	if strings.TrimSpace(text) == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= maxSize {
		return []string{text}
	}

	// Pieces are capped at maxSize-overlap so a carried overlap plus the
	// next piece always fits maxSize.
	pieces := split(text, separators, maxSize-overlap)

	var chunks []string
	var current string
	for _, piece := range pieces {
		if current != "" && runeLen(current)+runeLen(piece) > maxSize {
			chunks = append(chunks, current)
			current = tailRunes(current, overlap)
		}
		current += piece
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// split recursively breaks text into pieces no longer than limit runes,
// trying each separator in order and falling back to a fixed rune window.
func split(text string, seps []string, limit int) []string {
	if runeLen(text) <= limit {
		return []string{text}
	}
	if len(seps) == 0 {
		return splitRunes(text, limit)
	}

	var pieces []string
	for _, part := range splitAfter(text, seps[0]) {
		if runeLen(part) <= limit {
			pieces = append(pieces, part)
		} else {
			pieces = append(pieces, split(part, seps[1:], limit)...)
		}
	}
	return pieces
}

// splitAfter splits text after each occurrence of sep, keeping the
// separator on the preceding piece. Concatenating the pieces yields text.
func splitAfter(text, sep string) []string {
	var parts []string
	for {
		i := strings.Index(text, sep)
		if i < 0 {
			break
		}
		parts = append(parts, text[:i+len(sep)])
		text = text[i+len(sep):]
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}

// splitRunes cuts text into consecutive windows of at most limit runes.
func splitRunes(text string, limit int) []string {
	runes := []rune(text)
	parts := make([]string, 0, (len(runes)+limit-1)/limit)
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}

// tailRunes returns the last n runes of s, or all of s if shorter.
func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
